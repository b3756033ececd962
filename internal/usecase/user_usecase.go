package usecase

import (
	"context"
	"errors"

	"census-gateway/internal/converter"
	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/domain/repository"
	"census-gateway/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrRoleNotAllowed = errors.New("insufficient role to assign this role")
	ErrSelfDelete     = errors.New("cannot delete your own account")
)

// UserUsecase covers admin account management. Handlers guarantee the actor
// holds an admin role before any of these run; the usecase still enforces
// the finer rule that only super admins mint other admins.
type UserUsecase interface {
	CreateUser(ctx context.Context, actorRoleID int, actorID uuid.UUID, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actorRoleID int, actorID uuid.UUID, userID uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID uuid.UUID, userID uuid.UUID) error
}

type userUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewUserUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) UserUsecase {
	return &userUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

func (u *userUsecase) CreateUser(ctx context.Context, actorRoleID int, actorID uuid.UUID, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !entity.CanCreateRole(actorRoleID, req.RoleID) {
		return nil, ErrRoleNotAllowed
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	isActive := true
	user := &entity.User{
		Email:       req.Email,
		Password:    hashedPassword,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		RoleID:      req.RoleID,
		IsActive:    &isActive,
	}

	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if len(req.Facilities) > 0 {
		if err := u.userRepo.ReplaceFacilities(tx, user.ID, req.Facilities); err != nil {
			u.log.Warnf("Failed to assign facilities: %+v", err)
			return nil, err
		}
	}

	if err := u.auditService.LogChange(ctx, tx, &actorID, entity.AuditActionUserCreate, "user", user.ID.String(), nil, map[string]interface{}{
		"email":      user.Email,
		"role_id":    user.RoleID,
		"facilities": req.Facilities,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// Re-read with associations for the response
	created, err := u.userRepo.FindByID(u.db.WithContext(ctx), user.ID)
	if err != nil {
		u.log.Warnf("Failed to reload created user: %+v", err)
		return nil, err
	}
	return converter.UserToResponse(created), nil
}

func (u *userUsecase) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := u.userRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}
	return converter.UsersToResponses(users), nil
}

func (u *userUsecase) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

func (u *userUsecase) UpdateUser(ctx context.Context, actorRoleID int, actorID uuid.UUID, userID uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Touching an admin account, or promoting to one, is super-admin only
	if !entity.CanCreateRole(actorRoleID, user.RoleID) {
		return nil, ErrRoleNotAllowed
	}
	if req.RoleID != nil && !entity.CanCreateRole(actorRoleID, *req.RoleID) {
		return nil, ErrRoleNotAllowed
	}

	before := map[string]interface{}{
		"role_id":    user.RoleID,
		"is_active":  user.IsActive,
		"facilities": user.FacilityIDs(),
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.RoleID != nil {
		user.RoleID = *req.RoleID
	}
	if req.IsActive != nil {
		user.IsActive = req.IsActive
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Save would also write the stale Facilities association, so clear it
	// and let ReplaceFacilities own that table
	user.Facilities = nil
	if err := u.userRepo.Update(tx.Omit("Facilities"), user); err != nil {
		u.log.Warnf("Failed to update user: %+v", err)
		return nil, err
	}

	if req.Facilities != nil {
		if err := u.userRepo.ReplaceFacilities(tx, user.ID, *req.Facilities); err != nil {
			u.log.Warnf("Failed to replace facilities: %+v", err)
			return nil, err
		}
	}

	after := map[string]interface{}{
		"role_id":   user.RoleID,
		"is_active": user.IsActive,
	}
	if req.Facilities != nil {
		after["facilities"] = *req.Facilities
	}

	if err := u.auditService.LogChange(ctx, tx, &actorID, entity.AuditActionUserUpdate, "user", user.ID.String(), before, after); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	updated, err := u.userRepo.FindByID(u.db.WithContext(ctx), user.ID)
	if err != nil {
		u.log.Warnf("Failed to reload updated user: %+v", err)
		return nil, err
	}
	return converter.UserToResponse(updated), nil
}

func (u *userUsecase) DeleteUser(ctx context.Context, actorID uuid.UUID, userID uuid.UUID) error {
	if actorID == userID {
		return ErrSelfDelete
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.userRepo.ReplaceFacilities(tx, userID, nil); err != nil {
		u.log.Warnf("Failed to clear facilities: %+v", err)
		return err
	}

	affected, err := u.userRepo.Delete(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to delete user: %+v", err)
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	if err := u.auditService.LogChange(ctx, tx, &actorID, entity.AuditActionUserDelete, "user", userID.String(), map[string]interface{}{
		"email":   user.Email,
		"role_id": user.RoleID,
	}, nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	return nil
}
