package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/scope"
	"census-gateway/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrFacilityNotFound   = errors.New("facility not found")
	ErrFacilityNotAllowed = errors.New("facility is not assigned to this user")
	ErrSelectionRequired  = errors.New("a facility must be selected before viewing census data")
)

const selectedFacilityKeyPrefix = "census:selected_facility:"

// FacilityUsecase manages which facility a user is looking at. The selection
// lives in Redis keyed by user id, so it survives token refreshes and is
// shared across browser tabs.
type FacilityUsecase interface {
	ListFacilities(ctx context.Context, roleID int, assigned []int) ([]entity.Facility, error)
	GetSelection(ctx context.Context, userID uuid.UUID, roleID int, assigned []int) (*dto.FacilitySelectionResponse, error)
	SetSelection(ctx context.Context, userID uuid.UUID, roleID int, assigned []int, facilityID *int) error
	ClearSelection(ctx context.Context, userID uuid.UUID) error
	ScopeFor(ctx context.Context, userID uuid.UUID, roleID int, assigned []int) (scope.Scope, error)
	EnsureInitialSelection(ctx context.Context, user *entity.User) *int
}

type facilityUsecase struct {
	log          *logrus.Logger
	census       service.CensusService
	kv           service.KVStore
	audit        service.AuditService
	fetchTimeout time.Duration
}

func NewFacilityUsecase(
	log *logrus.Logger,
	census service.CensusService,
	kv service.KVStore,
	audit service.AuditService,
	fetchTimeout time.Duration,
) FacilityUsecase {
	return &facilityUsecase{
		log:          log,
		census:       census,
		kv:           kv,
		audit:        audit,
		fetchTimeout: fetchTimeout,
	}
}

// ListFacilities returns the facilities the user may look at. Admin roles see
// every active facility; everyone else sees only their assignments.
func (u *facilityUsecase) ListFacilities(ctx context.Context, roleID int, assigned []int) ([]entity.Facility, error) {
	facilities, err := u.census.Facilities(ctx)
	if err != nil {
		u.log.Warnf("Failed to fetch facilities: %+v", err)
		return nil, err
	}

	if entity.CanAccessAllFacilities(roleID) {
		return facilities, nil
	}

	allowed := make(map[int]bool, len(assigned))
	for _, id := range assigned {
		allowed[id] = true
	}

	visible := make([]entity.Facility, 0, len(facilities))
	for _, facility := range facilities {
		if allowed[facility.FacID] {
			visible = append(visible, facility)
		}
	}
	return visible, nil
}

func (u *facilityUsecase) GetSelection(ctx context.Context, userID uuid.UUID, roleID int, assigned []int) (*dto.FacilitySelectionResponse, error) {
	available, err := u.ListFacilities(ctx, roleID, assigned)
	if err != nil {
		return nil, err
	}

	response := &dto.FacilitySelectionResponse{Available: available}

	if selected, ok := u.readSelection(ctx, userID); ok {
		// A stale selection pointing at a facility the user lost access to
		// is dropped rather than honored
		for _, facility := range available {
			if facility.FacID == selected {
				response.SelectedFacility = &selected
				return response, nil
			}
		}
		if err := u.ClearSelection(ctx, userID); err != nil {
			u.log.Warnf("Failed to clear stale facility selection: %+v", err)
		}
	}

	response.RequiresSelection = !entity.CanAccessAllFacilities(roleID) && len(available) > 1
	return response, nil
}

// SetSelection pins the user to one facility, or clears the pin when
// facilityID is nil. Only roles with all-facility access may clear.
func (u *facilityUsecase) SetSelection(ctx context.Context, userID uuid.UUID, roleID int, assigned []int, facilityID *int) error {
	if facilityID == nil {
		if !entity.CanAccessAllFacilities(roleID) {
			return ErrFacilityNotAllowed
		}
		return u.ClearSelection(ctx, userID)
	}

	available, err := u.ListFacilities(ctx, roleID, assigned)
	if err != nil {
		return err
	}
	found := false
	for _, facility := range available {
		if facility.FacID == *facilityID {
			found = true
			break
		}
	}
	if !found {
		if entity.CanAccessAllFacilities(roleID) {
			return ErrFacilityNotFound
		}
		return ErrFacilityNotAllowed
	}

	if err := u.kv.Set(ctx, selectedFacilityKey(userID), strconv.Itoa(*facilityID), 0); err != nil {
		u.log.Warnf("Failed to persist facility selection: %+v", err)
		return err
	}

	u.audit.LogAction(ctx, nil, &userID, entity.AuditActionFacilitySelect, entity.JSON{
		"facility_id": *facilityID,
	})

	return nil
}

func (u *facilityUsecase) ClearSelection(ctx context.Context, userID uuid.UUID) error {
	return u.kv.Delete(ctx, selectedFacilityKey(userID))
}

// ScopeFor resolves the scope every census read runs under. Users without
// all-facility access and no selection must pick a facility first, unless
// they only have one, which selects itself.
func (u *facilityUsecase) ScopeFor(ctx context.Context, userID uuid.UUID, roleID int, assigned []int) (scope.Scope, error) {
	if selected, ok := u.readSelection(ctx, userID); ok {
		return scope.ForFacility(selected), nil
	}

	if entity.CanAccessAllFacilities(roleID) {
		return scope.All(), nil
	}

	if len(assigned) == 1 {
		return scope.ForFacility(assigned[0]), nil
	}

	return scope.Scope{}, ErrSelectionRequired
}

// EnsureInitialSelection runs at login: when the user can only ever see one
// facility, select it for them. The facility fetch races a short timeout so
// a slow upstream never delays the login response; selection then happens
// lazily on the first census read instead.
func (u *facilityUsecase) EnsureInitialSelection(ctx context.Context, user *entity.User) *int {
	if selected, ok := u.readSelection(ctx, user.ID); ok {
		return &selected
	}

	fetchCtx, cancel := context.WithTimeout(ctx, u.fetchTimeout)
	defer cancel()

	available, err := u.ListFacilities(fetchCtx, user.RoleID, user.FacilityIDs())
	if err != nil {
		u.log.Warnf("Skipping initial facility selection: %+v", err)
		return nil
	}
	if len(available) != 1 {
		return nil
	}

	facID := available[0].FacID
	if err := u.kv.Set(ctx, selectedFacilityKey(user.ID), strconv.Itoa(facID), 0); err != nil {
		u.log.Warnf("Failed to persist initial facility selection: %+v", err)
		return nil
	}
	return &facID
}

func (u *facilityUsecase) readSelection(ctx context.Context, userID uuid.UUID) (int, bool) {
	value, err := u.kv.Get(ctx, selectedFacilityKey(userID))
	if err != nil {
		if !errors.Is(err, service.ErrCacheMiss) {
			u.log.Warnf("Failed to read facility selection: %+v", err)
		}
		return 0, false
	}
	facID, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return facID, true
}

func selectedFacilityKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s", selectedFacilityKeyPrefix, userID.String())
}
