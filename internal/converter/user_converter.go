package converter

import (
	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	isActive := true
	if user.IsActive != nil {
		isActive = *user.IsActive
	}

	return &dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Role:        entity.RoleName(user.RoleID),
		RoleID:      user.RoleID,
		IsActive:    isActive,
		Facilities:  user.FacilityIDs(),
		Permissions: dto.UserPermissions{
			ManageUsers:         entity.CanManageUsers(user.RoleID),
			AccessAllFacilities: entity.CanAccessAllFacilities(user.RoleID),
			ExportData:          entity.CanExportData(user.RoleID),
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UsersToResponses converts a slice of User entities to slice of UserResponse DTOs
func UsersToResponses(users []entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i := range users {
		responses[i] = *UserToResponse(&users[i])
	}
	return responses
}
