package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResponse bundles the token pair with everything the dashboard needs
// to render its first frame: the account, its permissions, and the facility
// selection (already auto-selected when the user only has one facility).
type LoginResponse struct {
	Tokens           TokenResponse `json:"tokens"`
	User             UserResponse  `json:"user"`
	SelectedFacility *int          `json:"selected_facility,omitempty"`
}

type UserResponse struct {
	ID          uuid.UUID       `json:"id"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	Role        string          `json:"role"`
	RoleID      int             `json:"role_id"`
	IsActive    bool            `json:"is_active"`
	Facilities  []int           `json:"facilities"`
	Permissions UserPermissions `json:"permissions"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UserPermissions flattens role checks for the frontend
type UserPermissions struct {
	ManageUsers         bool `json:"manage_users"`
	AccessAllFacilities bool `json:"access_all_facilities"`
	ExportData          bool `json:"export_data"`
}
