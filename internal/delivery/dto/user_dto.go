package dto

// Request DTOs

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,min=1"`
	LastName    string `json:"last_name" validate:"required,min=1"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=20"`
	RoleID      int    `json:"role_id" validate:"required,oneof=1 2 4"`
	Facilities  []int  `json:"facilities" validate:"omitempty,dive,gte=1"`
}

// UpdateUserRequest patches an account. Nil fields are left unchanged;
// a non-nil empty facility list clears all assignments.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name" validate:"omitempty,min=1"`
	LastName    *string `json:"last_name" validate:"omitempty,min=1"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	RoleID      *int    `json:"role_id" validate:"omitempty,oneof=1 2 4"`
	IsActive    *bool   `json:"is_active"`
	Facilities  *[]int  `json:"facilities" validate:"omitempty,dive,gte=1"`
}
