package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a dashboard account. Accounts are local to the gateway:
// the upstream census system has its own credentials which are held by the
// gateway's service account, never by end users.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID      int       `gorm:"not null;index" json:"role_id"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"type:text;not null" json:"-"`
	FirstName   string    `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(255);not null" json:"last_name"`
	PhoneNumber string    `gorm:"type:varchar(50)" json:"phone_number,omitempty"`
	IsActive    *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role       Role           `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Facilities []UserFacility `gorm:"foreignKey:UserID" json:"facilities,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// FacilityIDs returns the facility assignments as a plain id list.
// Empty means no assignments; admin roles ignore assignments entirely.
func (u *User) FacilityIDs() []int {
	ids := make([]int, 0, len(u.Facilities))
	for _, f := range u.Facilities {
		ids = append(ids, f.FacilityID)
	}
	return ids
}

// UserFacility assigns a user to a facility. Users without the
// all-facilities permission only see patients from assigned facilities.
type UserFacility struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_user_facility,unique" json:"user_id"`
	FacilityID int       `gorm:"not null;index:idx_user_facility,unique" json:"facility_id"`
}

func (UserFacility) TableName() string {
	return "user_facilities"
}
