package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants. The numbering has a gap because it mirrors the
// role codes carried in upstream tokens.
const (
	RoleIDSuperAdmin = 1
	RoleIDAdmin      = 2
	RoleIDUser       = 4
)

// Role name constants
const (
	RoleSuperAdmin = "Super Admin"
	RoleAdmin      = "Admin"
	RoleUser       = "User"
)

// RoleName maps a role id to its display name. Unknown ids render as "User".
func RoleName(roleID int) string {
	switch roleID {
	case RoleIDSuperAdmin:
		return RoleSuperAdmin
	case RoleIDAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// CanManageUsers reports whether the role may create, update, or delete accounts
func CanManageUsers(roleID int) bool {
	return roleID == RoleIDSuperAdmin || roleID == RoleIDAdmin
}

// CanAccessAllFacilities reports whether the role bypasses facility assignments
func CanAccessAllFacilities(roleID int) bool {
	return roleID == RoleIDSuperAdmin || roleID == RoleIDAdmin
}

// CanExportData reports whether the role may download census exports
func CanExportData(roleID int) bool {
	return roleID == RoleIDSuperAdmin || roleID == RoleIDAdmin
}

// CanCreateRole reports whether actorRole may assign targetRole to an account.
// Only super admins may mint other admins.
func CanCreateRole(actorRoleID, targetRoleID int) bool {
	if !CanManageUsers(actorRoleID) {
		return false
	}
	if targetRoleID == RoleIDSuperAdmin || targetRoleID == RoleIDAdmin {
		return actorRoleID == RoleIDSuperAdmin
	}
	return true
}
