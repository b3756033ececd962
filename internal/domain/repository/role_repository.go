package repository

import (
	"census-gateway/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByID(db *gorm.DB, id int) (*entity.Role, error)
	FindAll(db *gorm.DB) ([]entity.Role, error)
	Upsert(db *gorm.DB, role *entity.Role) error
}
