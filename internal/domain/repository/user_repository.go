package repository

import (
	"go-medical-appointment/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(db *gorm.DB, user *entity.User) error
	FindByEmail(db *gorm.DB, email string) (*entity.User, error)
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error)
	UpdateFullName(db *gorm.DB, id uuid.UUID, fullName string) error
	UpdatePassword(db *gorm.DB, id uuid.UUID, hashedPassword string) error
	UpdateActive(db *gorm.DB, id uuid.UUID, active bool) error
}
