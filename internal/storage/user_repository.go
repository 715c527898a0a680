package storage

import (
	"time"

	"tg-aimod/internal/models"

	"gorm.io/gorm"
)

// UserRepository handles database operations for UserInfo
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// MigrateTable ensures the UserInfo table exists
func (r *UserRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.UserInfo{})
}

// Upsert creates or refreshes a user record
func (r *UserRepository) Upsert(userID int64, displayName string) error {
	var existing models.UserInfo
	result := r.db.Where("user_id = ?", userID).First(&existing)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return r.db.Create(&models.UserInfo{UserID: userID, DisplayName: displayName}).Error
		}
		return result.Error
	}

	existing.DisplayName = displayName
	existing.UpdatedAt = time.Now()
	return r.db.Save(&existing).Error
}
