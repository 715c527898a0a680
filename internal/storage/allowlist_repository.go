package storage

import (
	"tg-aimod/internal/models"

	"gorm.io/gorm"
)

// AllowlistRepository handles database operations for ApprovedUser
type AllowlistRepository struct {
	db *gorm.DB
}

// NewAllowlistRepository creates a new AllowlistRepository
func NewAllowlistRepository(db *gorm.DB) *AllowlistRepository {
	return &AllowlistRepository{db: db}
}

// MigrateTable ensures the ApprovedUser table exists
func (r *AllowlistRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.ApprovedUser{})
}

// Approve records a (group, user) approval, ignoring duplicates
func (r *AllowlistRepository) Approve(groupID, userID int64) error {
	var existing models.ApprovedUser
	result := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&existing)
	if result.Error == nil {
		return nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return result.Error
	}
	return r.db.Create(&models.ApprovedUser{GroupID: groupID, UserID: userID}).Error
}

// Unapprove removes a (group, user) approval
func (r *AllowlistRepository) Unapprove(groupID, userID int64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.ApprovedUser{}).Error
}

// UnapproveAll removes every approval in a group
func (r *AllowlistRepository) UnapproveAll(groupID int64) error {
	return r.db.Where("group_id = ?", groupID).Delete(&models.ApprovedUser{}).Error
}

// GetAll returns every stored approval
func (r *AllowlistRepository) GetAll() ([]models.ApprovedUser, error) {
	var approved []models.ApprovedUser
	result := r.db.Find(&approved)
	return approved, result.Error
}
