package storage

import (
	"tg-aimod/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WarningRepository handles database operations for Warning
type WarningRepository struct {
	db *gorm.DB
}

// NewWarningRepository creates a new WarningRepository
func NewWarningRepository(db *gorm.DB) *WarningRepository {
	return &WarningRepository{db: db}
}

// MigrateTable ensures the Warning table exists
func (r *WarningRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Warning{})
}

// Increment bumps the warning count for (group, user) in a single upsert
// statement and returns the new count. The read-back races only with a
// concurrent increment for the same pair, which the service serializes.
func (r *WarningRepository) Increment(groupID, userID int64) (int, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
	}).Create(&models.Warning{GroupID: groupID, UserID: userID, Count: 1}).Error
	if err != nil {
		return 0, err
	}

	var warning models.Warning
	result := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&warning)
	if result.Error != nil {
		return 0, result.Error
	}
	return warning.Count, nil
}

// Reset deletes the warning record for (group, user) outright
func (r *WarningRepository) Reset(groupID, userID int64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.Warning{}).Error
}

// ListByGroup returns all warning records for a group
func (r *WarningRepository) ListByGroup(groupID int64) ([]models.Warning, error) {
	var warnings []models.Warning
	result := r.db.Where("group_id = ?", groupID).Find(&warnings)
	return warnings, result.Error
}
