package storage

import (
	"tg-aimod/internal/models"

	"gorm.io/gorm"
)

// LogRepository handles the append-only audit tables
type LogRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *gorm.DB) *LogRepository {
	return &LogRepository{db: db}
}

// MigrateTable ensures both audit tables exist
func (r *LogRepository) MigrateTable() error {
	if err := r.db.AutoMigrate(&models.ActionLog{}); err != nil {
		return err
	}
	return r.db.AutoMigrate(&models.AppealLog{})
}

// AppendAction records an enforcement decision
func (r *LogRepository) AppendAction(groupID, userID int64, action, reason string) error {
	return r.db.Create(&models.ActionLog{
		GroupID: groupID,
		UserID:  userID,
		Action:  action,
		Reason:  reason,
	}).Error
}

// AppendAppeal records one appeal decision for one group
func (r *LogRepository) AppendAppeal(userID, groupID int64, text string, approved bool) error {
	return r.db.Create(&models.AppealLog{
		UserID:   userID,
		GroupID:  groupID,
		Text:     text,
		Approved: approved,
	}).Error
}
