package storage

import (
	"tg-aimod/internal/models"

	"gorm.io/gorm"
)

// NoticeRepository handles database operations for PendingNotice
type NoticeRepository struct {
	db *gorm.DB
}

// NewNoticeRepository creates a new NoticeRepository
func NewNoticeRepository(db *gorm.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// MigrateTable ensures the PendingNotice table exists
func (r *NoticeRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.PendingNotice{})
}

// Add records a notice awaiting deletion
func (r *NoticeRepository) Add(chatID int64, messageID int) error {
	return r.db.Create(&models.PendingNotice{ChatID: chatID, MessageID: messageID}).Error
}

// Remove drops a notice record once it has been deleted
func (r *NoticeRepository) Remove(chatID int64, messageID int) error {
	return r.db.Where("chat_id = ? AND message_id = ?", chatID, messageID).Delete(&models.PendingNotice{}).Error
}

// GetAll returns every notice still awaiting deletion
func (r *NoticeRepository) GetAll() ([]models.PendingNotice, error) {
	var notices []models.PendingNotice
	result := r.db.Find(&notices)
	return notices, result.Error
}
