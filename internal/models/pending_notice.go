package models

import "time"

// PendingNotice is a transient group message scheduled for deletion.
// Persisted so notices left behind by a crash can be cleaned up on restart.
type PendingNotice struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	ChatID    int64 `gorm:"index;not null"`
	MessageID int   `gorm:"not null"`
	CreatedAt time.Time
}
