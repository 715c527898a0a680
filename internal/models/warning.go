package models

import "time"

// Warning tracks the violation count for a user in a group.
// Exactly one row per (group, user); the row is deleted outright when the
// user gets banned or reset, never just zeroed.
type Warning struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	GroupID   int64 `gorm:"uniqueIndex:idx_group_user;not null"`
	UserID    int64 `gorm:"uniqueIndex:idx_group_user;not null"`
	Count     int   `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
