package models

import "time"

// UserInfo records users the bot has seen, keyed by Telegram user ID
type UserInfo struct {
	UserID      int64  `gorm:"primaryKey;autoIncrement:false"`
	DisplayName string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
