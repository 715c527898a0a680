package models

import "time"

// ActionLog is an append-only audit record of an enforcement decision
type ActionLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	GroupID   int64  `gorm:"index;not null"`
	UserID    int64  `gorm:"index;not null"`
	Action    string `gorm:"size:16;not null"`
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}
