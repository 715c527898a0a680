package models

import "time"

// AppealLog is an append-only audit record of one appeal decision for one
// group. An appeal spanning N banned groups produces N records per attempt.
type AppealLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    int64  `gorm:"index;not null"`
	GroupID   int64  `gorm:"index;not null"`
	Text      string `gorm:"type:text"`
	Approved  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
