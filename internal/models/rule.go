package models

import "time"

// Rule is one free-text group rule. Insertion order is display order;
// no dedup or count limit is enforced.
type Rule struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	GroupID   int64  `gorm:"index;not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
