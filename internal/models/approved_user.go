package models

import (
	"sync"
	"time"
)

// ApprovedUser marks a user as exempt from moderation in a group
type ApprovedUser struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	GroupID   int64 `gorm:"uniqueIndex:idx_approved_group_user;not null"`
	UserID    int64 `gorm:"uniqueIndex:idx_approved_group_user;not null"`
	CreatedAt time.Time
}

type approvedKey struct {
	GroupID int64
	UserID  int64
}

// AllowlistManager caches approved (group, user) pairs in memory
type AllowlistManager struct {
	approved map[approvedKey]struct{}
	mu       sync.RWMutex
}

func NewAllowlistManager() *AllowlistManager {
	return &AllowlistManager{
		approved: make(map[approvedKey]struct{}),
	}
}

func (a *AllowlistManager) Approve(groupID, userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.approved[approvedKey{groupID, userID}] = struct{}{}
}

func (a *AllowlistManager) Unapprove(groupID, userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.approved, approvedKey{groupID, userID})
}

// UnapproveAll removes every approval in the given group
func (a *AllowlistManager) UnapproveAll(groupID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.approved {
		if key.GroupID == groupID {
			delete(a.approved, key)
		}
	}
}

func (a *AllowlistManager) IsApproved(groupID, userID int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.approved[approvedKey{groupID, userID}]
	return ok
}
