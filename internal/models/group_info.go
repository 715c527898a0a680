package models

import (
	"fmt"
	"sync"
	"time"
)

// GroupInfo holds what the bot knows about a group it moderates
type GroupInfo struct {
	GroupID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Title     string `gorm:"size:255"`
	GroupLink string `gorm:"size:255"`
	AddedBy   int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *GroupInfo) GetLinkedTitle() string {
	if g.GroupLink == "" {
		return g.Title
	}
	return fmt.Sprintf("<a href=\"%s\">%s</a>", g.GroupLink, g.Title)
}

// GroupInfoManager is the in-memory group cache
type GroupInfoManager struct {
	groups map[int64]*GroupInfo
	mu     sync.RWMutex
}

func NewGroupInfoManager() *GroupInfoManager {
	return &GroupInfoManager{
		groups: make(map[int64]*GroupInfo),
	}
}

func (g *GroupInfoManager) Get(groupID int64) *GroupInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.groups[groupID]
}

func (g *GroupInfoManager) Add(info *GroupInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.groups[info.GroupID] = info
}

func (g *GroupInfoManager) Remove(groupID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.groups, groupID)
}
