package service

import (
	"tg-aimod/internal/logger"
	"tg-aimod/internal/models"
	"tg-aimod/internal/storage"
)

// AllowlistService tracks users exempt from moderation. The in-memory
// manager is authoritative for lookups; the repository persists changes
// and seeds the manager on startup.
type AllowlistService struct {
	manager *models.AllowlistManager
	repo    *storage.AllowlistRepository
}

func (s *AllowlistService) loadFromDB() {
	approved, err := s.repo.GetAll()
	if err != nil {
		logger.Warningf("Error loading allowlist from database: %v", err)
		return
	}
	for _, entry := range approved {
		s.manager.Approve(entry.GroupID, entry.UserID)
	}
	logger.Infof("Loaded %d allowlist entries from database", len(approved))
}

// Approve exempts a user from moderation in a group
func (s *AllowlistService) Approve(groupID, userID int64) {
	s.manager.Approve(groupID, userID)
	if s.repo != nil {
		if err := s.repo.Approve(groupID, userID); err != nil {
			logger.Warningf("Error persisting approval: %v", err)
		}
	}
}

// Unapprove re-enables moderation for a user in a group
func (s *AllowlistService) Unapprove(groupID, userID int64) {
	s.manager.Unapprove(groupID, userID)
	if s.repo != nil {
		if err := s.repo.Unapprove(groupID, userID); err != nil {
			logger.Warningf("Error persisting unapproval: %v", err)
		}
	}
}

// UnapproveAll clears every approval in a group
func (s *AllowlistService) UnapproveAll(groupID int64) {
	s.manager.UnapproveAll(groupID)
	if s.repo != nil {
		if err := s.repo.UnapproveAll(groupID); err != nil {
			logger.Warningf("Error persisting group unapproval: %v", err)
		}
	}
}

// IsApproved reports whether the user bypasses moderation in the group
func (s *AllowlistService) IsApproved(groupID, userID int64) bool {
	return s.manager.IsApproved(groupID, userID)
}
