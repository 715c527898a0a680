package service

import (
	"sync"

	"tg-aimod/internal/logger"
	"tg-aimod/internal/models"
	"tg-aimod/internal/storage"
)

type warningKey struct {
	GroupID int64
	UserID  int64
}

// WarningService is the warning ledger: one counter per (group, user).
// Increments are serialized under a mutex so two concurrent violations
// cannot read the same count.
type WarningService struct {
	repo *storage.WarningRepository
	mem  map[warningKey]int
	mu   sync.Mutex
}

// IncrementWarning bumps the counter and returns the new count
func (s *WarningService) IncrementWarning(groupID, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		return s.repo.Increment(groupID, userID)
	}

	key := warningKey{groupID, userID}
	s.mem[key]++
	return s.mem[key], nil
}

// ResetWarnings deletes the (group, user) record outright
func (s *WarningService) ResetWarnings(groupID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Reset(groupID, userID); err != nil {
			logger.Warningf("Error resetting warnings for user %d in group %d: %v", userID, groupID, err)
		}
		return
	}

	delete(s.mem, warningKey{groupID, userID})
}

// ListWarnings returns the current warning counts for a group
func (s *WarningService) ListWarnings(groupID int64) []models.Warning {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		warnings, err := s.repo.ListByGroup(groupID)
		if err != nil {
			logger.Warningf("Error listing warnings for group %d: %v", groupID, err)
			return nil
		}
		return warnings
	}

	var warnings []models.Warning
	for key, count := range s.mem {
		if key.GroupID == groupID {
			warnings = append(warnings, models.Warning{GroupID: key.GroupID, UserID: key.UserID, Count: count})
		}
	}
	return warnings
}
