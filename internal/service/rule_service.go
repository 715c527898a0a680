package service

import (
	"sync"

	"tg-aimod/internal/logger"
	"tg-aimod/internal/storage"
)

// RuleService keeps per-group ordered rule lists; database backed when
// available, in-memory otherwise.
type RuleService struct {
	repo *storage.RuleRepository
	mem  map[int64][]string
	mu   sync.RWMutex
}

// Append adds a rule to the end of the group's list
func (s *RuleService) Append(groupID int64, text string) {
	if s.repo != nil {
		if err := s.repo.Append(groupID, text); err != nil {
			logger.Warningf("Error appending rule for group %d: %v", groupID, err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem[groupID] = append(s.mem[groupID], text)
}

// ListRules returns the group's rules in insertion order
func (s *RuleService) ListRules(groupID int64) []string {
	if s.repo != nil {
		rules, err := s.repo.ListByGroup(groupID)
		if err != nil {
			logger.Warningf("Error listing rules for group %d: %v", groupID, err)
			return nil
		}
		return rules
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make([]string, len(s.mem[groupID]))
	copy(rules, s.mem[groupID])
	return rules
}
