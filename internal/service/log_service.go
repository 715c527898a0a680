package service

import (
	"tg-aimod/internal/logger"
	"tg-aimod/internal/storage"
)

// LogService appends to the audit tables. Without a database the records
// go to the application log only.
type LogService struct {
	repo *storage.LogRepository
}

// AppendAction records an enforcement decision
func (s *LogService) AppendAction(groupID, userID int64, action, reason string) {
	logger.Infof("moderation action=%s group=%d user=%d reason=%s", action, groupID, userID, reason)

	if s.repo != nil {
		if err := s.repo.AppendAction(groupID, userID, action, reason); err != nil {
			logger.Warningf("Error appending action log: %v", err)
		}
	}
}

// AppendAppeal records one appeal decision for one group
func (s *LogService) AppendAppeal(userID, groupID int64, text string, approved bool) {
	logger.Infof("appeal user=%d group=%d approved=%t", userID, groupID, approved)

	if s.repo != nil {
		if err := s.repo.AppendAppeal(userID, groupID, text, approved); err != nil {
			logger.Warningf("Error appending appeal log: %v", err)
		}
	}
}
