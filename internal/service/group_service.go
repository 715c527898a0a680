package service

import (
	"tg-aimod/internal/logger"
	"tg-aimod/internal/models"
	"tg-aimod/internal/storage"
)

// GroupService keeps the group cache and the user registry
type GroupService struct {
	manager  *models.GroupInfoManager
	repo     *storage.GroupRepository
	userRepo *storage.UserRepository
}

// UpsertGroup records or refreshes a group the bot moderates
func (s *GroupService) UpsertGroup(groupID int64, title string, addedBy int64) *models.GroupInfo {
	info := s.manager.Get(groupID)
	if info == nil {
		info = &models.GroupInfo{GroupID: groupID}
	}
	info.Title = title
	if addedBy != 0 {
		info.AddedBy = addedBy
	}

	s.manager.Add(info)

	if s.repo != nil {
		if err := s.repo.Upsert(info); err != nil {
			logger.Warningf("Error saving group info for %d: %v", groupID, err)
		}
	}
	return info
}

// GetGroupInfo returns what the bot knows about a group, checking the
// cache first and the database second
func (s *GroupService) GetGroupInfo(groupID int64) *models.GroupInfo {
	if info := s.manager.Get(groupID); info != nil {
		return info
	}

	if s.repo != nil {
		info, err := s.repo.GetGroupInfo(groupID)
		if err != nil {
			logger.Warningf("Error fetching group info from database: %v", err)
		} else if info != nil {
			s.manager.Add(info)
			return info
		}
	}

	return nil
}

// UpsertUser records or refreshes a user the bot has seen
func (s *GroupService) UpsertUser(userID int64, displayName string) {
	if s.userRepo == nil {
		return
	}
	if err := s.userRepo.Upsert(userID, displayName); err != nil {
		logger.Warningf("Error saving user %d: %v", userID, err)
	}
}
