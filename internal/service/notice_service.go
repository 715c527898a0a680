package service

import (
	"sync"

	"tg-aimod/internal/logger"
	"tg-aimod/internal/notices"
	"tg-aimod/internal/storage"
)

// NoticeService backs the transient notice registry: database when enabled
// so notices orphaned by a crash can still be found, memory otherwise.
type NoticeService struct {
	repo *storage.NoticeRepository
	mem  []notices.PendingRef
	mu   sync.Mutex
}

// AddPendingNotice records a posted notice awaiting deletion
func (s *NoticeService) AddPendingNotice(chatID int64, messageID int) {
	if s.repo != nil {
		if err := s.repo.Add(chatID, messageID); err != nil {
			logger.Warningf("Error recording pending notice: %v", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem = append(s.mem, notices.PendingRef{ChatID: chatID, MessageID: messageID})
}

// RemovePendingNotice drops the record once the notice is gone
func (s *NoticeService) RemovePendingNotice(chatID int64, messageID int) {
	if s.repo != nil {
		if err := s.repo.Remove(chatID, messageID); err != nil {
			logger.Warningf("Error removing pending notice: %v", err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ref := range s.mem {
		if ref.ChatID == chatID && ref.MessageID == messageID {
			s.mem = append(s.mem[:i], s.mem[i+1:]...)
			break
		}
	}
}

// ListPendingNotices returns every notice still awaiting deletion
func (s *NoticeService) ListPendingNotices() []notices.PendingRef {
	if s.repo != nil {
		stored, err := s.repo.GetAll()
		if err != nil {
			logger.Warningf("Error listing pending notices: %v", err)
			return nil
		}
		refs := make([]notices.PendingRef, 0, len(stored))
		for _, notice := range stored {
			refs = append(refs, notices.PendingRef{ChatID: notice.ChatID, MessageID: notice.MessageID})
		}
		return refs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]notices.PendingRef, len(s.mem))
	copy(refs, s.mem)
	return refs
}
