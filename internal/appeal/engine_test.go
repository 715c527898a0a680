package appeal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"

	"tg-aimod/internal/ai"
	"tg-aimod/internal/notices"
)

type stubEvaluator struct {
	decision ai.AppealDecision
	calls    int
}

func (s *stubEvaluator) EvaluateAppeal(ctx context.Context, text string) ai.AppealDecision {
	s.calls++
	return s.decision
}

type sentMessage struct {
	chatID int64
	html   string
	markup *telego.InlineKeyboardMarkup
}

type stubPlatform struct {
	mu       sync.Mutex
	unbanned []int64
	restored []int64
	sent     []sentMessage
	edited   []int
	unbanErr error
}

func (s *stubPlatform) UnbanMember(ctx context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unbanned = append(s.unbanned, chatID)
	return s.unbanErr
}

func (s *stubPlatform) RestoreSendPermissions(ctx context.Context, chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restored = append(s.restored, chatID)
	return nil
}

func (s *stubPlatform) SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{chatID: chatID, html: html, markup: markup})
	return len(s.sent), nil
}

func (s *stubPlatform) EditMessageHTML(ctx context.Context, chatID int64, messageID int, html string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edited = append(s.edited, messageID)
	return nil
}

func (s *stubPlatform) GetChatInfo(ctx context.Context, chatID int64) (string, string, error) {
	return "Primary Chat", "https://t.me/primarychat", nil
}

func (s *stubPlatform) sentCopy() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

type appealRecord struct {
	groupID  int64
	approved bool
}

type stubAudit struct {
	mu      sync.Mutex
	records []appealRecord
}

func (s *stubAudit) AppendAppeal(userID, groupID int64, text string, approved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, appealRecord{groupID: groupID, approved: approved})
}

type stubBroadcaster struct {
	mu    sync.Mutex
	posts []int64
}

func (s *stubBroadcaster) Post(ctx context.Context, chatID int64, text string, style notices.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, chatID)
}

func (s *stubBroadcaster) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

type fixture struct {
	engine      *Engine
	evaluator   *stubEvaluator
	platform    *stubPlatform
	tracker     *Tracker
	audit       *stubAudit
	broadcaster *stubBroadcaster
}

func newFixture(decision ai.AppealDecision, ownerID int64) *fixture {
	f := &fixture{
		evaluator:   &stubEvaluator{decision: decision},
		platform:    &stubPlatform{},
		tracker:     NewTracker(),
		audit:       &stubAudit{},
		broadcaster: &stubBroadcaster{},
	}
	f.engine = NewEngine(f.evaluator, f.platform, f.tracker, f.audit, f.broadcaster, 3, ownerID)
	return f
}

var appellant = UserRef{ID: 42, FirstName: "Mallory"}

func TestSubmitAppealWithoutPendingBan(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: true}, 0)

	f.engine.SubmitAppeal(context.Background(), appellant, "please")

	sent := f.platform.sentCopy()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].html, "No active ban/mute appeal found")
	assert.Zero(t, f.evaluator.calls)
}

func TestSubmitAppealEmptyReasonShowsUsage(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: true}, 0)
	f.tracker.TrackBan(appellant.ID, -100)

	f.engine.SubmitAppeal(context.Background(), appellant, "   ")

	sent := f.platform.sentCopy()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].html, "Usage: /appeal")
	assert.Zero(t, f.tracker.Attempts(appellant.ID), "usage error does not burn an attempt")
}

func TestSubmitAppealApprovedUnbansAllGroups(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: true, Reason: "sincere"}, 0)
	f.tracker.TrackBan(appellant.ID, -100)
	f.tracker.TrackBan(appellant.ID, -200)

	f.engine.SubmitAppeal(context.Background(), appellant, "I am sorry")

	assert.ElementsMatch(t, []int64{-100, -200}, f.platform.unbanned)
	assert.ElementsMatch(t, []int64{-100, -200}, f.platform.restored)
	assert.ElementsMatch(t, []appealRecord{{groupID: -100, approved: true}, {groupID: -200, approved: true}}, f.audit.records)

	assert.False(t, f.tracker.IsPending(appellant.ID))
	assert.Equal(t, 1, f.tracker.Approvals(appellant.ID))
	assert.Zero(t, f.tracker.Attempts(appellant.ID))

	assert.Eventually(t, func() bool { return f.broadcaster.count() == 2 },
		time.Second, 10*time.Millisecond, "both groups get the approval notice")
}

func TestSubmitAppealRejectedKeepsBanPending(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: false, Reason: "fake apology"}, 0)
	f.tracker.TrackBan(appellant.ID, -100)

	f.engine.SubmitAppeal(context.Background(), appellant, "whatever")

	assert.Empty(t, f.platform.unbanned)
	assert.True(t, f.tracker.IsPending(appellant.ID))
	assert.Equal(t, 1, f.tracker.Attempts(appellant.ID))
	assert.Equal(t, []appealRecord{{groupID: -100, approved: false}}, f.audit.records)

	sent := f.platform.sentCopy()
	assert.Len(t, sent, 1)
	assert.Contains(t, sent[0].html, "Appeal Rejected")
	assert.Contains(t, sent[0].html, "fake apology")
}

func TestQuotaExhaustedEscalatesWithoutClassifier(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: true}, 777)
	for i := 0; i < 3; i++ {
		f.tracker.TrackBan(appellant.ID, -100)
		f.engine.SubmitAppeal(context.Background(), appellant, "sorry again")
	}
	assert.Equal(t, 3, f.tracker.Approvals(appellant.ID))
	f.evaluator.calls = 0

	f.tracker.TrackBan(appellant.ID, -100)
	f.engine.SubmitAppeal(context.Background(), appellant, "one more chance")

	assert.Zero(t, f.evaluator.calls, "classifier is not consulted at quota")
	assert.True(t, f.tracker.IsPending(appellant.ID), "ban stays pending until a human decides")

	var adminMsg *sentMessage
	for _, m := range f.platform.sentCopy() {
		if m.chatID == 777 {
			m := m
			adminMsg = &m
		}
	}
	if assert.NotNil(t, adminMsg, "owner receives the escalation") {
		assert.Contains(t, adminMsg.html, "MAX AUTO-APPEAL LIMIT REACHED")
		assert.Contains(t, adminMsg.html, "one more chance")
		if assert.NotNil(t, adminMsg.markup) {
			buttons := adminMsg.markup.InlineKeyboard[0]
			assert.Equal(t, "approve:42", buttons[0].CallbackData)
			assert.Equal(t, "https://t.me/primarychat", buttons[1].URL)
		}
	}
}

func TestEscalationFallsBackToPrimaryGroup(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: true}, 0)
	f.tracker.TrackBan(appellant.ID, -100)
	for i := 0; i < 3; i++ {
		f.tracker.ApproveAuto(appellant.ID)
		f.tracker.TrackBan(appellant.ID, -100)
	}

	f.engine.SubmitAppeal(context.Background(), appellant, "review me")

	found := false
	for _, m := range f.platform.sentCopy() {
		if m.chatID == -100 && strings.Contains(m.html, "MAX AUTO-APPEAL LIMIT REACHED") {
			found = true
		}
	}
	assert.True(t, found, "escalation lands in the primary group when no owner is set")
}

func TestApproveByAdminClearsEverythingEvenOnUnbanFailure(t *testing.T) {
	f := newFixture(ai.AppealDecision{Approve: false}, 777)
	f.platform.unbanErr = errors.New("not enough rights")
	f.tracker.TrackBan(appellant.ID, -100)
	f.tracker.TrackBan(appellant.ID, -200)
	f.tracker.RecordAttempt(appellant.ID)
	f.tracker.ApproveAuto(appellant.ID)
	f.tracker.TrackBan(appellant.ID, -100)

	f.engine.ApproveByAdmin(context.Background(), appellant.ID, 777, 55)

	assert.False(t, f.tracker.IsPending(appellant.ID))
	assert.Zero(t, f.tracker.Attempts(appellant.ID))
	assert.Zero(t, f.tracker.Approvals(appellant.ID), "admin approval resets the quota too")
	assert.Equal(t, []int{55}, f.platform.edited)

	sent := f.platform.sentCopy()
	assert.Len(t, sent, 1)
	assert.Equal(t, appellant.ID, sent[0].chatID)
	assert.Contains(t, sent[0].html, "approved by admin")
}
