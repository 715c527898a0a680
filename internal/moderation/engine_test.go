package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"

	"tg-aimod/internal/ai"
	"tg-aimod/internal/notices"
)

type stubClassifier struct {
	verdict ai.Verdict
	calls   int
}

func (s *stubClassifier) ModerateMessage(ctx context.Context, text string, author ai.AuthorRef, group ai.GroupRef, rulesText string) ai.Verdict {
	s.calls++
	return s.verdict
}

func (s *stubClassifier) EvaluateAppeal(ctx context.Context, text string) ai.AppealDecision {
	return ai.DefaultAppealDecision()
}

type stubPlatform struct {
	deleted    []int
	muted      []int64
	mutedUntil time.Time
	banned     []int64
	sentTo     []int64
	isAdmin    bool
	adminErr   error
}

func (s *stubPlatform) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *stubPlatform) MuteMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	s.muted = append(s.muted, userID)
	s.mutedUntil = until
	return nil
}

func (s *stubPlatform) BanMember(ctx context.Context, chatID, userID int64) error {
	s.banned = append(s.banned, userID)
	return nil
}

func (s *stubPlatform) SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error) {
	s.sentTo = append(s.sentTo, chatID)
	return 1, nil
}

func (s *stubPlatform) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	return s.isAdmin, s.adminErr
}

type stubLedger struct {
	counts map[int64]int
	resets []int64
	incErr error
}

func (s *stubLedger) IncrementWarning(groupID, userID int64) (int, error) {
	if s.incErr != nil {
		return 0, s.incErr
	}
	s.counts[userID]++
	return s.counts[userID], nil
}

func (s *stubLedger) ResetWarnings(groupID, userID int64) {
	s.resets = append(s.resets, userID)
	delete(s.counts, userID)
}

type stubRules struct{ rules []string }

func (s *stubRules) ListRules(groupID int64) []string { return s.rules }

type auditEntry struct {
	action string
	reason string
}

type stubAudit struct{ entries []auditEntry }

func (s *stubAudit) AppendAction(groupID, userID int64, action, reason string) {
	s.entries = append(s.entries, auditEntry{action: action, reason: reason})
}

type stubAllowlist struct{ approved map[int64]bool }

func (s *stubAllowlist) IsApproved(groupID, userID int64) bool { return s.approved[userID] }

type stubBanTracker struct{ tracked []int64 }

func (s *stubBanTracker) TrackBan(userID, groupID int64) {
	s.tracked = append(s.tracked, userID)
}

type postEntry struct {
	chatID int64
	style  notices.Style
}

type stubBroadcaster struct{ posts []postEntry }

func (s *stubBroadcaster) Post(ctx context.Context, chatID int64, text string, style notices.Style) {
	s.posts = append(s.posts, postEntry{chatID: chatID, style: style})
}

type fixture struct {
	engine      *Engine
	classifier  *stubClassifier
	platform    *stubPlatform
	ledger      *stubLedger
	audit       *stubAudit
	banTracker  *stubBanTracker
	broadcaster *stubBroadcaster
}

const testBotID = int64(999)

func newFixture(verdict ai.Verdict) *fixture {
	f := &fixture{
		classifier:  &stubClassifier{verdict: verdict},
		platform:    &stubPlatform{},
		ledger:      &stubLedger{counts: make(map[int64]int)},
		audit:       &stubAudit{},
		banTracker:  &stubBanTracker{},
		broadcaster: &stubBroadcaster{},
	}
	f.engine = NewEngine(
		f.classifier, f.platform, f.ledger, &stubRules{rules: []string{"no spam"}},
		f.audit, &stubAllowlist{approved: map[int64]bool{}}, f.banTracker, f.broadcaster,
		testBotID, 3, 10*time.Minute)
	return f
}

func testMessage() Message {
	return Message{
		GroupID:    -100,
		GroupTitle: "Chat",
		MessageID:  7,
		Text:       "some message",
		Author:     ai.AuthorRef{ID: 42, FirstName: "Mallory"},
	}
}

func TestAllowVerdictHasNoSideEffects(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionAllow, Severity: 1})

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Empty(t, f.platform.deleted)
	assert.Empty(t, f.ledger.counts)
	assert.Empty(t, f.audit.entries)
	assert.Empty(t, f.broadcaster.posts)
}

func TestClassifierFailureDefaultBlocksNothing(t *testing.T) {
	f := newFixture(ai.DefaultVerdict())

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Empty(t, f.platform.deleted, "fail-open verdict must not delete")
	assert.Empty(t, f.ledger.counts, "fail-open verdict must not warn")
}

func TestWarnVerdictIncrementsAndNotifies(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionWarn, Reason: "spam", Severity: 2, ShouldDelete: true})

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, []int{7}, f.platform.deleted)
	assert.Equal(t, 1, f.ledger.counts[42])
	assert.Equal(t, []auditEntry{{action: "warn", reason: "spam"}}, f.audit.entries)
	assert.Equal(t, []postEntry{{chatID: -100, style: notices.StyleWarning}}, f.broadcaster.posts)
	assert.Empty(t, f.platform.banned)
}

func TestWarnVerdictDeletesEvenWithoutShouldDelete(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionWarn, Reason: "spam", Severity: 2})

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, []int{7}, f.platform.deleted)
}

func TestThirdWarningBansRegardlessOfAction(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionWarn, Reason: "spam", Severity: 2})
	f.ledger.counts[42] = 2

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, []int64{42}, f.platform.banned)
	assert.Equal(t, []int64{42}, f.banTracker.tracked)
	assert.Equal(t, []int64{42}, f.ledger.resets, "warning record removed on ban")
	assert.NotContains(t, f.ledger.counts, int64(42))
	assert.Equal(t, []int64{42}, f.platform.sentTo, "banned user gets a DM")
}

func TestExplicitBanVerdictBansImmediately(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionBan, Reason: "hate speech", Severity: 5, ShouldDelete: true})

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, []int64{42}, f.platform.banned)
	assert.Equal(t, []int64{42}, f.banTracker.tracked)
	assert.Equal(t, []auditEntry{{action: "ban", reason: "hate speech"}}, f.audit.entries)
}

func TestMuteVerdictRestrictsAndNotifies(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionMute, Reason: "flood", Severity: 3, ShouldDelete: true})

	before := time.Now().UTC()
	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, []int64{42}, f.platform.muted)
	assert.WithinDuration(t, before.Add(10*time.Minute), f.platform.mutedUntil, 5*time.Second)
	assert.Equal(t, []int64{42}, f.platform.sentTo, "muted user gets a DM")
	assert.Empty(t, f.platform.banned)
}

func TestDeleteVerdictOnlyDeletesAndRecords(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionDelete, Reason: "off-topic media", Severity: 2, ShouldDelete: true})

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, []int{7}, f.platform.deleted)
	assert.Equal(t, 1, f.ledger.counts[42])
	assert.Empty(t, f.broadcaster.posts)
	assert.Empty(t, f.platform.banned)
	assert.Empty(t, f.platform.muted)
}

func TestBotAuthorSkipped(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionBan, Severity: 5})
	msg := testMessage()
	msg.AuthorBot = true

	f.engine.EvaluateAndEnforce(context.Background(), msg)

	assert.Zero(t, f.classifier.calls)
}

func TestOwnMessagesSkipped(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionBan, Severity: 5})
	msg := testMessage()
	msg.Author.ID = testBotID

	f.engine.EvaluateAndEnforce(context.Background(), msg)

	assert.Zero(t, f.classifier.calls)
}

func TestApprovedUserSkipped(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionBan, Severity: 5})
	f.engine.allowlist = &stubAllowlist{approved: map[int64]bool{42: true}}

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Zero(t, f.classifier.calls)
	assert.Empty(t, f.platform.banned)
}

func TestAdminSkipped(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionBan, Severity: 5})
	f.platform.isAdmin = true

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Zero(t, f.classifier.calls)
}

func TestAdminCheckFailureStillModerates(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionWarn, Reason: "spam", Severity: 2})
	f.platform.adminErr = errors.New("api down")

	f.engine.EvaluateAndEnforce(context.Background(), testMessage())

	assert.Equal(t, 1, f.classifier.calls)
	assert.Equal(t, 1, f.ledger.counts[42])
}

func TestEmptyTextSkipped(t *testing.T) {
	f := newFixture(ai.Verdict{Action: ai.ActionBan, Severity: 5})
	msg := testMessage()
	msg.Text = ""

	f.engine.EvaluateAndEnforce(context.Background(), msg)

	assert.Zero(t, f.classifier.calls)
}
