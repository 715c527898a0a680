package notices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	scheduled []func()
	delays    []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) {
	c.delays = append(c.delays, d)
	c.scheduled = append(c.scheduled, f)
}

func (c *fakeClock) fire() {
	jobs := c.scheduled
	c.scheduled = nil
	for _, f := range jobs {
		f()
	}
}

type fakePlatform struct {
	sent       []string
	sendErrs   int
	nextID     int
	deleted    []PendingRef
	deleteChat []int64
}

func (p *fakePlatform) SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error) {
	if p.sendErrs > 0 {
		p.sendErrs--
		return 0, errors.New("send failed")
	}
	p.nextID++
	p.sent = append(p.sent, html)
	return p.nextID, nil
}

func (p *fakePlatform) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	p.deleted = append(p.deleted, PendingRef{ChatID: chatID, MessageID: messageID})
	p.deleteChat = append(p.deleteChat, chatID)
	return nil
}

type memStore struct {
	pending []PendingRef
}

func (s *memStore) AddPendingNotice(chatID int64, messageID int) {
	s.pending = append(s.pending, PendingRef{ChatID: chatID, MessageID: messageID})
}

func (s *memStore) RemovePendingNotice(chatID int64, messageID int) {
	for i, ref := range s.pending {
		if ref.ChatID == chatID && ref.MessageID == messageID {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

func (s *memStore) ListPendingNotices() []PendingRef {
	return append([]PendingRef(nil), s.pending...)
}

func newTestNotifier(ttl time.Duration) (*Notifier, *fakePlatform, *memStore, *fakeClock) {
	platform := &fakePlatform{}
	store := &memStore{}
	clock := &fakeClock{}
	return New(platform, store, ttl).WithClock(clock), platform, store, clock
}

func TestPostSchedulesDeletionAfterTTL(t *testing.T) {
	notifier, platform, store, clock := newTestNotifier(180 * time.Second)

	notifier.Post(context.Background(), -100, "behave", StyleWarning)

	assert.Len(t, platform.sent, 1)
	assert.Contains(t, platform.sent[0], "WARNING")
	assert.Contains(t, platform.sent[0], "behave")
	assert.Equal(t, []time.Duration{180 * time.Second}, clock.delays)
	assert.Len(t, store.pending, 1)
	assert.Empty(t, platform.deleted, "nothing deleted before the TTL")

	clock.fire()

	assert.Equal(t, []PendingRef{{ChatID: -100, MessageID: 1}}, platform.deleted)
	assert.Empty(t, store.pending, "pending record cleared after deletion")
}

func TestPostRetriesUnformattedOnSendFailure(t *testing.T) {
	notifier, platform, store, _ := newTestNotifier(time.Minute)
	platform.sendErrs = 1

	notifier.Post(context.Background(), -100, "plain text", StyleError)

	assert.Equal(t, []string{"plain text"}, platform.sent)
	assert.Len(t, store.pending, 1)
}

func TestPostGivesUpAfterSecondFailure(t *testing.T) {
	notifier, platform, store, clock := newTestNotifier(time.Minute)
	platform.sendErrs = 2

	notifier.Post(context.Background(), -100, "text", StyleInfo)

	assert.Empty(t, platform.sent)
	assert.Empty(t, store.pending)
	assert.Empty(t, clock.scheduled, "no deletion scheduled for an unsent notice")
}

func TestFlushAllDeletesEveryPendingNotice(t *testing.T) {
	notifier, platform, store, _ := newTestNotifier(time.Minute)

	notifier.Post(context.Background(), -100, "one", StyleSuccess)
	notifier.Post(context.Background(), -200, "two", StyleGoodbye)

	notifier.FlushAll(context.Background())

	assert.ElementsMatch(t, []int64{-100, -200}, platform.deleteChat)
	assert.Empty(t, store.pending)
}

func TestFormatStyles(t *testing.T) {
	assert.Contains(t, Format(StyleWarning, "x"), "⚠️ <b>WARNING</b> ⚠️")
	assert.Contains(t, Format(StyleSuccess, "x"), "✅ <b>SUCCESS</b>")
	assert.Contains(t, Format(StyleError, "x"), "❌ <b>ERROR</b>")
	assert.Contains(t, Format(StyleGoodbye, "x"), "👋 <b>GOODBYE</b>")
	assert.Contains(t, Format(StyleRules, "x"), "📜 <b>RULES</b>")
	assert.Equal(t, "x", Format(StyleNormal, "x"), "normal style adds no frame")
}
