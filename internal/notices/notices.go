package notices

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-aimod/internal/crash"
	"tg-aimod/internal/logger"
)

// Style selects the HTML framing of a transient notice
type Style string

const (
	StyleNormal  Style = "normal"
	StyleWarning Style = "warning"
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
	StyleError   Style = "error"
	StyleWelcome Style = "welcome"
	StyleGoodbye Style = "goodbye"
	StyleRules   Style = "rules"
)

// Format wraps text in the HTML frame for the given style
func Format(style Style, text string) string {
	switch style {
	case StyleWarning:
		return fmt.Sprintf("⚠️ <b>WARNING</b> ⚠️\n\n<blockquote>%s</blockquote>", text)
	case StyleInfo:
		return fmt.Sprintf("ℹ️ <b>INFORMATION</b>\n\n<i>%s</i>", text)
	case StyleSuccess:
		return fmt.Sprintf("✅ <b>SUCCESS</b>\n\n%s", text)
	case StyleError:
		return fmt.Sprintf("❌ <b>ERROR</b>\n\n<code>%s</code>", text)
	case StyleWelcome:
		return fmt.Sprintf("👋 <b>WELCOME</b>\n\n<blockquote>%s</blockquote>", text)
	case StyleGoodbye:
		return fmt.Sprintf("👋 <b>GOODBYE</b>\n\n<i>%s</i>", text)
	case StyleRules:
		return fmt.Sprintf("📜 <b>RULES</b>\n\n<pre>%s</pre>", text)
	default:
		return text
	}
}

// platform is the slice of the enforcer the notifier needs
type platform interface {
	SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// Store tracks posted notices so leftovers can be cleaned up; the service
// layer backs it with the database when enabled, memory otherwise.
type Store interface {
	AddPendingNotice(chatID int64, messageID int)
	RemovePendingNotice(chatID int64, messageID int)
	ListPendingNotices() []PendingRef
}

// PendingRef identifies one posted notice awaiting deletion
type PendingRef struct {
	ChatID    int64
	MessageID int
}

// Clock schedules deferred work. Tests substitute a fake so they can fire
// scheduled deletions without sleeping.
type Clock interface {
	AfterFunc(d time.Duration, f func())
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Notifier posts transient group notices: send, wait the TTL, delete.
// Post and delete failures are swallowed; enforcement never waits on a
// notice.
type Notifier struct {
	platform platform
	store    Store
	ttl      time.Duration
	clock    Clock
}

// New creates a Notifier with the given TTL
func New(p platform, store Store, ttl time.Duration) *Notifier {
	return &Notifier{
		platform: p,
		store:    store,
		ttl:      ttl,
		clock:    realClock{},
	}
}

// WithClock overrides the scheduling clock; used by tests
func (n *Notifier) WithClock(clock Clock) *Notifier {
	n.clock = clock
	return n
}

// Post sends a styled notice and schedules its deletion after the TTL.
// Fire-and-forget: failures are logged and dropped.
func (n *Notifier) Post(ctx context.Context, chatID int64, text string, style Style) {
	messageID, err := n.platform.SendHTML(ctx, chatID, Format(style, text), nil)
	if err != nil {
		// Retry unformatted in case the HTML was the problem
		messageID, err = n.platform.SendHTML(ctx, chatID, text, nil)
		if err != nil {
			return
		}
	}

	n.store.AddPendingNotice(chatID, messageID)

	n.clock.AfterFunc(n.ttl, func() {
		defer crash.RecoverWithStack("notice-delete")
		n.platform.DeleteMessage(context.Background(), chatID, messageID)
		n.store.RemovePendingNotice(chatID, messageID)
	})
}

// FlushAll deletes every notice still pending; called on shutdown so
// transient messages do not outlive the process.
func (n *Notifier) FlushAll(ctx context.Context) {
	pending := n.store.ListPendingNotices()
	for _, ref := range pending {
		n.platform.DeleteMessage(ctx, ref.ChatID, ref.MessageID)
		n.store.RemovePendingNotice(ref.ChatID, ref.MessageID)
	}
	if len(pending) > 0 {
		logger.Infof("Flushed %d pending transient notices", len(pending))
	}
}
