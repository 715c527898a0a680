package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-aimod/internal/ai"
	"tg-aimod/internal/logger"
	"tg-aimod/internal/notices"
)

// Platform is the slice of the membership enforcer the engine uses.
// All calls are best-effort: a platform failure never aborts the engine's
// own state mutations.
type Platform interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	MuteMember(ctx context.Context, chatID, userID int64, until time.Time) error
	BanMember(ctx context.Context, chatID, userID int64) error
	SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error)
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// WarningLedger is the persisted per (group, user) violation counter
type WarningLedger interface {
	IncrementWarning(groupID, userID int64) (int, error)
	ResetWarnings(groupID, userID int64)
}

// RuleSource provides the group's rules as classifier context
type RuleSource interface {
	ListRules(groupID int64) []string
}

// AuditLog records enforcement decisions
type AuditLog interface {
	AppendAction(groupID, userID int64, action, reason string)
}

// Allowlist reports users exempt from moderation in a group
type Allowlist interface {
	IsApproved(groupID, userID int64) bool
}

// BanTracker registers bans with the appeal workflow
type BanTracker interface {
	TrackBan(userID, groupID int64)
}

// Broadcaster posts transient group notices
type Broadcaster interface {
	Post(ctx context.Context, chatID int64, text string, style notices.Style)
}

// Message is one inbound group message to evaluate
type Message struct {
	GroupID    int64
	GroupTitle string
	MessageID  int
	Text       string
	Author     ai.AuthorRef
	AuthorBot  bool
}

// Engine is the moderation pipeline: classify a message, escalate warnings
// into mutes and bans, and keep the ledger and appeal tracker consistent.
type Engine struct {
	classifier  ai.Classifier
	platform    Platform
	ledger      WarningLedger
	rules       RuleSource
	audit       AuditLog
	allowlist   Allowlist
	banTracker  BanTracker
	broadcaster Broadcaster

	botID        int64
	maxWarnings  int
	muteDuration time.Duration
}

// NewEngine wires up a moderation Engine
func NewEngine(
	classifier ai.Classifier,
	platform Platform,
	ledger WarningLedger,
	rules RuleSource,
	audit AuditLog,
	allowlist Allowlist,
	banTracker BanTracker,
	broadcaster Broadcaster,
	botID int64,
	maxWarnings int,
	muteDuration time.Duration,
) *Engine {
	return &Engine{
		classifier:   classifier,
		platform:     platform,
		ledger:       ledger,
		rules:        rules,
		audit:        audit,
		allowlist:    allowlist,
		banTracker:   banTracker,
		broadcaster:  broadcaster,
		botID:        botID,
		maxWarnings:  maxWarnings,
		muteDuration: muteDuration,
	}
}

// EvaluateAndEnforce runs the full pipeline for one inbound message
func (e *Engine) EvaluateAndEnforce(ctx context.Context, msg Message) {
	if msg.AuthorBot || msg.Author.ID == e.botID {
		return
	}

	if e.allowlist.IsApproved(msg.GroupID, msg.Author.ID) {
		return
	}

	// Live role query on every message: the admin bypass must not depend
	// on stale cached roles. A failed lookup moderates rather than skips.
	isAdmin, err := e.platform.IsAdmin(ctx, msg.GroupID, msg.Author.ID)
	if err != nil {
		logger.Warningf("Admin check failed for user %d in group %d, moderating anyway: %v",
			msg.Author.ID, msg.GroupID, err)
	}
	if isAdmin {
		return
	}

	if msg.Text == "" {
		return
	}

	rulesText := joinRules(e.rules.ListRules(msg.GroupID))
	verdict := e.classifier.ModerateMessage(ctx, msg.Text,
		msg.Author, ai.GroupRef{ID: msg.GroupID, Title: msg.GroupTitle}, rulesText)

	if verdict.ShouldDelete || verdict.Action != ai.ActionAllow {
		e.platform.DeleteMessage(ctx, msg.GroupID, msg.MessageID)
	}

	if verdict.Action == ai.ActionAllow {
		return
	}

	warns, err := e.ledger.IncrementWarning(msg.GroupID, msg.Author.ID)
	if err != nil {
		logger.Errorf("Warning increment failed for user %d in group %d: %v",
			msg.Author.ID, msg.GroupID, err)
	}
	e.audit.AppendAction(msg.GroupID, msg.Author.ID, verdict.Action, verdict.Reason)

	response := fmt.Sprintf("<b>User:</b> %s\n<b>Reason:</b> <code>%s</code>\n<b>Warnings:</b> %d/%d",
		msg.Author.FirstName, verdict.Reason, warns, e.maxWarnings)

	// Explicit ban and threshold-reached are the same branch: a warn or
	// mute verdict that pushes the counter to the limit still bans.
	if verdict.Action == ai.ActionBan || warns >= e.maxWarnings {
		e.ban(ctx, msg, verdict.Reason, response)
		return
	}

	switch verdict.Action {
	case ai.ActionWarn:
		e.warn(ctx, msg, response)
	case ai.ActionMute:
		e.mute(ctx, msg, verdict.Reason, response)
	case ai.ActionDelete:
		// Deletion already happened; the warning increment and audit
		// record are the whole consequence.
	}
}

func (e *Engine) warn(ctx context.Context, msg Message, response string) {
	e.broadcaster.Post(ctx, msg.GroupID, fmt.Sprintf(
		"🚨 <b>RULE VIOLATION DETECTED</b> 🚨\n\n%s\n\n<blockquote>⚠️ Please follow group rules!</blockquote>",
		response), notices.StyleWarning)
}

func (e *Engine) mute(ctx context.Context, msg Message, reason, response string) {
	until := time.Now().UTC().Add(e.muteDuration)
	e.platform.MuteMember(ctx, msg.GroupID, msg.Author.ID, until)

	minutes := int(e.muteDuration.Minutes())
	e.broadcaster.Post(ctx, msg.GroupID, fmt.Sprintf(
		"🔇 <b>USER MUTED</b> 🔇\n\n%s\n\n<b>Duration:</b> %d minutes",
		response, minutes), notices.StyleError)

	e.platform.SendHTML(ctx, msg.Author.ID, fmt.Sprintf(
		"🔇 <b>You were muted in '%s'</b>\n\n"+
			"<b>Duration:</b> %d minutes\n"+
			"<b>Reason:</b> <code>%s</code>\n\n"+
			"<i>If you believe this was a mistake, send /appeal &lt;reason&gt;.</i>",
		msg.GroupTitle, minutes, reason), nil)
}

func (e *Engine) ban(ctx context.Context, msg Message, reason, response string) {
	e.platform.BanMember(ctx, msg.GroupID, msg.Author.ID)

	e.banTracker.TrackBan(msg.Author.ID, msg.GroupID)

	e.broadcaster.Post(ctx, msg.GroupID, fmt.Sprintf(
		"⛔ <b>USER BANNED</b> ⛔\n\n%s\n\n<blockquote>User has been banned permanently.</blockquote>",
		response), notices.StyleError)

	e.platform.SendHTML(ctx, msg.Author.ID, fmt.Sprintf(
		"⛔ <b>You were banned from '%s'</b>\n\n"+
			"<b>Reason:</b> <code>%s</code>\n\n"+
			"<i>If you believe this was a mistake, send /appeal &lt;reason&gt;.</i>",
		msg.GroupTitle, reason), nil)

	// The record is removed outright, not zeroed, so a future unban
	// starts the user with a clean slate.
	e.ledger.ResetWarnings(msg.GroupID, msg.Author.ID)
}

func joinRules(rules []string) string {
	text := ""
	for i, rule := range rules {
		if i > 0 {
			text += "\n"
		}
		text += rule
	}
	return text
}
