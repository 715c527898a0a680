package appeal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"

	"tg-aimod/internal/ai"
	"tg-aimod/internal/crash"
	"tg-aimod/internal/logger"
	"tg-aimod/internal/notices"
)

// Platform is the slice of the membership enforcer the appeal engine uses
type Platform interface {
	UnbanMember(ctx context.Context, chatID, userID int64) error
	RestoreSendPermissions(ctx context.Context, chatID, userID int64) error
	SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error)
	EditMessageHTML(ctx context.Context, chatID int64, messageID int, html string) error
	GetChatInfo(ctx context.Context, chatID int64) (title, link string, err error)
}

// AppealEvaluator is the classifier slice the engine needs
type AppealEvaluator interface {
	EvaluateAppeal(ctx context.Context, text string) ai.AppealDecision
}

// AuditLog records appeal decisions
type AuditLog interface {
	AppendAppeal(userID, groupID int64, text string, approved bool)
}

// Broadcaster posts transient group notices
type Broadcaster interface {
	Post(ctx context.Context, chatID int64, text string, style notices.Style)
}

// UserRef identifies the appellant
type UserRef struct {
	ID        int64
	FirstName string
}

// Engine runs the appeal workflow: automatic adjudication while the user
// still has quota, escalation to a human afterwards.
type Engine struct {
	evaluator   AppealEvaluator
	platform    Platform
	tracker     *Tracker
	audit       AuditLog
	broadcaster Broadcaster
	quota       int
	ownerID     int64
}

// NewEngine creates an appeal Engine. ownerID is where escalations go;
// when zero they fall back to the user's primary tracked group.
func NewEngine(evaluator AppealEvaluator, platform Platform, tracker *Tracker, audit AuditLog, broadcaster Broadcaster, quota int, ownerID int64) *Engine {
	return &Engine{
		evaluator:   evaluator,
		platform:    platform,
		tracker:     tracker,
		audit:       audit,
		broadcaster: broadcaster,
		quota:       quota,
		ownerID:     ownerID,
	}
}

// SubmitAppeal processes one /appeal invocation from a private chat
func (e *Engine) SubmitAppeal(ctx context.Context, user UserRef, reasonText string) {
	if !e.tracker.IsPending(user.ID) {
		e.platform.SendHTML(ctx, user.ID, "<i>No active ban/mute appeal found.</i>", nil)
		return
	}

	reasonText = strings.TrimSpace(reasonText)
	if reasonText == "" {
		e.platform.SendHTML(ctx, user.ID, "<code>Usage: /appeal &lt;reason&gt;</code>", nil)
		return
	}

	groupIDs := e.tracker.Groups(user.ID)
	e.tracker.RecordAttempt(user.ID)
	approvedCount := e.tracker.Approvals(user.ID)

	if approvedCount >= e.quota {
		// Quota is spent: the classifier is not consulted again, a human
		// moderator takes over.
		e.escalate(ctx, user, groupIDs, approvedCount, reasonText)
		return
	}

	decision := e.evaluator.EvaluateAppeal(ctx, reasonText)

	for _, gid := range groupIDs {
		e.audit.AppendAppeal(user.ID, gid, reasonText, decision.Approve)
	}

	if !decision.Approve {
		e.platform.SendHTML(ctx, user.ID, fmt.Sprintf(
			"❌ <b>Appeal Rejected</b>\n\n<b>Reason:</b> <code>%s</code>\n\n<i>You may appeal again with more context.</i>",
			decision.Reason), nil)
		return
	}

	for _, gid := range groupIDs {
		e.platform.UnbanMember(ctx, gid, user.ID)
		e.platform.RestoreSendPermissions(ctx, gid, user.ID)
	}

	e.tracker.ApproveAuto(user.ID)

	e.platform.SendHTML(ctx, user.ID,
		"✅ <b>Appeal Approved!</b>\n\nYou have been unbanned/unmuted in all tracked groups.", nil)

	for _, gid := range groupIDs {
		gid := gid
		crash.SafeGoroutine("appeal-broadcast", func() {
			e.broadcaster.Post(context.Background(), gid,
				fmt.Sprintf("🔓 Appeal approved for %s", user.FirstName), notices.StyleSuccess)
		})
	}
}

// escalate routes the appeal to a human admin with an approve button
func (e *Engine) escalate(ctx context.Context, user UserRef, groupIDs []int64, approvedCount int, reasonText string) {
	primaryGID := groupIDs[0]
	primaryName := fmt.Sprintf("%d", primaryGID)
	var joinButton *telego.InlineKeyboardButton

	title, link, err := e.platform.GetChatInfo(ctx, primaryGID)
	if err == nil {
		if title != "" {
			primaryName = title
		}
		if link != "" {
			joinButton = &telego.InlineKeyboardButton{Text: "➡ Join Group", URL: link}
		}
	}

	adminTarget := e.ownerID
	if adminTarget == 0 {
		adminTarget = primaryGID
	}

	adminHTML := fmt.Sprintf(`⚠️ <b>MAX AUTO-APPEAL LIMIT REACHED</b> ⚠️

<b>User:</b> <code>%s</code> (ID: %d)
<b>Primary group:</b> %s (id=%d)
<b>Total AI Approved Appeals:</b> %d

📝 <b>Last Appeal Message:</b>
<blockquote>%s</blockquote>`,
		user.FirstName, user.ID, primaryName, primaryGID, approvedCount, reasonText)

	buttons := []telego.InlineKeyboardButton{
		{Text: "✅ Approve User", CallbackData: fmt.Sprintf("approve:%d", user.ID)},
	}
	if joinButton != nil {
		buttons = append(buttons, *joinButton)
	}
	markup := &telego.InlineKeyboardMarkup{
		InlineKeyboard: [][]telego.InlineKeyboardButton{buttons},
	}

	if _, err := e.platform.SendHTML(ctx, adminTarget, adminHTML, markup); err != nil {
		logger.Warningf("Error escalating appeal for user %d to %d: %v", user.ID, adminTarget, err)
	}

	e.platform.SendHTML(ctx, user.ID,
		"<i>Your appeal has been sent to an admin for manual review.</i> ⏳", nil)
}

// ApproveByAdmin handles the human approval callback: every tracked group
// is unbanned and the user's workflow state is wiped, quota included.
// adminChatID/adminMessageID locate the escalation message to edit.
func (e *Engine) ApproveByAdmin(ctx context.Context, userID int64, adminChatID int64, adminMessageID int) {
	groupIDs := e.tracker.Groups(userID)

	for _, gid := range groupIDs {
		e.platform.UnbanMember(ctx, gid, userID)
		e.platform.RestoreSendPermissions(ctx, gid, userID)
	}

	// Cleared unconditionally, even if some unbans failed: the admin's
	// decision wins and drift is visible in the enforcer logs.
	e.tracker.ClearAll(userID)

	e.platform.SendHTML(ctx, userID,
		"✅ <b>Your appeal was approved by admin.</b>\n\nYou can now rejoin the group(s).", nil)

	if adminMessageID != 0 {
		e.platform.EditMessageHTML(ctx, adminChatID, adminMessageID,
			"✅ <b>User unbanned from all tracked groups.</b>")
	}
}
