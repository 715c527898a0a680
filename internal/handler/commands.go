package handler

import (
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-aimod/internal/appeal"
	"tg-aimod/internal/logger"
	"tg-aimod/internal/service"
)

// dispatchCommand routes a slash command and reports whether the message
// was one. Commands are consumed here so they never reach moderation,
// matching the moderation filter which only sees plain messages.
func dispatchCommand(ctx *th.Context, message telego.Message) bool {
	name, args, ok := parseCommand(message.Text)
	if !ok {
		return false
	}

	switch name {
	case "start":
		handleStartCommand(ctx, message, args)
	case "setrule":
		handleSetRuleCommand(ctx, message, args)
	case "rules":
		handleRulesCommand(ctx, message)
	case "status":
		handleStatusCommand(ctx, message)
	case "appeal":
		handleAppealCommand(ctx, message, args)
	case "approve":
		handleApproveCommand(ctx, message)
	case "unapprove":
		handleUnapproveCommand(ctx, message)
	case "unapprove_all":
		handleUnapproveAllCommand(ctx, message)
	case "soon":
		handleComingSoonCommand(ctx, message)
	}

	// Unknown commands are consumed too; they are never moderated.
	return true
}

func handleStartCommand(ctx *th.Context, message telego.Message, args string) {
	user := message.From
	if user == nil {
		return
	}

	service.Groups.UpsertUser(user.ID, displayName(*user))
	mirrorToLogger(ctx.Context(), "🔹 /start used by %s (id=%d) in chat %d (%s)",
		html.EscapeString(user.FirstName), user.ID, message.Chat.ID, message.Chat.Type)

	if message.Chat.Type != "private" {
		service.Groups.UpsertGroup(message.Chat.ID, message.Chat.Title, user.ID)
		enf.SendHTML(ctx.Context(), message.Chat.ID,
			"🤖 <b>AI Moderator Active</b>\n\nUse /setrule to add rules.", nil)
		return
	}

	if strings.HasPrefix(args, "verify_") {
		completeVerification(ctx, user, args)
		return
	}

	enf.SendHTML(ctx.Context(), user.ID,
		"👋 <b>Hello I am AI Admin</b>\n\n<i>Features coming soon...</i>", nil)
}

func handleSetRuleCommand(ctx *th.Context, message telego.Message, args string) {
	if !requireAdmin(ctx, message) {
		return
	}

	if args == "" {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<code>Usage: /setrule &lt;rule&gt;</code>", nil)
		return
	}

	service.Rules.Append(message.Chat.ID, args)

	rules := service.Rules.ListRules(message.Chat.ID)
	enf.SendHTML(ctx.Context(), message.Chat.ID, fmt.Sprintf(
		"✅ <b>RULE ADDED SUCCESSFULLY!</b>\n\n"+
			"<blockquote>%s</blockquote>\n\n"+
			"📋 <b>ALL RULES:</b>\n<pre>%s</pre>",
		html.EscapeString(args), numberedRules(rules)), nil)
}

func handleRulesCommand(ctx *th.Context, message telego.Message) {
	rules := service.Rules.ListRules(message.Chat.ID)
	if len(rules) == 0 {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<i>No rules set for this group.</i>", nil)
		return
	}

	enf.SendHTML(ctx.Context(), message.Chat.ID, fmt.Sprintf(
		"📜 <b>GROUP RULES</b> 📜\n\n<pre>%s</pre>\n\n"+
			"<i>Please follow these rules to avoid moderation actions.</i>",
		numberedRules(rules)), nil)
}

func handleStatusCommand(ctx *th.Context, message telego.Message) {
	if !requireAdmin(ctx, message) {
		return
	}

	warnings := service.Warnings.ListWarnings(message.Chat.ID)
	if len(warnings) == 0 {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<i>No warnings.</i>", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("⚠️ <b>WARNINGS:</b>\n\n")
	for _, w := range warnings {
		fmt.Fprintf(&sb, "<code>User %d</code> → <b>%d warnings</b>\n", w.UserID, w.Count)
	}
	enf.SendHTML(ctx.Context(), message.Chat.ID, sb.String(), nil)
}

func handleAppealCommand(ctx *th.Context, message telego.Message, args string) {
	user := message.From
	if user == nil {
		return
	}

	if message.Chat.Type != "private" {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<code>Send /appeal to me in a DM.</code>", nil)
		return
	}

	appealEngine.SubmitAppeal(ctx.Context(), appeal.UserRef{ID: user.ID, FirstName: user.FirstName}, args)
}

func handleApproveCommand(ctx *th.Context, message telego.Message) {
	if message.Chat.Type == "private" || !requireAdmin(ctx, message) {
		return
	}

	target := replyTarget(message)
	if target == nil {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<code>Reply to a user's message with /approve.</code>", nil)
		return
	}

	service.Allowlist.Approve(message.Chat.ID, target.ID)
	enf.SendHTML(ctx.Context(), message.Chat.ID, fmt.Sprintf(
		"✅ <b>%s is approved.</b>\n\n<i>Their messages skip moderation in this group.</i>",
		html.EscapeString(target.FirstName)), nil)
}

func handleUnapproveCommand(ctx *th.Context, message telego.Message) {
	if message.Chat.Type == "private" || !requireAdmin(ctx, message) {
		return
	}

	target := replyTarget(message)
	if target == nil {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<code>Reply to a user's message with /unapprove.</code>", nil)
		return
	}

	service.Allowlist.Unapprove(message.Chat.ID, target.ID)
	enf.SendHTML(ctx.Context(), message.Chat.ID, fmt.Sprintf(
		"♻️ <b>%s is no longer approved.</b>", html.EscapeString(target.FirstName)), nil)
}

func handleUnapproveAllCommand(ctx *th.Context, message telego.Message) {
	if message.Chat.Type == "private" || !requireAdmin(ctx, message) {
		return
	}

	service.Allowlist.UnapproveAll(message.Chat.ID)
	enf.SendHTML(ctx.Context(), message.Chat.ID, "<i>Approved user list cleared for this group.</i>", nil)
}

func handleComingSoonCommand(ctx *th.Context, message telego.Message) {
	enf.SendHTML(ctx.Context(), message.Chat.ID,
		"🚧 <b>Coming Soon:</b>\n\n"+
			"<blockquote>"+
			"- Advanced analytics dashboard\n"+
			"- Custom punishments per rule\n"+
			"- Flood / spam shield\n"+
			"- Auto backup &amp; restore"+
			"</blockquote>", nil)
}

// requireAdmin checks the sender's live admin status and replies with a
// refusal when it is absent or unknown
func requireAdmin(ctx *th.Context, message telego.Message) bool {
	if message.From == nil {
		return false
	}

	isAdmin, err := enf.IsAdmin(ctx.Context(), message.Chat.ID, message.From.ID)
	if err != nil {
		logger.Warningf("Error checking admin status for user %d in chat %d: %v",
			message.From.ID, message.Chat.ID, err)
	}
	if !isAdmin {
		enf.SendHTML(ctx.Context(), message.Chat.ID, "<code>Admin only.</code>", nil)
		return false
	}
	return true
}

func replyTarget(message telego.Message) *telego.User {
	if message.ReplyToMessage == nil {
		return nil
	}
	return message.ReplyToMessage.From
}
