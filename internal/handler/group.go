package handler

import (
	"fmt"
	"html"
	"math/rand"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-aimod/internal/notices"
	"tg-aimod/internal/service"
	"tg-aimod/internal/verification"
)

// handleNewChatMembers gates every joining human behind verification:
// all send permissions are revoked until the member opens the bot's
// verify deep link in a private chat.
func handleNewChatMembers(ctx *th.Context, message telego.Message) {
	chat := message.Chat

	for _, member := range message.NewChatMembers {
		if member.ID == enf.BotID() {
			service.Groups.UpsertGroup(chat.ID, chat.Title, 0)
			mirrorToLogger(ctx.Context(), "✅ Bot added to group: %s (id=%d)",
				html.EscapeString(chat.Title), chat.ID)
			continue
		}
		if member.IsBot {
			continue
		}

		service.Groups.UpsertUser(member.ID, displayName(member))

		enf.RestrictAllSend(ctx.Context(), chat.ID, member.ID)

		verifyLink := fmt.Sprintf("https://t.me/%s?start=%s",
			botUsername, verification.BuildToken(chat.ID))

		markup := &telego.InlineKeyboardMarkup{
			InlineKeyboard: [][]telego.InlineKeyboardButton{{
				{Text: "✅ VERIFY NOW", URL: verifyLink},
			}},
		}

		promptID, err := enf.SendHTML(ctx.Context(), chat.ID, fmt.Sprintf(
			"👋 <b>WELCOME %s!</b> 👋\n\n"+
				"<blockquote>Please verify yourself to start chatting in this group.</blockquote>\n\n"+
				"👉 <a href=\"%s\">CLICK TO VERIFY</a> 👈",
			html.EscapeString(strings.ToUpper(member.FirstName)), verifyLink), markup)
		if err != nil {
			continue
		}

		verifyTracker.Record(chat.ID, member.ID, promptID)
	}
}

// completeVerification finishes the join gate from a /start deep link.
// The permission restore is the one enforcement call whose failure is
// shown to the user, since without it they stay muted with no recourse.
func completeVerification(ctx *th.Context, user *telego.User, token string) {
	groupID, err := verification.ParseToken(token)
	if err != nil {
		enf.SendHTML(ctx.Context(), user.ID, "<code>Invalid verify link.</code>", nil)
		return
	}

	if err := enf.RestoreSendPermissions(ctx.Context(), groupID, user.ID); err != nil {
		enf.SendHTML(ctx.Context(), user.ID, fmt.Sprintf(
			"⚠️ <b>Unmute failed</b>\n\n<code>Reason: %s</code>\n\n"+
				"Make sure bot has 'Restrict Members' permission.",
			html.EscapeString(err.Error())), nil)
		return
	}

	if promptID, ok := verifyTracker.Complete(groupID, user.ID); ok {
		enf.DeleteMessage(ctx.Context(), groupID, promptID)
	}

	enf.SendHTML(ctx.Context(), user.ID,
		"✅ <b>Successfully verified!</b>\n\nYou can now chat freely in the group.", nil)
	enf.SendHTML(ctx.Context(), groupID, fmt.Sprintf(
		"✨ <b>%s is verified and unmuted! 🍷</b>",
		html.EscapeString(user.FirstName)), nil)
}

func handleLeftChatMember(ctx *th.Context, message telego.Message) {
	left := message.LeftChatMember

	if left.ID == enf.BotID() {
		mirrorToLogger(ctx.Context(), "❌ Bot removed from group: %s (id=%d)",
			html.EscapeString(message.Chat.Title), message.Chat.ID)
		return
	}
	if left.IsBot {
		return
	}

	name := html.EscapeString(left.FirstName)
	goodbyes := []string{
		fmt.Sprintf("👋 <b>GOODBYE %s!</b>\n\n<i>We'll miss you in this group!</i>", name),
		fmt.Sprintf("🚪 <b>%s has left</b>\n\n<i>Farewell, friend!</i>", name),
		fmt.Sprintf("😢 <b>%s exited</b>\n\n<i>Hope to see you again soon!</i>", name),
	}

	notifier.Post(ctx.Context(), message.Chat.ID, goodbyes[rand.Intn(len(goodbyes))], notices.StyleGoodbye)
}
