package enforcer

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"

	"tg-aimod/internal/logger"
)

// Enforcer wraps the platform moderation calls. Every method returns the
// platform error so call sites can log drift between intended and actual
// state, but enforcement paths treat failures as best-effort and move on.
type Enforcer struct {
	bot *telego.Bot
}

// New creates an Enforcer over the given bot
func New(bot *telego.Bot) *Enforcer {
	return &Enforcer{bot: bot}
}

// BotID returns the bot's own user ID
func (e *Enforcer) BotID() int64 {
	return e.bot.ID()
}

// DeleteMessage removes a message from a chat
func (e *Enforcer) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	err := e.bot.DeleteMessage(ctx, &telego.DeleteMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
	})
	if err != nil {
		logger.Warningf("Error deleting message %d in chat %d: %v", messageID, chatID, err)
	}
	return err
}

// MuteMember revokes the user's send permission until the given time
func (e *Enforcer) MuteMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	falseValue := false

	err := e.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
		Permissions: telego.ChatPermissions{
			CanSendMessages: &falseValue,
		},
		UntilDate: until.Unix(),
	})
	if err != nil {
		logger.Warningf("Error muting user %d in chat %d: %v", userID, chatID, err)
	}
	return err
}

// RestrictAllSend revokes every send permission with no expiry; used for
// the join verification gate
func (e *Enforcer) RestrictAllSend(ctx context.Context, chatID, userID int64) error {
	falseValue := false

	err := e.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
		Permissions: telego.ChatPermissions{
			CanSendMessages:       &falseValue,
			CanSendAudios:         &falseValue,
			CanSendDocuments:      &falseValue,
			CanSendPhotos:         &falseValue,
			CanSendVideos:         &falseValue,
			CanSendVideoNotes:     &falseValue,
			CanSendVoiceNotes:     &falseValue,
			CanSendPolls:          &falseValue,
			CanSendOtherMessages:  &falseValue,
			CanAddWebPagePreviews: &falseValue,
		},
	})
	if err != nil {
		logger.Warningf("Error restricting user %d in chat %d: %v", userID, chatID, err)
	}
	return err
}

// RestoreSendPermissions gives the user back full send permissions
func (e *Enforcer) RestoreSendPermissions(ctx context.Context, chatID, userID int64) error {
	trueValue := true
	falseValue := false

	err := e.bot.RestrictChatMember(ctx, &telego.RestrictChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
		Permissions: telego.ChatPermissions{
			CanSendMessages:       &trueValue,
			CanSendAudios:         &trueValue,
			CanSendDocuments:      &trueValue,
			CanSendPhotos:         &trueValue,
			CanSendVideos:         &trueValue,
			CanSendVideoNotes:     &trueValue,
			CanSendVoiceNotes:     &trueValue,
			CanSendPolls:          &trueValue,
			CanSendOtherMessages:  &trueValue,
			CanAddWebPagePreviews: &trueValue,
			CanChangeInfo:         &falseValue,
			CanInviteUsers:        &trueValue,
			CanPinMessages:        &falseValue,
		},
	})
	if err != nil {
		logger.Warningf("Error restoring permissions for user %d in chat %d: %v", userID, chatID, err)
	}
	return err
}

// BanMember bans the user from the chat
func (e *Enforcer) BanMember(ctx context.Context, chatID, userID int64) error {
	err := e.bot.BanChatMember(ctx, &telego.BanChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil {
		logger.Warningf("Error banning user %d in chat %d: %v", userID, chatID, err)
	}
	return err
}

// UnbanMember lifts a ban so the user can rejoin
func (e *Enforcer) UnbanMember(ctx context.Context, chatID, userID int64) error {
	onlyIfBanned := true
	err := e.bot.UnbanChatMember(ctx, &telego.UnbanChatMemberParams{
		ChatID:       telego.ChatID{ID: chatID},
		UserID:       userID,
		OnlyIfBanned: onlyIfBanned,
	})
	if err != nil {
		logger.Warningf("Error unbanning user %d in chat %d: %v", userID, chatID, err)
	}
	return err
}

// SendHTML sends an HTML formatted message, optionally with an inline
// keyboard, and returns the sent message ID
func (e *Enforcer) SendHTML(ctx context.Context, chatID int64, html string, markup *telego.InlineKeyboardMarkup) (int, error) {
	params := &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      html,
		ParseMode: "HTML",
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := e.bot.SendMessage(ctx, params)
	if err != nil {
		logger.Warningf("Error sending message to chat %d: %v", chatID, err)
		return 0, err
	}
	return msg.MessageID, nil
}

// EditMessageHTML replaces a message's text and drops any inline keyboard
func (e *Enforcer) EditMessageHTML(ctx context.Context, chatID int64, messageID int, html string) error {
	_, err := e.bot.EditMessageText(ctx, &telego.EditMessageTextParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
		Text:      html,
		ParseMode: "HTML",
	})
	if err != nil {
		logger.Warningf("Error editing message %d in chat %d: %v", messageID, chatID, err)
	}
	return err
}

// AnswerCallback acknowledges a callback query
func (e *Enforcer) AnswerCallback(ctx context.Context, callbackID, text string) error {
	err := e.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		logger.Warningf("Error answering callback query: %v", err)
	}
	return err
}

// IsAdmin reports whether the user holds admin or owner privilege in the
// chat. Queried live on every call: the admin bypass is security relevant,
// so correctness must not depend on cache freshness.
func (e *Enforcer) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	member, err := e.bot.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil {
		return false, fmt.Errorf("error getting chat member: %w", err)
	}

	status := member.MemberStatus()
	return status == telego.MemberStatusAdministrator || status == telego.MemberStatusCreator, nil
}

// GetChatInfo looks up a chat's title and public link
func (e *Enforcer) GetChatInfo(ctx context.Context, chatID int64) (title, link string, err error) {
	chatInfo, err := e.bot.GetChat(ctx, &telego.GetChatParams{
		ChatID: telego.ChatID{ID: chatID},
	})
	if err != nil {
		logger.Warningf("Error getting chat info for %d: %v", chatID, err)
		return "", "", err
	}

	if chatInfo.Username != "" {
		link = fmt.Sprintf("https://t.me/%s", chatInfo.Username)
	}
	return chatInfo.Title, link, nil
}
