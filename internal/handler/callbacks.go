package handler

import (
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-aimod/internal/logger"
)

// handleCallbackQuery dispatches inline keyboard callbacks by data prefix
func handleCallbackQuery(ctx *th.Context, query telego.CallbackQuery) error {
	if strings.HasPrefix(query.Data, "approve:") {
		return handleApproveCallback(ctx, query)
	}

	return enf.AnswerCallback(ctx.Context(), query.ID, "")
}

// handleApproveCallback is the admin approval button on an escalated
// appeal. The button only ever reaches the owner's private chat or the
// group's admins, so possession of the message is the authorization.
func handleApproveCallback(ctx *th.Context, query telego.CallbackQuery) error {
	enf.AnswerCallback(ctx.Context(), query.ID, "")

	userID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, "approve:"), 10, 64)
	if err != nil {
		logger.Warningf("Invalid approve callback data %q: %v", query.Data, err)
		return nil
	}

	var chatID int64
	var messageID int
	if message, ok := query.Message.(*telego.Message); ok {
		chatID = message.Chat.ID
		messageID = message.MessageID
	}

	appealEngine.ApproveByAdmin(ctx.Context(), userID, chatID, messageID)
	return nil
}
