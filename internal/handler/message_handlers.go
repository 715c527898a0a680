package handler

import (
	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-aimod/internal/ai"
	"tg-aimod/internal/moderation"
)

// handleIncomingMessage feeds a group message through the moderation
// pipeline. Private chats carry no group context and are left alone.
func handleIncomingMessage(ctx *th.Context, message telego.Message) error {
	if message.Chat.Type == "private" {
		return nil
	}
	if message.From == nil {
		return nil
	}

	text := message.Text
	if text == "" {
		text = message.Caption
	}

	modEngine.EvaluateAndEnforce(ctx.Context(), moderation.Message{
		GroupID:    message.Chat.ID,
		GroupTitle: message.Chat.Title,
		MessageID:  message.MessageID,
		Text:       text,
		Author: ai.AuthorRef{
			ID:        message.From.ID,
			Username:  message.From.Username,
			FirstName: message.From.FirstName,
		},
		AuthorBot: message.From.IsBot,
	})
	return nil
}
