package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"tg-aimod/internal/ai"
	"tg-aimod/internal/appeal"
	"tg-aimod/internal/config"
	"tg-aimod/internal/crash"
	"tg-aimod/internal/enforcer"
	"tg-aimod/internal/logger"
	"tg-aimod/internal/moderation"
	"tg-aimod/internal/notices"
	"tg-aimod/internal/service"
	"tg-aimod/internal/verification"
)

var (
	globalConfig *config.Config

	enf           *enforcer.Enforcer
	notifier      *notices.Notifier
	modEngine     *moderation.Engine
	appealTracker *appeal.Tracker
	appealEngine  *appeal.Engine
	verifyTracker *verification.Tracker

	botUsername string
)

func Initialize(cfg *config.Config) {
	globalConfig = cfg
	service.Initialize(cfg)
}

// SetupMessageHandlers wires the engines and registers all update handlers
func SetupMessageHandlers(bh *th.BotHandler, bot *telego.Bot) {
	service.InitRepositories()

	cfg := globalConfig
	ctx := context.Background()

	botUser, err := bot.GetMe(ctx)
	if err != nil {
		logger.Errorf("Error getting bot info: %v", err)
	} else {
		botUsername = botUser.Username
	}

	enf = enforcer.New(bot)
	notifier = notices.New(enf, service.Notices,
		time.Duration(cfg.Moderation.NoticeTTLSeconds)*time.Second)

	classifier := buildClassifier(ctx, cfg)

	appealTracker = appeal.NewTracker()
	verifyTracker = verification.NewTracker()

	modEngine = moderation.NewEngine(
		classifier,
		enf,
		service.Warnings,
		service.Rules,
		service.Logs,
		service.Allowlist,
		appealTracker,
		notifier,
		bot.ID(),
		cfg.Moderation.MaxWarnings,
		time.Duration(cfg.Moderation.MuteDurationMin)*time.Minute,
	)

	appealEngine = appeal.NewEngine(
		classifier,
		enf,
		appealTracker,
		service.Logs,
		notifier,
		cfg.Moderation.AppealQuota,
		cfg.Moderation.OwnerID,
	)

	bh.HandleMessage(func(ctx *th.Context, message telego.Message) error {
		defer crash.RecoverWithStack("message handler")

		if dispatchCommand(ctx, message) {
			return nil
		}

		if len(message.NewChatMembers) > 0 {
			handleNewChatMembers(ctx, message)
			return nil
		}

		if message.LeftChatMember != nil {
			handleLeftChatMember(ctx, message)
			return nil
		}

		return handleIncomingMessage(ctx, message)
	})

	bh.HandleCallbackQuery(func(ctx *th.Context, query telego.CallbackQuery) error {
		defer crash.RecoverWithStack("callback handler")

		return handleCallbackQuery(ctx, query)
	})
}

// Shutdown deletes any notices still pending removal
func Shutdown(ctx context.Context) {
	if notifier != nil {
		notifier.FlushAll(ctx)
	}
}

// buildClassifier creates the Gemini gateway, or the disabled classifier
// when no key is configured so the bot keeps serving without AI verdicts.
func buildClassifier(ctx context.Context, cfg *config.Config) ai.Classifier {
	if cfg.AI.GeminiApiKey == "" {
		logger.Warningf("No Gemini API key configured; messages will not be moderated")
		return ai.Disabled{}
	}

	gateway, err := ai.NewGateway(ctx, cfg.AI.GeminiApiKey, cfg.AI.GeminiModel)
	if err != nil {
		logger.Errorf("Error creating Gemini client: %v", err)
		return ai.Disabled{}
	}
	return gateway
}

// mirrorToLogger forwards an operational event to the configured logger
// chat. Best-effort: failures only hit the local log.
func mirrorToLogger(ctx context.Context, format string, args ...interface{}) {
	if globalConfig == nil || globalConfig.Moderation.LoggerChatID == 0 {
		return
	}
	enf.SendHTML(ctx, globalConfig.Moderation.LoggerChatID, fmt.Sprintf(format, args...), nil)
}
