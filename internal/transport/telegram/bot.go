package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/selfbot/internal/config"
	"github.com/sandevgo/selfbot/internal/service/chat"
	"github.com/sandevgo/selfbot/pkg/conv"
	"github.com/sandevgo/selfbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

type Bot struct {
	bot       *tele.Bot
	cfg       *config.TelegramConfig
	orch      *chat.Orchestrator
	ownerID   string
	ownerName string
}

func NewBot(ctx context.Context, cfg *config.TelegramConfig, orch *chat.Orchestrator, ownerID, ownerName string) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:       b,
		cfg:       cfg,
		orch:      orch,
		ownerID:   ownerID,
		ownerName: ownerName,
	}

	// Use context from signal handler with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: Only allow the owner
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender().ID != cfg.OwnerID {
				return nil // Ignore unauthorized users
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	// Notify user we are working
	_ = c.Notify(tele.Typing)

	stream := b.orch.HandleTurn(ctx, chat.Request{
		Input:     c.Text(),
		OwnerID:   b.ownerID,
		OwnerName: b.ownerName,
		SessionID: sessionID,
	})

	// Telegram has no token streaming, so collect the full reply and send
	// it as one message.
	var sb strings.Builder
	for frag := range stream {
		sb.WriteString(frag.Text)
		if frag.Err != nil {
			logger.Error().Err(frag.Err).Msg("generation failed mid-stream")
		}
	}

	htmlContent := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(sb.String())))
	if htmlContent == "" {
		return nil
	}
	if err := c.Send(htmlContent, tele.ModeHTML); err != nil {
		logger.Error().Err(err).Msg("failed to send telegram message")
		return c.Send(sb.String())
	}
	return nil
}
