package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mzhaase/babelgif/internal/observe"
)

// pollTimeout is the long-poll timeout in seconds for getUpdates.
const pollTimeout = 30

// Bot wraps the Telegram Bot API client with the inline-query [Handler]. It
// owns the update loop; everything downstream of an update goes through the
// handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

// NewBot authenticates against the Bot API with token and wires the handler
// factory with the bot itself as the [Answerer].
func NewBot(token string, newHandler func(Answerer) *Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: authenticate: %w", err)
	}
	b := &Bot{api: api}
	b.handler = newHandler(b)
	return b, nil
}

// Username returns the authenticated bot account name.
func (b *Bot) Username() string { return b.api.Self.UserName }

// Answer sends one inline query response. Implements [Answerer].
func (b *Bot) Answer(queryID string, results []interface{}, cacheTime int) error {
	_, err := b.api.Request(tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     cacheTime,
		IsPersonal:    true,
	})
	return err
}

// Run polls for updates until ctx is cancelled. Any webhook left over from a
// previous deployment is removed first, as webhooks and polling are mutually
// exclusive.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("telegram: delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(u)

	observe.Logger(ctx).Info("polling for inline queries", "bot", b.Username())

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			q := update.InlineQuery
			if q == nil || q.From == nil {
				continue
			}
			b.handler.HandleInlineQuery(ctx, q.ID, q.From.ID, q.Query)
		}
	}
}
