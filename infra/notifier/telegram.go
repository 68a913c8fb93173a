// Package notifier forwards workflow events to a Telegram chat.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/pkg/domain/events"
	"github.com/amirasaad/axeria/pkg/eventbus"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultQueueSize = 64

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram queues messages and sends them from a single worker, so the
// emitting request never waits on the Telegram API.
type Telegram struct {
	sender Sender
	chatID int64
	logger *slog.Logger

	queue  chan tgbotapi.MessageConfig
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewTelegram authorizes the bot. It returns nil without error when no
// token is configured, which disables notifications.
func NewTelegram(cfg *config.Telegram, logger *slog.Logger) (*Telegram, error) {
	if cfg == nil || cfg.Token == "" {
		logger.Info("Telegram notifications disabled")
		return nil, nil
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	logger.Info("✅ Telegram bot authorized", "username", bot.Self.UserName)
	return NewTelegramWithSender(bot, cfg.ChatID, cfg.QueueSize, logger), nil
}

// NewTelegramWithSender starts the delivery worker. Close stops it.
func NewTelegramWithSender(sender Sender, chatID int64, queueSize int, logger *slog.Logger) *Telegram {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	t := &Telegram{
		sender: sender,
		chatID: chatID,
		logger: logger.With("component", "telegram"),
		queue:  make(chan tgbotapi.MessageConfig, queueSize),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

// Subscribe registers the notifier for every known event type.
func (t *Telegram) Subscribe(bus eventbus.Bus) {
	for eventType := range events.EventTypes {
		bus.Register(eventType, t.Handle)
	}
}

// Handle queues the event's summary and returns at once. A full queue
// drops the message; notifications never fail the bus.
func (t *Telegram) Handle(_ context.Context, evt events.Event) error {
	n, ok := evt.(events.Notifiable)
	if !ok {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, n.Message())

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.logger.Warn("Telegram notifier closed, dropping message", "type", evt.Type())
		return nil
	}
	select {
	case t.queue <- msg:
	default:
		t.logger.Warn("Telegram queue full, dropping message", "type", evt.Type())
	}
	return nil
}

func (t *Telegram) run() {
	defer t.wg.Done()
	for msg := range t.queue {
		if _, err := t.sender.Send(msg); err != nil {
			t.logger.Warn("Telegram send failed", "error", err)
			continue
		}
		t.logger.Debug("Telegram message sent")
	}
}

// Close stops accepting messages and waits for the queued ones to be
// sent or to fail.
func (t *Telegram) Close() error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	t.wg.Wait()
	return nil
}
