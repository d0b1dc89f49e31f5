package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"

	"github.com/edgard/crmbot/internal/resilience"
)

// SendFunc sends text to a chat. (*bot.Bot).SendMessage is adapted to it by
// NewNotifier.
type SendFunc func(ctx context.Context, chatID int64, text string) error

// Notifier delivers plain text messages with retries and a circuit breaker,
// so an unreachable Telegram API does not stall reminder dispatch.
type Notifier struct {
	send    SendFunc
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	logger  *slog.Logger
}

// NewNotifier creates a Notifier sending through b.
func NewNotifier(b *bot.Bot, logger *slog.Logger) *Notifier {
	return NewNotifierFunc(func(ctx context.Context, chatID int64, text string) error {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
		return err
	}, resilience.DefaultRetryConfig(), logger)
}

// NewNotifierFunc creates a Notifier around an arbitrary send function.
func NewNotifierFunc(send SendFunc, retry resilience.RetryConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		send: send,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:        "telegram_send",
			MaxFailures: 5,
			Timeout:     10 * time.Second,
			Logger:      logger,
		}),
		retry:  retry,
		logger: logger.With("component", "notifier"),
	}
}

// classify marks errors that retrying cannot fix as permanent and carries
// Telegram's flood-control delay.
func classify(err error) error {
	var flood *bot.TooManyRequestsError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &flood):
		return &resilience.RetryAfterError{Err: err, Delay: time.Duration(flood.RetryAfter) * time.Second}
	case errors.Is(err, bot.ErrorForbidden), errors.Is(err, bot.ErrorBadRequest),
		errors.Is(err, bot.ErrorUnauthorized), errors.Is(err, bot.ErrorNotFound):
		return resilience.Permanent(err)
	default:
		return err
	}
}

// Notify sends text to chatID.
func (n *Notifier) Notify(ctx context.Context, chatID int64, text string) error {
	err := resilience.WithRetry(ctx, n.retry, func(ctx context.Context) error {
		return n.breaker.Execute(ctx, func(ctx context.Context) error {
			return classify(n.send(ctx, chatID, text))
		})
	})
	if err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	n.logger.DebugContext(ctx, "Notification sent", "chat_id", chatID)
	return nil
}
