// Package tasks implements the scheduled jobs of the CRM bot: reminder
// delivery, database maintenance and currency rate snapshots.
package tasks

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/crmbot/internal/config"
	"github.com/edgard/crmbot/internal/currency"
	"github.com/edgard/crmbot/internal/database"
)

// Notifier delivers a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Rates    *currency.RateService
	Notifier Notifier
	Config   *config.Config
	Clock    clockwork.Clock
}
