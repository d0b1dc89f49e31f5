package handlers

import (
	"log/slog"
	"time"

	"github.com/edgard/crmbot/internal/auth"
	"github.com/edgard/crmbot/internal/bot/tasks"
	"github.com/edgard/crmbot/internal/config"
	"github.com/edgard/crmbot/internal/currency"
	"github.com/edgard/crmbot/internal/database"
	"github.com/edgard/crmbot/internal/datetime"
	"github.com/edgard/crmbot/internal/sanitize"
)

// ReminderScheduler schedules one-time delivery of a reminder.
type ReminderScheduler interface {
	ScheduleAt(name string, at time.Time, task tasks.ScheduledTaskFunc) error
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Formatter *datetime.Formatter
	Jitter    *datetime.Jitter
	Rates     *currency.RateService
	Auth      *auth.Authenticator
	Scheduler ReminderScheduler
	Dispatch  tasks.ScheduledTaskFunc
	Sanitizer *sanitize.Policy
}
