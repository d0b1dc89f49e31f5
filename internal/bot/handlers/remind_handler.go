package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/crmbot/internal/database"
	"github.com/edgard/crmbot/internal/datetime"
)

// NewRemindHandler returns a handler for /remind <text>. The reminder time is
// drawn at random from the configured reminder window.
func NewRemindHandler(deps HandlerDeps) bot.HandlerFunc {
	return remindHandler{deps: deps, exact: false}.Handle
}

// NewRemindAtHandler returns a handler for /remind_at <date time> | <text>,
// where the date is written in the configured display pattern and zone.
func NewRemindAtHandler(deps HandlerDeps) bot.HandlerFunc {
	return remindHandler{deps: deps, exact: true}.Handle
}

// remindHandler stores a reminder and schedules its delivery.
type remindHandler struct {
	deps  HandlerDeps
	exact bool
}

// splitRemindAt splits "<when> | <text>" into its parts.
func splitRemindAt(args string) (when, text string, ok bool) {
	when, text, found := strings.Cut(args, "|")
	when, text = strings.TrimSpace(when), strings.TrimSpace(text)
	if !found || when == "" || text == "" {
		return "", "", false
	}
	return when, text, true
}

// plain strips markup from reminder text when a sanitizer is configured.
func (h remindHandler) plain(text string) string {
	if h.deps.Sanitizer == nil {
		return text
	}
	return h.deps.Sanitizer.Text(text)
}

// remindAt works out the delivery instant for args and returns the reminder
// text. A non-empty reply means the request was rejected.
func (h remindHandler) remindAt(args string) (at time.Time, text, reply string, err error) {
	msgs := h.deps.Config.Messages

	if !h.exact {
		args = h.plain(args)
		if args == "" {
			return time.Time{}, "", msgs.ProvideText, nil
		}
		rc := h.deps.Config.Reminders
		at, err = h.deps.Jitter.RandomDateTime(rc.TimeZone, rc.MinHour, rc.MaxHour, rc.DayOffset)
		return at, args, "", err
	}

	when, text, ok := splitRemindAt(args)
	if text = h.plain(text); !ok || text == "" {
		return time.Time{}, "", fmt.Sprintf(msgs.RemindAtUsage, h.deps.Formatter.NowString()), nil
	}

	canonical, err := h.deps.Formatter.ConvertDateTimeToSystem(when)
	if err != nil {
		if errors.Is(err, datetime.ErrFormat) {
			return time.Time{}, "", fmt.Sprintf(msgs.InvalidDateTime, h.deps.Formatter.DateTimeFormat()), nil
		}
		return time.Time{}, "", "", err
	}

	at, err = datetime.ParseSystemDateTime(canonical, time.UTC)
	return at, text, "", err
}

// reply creates the reminder for msg and returns the text to send back.
func (h remindHandler) reply(ctx context.Context, log *slog.Logger, msg *models.Message) string {
	msgs := h.deps.Config.Messages

	at, text, reply, err := h.remindAt(commandArgs(msg.Text))
	if err != nil {
		log.ErrorContext(ctx, "Failed to work out reminder time", "error", err)
		return msgs.GeneralError
	}
	if reply != "" {
		return reply
	}

	reminder := &database.Reminder{
		ChatID:   msg.Chat.ID,
		Text:     text,
		RemindAt: datetime.FormatSystemDateTime(at),
	}
	if err := h.deps.Store.SaveReminder(ctx, reminder); err != nil {
		log.ErrorContext(ctx, "Failed to save reminder", "error", err, "chat_id", msg.Chat.ID)
		return msgs.GeneralError
	}

	if h.deps.Scheduler != nil && h.deps.Dispatch != nil {
		name := fmt.Sprintf("reminder_%d", reminder.ID)
		if err := h.deps.Scheduler.ScheduleAt(name, at, h.deps.Dispatch); err != nil {
			log.WarnContext(ctx, "Failed to schedule reminder, relying on periodic dispatch", "error", err, "reminder_id", reminder.ID)
		}
	}

	log.InfoContext(ctx, "Reminder created", "reminder_id", reminder.ID, "chat_id", msg.Chat.ID, "remind_at", reminder.RemindAt)
	return fmt.Sprintf(msgs.ReminderSet, h.deps.Formatter.FormatTime(at))
}

func (h remindHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	name := "remind"
	if h.exact {
		name = "remind_at"
	}
	log := h.deps.Logger.With("handler", name)
	if !validMessage(ctx, log, update) {
		return
	}
	sendReply(ctx, b, log, update.Message.Chat.ID, h.reply(ctx, log, update.Message))
}

// NewRemindersHandler returns a handler for /reminders, listing the chat's
// pending reminders in the display locale.
func NewRemindersHandler(deps HandlerDeps) bot.HandlerFunc {
	return remindersHandler{deps}.Handle
}

type remindersHandler struct {
	deps HandlerDeps
}

func (h remindersHandler) reply(ctx context.Context, log *slog.Logger, chatID int64) string {
	pending, err := h.deps.Store.GetPendingReminders(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load pending reminders", "error", err, "chat_id", chatID)
		return h.deps.Config.Messages.GeneralError
	}
	if len(pending) == 0 {
		return h.deps.Config.Messages.NoReminders
	}

	lines := make([]string, 0, len(pending))
	for _, r := range pending {
		when, err := h.deps.Formatter.ConvertSystemDateTime(r.RemindAt)
		if err != nil {
			log.WarnContext(ctx, "Stored reminder has malformed time", "reminder_id", r.ID, "remind_at", r.RemindAt)
			when = r.RemindAt
		}
		lines = append(lines, when+" - "+r.Text)
	}
	return strings.Join(lines, "\n")
}

func (h remindersHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reminders")
	if !validMessage(ctx, log, update) {
		return
	}
	sendReply(ctx, b, log, update.Message.Chat.ID, h.reply(ctx, log, update.Message.Chat.ID))
}
