package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/edgard/crmbot/internal/database"
	"github.com/edgard/crmbot/internal/datetime"
	"github.com/edgard/crmbot/internal/resilience"
)

const (
	// reminderBatchSize caps how many reminders are loaded at once.
	reminderBatchSize = 100

	// maxReminderBatches caps how many batches one run works through.
	maxReminderBatches = 10

	// maxDeliveryAttempts is how often a reminder is tried before it is
	// marked failed.
	maxDeliveryAttempts = 5

	retryBaseDelay = time.Minute
	maxRetryDelay  = time.Hour
)

// retryDelay doubles the wait after every failed attempt, up to maxRetryDelay.
func retryDelay(attempts int) time.Duration {
	delay := retryBaseDelay
	for range attempts {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// undeliverable reports whether a delivery error will not go away on retry.
// An open circuit is an outage, not a property of the reminder.
func undeliverable(err error) bool {
	return resilience.IsPermanent(err) && !errors.Is(err, resilience.ErrCircuitOpen)
}

type dispatchResult struct {
	sent, retrying, failed int
}

// newReminderDispatchTask creates the task that delivers due reminders and
// marks them sent. The same function backs the cron job and the one-time jobs
// scheduled per reminder, so runs are serialized.
//
// Every reminder a run loads leaves the due set: it is sent, postponed with
// backoff, or marked failed. Reminders that cannot be delivered therefore
// never hold back newer ones. Delivery failures are logged, not returned;
// the run fails only when the store does.
func newReminderDispatchTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", ReminderDispatchTask)
	var mu sync.Mutex

	return func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()

		now := deps.Clock.Now()
		var total dispatchResult

		for range maxReminderBatches {
			due, err := deps.Store.GetDueReminders(ctx, datetime.FormatSystemDateTime(now), reminderBatchSize)
			if err != nil {
				return fmt.Errorf("failed to load due reminders: %w", err)
			}

			for _, r := range due {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				if err := deliverReminder(ctx, deps, now, r, &total); err != nil {
					return err
				}
			}

			if len(due) < reminderBatchSize {
				break
			}
		}

		if total != (dispatchResult{}) {
			log.InfoContext(ctx, "Reminders dispatched", "sent", total.sent, "retrying", total.retrying, "failed", total.failed)
		}
		return nil
	}
}

// deliverReminder sends r and records the outcome. Only store errors are
// returned.
func deliverReminder(ctx context.Context, deps TaskDeps, now time.Time, r database.Reminder, total *dispatchResult) error {
	log := deps.Logger.With("task", ReminderDispatchTask, "reminder_id", r.ID, "chat_id", r.ChatID)
	stamp := datetime.FormatSystemDateTime(now)

	text := fmt.Sprintf(deps.Config.Messages.ReminderDue, r.Text)
	sendErr := deps.Notifier.Notify(ctx, r.ChatID, text)

	var err error
	switch {
	case sendErr == nil:
		err = deps.Store.MarkReminderSent(ctx, r.ID, stamp)
		total.sent++
	case undeliverable(sendErr) || r.Attempts+1 >= maxDeliveryAttempts:
		log.ErrorContext(ctx, "Giving up on reminder", "attempts", r.Attempts+1, "error", sendErr)
		err = deps.Store.MarkReminderFailed(ctx, r.ID, stamp, sendErr.Error())
		total.failed++
	default:
		next := now.Add(retryDelay(r.Attempts))
		log.WarnContext(ctx, "Failed to deliver reminder, will retry", "attempts", r.Attempts+1, "next_attempt_at", next, "error", sendErr)
		err = deps.Store.RecordReminderFailure(ctx, r.ID, datetime.FormatSystemDateTime(next), sendErr.Error())
		total.retrying++
	}

	if errors.Is(err, database.ErrNotFound) {
		log.WarnContext(ctx, "Reminder was already settled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update reminder %d: %w", r.ID, err)
	}
	return nil
}
