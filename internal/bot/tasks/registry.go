package tasks

import (
	"context"

	"github.com/jonboulle/clockwork"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context is
// cancelled when the scheduler stops.
type ScheduledTaskFunc func(ctx context.Context) error

// Task names, matching the keys of the scheduler.tasks config section.
const (
	ReminderDispatchTask = "reminder_dispatch"
	SQLMaintenanceTask   = "sql_maintenance"
	RatesSnapshotTask    = "rates_snapshot"
)

// RegisterAllTasks builds every task and returns them keyed by name.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	tasks := map[string]ScheduledTaskFunc{
		ReminderDispatchTask: newReminderDispatchTask(deps),
		SQLMaintenanceTask:   newSQLMaintenanceTask(deps),
		RatesSnapshotTask:    newRatesSnapshotTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
