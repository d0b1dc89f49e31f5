package tasks_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/crmbot/internal/bot/tasks"
	"github.com/edgard/crmbot/internal/config"
	"github.com/edgard/crmbot/internal/currency"
	"github.com/edgard/crmbot/internal/database"
	"github.com/edgard/crmbot/internal/logger"
	"github.com/edgard/crmbot/internal/resilience"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu        sync.Mutex
	sent      []sentMessage
	calls     map[int64]int
	failOn    int64
	blockedOn int64
}

func (n *fakeNotifier) Notify(_ context.Context, chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = make(map[int64]int)
	}
	n.calls[chatID]++
	switch chatID {
	case n.failOn:
		return errors.New("chat unreachable")
	case n.blockedOn:
		return resilience.Permanent(errors.New("bot was blocked by the user"))
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fixture struct {
	store    database.Store
	notifier *fakeNotifier
	clock    *clockwork.FakeClock
	tasks    map[string]tasks.ScheduledTaskFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	clock := clockwork.NewFakeClockAt(time.Date(2021, 5, 20, 10, 0, 0, 0, time.UTC))
	store := database.NewStore(db, nil, clock)

	cfg := &config.Config{
		Messages: config.DefaultMessages,
		Currency: config.CurrencyConfig{
			List:    []string{"USD", "EUR"},
			Default: "USD",
			Base:    "USD",
			Rates:   map[string]float64{"EUR": 1.25},
		},
	}

	notifier := &fakeNotifier{}
	deps := tasks.TaskDeps{
		Logger:   logger.Discard(),
		Store:    store,
		Rates:    currency.NewRateService(store, cfg.Currency, nil),
		Notifier: notifier,
		Config:   cfg,
		Clock:    clock,
	}

	return &fixture{store: store, notifier: notifier, clock: clock, tasks: tasks.RegisterAllTasks(deps)}
}

func TestRegisterAllTasks(t *testing.T) {
	f := newFixture(t)
	assert.Len(t, f.tasks, 3)
	for _, name := range []string{tasks.ReminderDispatchTask, tasks.SQLMaintenanceTask, tasks.RatesSnapshotTask} {
		assert.Contains(t, f.tasks, name)
	}
}

func TestReminderDispatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, r := range []*database.Reminder{
		{ChatID: 1, Text: "due", RemindAt: "2021-05-20 09:59:00"},
		{ChatID: 1, Text: "later", RemindAt: "2021-05-20 10:30:00"},
		{ChatID: 2, Text: "unreachable", RemindAt: "2021-05-20 09:00:00"},
	} {
		require.NoError(t, f.store.SaveReminder(ctx, r))
	}
	f.notifier.failOn = 2

	dispatch := f.tasks[tasks.ReminderDispatchTask]
	require.NoError(t, dispatch(ctx))
	assert.Equal(t, []sentMessage{{chatID: 1, text: "Reminder: due"}}, f.notifier.sent)

	require.NoError(t, dispatch(ctx), "delivered reminders are not sent twice")
	assert.Len(t, f.notifier.sent, 1)

	f.clock.Advance(time.Hour)
	f.notifier.failOn = 0
	require.NoError(t, dispatch(ctx))
	assert.Equal(t, []sentMessage{
		{chatID: 1, text: "Reminder: due"},
		{chatID: 2, text: "Reminder: unreachable"},
		{chatID: 1, text: "Reminder: later"},
	}, f.notifier.sent)

	pending, err := f.store.GetPendingReminders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReminderDispatch_Retries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.SaveReminder(ctx, &database.Reminder{ChatID: 2, Text: "x", RemindAt: "2021-05-20 09:00:00"}))
	f.notifier.failOn = 2
	dispatch := f.tasks[tasks.ReminderDispatchTask]

	require.NoError(t, dispatch(ctx), "delivery failures do not fail the run")
	pending, err := f.store.GetPendingReminders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "2021-05-20 10:01:00", pending[0].NextAttemptAt.String)

	require.NoError(t, dispatch(ctx))
	assert.Equal(t, 1, f.notifier.calls[2], "not retried before the backoff elapses")

	for range 4 {
		f.clock.Advance(2 * time.Hour)
		require.NoError(t, dispatch(ctx))
	}
	assert.Equal(t, 5, f.notifier.calls[2])

	pending, err = f.store.GetPendingReminders(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, pending, "given up after the last attempt")

	f.clock.Advance(2 * time.Hour)
	require.NoError(t, dispatch(ctx))
	assert.Equal(t, 5, f.notifier.calls[2])
}

func TestReminderDispatch_PermanentFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.SaveReminder(ctx, &database.Reminder{ChatID: 3, Text: "x", RemindAt: "2021-05-20 09:00:00"}))
	f.notifier.blockedOn = 3
	dispatch := f.tasks[tasks.ReminderDispatchTask]

	require.NoError(t, dispatch(ctx))
	pending, err := f.store.GetPendingReminders(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, pending)

	f.clock.Advance(2 * time.Hour)
	require.NoError(t, dispatch(ctx))
	assert.Equal(t, 1, f.notifier.calls[3])
}

func TestReminderDispatch_FailuresDoNotStarveQueue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := range 100 {
		r := &database.Reminder{ChatID: 2, Text: "unreachable", RemindAt: fmt.Sprintf("2021-05-20 09:%02d:00", i%60)}
		require.NoError(t, f.store.SaveReminder(ctx, r))
	}
	for i := range 20 {
		r := &database.Reminder{ChatID: 3, Text: "blocked", RemindAt: fmt.Sprintf("2021-05-20 08:%02d:00", i)}
		require.NoError(t, f.store.SaveReminder(ctx, r))
	}
	require.NoError(t, f.store.SaveReminder(ctx, &database.Reminder{ChatID: 1, Text: "deliverable", RemindAt: "2021-05-20 09:59:30"}))
	f.notifier.failOn = 2
	f.notifier.blockedOn = 3

	require.NoError(t, f.tasks[tasks.ReminderDispatchTask](ctx))
	assert.Equal(t, []sentMessage{{chatID: 1, text: "Reminder: deliverable"}}, f.notifier.sent)
	assert.Equal(t, 100, f.notifier.calls[2])
	assert.Equal(t, 20, f.notifier.calls[3])

	pending, err := f.store.GetPendingReminders(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, pending, 100)
}

func TestSQLMaintenance(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.tasks[tasks.SQLMaintenanceTask](context.Background()))
}

func TestRatesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.tasks[tasks.RatesSnapshotTask](ctx))

	rates, err := f.store.GetCurrencyRates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []database.CurrencyRate{{Code: "EUR", Rate: "1.25", UpdatedAt: "2021-05-20 10:00:00"}}, rates)
}
