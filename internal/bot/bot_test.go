package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/edgard/crmbot/internal/bot"
	"github.com/edgard/crmbot/internal/logger"
)

type blockingListener struct{}

func (blockingListener) Start(ctx context.Context) { <-ctx.Done() }

type returningListener struct{}

func (returningListener) Start(context.Context) {}

func TestBot_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := bot.NewScheduler(logger.Discard(), nil, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bot.NewBot(logger.Discard(), blockingListener{}, s).Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestBot_RunFailsWhenListenerExits(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := bot.NewScheduler(logger.Discard(), nil, nil, nil)
	require.NoError(t, err)

	err = bot.NewBot(logger.Discard(), returningListener{}, s).Run(context.Background())
	assert.ErrorContains(t, err, "stopped unexpectedly")
}
