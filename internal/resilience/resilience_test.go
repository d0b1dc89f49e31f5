package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/crmbot/internal/logger"
	"github.com/edgard/crmbot/internal/resilience"
)

var errFlaky = errors.New("flaky")

func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2,
	}
}

func TestWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := resilience.WithRetry(context.Background(), fastRetry(3), func(context.Context) error {
			calls++
			if calls < 3 {
				return errFlaky
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := resilience.WithRetry(context.Background(), fastRetry(2), func(context.Context) error {
			calls++
			return errFlaky
		})
		assert.ErrorIs(t, err, resilience.ErrExhaustedRetries)
		assert.ErrorIs(t, err, errFlaky)
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := resilience.WithRetry(context.Background(), fastRetry(5), func(context.Context) error {
			calls++
			return resilience.Permanent(errFlaky)
		})
		assert.ErrorIs(t, err, errFlaky)
		assert.NotErrorIs(t, err, resilience.ErrExhaustedRetries)
		assert.True(t, resilience.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("retry-after is capped by max interval", func(t *testing.T) {
		t.Parallel()
		calls := 0
		start := time.Now()
		err := resilience.WithRetry(context.Background(), fastRetry(2), func(context.Context) error {
			calls++
			if calls == 1 {
				return &resilience.RetryAfterError{Err: errFlaky, Delay: time.Hour}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		err := resilience.WithRetry(ctx, fastRetry(5), func(context.Context) error {
			cancel()
			return errFlaky
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	assert.NoError(t, resilience.Permanent(nil))
	assert.False(t, resilience.IsPermanent(errFlaky))
	assert.True(t, resilience.IsPermanent(fmt.Errorf("send: %w", resilience.Permanent(errFlaky))))
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "test",
		MaxFailures:   2,
		ResetInterval: time.Hour,
		Logger:        logger.Discard(),
	})
	ctx := context.Background()

	for range 3 {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return resilience.Permanent(errFlaky) }), errFlaky)
	}
	assert.Equal(t, "closed", cb.State(), "permanent errors do not trip the breaker")

	for range 2 {
		assert.ErrorIs(t, cb.Execute(ctx, func(context.Context) error { return errFlaky }), errFlaky)
	}
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.False(t, called)

	retried := 0
	err = resilience.WithRetry(ctx, fastRetry(3), func(ctx context.Context) error {
		retried++
		return cb.Execute(ctx, func(context.Context) error { return nil })
	})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 1, retried, "an open circuit is not retried")
}

func TestCircuitBreaker_Timeout(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Timeout: 10 * time.Millisecond, Logger: logger.Discard()})
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
