package tasks

import (
	"context"
	"fmt"
	"strings"
)

// newRatesSnapshotTask creates the task that persists the effective exchange
// rates, so configured defaults survive a later config change.
func newRatesSnapshotTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", RatesSnapshotTask)

	return func(ctx context.Context) error {
		rates, err := deps.Rates.Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to read rates: %w", err)
		}

		if err := deps.Rates.Set(ctx, rates); err != nil {
			return fmt.Errorf("failed to store rates: %w", err)
		}

		var b strings.Builder
		for i, code := range rates.Codes() {
			rate, _ := rates.Rate(code)
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(code + "=" + rate.String())
		}
		log.InfoContext(ctx, "Currency rates snapshot", "base", rates.Base(), "rates", b.String())
		return nil
	}
}
