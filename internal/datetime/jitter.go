package datetime

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
)

// Defaults for RandomDateTimeString: tomorrow between 00:00 and 05:59 UTC.
const (
	DefaultJitterMinHour   = 0
	DefaultJitterMaxHour   = 5
	DefaultJitterDayOffset = "+1 day"
)

// maxJitterDraws bounds the redraws around a partial-hour zone transition.
const maxJitterDraws = 32

// Source supplies random integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource uses the math/rand/v2 top-level generator, which is safe for
// concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Jitter picks random instants inside a local time-of-day window, used to
// spread scheduled work instead of firing everything on the hour.
type Jitter struct {
	clock  clockwork.Clock
	source Source
}

// JitterOption configures a Jitter.
type JitterOption func(*Jitter)

// WithJitterClock sets the clock that defines "now".
func WithJitterClock(clock clockwork.Clock) JitterOption {
	return func(j *Jitter) {
		if clock != nil {
			j.clock = clock
		}
	}
}

// WithSource sets the random source. A *rand.Rand is not safe for concurrent
// use; callers sharing a Jitter between goroutines must supply a safe source.
func WithSource(source Source) JitterOption {
	return func(j *Jitter) {
		if source != nil {
			j.source = source
		}
	}
}

// NewJitter creates a Jitter backed by the real clock and the global source
// unless overridden.
func NewJitter(opts ...JitterOption) *Jitter {
	j := &Jitter{
		clock:  clockwork.NewRealClock(),
		source: globalSource{},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RandomDateTime returns a UTC instant whose calendar date in timezone is
// today shifted by dayOffset and whose local hour lies in [minHour, maxHour].
// Minutes and seconds are uniform over 0..59.
func (j *Jitter) RandomDateTime(timezone string, minHour, maxHour int, dayOffset string) (time.Time, error) {
	if minHour < 0 || maxHour > 23 || minHour > maxHour {
		return time.Time{}, fmt.Errorf("%w: %d..%d", ErrInvalidRange, minHour, maxHour)
	}

	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}

	day, err := ApplyDayOffset(j.clock.Now().In(loc), dayOffset)
	if err != nil {
		return time.Time{}, err
	}

	hours := existingHours(day, minHour, maxHour, loc)
	if len(hours) == 0 {
		return time.Time{}, fmt.Errorf("%w: no local hour %d..%d exists on %s in %s",
			ErrInvalidRange, minHour, maxHour, day.Format(SystemDateLayout), loc)
	}

	// A partial-hour transition can still skip the drawn minute, so redraw
	// until the wall clock reads back unchanged.
	for range maxJitterDraws {
		hour := hours[j.source.IntN(len(hours))]
		minute := j.source.IntN(60)
		second := j.source.IntN(60)

		local := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, loc)
		if local.Hour() == hour && local.Minute() == minute {
			return local.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: no valid time drawn in %d..%d on %s in %s",
		ErrInvalidRange, minHour, maxHour, day.Format(SystemDateLayout), loc)
}

// existingHours lists the hours in [minHour, maxHour] whose wall clock occurs
// on day in loc. Hours skipped by a daylight saving transition are left out.
func existingHours(day time.Time, minHour, maxHour int, loc *time.Location) []int {
	hours := make([]int, 0, maxHour-minHour+1)
	for h := minHour; h <= maxHour; h++ {
		for _, m := range []int{0, 59} {
			if time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc).Hour() == h {
				hours = append(hours, h)
				break
			}
		}
	}
	return hours
}

// RandomDateTimeString is RandomDateTime rendered as a canonical UTC timestamp.
func (j *Jitter) RandomDateTimeString(timezone string, minHour, maxHour int, dayOffset string) (string, error) {
	t, err := j.RandomDateTime(timezone, minHour, maxHour, dayOffset)
	if err != nil {
		return "", err
	}
	return FormatSystemDateTime(t), nil
}

// DefaultRandomDateTimeString draws from tomorrow 00:00..05:59 UTC.
func (j *Jitter) DefaultRandomDateTimeString() (string, error) {
	return j.RandomDateTimeString(DefaultTimezone, DefaultJitterMinHour, DefaultJitterMaxHour, DefaultJitterDayOffset)
}
