// Package datetime translates locale-style date/time patterns (YYYY-MM-DD,
// hh:mm a, ...) into the system pattern vocabulary, converts canonical naive
// timestamps between timezones for display, and generates jittered timestamps
// inside a local time-of-day window.
package datetime

import (
	"errors"
	"time"
	_ "time/tzdata" // zone database independent of the host

	"github.com/jonboulle/clockwork"
)

// DefaultTimezone is used whenever a caller does not name a zone.
const DefaultTimezone = "UTC"

var errLocalZone = errors.New("process-local timezone is not allowed, name the zone explicitly")

// Formatter holds the display configuration. It is never mutated after New
// and may be shared between goroutines.
type Formatter struct {
	datePattern string
	timePattern string
	location    *time.Location
	clock       clockwork.Clock
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithClock sets the clock used by NowString, TodayString and SystemNowString.
func WithClock(clock clockwork.Clock) Option {
	return func(f *Formatter) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// New creates a Formatter. An unknown timezone fails here rather than on the
// first conversion.
func New(datePattern, timePattern, timezone string, opts ...Option) (*Formatter, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	f := &Formatter{
		datePattern: datePattern,
		timePattern: timePattern,
		location:    loc,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// LoadLocation resolves an IANA zone name. The empty string means UTC;
// "Local" is rejected.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return time.UTC, nil
	}
	if timezone == "Local" {
		return nil, &ConfigurationError{Timezone: timezone, Err: errLocalZone}
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, &ConfigurationError{Timezone: timezone, Err: err}
	}
	return loc, nil
}

// DateFormat returns the configured date pattern.
func (f *Formatter) DateFormat() string { return f.datePattern }

// TimeFormat returns the configured time pattern.
func (f *Formatter) TimeFormat() string { return f.timePattern }

// DateTimeFormat returns the date pattern and the time pattern joined by a space.
func (f *Formatter) DateTimeFormat() string { return f.datePattern + " " + f.timePattern }

// Location returns the display timezone.
func (f *Formatter) Location() *time.Location { return f.location }

type convertOptions struct {
	systemTimezone  string
	displayTimezone string
	pattern         string
}

// ConvertOption adjusts a single conversion call.
type ConvertOption func(*convertOptions)

// SystemTimezone names the zone the canonical value is expressed in. The
// default is UTC.
func SystemTimezone(timezone string) ConvertOption {
	return func(o *convertOptions) { o.systemTimezone = timezone }
}

// DisplayTimezone overrides the configured zone on the display side.
func DisplayTimezone(timezone string) ConvertOption {
	return func(o *convertOptions) { o.displayTimezone = timezone }
}

// WithPattern overrides the locale pattern used on the display side.
func WithPattern(pattern string) ConvertOption {
	return func(o *convertOptions) { o.pattern = pattern }
}

func (f *Formatter) convertOptions(opts []ConvertOption) convertOptions {
	o := convertOptions{
		systemTimezone: DefaultTimezone,
		pattern:        f.DateTimeFormat(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// locations resolves both sides of a conversion.
func (f *Formatter) locations(o convertOptions) (system, display *time.Location, err error) {
	system, err = LoadLocation(o.systemTimezone)
	if err != nil {
		return nil, nil, err
	}

	display = f.location
	if o.displayTimezone != "" {
		display, err = LoadLocation(o.displayTimezone)
		if err != nil {
			return nil, nil, err
		}
	}
	return system, display, nil
}

// ConvertSystemDateTime reads a canonical timestamp in the system zone and
// renders it in the configured zone with the display pattern.
func (f *Formatter) ConvertSystemDateTime(value string, opts ...ConvertOption) (string, error) {
	o := f.convertOptions(opts)

	system, display, err := f.locations(o)
	if err != nil {
		return "", err
	}

	t, err := ParseSystemDateTime(value, system)
	if err != nil {
		return "", err
	}

	return render(t.In(display), ConvertFormatToSystem(o.pattern)), nil
}

// ConvertSystemDate renders a canonical date with the configured date
// pattern. Dates carry no clock time, so no zone shift is applied.
func (f *Formatter) ConvertSystemDate(value string) (string, error) {
	t, err := ParseSystemDate(value, time.UTC)
	if err != nil {
		return "", err
	}
	return render(t, ConvertFormatToSystem(f.datePattern)), nil
}

// ConvertDateTimeToSystem is the inverse of ConvertSystemDateTime: value is
// read with the display pattern in the configured zone and returned as a
// canonical timestamp in the system zone (UTC unless SystemTimezone is given).
func (f *Formatter) ConvertDateTimeToSystem(value string, opts ...ConvertOption) (string, error) {
	o := f.convertOptions(opts)

	system, display, err := f.locations(o)
	if err != nil {
		return "", err
	}

	t, err := parse(value, o.pattern, display)
	if err != nil {
		return "", err
	}

	return t.In(system).Format(SystemDateTimeLayout), nil
}

// ConvertDateToSystem reads a date in the configured date pattern and returns
// the canonical date.
func (f *Formatter) ConvertDateToSystem(value string) (string, error) {
	t, err := parse(value, f.datePattern, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(SystemDateLayout), nil
}

// FormatTime renders an instant in the configured zone and date-time pattern.
func (f *Formatter) FormatTime(t time.Time) string {
	return render(t.In(f.location), ConvertFormatToSystem(f.DateTimeFormat()))
}

// NowString returns the current instant in the configured zone and pattern.
func (f *Formatter) NowString() string {
	return f.FormatTime(f.clock.Now())
}

// TodayString returns the current date in the configured zone and date pattern.
func (f *Formatter) TodayString() string {
	return render(f.clock.Now().In(f.location), ConvertFormatToSystem(f.datePattern))
}

// SystemNowString returns the current instant as a canonical UTC timestamp.
func (f *Formatter) SystemNowString() string {
	return FormatSystemDateTime(f.clock.Now())
}
