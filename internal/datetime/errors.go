package datetime

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat is matched by every *FormatError.
	ErrFormat = errors.New("invalid date/time format")

	// ErrConfiguration is matched by every *ConfigurationError.
	ErrConfiguration = errors.New("invalid date/time configuration")

	// ErrInvalidRange is returned when an hour window is outside 0..23 or inverted.
	ErrInvalidRange = errors.New("invalid hour range")
)

// FormatError reports a value that does not match the pattern it was parsed with.
type FormatError struct {
	Value   string
	Pattern string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot parse %q with pattern %q", e.Value, e.Pattern)
	}
	return fmt.Sprintf("cannot parse %q with pattern %q: %v", e.Value, e.Pattern, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// ConfigurationError reports an unknown or rejected timezone identifier.
type ConfigurationError struct {
	Timezone string
	Err      error
}

func (e *ConfigurationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid timezone %q", e.Timezone)
	}
	return fmt.Sprintf("invalid timezone %q: %v", e.Timezone, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
