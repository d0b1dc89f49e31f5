package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// System patterns and the Go layouts they correspond to. Canonical values are
// naive and read as UTC unless a caller names another zone.
const (
	SystemDateTimeFormat = "Y-m-d H:i:s"
	SystemDateFormat     = "Y-m-d"

	SystemDateTimeLayout = "2006-01-02 15:04:05"
	SystemDateLayout     = "2006-01-02"

	// Minute precision is accepted on input only.
	systemDateTimeShortLayout = "2006-01-02 15:04"
)

// formatTokens is ordered longest first so that YYYY never degrades into
// shorter tokens and mm/MM stay distinct.
var formatTokens = []struct {
	locale string
	system string
}{
	{"YYYY", "Y"},
	{"MM", "m"},
	{"DD", "d"},
	{"HH", "H"},
	{"mm", "i"},
	{"ss", "s"},
	{"hh", "h"},
	{"a", "a"},
	{"A", "A"},
}

// ConvertFormatToSystem translates a locale pattern such as "DD.MM.YYYY HH:mm"
// into the system vocabulary ("d.m.Y H:i"). Anything that is not a known
// token is copied through unchanged; unknown tokens are not an error.
func ConvertFormatToSystem(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))

	for i := 0; i < len(pattern); {
		matched := false
		for _, tok := range formatTokens {
			if strings.HasPrefix(pattern[i:], tok.locale) {
				b.WriteString(tok.system)
				i += len(tok.locale)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}

	return b.String()
}

// render formats t with a system pattern. A backslash makes the next
// character literal.
func render(t time.Time, pattern string) string {
	var b strings.Builder
	escaped := false

	for _, r := range pattern {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'i':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 's':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			fmt.Fprintf(&b, "%02d", h)
		case 'a':
			if t.Hour() < 12 {
				b.WriteString("am")
			} else {
				b.WriteString("pm")
			}
		case 'A':
			if t.Hour() < 12 {
				b.WriteString("AM")
			} else {
				b.WriteString("PM")
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

var systemLayoutTokens = map[rune]string{
	'Y': "2006",
	'm': "01",
	'd': "02",
	'H': "15",
	'i': "04",
	's': "05",
	'h': "03",
	'a': "pm",
	'A': "PM",
}

var errAmbiguousLiteral = errors.New("pattern literal cannot be parsed unambiguously")

// goLayout turns a system pattern into a Go layout for parsing. Literal
// letters and digits would be read by the time package as layout elements,
// so they are rejected.
func goLayout(pattern string) (string, error) {
	var b strings.Builder
	escaped := false

	for _, r := range pattern {
		if !escaped {
			if r == '\\' {
				escaped = true
				continue
			}
			if layout, ok := systemLayoutTokens[r]; ok {
				b.WriteString(layout)
				continue
			}
		}
		escaped = false
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return "", fmt.Errorf("%w: %q", errAmbiguousLiteral, r)
		}
		b.WriteRune(r)
	}

	return b.String(), nil
}

// parse reads value with a locale pattern in loc.
func parse(value, localePattern string, loc *time.Location) (time.Time, error) {
	layout, err := goLayout(ConvertFormatToSystem(localePattern))
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Pattern: localePattern, Err: err}
	}

	t, err := time.ParseInLocation(layout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Pattern: localePattern, Err: err}
	}
	return t, nil
}

// ParseSystemDateTime reads a canonical timestamp as wall time in loc. Seconds
// may be omitted.
func ParseSystemDateTime(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)

	t, err := time.ParseInLocation(SystemDateTimeLayout, value, loc)
	if err == nil {
		return t, nil
	}
	if t, shortErr := time.ParseInLocation(systemDateTimeShortLayout, value, loc); shortErr == nil {
		return t, nil
	}
	return time.Time{}, &FormatError{Value: value, Pattern: SystemDateTimeFormat, Err: err}
}

// ParseSystemDate reads a canonical date as midnight in loc.
func ParseSystemDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	t, err := time.ParseInLocation(SystemDateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Pattern: SystemDateFormat, Err: err}
	}
	return t, nil
}

// FormatSystemDateTime renders t in UTC using the canonical layout.
func FormatSystemDateTime(t time.Time) string {
	return t.UTC().Format(SystemDateTimeLayout)
}
