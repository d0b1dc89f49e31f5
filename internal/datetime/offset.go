package datetime

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxOffsetCount is the largest accepted count; more days than this always
// leave the four-digit year range.
const maxOffsetCount = 10_000 * 366

var errOffsetRange = errors.New("offset leaves the years 0001..9999")

var dayOffsetPattern = regexp.MustCompile(`^([+-]?)\s*(\d+)\s*(day|week|month|year)s?$`)

// ApplyDayOffset shifts t by a relative calendar expression such as "+1 day",
// "-2 weeks", "+1 month", "today" or "tomorrow". Month and year arithmetic
// normalises overflowing days the way time.AddDate does.
func ApplyDayOffset(t time.Time, offset string) (time.Time, error) {
	expr := strings.ToLower(strings.TrimSpace(offset))

	switch expr {
	case "", "now", "today":
		return t, nil
	case "tomorrow":
		return t.AddDate(0, 0, 1), nil
	case "yesterday":
		return t.AddDate(0, 0, -1), nil
	}

	m := dayOffsetPattern.FindStringSubmatch(expr)
	if m == nil {
		return time.Time{}, &FormatError{Value: offset, Pattern: "[+|-]N day|week|month|year"}
	}

	n, err := strconv.Atoi(m[2])
	if err != nil || n > maxOffsetCount {
		return time.Time{}, &FormatError{Value: offset, Pattern: "[+|-]N day|week|month|year", Err: errOffsetRange}
	}
	if m[1] == "-" {
		n = -n
	}

	var shifted time.Time
	switch m[3] {
	case "day":
		shifted = t.AddDate(0, 0, n)
	case "week":
		shifted = t.AddDate(0, 0, 7*n)
	case "month":
		shifted = t.AddDate(0, n, 0)
	default:
		shifted = t.AddDate(n, 0, 0)
	}

	if y := shifted.Year(); y < 1 || y > 9999 {
		return time.Time{}, &FormatError{Value: offset, Pattern: "[+|-]N day|week|month|year", Err: errOffsetRange}
	}
	return shifted, nil
}
