package datetime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/crmbot/internal/datetime"
)

func TestConvertFormatToSystem(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"YYYY-MM-DD":         "Y-m-d",
		"DD-MM-YYYY":         "d-m-Y",
		"MM-DD-YYYY":         "m-d-Y",
		"MM/DD/YYYY":         "m/d/Y",
		"DD/MM/YYYY":         "d/m/Y",
		"DD.MM.YYYY":         "d.m.Y",
		"DD. MM. YYYY":       "d. m. Y",
		"MM.DD.YYYY":         "m.d.Y",
		"YYYY.MM.DD":         "Y.m.d",
		"HH:mm":              "H:i",
		"HH:mm:ss":           "H:i:s",
		"hh:mm a":            "h:i a",
		"hh:mma":             "h:ia",
		"hh:mm A":            "h:i A",
		"hh:mmA":             "h:iA",
		"DD. MM. YYYY HH:mm": "d. m. Y H:i",
	}

	for from, want := range tests {
		t.Run(from, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, want, datetime.ConvertFormatToSystem(from))
		})
	}
}

// Unknown tokens are copied through on purpose; a strict mode would reject them.
func TestConvertFormatToSystem_LenientPassThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{name: "two digit year is not a token", pattern: "YY-MM", want: "YY-m"},
		{name: "brackets and words", pattern: "[week] DD", want: "[week] d"},
		{name: "empty", pattern: "", want: ""},
		{name: "only separators", pattern: " -./: ", want: " -./: "},
		{name: "longest token wins", pattern: "YYYYY", want: "YY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, datetime.ConvertFormatToSystem(tt.pattern))
		})
	}
}

func TestParseSystemDateTime(t *testing.T) {
	t.Parallel()

	got, err := datetime.ParseSystemDateTime("2021-05-20 10:00:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 20, 10, 0, 30, 0, time.UTC), got)

	got, err = datetime.ParseSystemDateTime("2021-05-20 10:00", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 20, 10, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"not-a-date", "", "2021-13-01 00:00:00", "20-05-2021 10:00"} {
		_, err := datetime.ParseSystemDateTime(bad, time.UTC)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, datetime.ErrFormat)

		var formatErr *datetime.FormatError
		require.True(t, errors.As(err, &formatErr))
		assert.Equal(t, datetime.SystemDateTimeFormat, formatErr.Pattern)
	}
}

func TestParseSystemDate(t *testing.T) {
	t.Parallel()

	got, err := datetime.ParseSystemDate("2021-05-20", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 5, 20, 0, 0, 0, 0, time.UTC), got)

	_, err = datetime.ParseSystemDate("2021/05/20", time.UTC)
	assert.ErrorIs(t, err, datetime.ErrFormat)
}

func TestFormatSystemDateTime(t *testing.T) {
	t.Parallel()

	kiev, err := datetime.LoadLocation("Europe/Kiev")
	require.NoError(t, err)

	got := datetime.FormatSystemDateTime(time.Date(2021, 5, 20, 13, 0, 5, 0, kiev))
	assert.Equal(t, "2021-05-20 10:00:05", got)
}

func TestApplyDayOffset(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		offset string
		want   time.Time
	}{
		{offset: "+1 day", want: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
		{offset: "+5 days", want: time.Date(2024, 2, 5, 12, 0, 0, 0, time.UTC)},
		{offset: "-2 days", want: time.Date(2024, 1, 29, 12, 0, 0, 0, time.UTC)},
		{offset: "3 days", want: time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC)},
		{offset: "+1 week", want: time.Date(2024, 2, 7, 12, 0, 0, 0, time.UTC)},
		{offset: "+1 month", want: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)},
		{offset: "-1 year", want: time.Date(2023, 1, 31, 12, 0, 0, 0, time.UTC)},
		{offset: "tomorrow", want: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
		{offset: "yesterday", want: time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC)},
		{offset: "today", want: base},
		{offset: " +1 Day ", want: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.offset, func(t *testing.T) {
			t.Parallel()

			got, err := datetime.ApplyDayOffset(base, tt.offset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyDayOffset_Malformed(t *testing.T) {
	t.Parallel()

	for _, offset := range []string{"+1 fortnight", "soon", "+ day", "1.5 days"} {
		_, err := datetime.ApplyDayOffset(time.Now(), offset)
		assert.ErrorIs(t, err, datetime.ErrFormat, offset)
	}
}

func TestApplyDayOffset_OutOfRange(t *testing.T) {
	t.Parallel()

	base := time.Date(2021, 5, 20, 10, 0, 0, 0, time.UTC)
	for _, offset := range []string{"+999999999999 days", "+99999999999999999999 days", "+8000 years", "-2021 years", "+3660001 days"} {
		got, err := datetime.ApplyDayOffset(base, offset)
		assert.ErrorIs(t, err, datetime.ErrFormat, offset)
		assert.True(t, got.IsZero(), offset)
	}

	got, err := datetime.ApplyDayOffset(base, "+7978 years")
	require.NoError(t, err)
	assert.Equal(t, 9999, got.Year())

	j := datetime.NewJitter(datetime.WithJitterClock(clockwork.NewFakeClockAt(base)))
	s, err := j.RandomDateTimeString("UTC", 0, 5, "+999999999999 days")
	assert.ErrorIs(t, err, datetime.ErrFormat)
	assert.Empty(t, s)
}
