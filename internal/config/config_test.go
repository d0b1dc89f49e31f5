package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/crmbot/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultLogLevel, cfg.Logger.Level)
	assert.Equal(t, config.DefaultDateFormat, cfg.Locale.DateFormat)
	assert.Equal(t, config.DefaultTimeFormat, cfg.Locale.TimeFormat)
	assert.Equal(t, config.DefaultTimeZone, cfg.Locale.TimeZone)
	assert.Equal(t, config.DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, 0, cfg.Reminders.MinHour)
	assert.Equal(t, 5, cfg.Reminders.MaxHour)
	assert.Equal(t, "+1 day", cfg.Reminders.DayOffset)
	assert.Equal(t, []string{"USD", "EUR"}, cfg.Currency.List)
	assert.Equal(t, "USD", cfg.Currency.Base)
	assert.Equal(t, config.DefaultMessages, cfg.Messages)

	require.Contains(t, cfg.Scheduler.Tasks, "reminder_dispatch")
	assert.True(t, cfg.Scheduler.Tasks["reminder_dispatch"].Enabled)
	assert.Equal(t, "0 * * * * *", cfg.Scheduler.Tasks["reminder_dispatch"].Schedule)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: true
locale:
  date_format: DD-MM-YYYY
  time_format: hh:mm a
  time_zone: Europe/Kiev
database:
  path: /tmp/test.db
telegram:
  token: "123:abc"
  admin_id: 42
reminders:
  time_zone: America/New_York
  min_hour: 10
  max_hour: 15
  day_offset: "+5 days"
currency:
  list: [usd, eur, uah]
  default: usd
  base: usd
  rates:
    EUR: 1.2
    uah: 0.027
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, "DD-MM-YYYY", cfg.Locale.DateFormat)
	assert.Equal(t, "hh:mm a", cfg.Locale.TimeFormat)
	assert.Equal(t, "Europe/Kiev", cfg.Locale.TimeZone)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminID)
	assert.Equal(t, config.ReminderConfig{TimeZone: "America/New_York", MinHour: 10, MaxHour: 15, DayOffset: "+5 days"}, cfg.Reminders)
	assert.Equal(t, []string{"USD", "EUR", "UAH"}, cfg.Currency.List)
	assert.Equal(t, map[string]float64{"EUR": 1.2, "UAH": 0.027}, cfg.Currency.Rates)

	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(7))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CRMBOT_LOCALE_TIME_ZONE", "Asia/Tokyo")
	t.Setenv("CRMBOT_TELEGRAM_TOKEN", "from-env")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", cfg.Locale.TimeZone)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown timezone", content: "locale:\n  time_zone: Mars/Base\n"},
		{name: "unknown log level", content: "logger:\n  level: loud\n"},
		{name: "inverted reminder window", content: "reminders:\n  min_hour: 6\n  max_hour: 5\n"},
		{name: "hour out of range", content: "reminders:\n  max_hour: 24\n"},
		{name: "base outside list", content: "currency:\n  list: [EUR]\n  default: EUR\n  base: USD\n"},
		{name: "bad currency code", content: "currency:\n  list: [USD, XYZW]\n"},
		{name: "negative rate", content: "currency:\n  rates:\n    EUR: -1\n"},
		{name: "rate outside list", content: "currency:\n  rates:\n    GBP: 1.1\n"},
		{name: "enabled task without schedule", content: "scheduler:\n  tasks:\n    sql_maintenance:\n      enabled: true\n      schedule: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrConfiguration)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "locale: [unclosed"))
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestIsAdmin_Unset(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	assert.False(t, cfg.IsAdmin(0))
	assert.False(t, cfg.IsAdmin(1))
}
