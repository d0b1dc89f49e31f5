package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. CRMBOT_LOCALE_TIME_ZONE.
const EnvPrefix = "CRMBOT"

// Load builds the configuration from defaults, the YAML file at path (optional)
// and CRMBOT_* environment variables, then validates it.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// readConfigFile merges the YAML file into v. A missing file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("Configuration file not found, using defaults", "path", path)
			return nil
		}
		return err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	slog.Debug("Configuration file loaded", "path", path)
	return nil
}

// setDefaults sets default values for optional configuration parameters.
// Every key needs a default so that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("locale.date_format", DefaultDateFormat)
	v.SetDefault("locale.time_format", DefaultTimeFormat)
	v.SetDefault("locale.time_zone", DefaultTimeZone)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_id", 0)

	v.SetDefault("scheduler.tasks", DefaultTasks)

	v.SetDefault("reminders.time_zone", DefaultReminderTimeZone)
	v.SetDefault("reminders.min_hour", DefaultReminderMinHour)
	v.SetDefault("reminders.max_hour", DefaultReminderMaxHour)
	v.SetDefault("reminders.day_offset", DefaultReminderDayOffset)

	v.SetDefault("currency.list", DefaultCurrencyList)
	v.SetDefault("currency.default", DefaultCurrency)
	v.SetDefault("currency.base", DefaultBaseCurrency)
	v.SetDefault("currency.rates", map[string]float64{})

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
	v.SetDefault("messages.provide_text", DefaultMessages.ProvideText)
	v.SetDefault("messages.reminder_set", DefaultMessages.ReminderSet)
	v.SetDefault("messages.reminder_due", DefaultMessages.ReminderDue)
	v.SetDefault("messages.no_reminders", DefaultMessages.NoReminders)
	v.SetDefault("messages.invalid_datetime", DefaultMessages.InvalidDateTime)
	v.SetDefault("messages.time", DefaultMessages.Time)
	v.SetDefault("messages.rates_header", DefaultMessages.RatesHeader)
	v.SetDefault("messages.rate_updated", DefaultMessages.RateUpdated)
	v.SetDefault("messages.login_failed", DefaultMessages.LoginFailed)
	v.SetDefault("messages.login_succeeded", DefaultMessages.LoginSucceeded)
	v.SetDefault("messages.invalid_rate", DefaultMessages.InvalidRate)
	v.SetDefault("messages.remind_at_usage", DefaultMessages.RemindAtUsage)
}

// normalize upper-cases currency codes so that YAML authors may write "eur".
// Viper lower-cases map keys, which would otherwise fail ISO 4217 validation.
func (c *Config) normalize() {
	for i, code := range c.Currency.List {
		c.Currency.List[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	c.Currency.Default = strings.ToUpper(strings.TrimSpace(c.Currency.Default))
	c.Currency.Base = strings.ToUpper(strings.TrimSpace(c.Currency.Base))

	rates := make(map[string]float64, len(c.Currency.Rates))
	for code, rate := range c.Currency.Rates {
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	c.Currency.Rates = rates
}
