// Package config loads, defaults and validates crmbot configuration from a
// YAML file and CRMBOT_* environment variables.
package config

import (
	"errors"

	"github.com/go-telegram/bot/models"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config is the complete application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Locale    LocaleConfig    `mapstructure:"locale"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Reminders ReminderConfig  `mapstructure:"reminders"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// LocaleConfig holds the display patterns and zone used for every date shown
// to users. Patterns use the YYYY/MM/DD/HH/mm/ss/hh/a/A vocabulary.
type LocaleConfig struct {
	DateFormat string `mapstructure:"date_format" validate:"required"`
	TimeFormat string `mapstructure:"time_format" validate:"required"`
	TimeZone   string `mapstructure:"time_zone"   validate:"required,timezone"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TelegramConfig holds bot credentials. BotInfo is filled in at runtime.
type TelegramConfig struct {
	Token   string       `mapstructure:"token"`
	AdminID int64        `mapstructure:"admin_id" validate:"gte=0"`
	BotInfo *models.User `mapstructure:"-"        validate:"-"`
}

// TaskConfig enables a registered task on a cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// ReminderConfig is the local time window reminders are jittered into.
type ReminderConfig struct {
	TimeZone  string `mapstructure:"time_zone"  validate:"required,timezone"`
	MinHour   int    `mapstructure:"min_hour"   validate:"min=0,max=23"`
	MaxHour   int    `mapstructure:"max_hour"   validate:"min=0,max=23,gtefield=MinHour"`
	DayOffset string `mapstructure:"day_offset" validate:"required"`
}

// CurrencyConfig lists enabled currencies and the default exchange rates
// relative to Base.
type CurrencyConfig struct {
	List    []string           `mapstructure:"list"    validate:"required,min=1,dive,iso4217"`
	Default string             `mapstructure:"default" validate:"required,iso4217"`
	Base    string             `mapstructure:"base"    validate:"required,iso4217"`
	Rates   map[string]float64 `mapstructure:"rates"   validate:"dive,keys,iso4217,endkeys,gt=0"`
}

// MessagesConfig holds user-facing texts. Texts containing %s receive a
// formatted value.
type MessagesConfig struct {
	Welcome         string `mapstructure:"welcome"          validate:"required"`
	Help            string `mapstructure:"help"             validate:"required"`
	NotAuthorized   string `mapstructure:"not_authorized"   validate:"required"`
	GeneralError    string `mapstructure:"general_error"    validate:"required"`
	ProvideText     string `mapstructure:"provide_text"     validate:"required"`
	ReminderSet     string `mapstructure:"reminder_set"     validate:"required"`
	ReminderDue     string `mapstructure:"reminder_due"     validate:"required"`
	NoReminders     string `mapstructure:"no_reminders"     validate:"required"`
	InvalidDateTime string `mapstructure:"invalid_datetime" validate:"required"`
	Time            string `mapstructure:"time"             validate:"required"`
	RatesHeader     string `mapstructure:"rates_header"     validate:"required"`
	RateUpdated     string `mapstructure:"rate_updated"     validate:"required"`
	LoginFailed     string `mapstructure:"login_failed"     validate:"required"`
	LoginSucceeded  string `mapstructure:"login_succeeded"  validate:"required"`
	InvalidRate     string `mapstructure:"invalid_rate"     validate:"required"`
	RemindAtUsage   string `mapstructure:"remind_at_usage"  validate:"required"`
}
