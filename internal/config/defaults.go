package config

// Default values for configuration.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDateFormat = "YYYY-MM-DD"
	DefaultTimeFormat = "HH:mm"
	DefaultTimeZone   = "UTC"

	DefaultDBPath = "crmbot.db"

	DefaultReminderTimeZone  = "UTC"
	DefaultReminderMinHour   = 0
	DefaultReminderMaxHour   = 5
	DefaultReminderDayOffset = "+1 day"

	DefaultCurrency     = "USD"
	DefaultBaseCurrency = "USD"
)

// DefaultCurrencyList is the enabled currency list when none is configured.
var DefaultCurrencyList = []string{"USD", "EUR"}

// DefaultTasks enables every registered task.
var DefaultTasks = map[string]any{
	"reminder_dispatch": map[string]any{"enabled": true, "schedule": "0 * * * * *"},
	"sql_maintenance":   map[string]any{"enabled": true, "schedule": "0 0 4 * * 0"},
	"rates_snapshot":    map[string]any{"enabled": false, "schedule": "0 0 6 * * *"},
}

// DefaultMessages are the built-in user-facing texts.
var DefaultMessages = MessagesConfig{
	Welcome:         "Hi! I keep reminders and exchange rates for your team. Send /help to see what I can do.",
	Help:            "/time - current time\n/remind <text> - reminder at a random time tomorrow night\n/remind_at <date time> | <text> - reminder at a given time\n/reminders - pending reminders\n/rates - exchange rates\n/setrate <CODE> <rate> - update a rate (admin only)\n/login <user> <password> - sign in to the CRM",
	NotAuthorized:   "You are not authorized to use this command.",
	GeneralError:    "An error occurred. Please try again later.",
	ProvideText:     "Please provide the reminder text.",
	ReminderSet:     "Reminder set for %s.",
	ReminderDue:     "Reminder: %s",
	NoReminders:     "No pending reminders.",
	InvalidDateTime: "Could not read the date. Use the format %s.",
	Time:            "Current time: %s",
	RatesHeader:     "Exchange rates (base %s):",
	RateUpdated:     "Rate for %s updated.",
	LoginFailed:     "Wrong user name or password.",
	LoginSucceeded:  "Signed in as %s.",
	InvalidRate:     "Usage: /setrate <CODE> <rate>. The rate must be positive and CODE one of: %s.",
	RemindAtUsage:   "Usage: /remind_at <date time> | <text>, for example /remind_at %s | call the client",
}
