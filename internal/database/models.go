package database

import "database/sql"

// User types that may never sign in interactively.
const (
	UserTypeRegular = "regular"
	UserTypeAdmin   = "admin"
	UserTypeAPI     = "api"
	UserTypeSystem  = "system"
)

// User is a CRM account. CreatedAt is a canonical UTC timestamp string.
type User struct {
	ID           int64  `db:"id"`
	UserName     string `db:"user_name"`
	PasswordHash string `db:"password_hash"`
	Type         string `db:"type"`
	IsActive     bool   `db:"is_active"`
	CreatedAt    string `db:"created_at"`
}

// UserCriteria selects a single user for authentication.
type UserCriteria struct {
	UserName     string
	ExcludeTypes []string
	ActiveOnly   bool
}

// AuthToken is a persisted session token. Hash mirrors the owner's password
// hash at issue time, so a password change invalidates the token.
type AuthToken struct {
	ID        int64  `db:"id"`
	Token     string `db:"token"`
	Hash      string `db:"hash"`
	UserID    int64  `db:"user_id"`
	CreatedAt string `db:"created_at"`
}

// Reminder is a message to deliver to a chat at RemindAt (canonical UTC).
// A reminder is pending until it is sent or given up on (FailedAt). After a
// failed delivery NextAttemptAt holds the earliest retry time.
type Reminder struct {
	ID            int64          `db:"id"`
	ChatID        int64          `db:"chat_id"`
	Text          string         `db:"text"`
	RemindAt      string         `db:"remind_at"`
	SentAt        sql.NullString `db:"sent_at"`
	Attempts      int            `db:"attempts"`
	NextAttemptAt sql.NullString `db:"next_attempt_at"`
	FailedAt      sql.NullString `db:"failed_at"`
	LastError     sql.NullString `db:"last_error"`
	CreatedAt     string         `db:"created_at"`
}

// CurrencyRate is a stored exchange rate relative to the base currency,
// kept as a decimal string.
type CurrencyRate struct {
	Code      string `db:"code"`
	Rate      string `db:"rate"`
	UpdatedAt string `db:"updated_at"`
}
