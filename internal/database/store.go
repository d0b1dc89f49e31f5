package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/crmbot/internal/datetime"
)

// ErrNotFound is returned by updates that matched no row.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for database operations.
// Lookups return nil, nil when nothing matches.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RunSQLMaintenance runs VACUUM and ANALYZE.
	RunSQLMaintenance(ctx context.Context) error

	// CreateUser inserts a user and sets its ID.
	CreateUser(ctx context.Context, user *User) error

	// FindUser returns the single user matching criteria.
	FindUser(ctx context.Context, criteria UserCriteria) (*User, error)

	// GetUserByID returns a user by primary key.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// SaveAuthToken inserts a token and sets its ID.
	SaveAuthToken(ctx context.Context, token *AuthToken) error

	// GetAuthToken returns the token with the given value.
	GetAuthToken(ctx context.Context, token string) (*AuthToken, error)

	// SaveReminder inserts a reminder and sets its ID.
	SaveReminder(ctx context.Context, reminder *Reminder) error

	// GetPendingReminders returns reminders of a chat that are neither sent
	// nor failed, ordered by time.
	GetPendingReminders(ctx context.Context, chatID int64) ([]Reminder, error)

	// GetDueReminders returns up to limit pending reminders whose next attempt
	// (remind_at, or next_attempt_at after a failure) is <= now, oldest first.
	GetDueReminders(ctx context.Context, now string, limit int) ([]Reminder, error)

	// MarkReminderSent stamps a pending reminder as delivered.
	MarkReminderSent(ctx context.Context, id int64, sentAt string) error

	// RecordReminderFailure counts a failed delivery and postpones the next
	// attempt to nextAttemptAt.
	RecordReminderFailure(ctx context.Context, id int64, nextAttemptAt, reason string) error

	// MarkReminderFailed counts a failed delivery and stops further attempts.
	MarkReminderFailed(ctx context.Context, id int64, failedAt, reason string) error

	// GetCurrencyRates returns every stored rate.
	GetCurrencyRates(ctx context.Context) ([]CurrencyRate, error)

	// SaveCurrencyRates upserts rates in a single transaction.
	SaveCurrencyRates(ctx context.Context, rates []CurrencyRate) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewStore creates a Store backed by db. A nil logger discards logs and a nil
// clock uses the real clock.
func NewStore(db *sqlx.DB, logger *slog.Logger, clock clockwork.Clock) Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		clock:  clock,
	}
}

func (s *sqlxStore) now() string {
	return datetime.FormatSystemDateTime(s.clock.Now())
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// RunSQLMaintenance runs VACUUM and ANALYZE. VACUUM cannot run inside a
// transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "VACUUM failed", "error", err)
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		s.logger.ErrorContext(ctx, "ANALYZE failed", "error", err)
		return fmt.Errorf("failed to analyze database: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}

// CreateUser inserts a user.
func (s *sqlxStore) CreateUser(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("cannot save nil user")
	}
	if user.UserName == "" {
		return fmt.Errorf("user must have a non-empty user_name")
	}
	if user.PasswordHash == "" {
		return fmt.Errorf("user must have a password hash")
	}
	if user.Type == "" {
		user.Type = UserTypeRegular
	}
	if user.CreatedAt == "" {
		user.CreatedAt = s.now()
	}

	query := `
        INSERT INTO users (user_name, password_hash, type, is_active, created_at)
        VALUES (:user_name, :password_hash, :type, :is_active, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating user", "user_name", user.UserName, "error", err)
		return fmt.Errorf("failed to create user %q: %w", user.UserName, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id

	s.logger.DebugContext(ctx, "User created", "user_id", user.ID, "user_name", user.UserName, "type", user.Type)
	return nil
}

// FindUser returns the user matching criteria, or nil, nil.
func (s *sqlxStore) FindUser(ctx context.Context, criteria UserCriteria) (*User, error) {
	if criteria.UserName == "" {
		return nil, fmt.Errorf("user_name criterion cannot be empty")
	}

	var (
		where = []string{"user_name = ?"}
		args  = []any{criteria.UserName}
	)
	if len(criteria.ExcludeTypes) > 0 {
		where = append(where, "type NOT IN (?)")
		args = append(args, criteria.ExcludeTypes)
	}
	if criteria.ActiveOnly {
		where = append(where, "is_active = 1")
	}

	query, args, err := sqlx.In(`
        SELECT id, user_name, password_hash, type, is_active, created_at
        FROM users
        WHERE `+strings.Join(where, " AND ")+`
        LIMIT 1;
    `, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	var user User
	if err := s.db.GetContext(ctx, &user, s.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Error finding user", "user_name", criteria.UserName, "error", err)
		return nil, fmt.Errorf("failed to find user %q: %w", criteria.UserName, err)
	}
	return &user, nil
}

// GetUserByID returns a user by id, or nil, nil.
func (s *sqlxStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, `
        SELECT id, user_name, password_hash, type, is_active, created_at
        FROM users WHERE id = ?;
    `, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// SaveAuthToken inserts a token.
func (s *sqlxStore) SaveAuthToken(ctx context.Context, token *AuthToken) error {
	if token == nil || token.Token == "" {
		return fmt.Errorf("cannot save empty auth token")
	}
	if token.UserID == 0 {
		return fmt.Errorf("auth token must belong to a user")
	}
	if token.CreatedAt == "" {
		token.CreatedAt = s.now()
	}

	result, err := s.db.NamedExecContext(ctx, `
        INSERT INTO auth_tokens (token, hash, user_id, created_at)
        VALUES (:token, :hash, :user_id, :created_at);
    `, token)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving auth token", "user_id", token.UserID, "error", err)
		return fmt.Errorf("failed to save auth token for user %d: %w", token.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		token.ID = id
	}
	return nil
}

// GetAuthToken returns a token by value, or nil, nil.
func (s *sqlxStore) GetAuthToken(ctx context.Context, token string) (*AuthToken, error) {
	var t AuthToken
	err := s.db.GetContext(ctx, &t, `
        SELECT id, token, hash, user_id, created_at
        FROM auth_tokens WHERE token = ?;
    `, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get auth token: %w", err)
	}
	return &t, nil
}

// SaveReminder inserts a reminder after checking that RemindAt is canonical.
func (s *sqlxStore) SaveReminder(ctx context.Context, reminder *Reminder) error {
	if reminder == nil {
		return fmt.Errorf("cannot save nil reminder")
	}
	if reminder.ChatID == 0 {
		return fmt.Errorf("reminder must have a non-zero chat_id")
	}
	if strings.TrimSpace(reminder.Text) == "" {
		return fmt.Errorf("reminder must have non-empty text")
	}
	remindAt, err := datetime.ParseSystemDateTime(reminder.RemindAt, nil)
	if err != nil {
		return fmt.Errorf("invalid remind_at: %w", err)
	}
	reminder.RemindAt = datetime.FormatSystemDateTime(remindAt)
	if reminder.CreatedAt == "" {
		reminder.CreatedAt = s.now()
	}

	result, err := s.db.NamedExecContext(ctx, `
        INSERT INTO reminders (chat_id, text, remind_at, sent_at, created_at)
        VALUES (:chat_id, :text, :remind_at, :sent_at, :created_at);
    `, reminder)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving reminder", "chat_id", reminder.ChatID, "error", err)
		return fmt.Errorf("failed to save reminder (chat %d): %w", reminder.ChatID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read reminder id: %w", err)
	}
	reminder.ID = id

	s.logger.DebugContext(ctx, "Reminder saved", "reminder_id", reminder.ID, "chat_id", reminder.ChatID, "remind_at", reminder.RemindAt)
	return nil
}

// GetPendingReminders returns unsent reminders of chatID.
func (s *sqlxStore) GetPendingReminders(ctx context.Context, chatID int64) ([]Reminder, error) {
	var reminders []Reminder
	err := s.db.SelectContext(ctx, &reminders, `
        SELECT id, chat_id, text, remind_at, sent_at, attempts, next_attempt_at, failed_at, last_error, created_at
        FROM reminders
        WHERE chat_id = ? AND sent_at IS NULL AND failed_at IS NULL
        ORDER BY remind_at ASC, id ASC;
    `, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending reminders (chat %d): %w", chatID, err)
	}
	return reminders, nil
}

// GetDueReminders returns pending reminders whose time has come. Reminders
// waiting for a retry sort by their retry time, so they queue behind newer
// reminders that are due earlier.
func (s *sqlxStore) GetDueReminders(ctx context.Context, now string, limit int) ([]Reminder, error) {
	if _, err := datetime.ParseSystemDateTime(now, nil); err != nil {
		return nil, fmt.Errorf("invalid now: %w", err)
	}
	if limit <= 0 {
		limit = 100
	}

	var reminders []Reminder
	err := s.db.SelectContext(ctx, &reminders, `
        SELECT id, chat_id, text, remind_at, sent_at, attempts, next_attempt_at, failed_at, last_error, created_at
        FROM reminders
        WHERE sent_at IS NULL AND failed_at IS NULL
          AND COALESCE(next_attempt_at, remind_at) <= ?
        ORDER BY COALESCE(next_attempt_at, remind_at) ASC, id ASC
        LIMIT ?;
    `, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminders: %w", err)
	}
	return reminders, nil
}

// MarkReminderSent sets sent_at on a pending reminder.
func (s *sqlxStore) MarkReminderSent(ctx context.Context, id int64, sentAt string) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE reminders SET sent_at = ?
        WHERE id = ? AND sent_at IS NULL AND failed_at IS NULL;
    `, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder %d as sent: %w", id, err)
	}
	return pendingUpdated(result, id)
}

// RecordReminderFailure increments attempts and sets next_attempt_at.
func (s *sqlxStore) RecordReminderFailure(ctx context.Context, id int64, nextAttemptAt, reason string) error {
	if _, err := datetime.ParseSystemDateTime(nextAttemptAt, nil); err != nil {
		return fmt.Errorf("invalid next_attempt_at: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
        UPDATE reminders SET attempts = attempts + 1, next_attempt_at = ?, last_error = ?
        WHERE id = ? AND sent_at IS NULL AND failed_at IS NULL;
    `, nextAttemptAt, reason, id)
	if err != nil {
		return fmt.Errorf("failed to record failure of reminder %d: %w", id, err)
	}
	return pendingUpdated(result, id)
}

// MarkReminderFailed increments attempts and sets failed_at.
func (s *sqlxStore) MarkReminderFailed(ctx context.Context, id int64, failedAt, reason string) error {
	result, err := s.db.ExecContext(ctx, `
        UPDATE reminders SET attempts = attempts + 1, failed_at = ?, last_error = ?
        WHERE id = ? AND sent_at IS NULL AND failed_at IS NULL;
    `, failedAt, reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder %d as failed: %w", id, err)
	}
	return pendingUpdated(result, id)
}

// pendingUpdated maps an update that matched no pending reminder to
// ErrNotFound.
func pendingUpdated(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pending reminder %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetCurrencyRates returns all stored rates ordered by code.
func (s *sqlxStore) GetCurrencyRates(ctx context.Context) ([]CurrencyRate, error) {
	var rates []CurrencyRate
	if err := s.db.SelectContext(ctx, &rates, `
        SELECT code, rate, updated_at FROM currency_rates ORDER BY code;
    `); err != nil {
		return nil, fmt.Errorf("failed to get currency rates: %w", err)
	}
	return rates, nil
}

// SaveCurrencyRates upserts rates atomically.
func (s *sqlxStore) SaveCurrencyRates(ctx context.Context, rates []CurrencyRate) error {
	if len(rates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	now := s.now()
	for _, rate := range rates {
		if rate.UpdatedAt == "" {
			rate.UpdatedAt = now
		}
		_, err := tx.NamedExecContext(ctx, `
            INSERT INTO currency_rates (code, rate, updated_at)
            VALUES (:code, :rate, :updated_at)
            ON CONFLICT (code) DO UPDATE SET rate = excluded.rate, updated_at = excluded.updated_at;
        `, rate)
		if err != nil {
			return fmt.Errorf("failed to save rate for %s: %w", rate.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit currency rates: %w", err)
	}

	s.logger.InfoContext(ctx, "Currency rates saved", "count", len(rates))
	return nil
}
