// Package auth verifies CRM user credentials and issues session tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/edgard/crmbot/internal/database"
)

// ErrInvalidCredentials is returned for every failed login, whatever the
// reason, so callers cannot probe for existing user names.
var ErrInvalidCredentials = errors.New("invalid credentials")

// nonInteractiveTypes may not log in with a password or token.
var nonInteractiveTypes = []string{database.UserTypeAPI, database.UserTypeSystem}

// UserStore is the subset of database.Store used by Authenticator.
type UserStore interface {
	CreateUser(ctx context.Context, user *database.User) error
	FindUser(ctx context.Context, criteria database.UserCriteria) (*database.User, error)
	SaveAuthToken(ctx context.Context, token *database.AuthToken) error
}

// Authenticator checks credentials against the user store.
type Authenticator struct {
	store  UserStore
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(store UserStore, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Authenticator{store: store, logger: logger.With("component", "auth")}
}

// Login returns the active user named username. Without a token, password is
// checked against the stored bcrypt hash. With a token, password is the
// token's secret: the token must belong to the user and its hash must still
// equal the user's password hash.
func (a *Authenticator) Login(ctx context.Context, username, password string, token *database.AuthToken) (*database.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.store.FindUser(ctx, database.UserCriteria{
		UserName:     username,
		ExcludeTypes: nonInteractiveTypes,
		ActiveOnly:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		a.logger.InfoContext(ctx, "Login failed: unknown or disabled user", "user_name", username)
		return nil, ErrInvalidCredentials
	}

	if token != nil {
		if token.UserID != user.ID || !secretsEqual(token.Hash, user.PasswordHash) || !secretsEqual(token.Token, password) {
			a.logger.InfoContext(ctx, "Login failed: token mismatch", "user_id", user.ID)
			return nil, ErrInvalidCredentials
		}
		return user, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.logger.InfoContext(ctx, "Login failed: wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	a.logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return user, nil
}

// secretsEqual compares credentials in constant time.
func secretsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// IssueToken creates and stores a new session token for user.
func (a *Authenticator) IssueToken(ctx context.Context, user *database.User) (*database.AuthToken, error) {
	if user == nil || user.ID == 0 {
		return nil, errors.New("cannot issue token for unsaved user")
	}

	token := &database.AuthToken{
		Token:  uuid.NewString(),
		Hash:   user.PasswordHash,
		UserID: user.ID,
	}
	if err := a.store.SaveAuthToken(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// CreateUser hashes password and stores a new active user of userType.
func (a *Authenticator) CreateUser(ctx context.Context, username, password, userType string) (*database.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("user name cannot be empty")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &database.User{
		UserName:     username,
		PasswordHash: hash,
		Type:         userType,
		IsActive:     true,
	}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
