// Package session tracks who a client is signed in as.
//
// Each client owns a State. A Manager ties that State to a token persisted in
// the sessions table so it can be restored on the next request.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finora/internal/auth"
	"finora/internal/logger"
	"finora/internal/models"
	"finora/internal/storage"

	"go.uber.org/zap"
)

// DefaultDuration is how long a session lasts without activity (30 days).
const DefaultDuration = 30 * 24 * time.Hour

// Views reachable without signing in.
const (
	ViewLogin    = "login"
	ViewRegister = "register"
)

// ErrNoSession is returned by Restore when the token is missing, unknown or expired.
var ErrNoSession = errors.New("no active session")

// State is the authentication state of one client.
type State struct {
	User          *models.User `json:"user,omitempty"`
	Authenticated bool         `json:"authenticated"`
	// Loading is true until the first restore attempt finishes.
	Loading bool `json:"loading"`
}

// NewState returns the state of a client that has not been restored yet.
func NewState() *State {
	return &State{Loading: true}
}

// Login marks the client as signed in as user.
func (s *State) Login(user *models.User) {
	s.User = user
	s.Authenticated = true
	s.Loading = false
}

// Logout clears the user.
func (s *State) Logout() {
	s.User = nil
	s.Authenticated = false
	s.Loading = false
}

// Allows reports whether the client may open view.
func (s *State) Allows(view string) bool {
	switch view {
	case ViewLogin, ViewRegister:
		return true
	}
	return s.Authenticated && !s.Loading
}

// Store persists session tokens. *storage.DB implements it.
type Store interface {
	CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error
	ValidateSessionWithInfo(ctx context.Context, token string) (*storage.SessionInfo, error)
	RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
}

// Manager persists session markers.
type Manager struct {
	store    Store
	duration time.Duration
	now      func() time.Time
}

// NewManager returns a Manager issuing sessions that last duration.
// A non-positive duration selects DefaultDuration.
func NewManager(store Store, duration time.Duration) *Manager {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Manager{store: store, duration: duration, now: time.Now}
}

// Duration returns the lifetime of a fresh or renewed session.
func (m *Manager) Duration() time.Duration { return m.duration }

// Restore signs state in from token. Loading is cleared whether or not the
// restore succeeds.
//
// Sessions are rolling: once a session is past half of its lifetime it is
// renewed and the new expiry is returned. A zero time means no renewal took
// place.
func (m *Manager) Restore(ctx context.Context, state *State, token string) (time.Time, error) {
	state.Logout()
	if token == "" {
		return time.Time{}, ErrNoSession
	}

	info, err := m.store.ValidateSessionWithInfo(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, storage.ErrNotFound) {
			return time.Time{}, ErrNoSession
		}
		return time.Time{}, fmt.Errorf("restore session: %w", err)
	}
	state.Login(info.User)

	now := m.now()
	if info.ExpiresAt.Sub(now) >= m.duration/2 {
		return time.Time{}, nil
	}
	expiresAt := now.Add(m.duration)
	if err := m.store.RenewSession(ctx, token, expiresAt); err != nil {
		// The current session is still valid; keep using it.
		logger.Get().Warn("failed to renew session", zap.String("user_id", info.User.ID), zap.Error(err))
		return time.Time{}, nil
	}
	return expiresAt, nil
}

// Start signs state in as user and persists a new session for it.
func (m *Manager) Start(ctx context.Context, state *State, user *models.User) (string, time.Time, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate session token: %w", err)
	}
	expiresAt := m.now().Add(m.duration)
	if err := m.store.CreateSession(ctx, token, user.ID, expiresAt); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}
	state.Login(user)
	return token, expiresAt, nil
}

// End signs state out and discards the persisted session. The state is
// cleared even if the session could not be deleted.
func (m *Manager) End(ctx context.Context, state *State, token string) error {
	state.Logout()
	if token == "" {
		return nil
	}
	if err := m.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
