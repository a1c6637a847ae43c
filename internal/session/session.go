// Package session owns the authentication lifecycle. The persisted token and
// the in-memory state always change together: once loading has finished there
// is no state where a token is stored but the session is unauthenticated, or
// the reverse.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tokobuku/internal/api"
	"tokobuku/pkg/domain"
)

// State is a point-in-time snapshot of the session.
type State struct {
	User            *domain.User
	IsAuthenticated bool
	Loading         bool
}

// Manager validates, establishes, and tears down the session against the
// bookstore API, persisting the token through a TokenStore.
type Manager struct {
	api    *api.Client
	tokens TokenStore

	mu      sync.RWMutex
	user    *domain.User
	authed  bool
	loading bool
}

// NewManager returns a manager in the loading state; call ValidateOnStartup
// once to resolve it.
func NewManager(client *api.Client, tokens TokenStore) *Manager {
	return &Manager{
		api:     client,
		tokens:  tokens,
		loading: true,
	}
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var user *domain.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return State{User: user, IsAuthenticated: m.authed, Loading: m.loading}
}

// ValidateOnStartup checks any persisted token against the "who am I"
// endpoint. On any failure (network, rejection, malformed response) the
// stored token is discarded. Loading terminates exactly once, whatever the
// outcome. A token that is provably expired is discarded without a network
// round-trip; opaque tokens always go to the server.
func (m *Manager) ValidateOnStartup(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	}()

	token, err := m.tokens.Load()
	if err != nil {
		slog.Warn("token store unreadable, starting unauthenticated", "err", err)
		return
	}
	if token == "" {
		return
	}
	if tokenExpired(token) {
		slog.Info("stored token expired, discarding")
		if err := m.tokens.Clear(); err != nil {
			slog.Warn("discard expired token", "err", err)
		}
		return
	}

	user, err := m.api.Me(ctx)
	if err != nil {
		slog.Info("stored token rejected, discarding", "err", err)
		if err := m.tokens.Clear(); err != nil {
			slog.Warn("discard rejected token", "err", err)
		}
		return
	}

	m.mu.Lock()
	m.user = &user
	m.authed = true
	m.mu.Unlock()
	slog.Info("session restored", "user_id", user.ID)
}

// Login exchanges credentials for a token. On success the token is persisted
// and the session becomes authenticated; on any failure prior state is left
// untouched. No retries.
func (m *Manager) Login(ctx context.Context, email, password string) bool {
	user, token, err := m.api.Login(ctx, email, password)
	if err != nil {
		slog.Warn("login failed", "err", err)
		return false
	}
	if err := m.tokens.Save(token); err != nil {
		slog.Error("persist token", "err", err)
		return false
	}
	m.mu.Lock()
	m.user = &user
	m.authed = true
	m.mu.Unlock()
	slog.Info("login succeeded", "user_id", user.ID)
	return true
}

// Register creates an account. It does not authenticate the caller.
func (m *Manager) Register(ctx context.Context, name, email, password string) bool {
	if err := m.api.Register(ctx, name, email, password); err != nil {
		slog.Warn("register failed", "err", err)
		return false
	}
	return true
}

// Logout discards the persisted token and clears the in-memory session. It
// needs no network call to succeed.
func (m *Manager) Logout() {
	if err := m.tokens.Clear(); err != nil {
		slog.Warn("clear token on logout", "err", err)
	}
	m.mu.Lock()
	m.user = nil
	m.authed = false
	m.mu.Unlock()
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Signature is not checked; the server remains the authority for anything
// short of a provably expired claim.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
