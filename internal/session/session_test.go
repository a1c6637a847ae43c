package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokobuku/internal/api"
)

func newFileStore(t *testing.T) *FileTokenStore {
	t.Helper()
	return NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "1", "exp": expiresAt.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func writeUser(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": map[string]any{"id": 1, "email": "u@example.com", "name": "Udin"},
	})
}

func TestValidateOnStartupWithoutToken(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	store := newFileStore(t)
	m := NewManager(api.NewClient(srv.URL, store), store)

	require.True(t, m.Snapshot().Loading)
	m.ValidateOnStartup(context.Background())

	st := m.Snapshot()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Zero(t, atomic.LoadInt32(&calls), "no token means no network call")
}

func TestValidateOnStartupRestoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/me", r.URL.Path)
		require.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		writeUser(w)
	}))
	defer srv.Close()

	store := newFileStore(t)
	require.NoError(t, store.Save("good-token"))
	m := NewManager(api.NewClient(srv.URL, store), store)

	m.ValidateOnStartup(context.Background())

	st := m.Snapshot()
	assert.False(t, st.Loading)
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "u@example.com", st.User.Email)
}

func TestValidateOnStartupDiscardsRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "token invalid"})
	}))
	defer srv.Close()

	store := newFileStore(t)
	require.NoError(t, store.Save("stale-token"))
	m := NewManager(api.NewClient(srv.URL, store), store)

	m.ValidateOnStartup(context.Background())

	st := m.Snapshot()
	assert.False(t, st.Loading)
	assert.False(t, st.IsAuthenticated)

	left, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, left, "rejected token must be removed from durable storage")
}

func TestValidateOnStartupDiscardsExpiredJWTWithoutNetworkCall(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeUser(w)
	}))
	defer srv.Close()

	store := newFileStore(t)
	require.NoError(t, store.Save(signedToken(t, time.Now().Add(-time.Hour))))
	m := NewManager(api.NewClient(srv.URL, store), store)

	m.ValidateOnStartup(context.Background())

	st := m.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Zero(t, atomic.LoadInt32(&calls), "expired JWT should not reach the server")

	left, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestValidateOnStartupSendsUnexpiredJWTToServer(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeUser(w)
	}))
	defer srv.Close()

	store := newFileStore(t)
	require.NoError(t, store.Save(signedToken(t, time.Now().Add(time.Hour))))
	m := NewManager(api.NewClient(srv.URL, store), store)

	m.ValidateOnStartup(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, m.Snapshot().IsAuthenticated)
}

func TestLoginPersistsTokenAndSetsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"access_token": "fresh-token",
				"user":         map[string]any{"id": 1, "email": "u@example.com", "name": "Udin"},
			},
		})
	}))
	defer srv.Close()

	store := newFileStore(t)
	m := NewManager(api.NewClient(srv.URL, store), store)
	m.ValidateOnStartup(context.Background())

	ok := m.Login(context.Background(), "u@example.com", "rahasia123")
	require.True(t, ok)

	st := m.Snapshot()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "Udin", st.User.Name)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", saved)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Email atau password salah"})
	}))
	defer srv.Close()

	store := newFileStore(t)
	m := NewManager(api.NewClient(srv.URL, store), store)
	m.ValidateOnStartup(context.Background())

	ok := m.Login(context.Background(), "u@example.com", "salah")
	assert.False(t, ok)

	st := m.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := newFileStore(t)
	m := NewManager(api.NewClient(srv.URL, store), store)
	m.ValidateOnStartup(context.Background())

	ok := m.Register(context.Background(), "Udin", "u@example.com", "rahasia123")
	require.True(t, ok)
	assert.False(t, m.Snapshot().IsAuthenticated)
}

func TestLogoutClearsTokenAndState(t *testing.T) {
	store := newFileStore(t)
	require.NoError(t, store.Save("tok"))
	// no server at all: logout must succeed offline
	m := NewManager(api.NewClient("http://127.0.0.1:0", store), store)

	m.Logout()

	st := m.Snapshot()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}
