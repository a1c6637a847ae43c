package session

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "state", "token"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok, "missing file means no token, not an error")

	require.NoError(t, store.Save("abc-123"))
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", tok)

	require.NoError(t, store.Clear())
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestFileTokenStoreTrimsWhitespace(t *testing.T) {
	store := NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
	require.NoError(t, store.Save("abc-123\n"))

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", tok)
}

func TestRedisTokenStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisTokenStore(mr.Addr(), "")

	tok, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Save("abc-123"))
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc-123", tok)

	require.NoError(t, store.Clear())
	tok, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Clear())
}
