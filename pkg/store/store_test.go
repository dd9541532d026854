package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	s := openTemp(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNoKey)

	require.NoError(t, s.Set("notetree/state", `{"root":"x"}`))
	v, err := s.Get("notetree/state")
	require.NoError(t, err)
	assert.Equal(t, `{"root":"x"}`, v)

	require.NoError(t, s.Delete("notetree/state"))
	require.NoError(t, s.Delete("notetree/state"))
	_, err = s.Get("notetree/state")
	assert.ErrorIs(t, err, ErrNoKey)
}

func TestKeysByPrefix(t *testing.T) {
	s := openTemp(t)
	for _, k := range []string{"b/2", "a/1", "b/1", "c"} {
		require.NoError(t, s.Set(k, k))
	}
	keys, err := s.Keys("b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/1", "b/2"}, keys)
}

func TestReopenKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

var _ Storage = (*Store)(nil)
