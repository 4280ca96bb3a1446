package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RegisterAndLookup(t *testing.T) {
	s := newSQLiteStore(t)

	ada, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, ada.ID)

	bob, err := s.Register("Bob", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, bob.ID)

	found, err := s.GetByEmail("ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, ada, found)

	found, err = s.GetByID(2)
	require.NoError(t, err)
	assert.Equal(t, "Bob", found.Name)
}

func TestSQLiteStore_DuplicateEmail(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)

	_, err = s.Register("Imposter", "ada@x.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := s.List()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSQLiteStore_NotFound(t *testing.T) {
	s := newSQLiteStore(t)

	_, err := s.GetByID(1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetByEmail("nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSQLiteStore_ListNeverNil(t *testing.T) {
	s := newSQLiteStore(t)

	users, err := s.List()
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}
