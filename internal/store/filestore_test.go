package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return s
}

func TestFileStore_EmptyWhenFileMissing(t *testing.T) {
	s := newFileStore(t)

	users, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)
}

func TestFileStore_EmptyWhenFileUnparsable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	users, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFileStore_RegisterAssignsSequentialIDs(t *testing.T) {
	s := newFileStore(t)

	ada, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, ada.ID)

	bob, err := s.Register("Bob", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, bob.ID)

	carol, err := s.Register("Carol", "carol@x.com")
	require.NoError(t, err)
	assert.Equal(t, 3, carol.ID)
}

func TestFileStore_RegisterDuplicateEmailDoesNotMutate(t *testing.T) {
	s := newFileStore(t)

	_, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)

	_, err = s.Register("Imposter", "ada@x.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, err := s.List()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ada", users[0].Name)
}

func TestFileStore_EmailMatchIsCaseSensitive(t *testing.T) {
	s := newFileStore(t)

	_, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)

	// Exact-match semantics: a different casing is a different email.
	other, err := s.Register("Other", "ADA@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2, other.ID)

	_, err = s.GetByEmail("Ada@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileStore_GetByEmail(t *testing.T) {
	s := newFileStore(t)

	_, err := s.GetByEmail("nobody@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	ada, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)

	found, err := s.GetByEmail("ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, ada, found)
}

func TestFileStore_GetByID(t *testing.T) {
	s := newFileStore(t)

	_, err := s.GetByID(42)
	assert.ErrorIs(t, err, ErrUserNotFound)

	ada, err := s.Register("Ada", "ada@x.com")
	require.NoError(t, err)

	found, err := s.GetByID(ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Name)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.Register("Ada", "ada@x.com")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	found, err := reopened.GetByEmail("ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, found.ID)
}

func TestFileStore_IDContinuesFromMax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	seed := `[{"id": 7, "name": "Ada", "email": "ada@x.com"}]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	bob, err := s.Register("Bob", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, 8, bob.ID)
}

func TestFileStore_ConcurrentRegistrationsGetUniqueIDs(t *testing.T) {
	s := newFileStore(t)

	const n = 20
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := s.Register("User", string(rune('a'+i))+"@x.com")
			done <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}

	users, err := s.List()
	require.NoError(t, err)
	require.Len(t, users, n)

	seen := map[int]bool{}
	for _, u := range users {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}

func TestFileStore_ErrorsAreSentinels(t *testing.T) {
	s := newFileStore(t)
	_, err := s.GetByID(1)
	assert.True(t, errors.Is(err, ErrUserNotFound))
}
