package memory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.db")
	s, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	return s, path
}

func TestStore_PutGet(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	dir := Bucket("en", "ko", 1)
	require.NoError(t, s.Put(dir, "Hello world!", Entry{Text: "안녕 세계!", Score: -0.4}))

	e, err := s.Get(dir, "Hello world!")
	require.NoError(t, err)
	assert.Equal(t, "안녕 세계!", e.Text)
	assert.Equal(t, -0.4, e.Score)
	assert.True(t, fixed.Equal(e.Created))
}

func TestStore_NotFound(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	_, err := s.Get("en-ko", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put("en-ko", "a", Entry{Text: "b"}))
	_, err = s.Get("en-ko", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Directions do not share entries.
	_, err = s.Get("ko-en", "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LenAndOverwrite(t *testing.T) {
	s, _ := openTestStore(t)
	defer s.Close()

	n, err := s.Len("en-ko")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Put("en-ko", "a", Entry{Text: "1"}))
	require.NoError(t, s.Put("en-ko", "b", Entry{Text: "2"}))
	require.NoError(t, s.Put("en-ko", "a", Entry{Text: "3"}))

	n, err = s.Len("en-ko")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	e, err := s.Get("en-ko", "a")
	require.NoError(t, err)
	assert.Equal(t, "3", e.Text)
}

func TestStore_Persists(t *testing.T) {
	s, path := openTestStore(t)
	require.NoError(t, s.Put("ko-en", "안녕", Entry{Text: "hi", Score: -1}))
	require.NoError(t, s.Close())

	reopened, err := Open(path, Options{Timeout: time.Second, ReadOnly: true})
	require.NoError(t, err)
	defer reopened.Close()

	e, err := reopened.Get("ko-en", "안녕")
	require.NoError(t, err)
	assert.Equal(t, "hi", e.Text)
}

func TestBucket_SeparatesBeamSizes(t *testing.T) {
	assert.Equal(t, "en-ko/1", Bucket("en", "ko", 1))
	assert.NotEqual(t, Bucket("en", "ko", 1), Bucket("en", "ko", 3))
}
