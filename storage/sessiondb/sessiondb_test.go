package sessiondb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assignflow/core/session"
)

func openStore(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "data", "sessions.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestStore_SaveLoadDelete(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	_, err := s.Load("nope")
	assert.Equal(t, session.ErrNoRecord, err)

	rec := session.Record{
		ID:           "sid-1",
		RefreshToken: "refresh-1",
		View:         "course-c1",
		UpdatedAt:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(rec))

	got, err := s.Load("sid-1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	rec.View = "resources"
	require.NoError(t, s.Save(rec))
	got, err = s.Load("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "resources", got.View)

	require.NoError(t, s.Delete("sid-1"))
	_, err = s.Load("sid-1")
	assert.Equal(t, session.ErrNoRecord, err)
	assert.NoError(t, s.Delete("sid-1"))
}

func TestStore_survivesReopen(t *testing.T) {
	s, path := openStore(t)
	rec := session.Record{ID: "sid-1", RosterUserID: "cse001", View: "dashboard", UpdatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, s.Save(rec))
	require.NoError(t, s.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load("sid-1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestStore_Expire(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for id, age := range map[string]time.Duration{"old-1": 48 * time.Hour, "old-2": 25 * time.Hour, "fresh": time.Hour} {
		require.NoError(t, s.Save(session.Record{ID: id, UpdatedAt: now.Add(-age)}))
	}

	n, err := s.Expire(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Load("fresh")
	assert.NoError(t, err)
	_, err = s.Load("old-1")
	assert.Equal(t, session.ErrNoRecord, err)
}
