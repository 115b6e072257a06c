package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texrev/texrev/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	err := s.Migrate(context.Background())
	assert.NoError(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.Session{Root: "/tmp/paper", FilesQueued: 3}
	require.NoError(t, s.CreateSession(ctx, sess))
	assert.NotEmpty(t, sess.ID)
	assert.False(t, sess.StartedAt.IsZero())

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/paper", got.Root)
	assert.Equal(t, 3, got.FilesQueued)
	assert.True(t, got.FinishedAt.IsZero())
	assert.False(t, got.Quit)

	sess.FilesResolved = 2
	sess.Quit = true
	require.NoError(t, s.FinishSession(ctx, sess))

	got, err = s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FilesResolved)
	assert.True(t, got.Quit)
	assert.False(t, got.FinishedAt.IsZero())
}

func TestFinishSession_Unknown(t *testing.T) {
	s := newTestStore(t)
	err := s.FinishSession(context.Background(), &models.Session{ID: "nope"})
	assert.Error(t, err)
}

func TestListSessions_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := &models.Session{Root: "/a", StartedAt: time.Now().UTC().Add(-time.Hour)}
	newer := &models.Session{Root: "/b", StartedAt: time.Now().UTC()}
	require.NoError(t, s.CreateSession(ctx, older))
	require.NoError(t, s.CreateSession(ctx, newer))

	sessions, err := s.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "/b", sessions[0].Root)
	assert.Equal(t, "/a", sessions[1].Root)
}

func TestDecisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.Session{Root: "/tmp/paper"}
	require.NoError(t, s.CreateSession(ctx, sess))

	first := &models.Decision{
		SessionID: sess.ID,
		File:      "main.tex",
		Kind:      "addition",
		Action:    "accept",
		Content:   "new text",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	second := &models.Decision{
		SessionID: sess.ID,
		File:      "main.tex",
		Kind:      "deletion",
		Action:    "reject",
		Content:   "old text",
	}
	require.NoError(t, s.CreateDecision(ctx, first))
	require.NoError(t, s.CreateDecision(ctx, second))
	assert.NotEmpty(t, first.ID)

	decisions, err := s.ListDecisions(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "accept", decisions[0].Action)
	assert.Equal(t, "addition", decisions[0].Kind)
	assert.Equal(t, "reject", decisions[1].Action)
}

func TestListDecisions_EmptySession(t *testing.T) {
	s := newTestStore(t)
	decisions, err := s.ListDecisions(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, decisions)
}
