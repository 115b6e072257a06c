package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/texrev/texrev/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single connection
	// serializes all access through Go's connection pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	root TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME,
	files_queued INTEGER NOT NULL DEFAULT 0,
	files_resolved INTEGER NOT NULL DEFAULT 0,
	quit INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS decisions (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	file TEXT NOT NULL,
	kind TEXT NOT NULL,
	action TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id);
`

// Migrate creates the schema. Safe to run repeatedly.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Sessions ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = newULID()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO sessions
		(id, root, started_at, files_queued, files_resolved, quit)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Root, sess.StartedAt, sess.FilesQueued, sess.FilesResolved, boolToInt(sess.Quit))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinishSession(ctx context.Context, sess *models.Session) error {
	if sess.FinishedAt.IsZero() {
		sess.FinishedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `UPDATE sessions
		SET finished_at = ?, files_queued = ?, files_resolved = ?, quit = ?
		WHERE id = ?`,
		sess.FinishedAt, sess.FilesQueued, sess.FilesResolved, boolToInt(sess.Quit), sess.ID)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish session: no session with id %s", sess.ID)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, root, started_at, finished_at, files_queued, files_resolved, quit
		FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, root, started_at, finished_at, files_queued, files_resolved, quit
		FROM sessions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var sess models.Session
	var finished sql.NullTime
	var quit int
	err := row.Scan(&sess.ID, &sess.Root, &sess.StartedAt, &finished, &sess.FilesQueued, &sess.FilesResolved, &quit)
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if finished.Valid {
		sess.FinishedAt = finished.Time
	}
	sess.Quit = quit != 0
	return &sess, nil
}

// --- Decisions ---

func (s *SQLiteStore) CreateDecision(ctx context.Context, d *models.Decision) error {
	if d.ID == "" {
		d.ID = newULID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO decisions
		(id, session_id, file, kind, action, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.SessionID, d.File, d.Kind, d.Action, d.Content, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListDecisions(ctx context.Context, sessionID string) ([]*models.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, session_id, file, kind, action, content, created_at
		FROM decisions WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*models.Decision
	for rows.Next() {
		var d models.Decision
		if err := rows.Scan(&d.ID, &d.SessionID, &d.File, &d.Kind, &d.Action, &d.Content, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		decisions = append(decisions, &d)
	}
	return decisions, rows.Err()
}
