// Package history persists run-cycle outcomes in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record captures the outcome of one launch/check/rotate cycle.
type Record struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	Trigger        string
	AlreadyRunning bool
	Launched       bool
	ExitCode       sql.NullInt64
	Rotated        bool
	RotatedBytes   int64
	Error          string
}

// Triggers recorded with each cycle.
const (
	TriggerManual   = "manual"
	TriggerInterval = "interval"
	TriggerUSB      = "usb"
)

// Store manages cycle history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	keep int
}

// Open initializes or connects to the history database and applies the schema.
// keep bounds the number of retained records; older rows are pruned on insert.
func Open(path string, keep int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, keep: keep}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS cycles (
    id              TEXT PRIMARY KEY,
    started_at      TEXT NOT NULL,
    finished_at     TEXT NOT NULL,
    trigger         TEXT NOT NULL,
    already_running INTEGER NOT NULL,
    launched        INTEGER NOT NULL,
    exit_code       INTEGER,
    rotated         INTEGER NOT NULL,
    rotated_bytes   INTEGER NOT NULL,
    error           TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_cycles_started_at ON cycles(started_at);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record inserts a cycle outcome, assigning an ID when absent, and prunes
// rows beyond the retention bound.
func (s *Store) Record(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (
            id, started_at, finished_at, trigger,
            already_running, launched, exit_code, rotated, rotated_bytes, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Trigger,
		rec.AlreadyRunning,
		rec.Launched,
		rec.ExitCode,
		rec.Rotated,
		rec.RotatedBytes,
		rec.Error,
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert cycle: %w", err)
	}

	if s.keep > 0 {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM cycles WHERE id NOT IN (
                SELECT id FROM cycles ORDER BY started_at DESC LIMIT ?
            )`, s.keep); err != nil {
			return Record{}, fmt.Errorf("prune cycles: %w", err)
		}
	}
	return rec, nil
}

// List returns the most recent cycles, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, trigger,
                already_running, launched, exit_code, rotated, rotated_bytes, error
         FROM cycles ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycles: %w", err)
	}
	return out, nil
}

// Last returns the most recent cycle, or nil when none recorded.
func (s *Store) Last(ctx context.Context) (*Record, error) {
	records, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var startedAt, finishedAt string
	if err := row.Scan(
		&rec.ID, &startedAt, &finishedAt, &rec.Trigger,
		&rec.AlreadyRunning, &rec.Launched, &rec.ExitCode,
		&rec.Rotated, &rec.RotatedBytes, &rec.Error,
	); err != nil {
		return Record{}, fmt.Errorf("scan cycle: %w", err)
	}

	var err error
	if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Record{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return Record{}, fmt.Errorf("parse finished_at: %w", err)
	}
	return rec, nil
}
