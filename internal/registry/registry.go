// Package registry maintains a sqlite index of launched runs under the runs
// root. The index is advisory: the run directory and its pid file remain the
// source of truth, and a run missing from the index is still a valid run.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/aretw0/runlab/internal/run"
)

// ErrNotFound is returned when no entry matches the requested run.
var ErrNotFound = errors.New("run not found in registry")

// Entry is one indexed run.
type Entry struct {
	ID        string
	Name      string
	Timestamp string
	Dir       string
	PID       int
	CreatedAt time.Time
}

// Registry wraps the sqlite database.
type Registry struct {
	db *sql.DB
}

// Open opens (and if needed creates) the registry database at path.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Registry{db: db}, nil
}

// Close releases the database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

func initSchema(db *sql.DB) error {
	const createRuns = `
CREATE TABLE IF NOT EXISTS runs (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  timestamp  TEXT NOT NULL,
  dir        TEXT NOT NULL,
  pid        INTEGER NOT NULL,
  created_at TEXT NOT NULL
);`
	if _, err := db.Exec(createRuns); err != nil {
		return fmt.Errorf("failed to init registry schema: %w", err)
	}
	return nil
}

// Record indexes a freshly launched run.
func (r *Registry) Record(ctx context.Context, rec *run.Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, name, timestamp, dir, pid, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Timestamp, rec.Dir, rec.PID,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// List returns all indexed runs, newest first.
func (r *Registry) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, timestamp, dir, pid, created_at FROM runs ORDER BY created_at DESC, timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan runs: %w", err)
	}
	return entries, nil
}

// Find resolves a run by id or, failing that, by name (most recent first).
func (r *Registry) Find(ctx context.Context, key string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, timestamp, dir, pid, created_at FROM runs
		 WHERE id = ? OR name = ?
		 ORDER BY created_at DESC LIMIT 1`, key, key)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var createdAt string
	if err := row.Scan(&e.ID, &e.Name, &e.Timestamp, &e.Dir, &e.PID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("failed to scan run row: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		e.CreatedAt = ts
	}
	return e, nil
}
