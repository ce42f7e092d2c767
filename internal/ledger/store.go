package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one row of the run ledger. Only final results are recorded;
// intermediate node state never touches the database.
type Run struct {
	ID        string
	Source    string
	InputType string
	Slug      string
	Status    string
	Error     string
	Artifacts []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store manages run-history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the ledger database and applies
// migrations. A sidecar flock enforces a single writing process.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another distill process is using the ledger")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database connection and the process lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Create inserts a new run in the running state.
func (s *Store) Create(ctx context.Context, id, source string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, source, StatusRunning, now, now)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Complete marks a run finished and records its outputs.
func (s *Store) Complete(ctx context.Context, id, inputType, slug string, artifacts []string) error {
	encoded, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}
	return s.update(ctx,
		`UPDATE runs SET status = ?, input_type = ?, slug = ?, artifacts = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, inputType, slug, string(encoded), time.Now().UTC().Format(time.RFC3339Nano), id)
}

// Fail marks a run aborted with its failure message and whatever
// artifacts were already saved.
func (s *Store) Fail(ctx context.Context, id, inputType, message string, artifacts []string) error {
	encoded, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}
	return s.update(ctx,
		`UPDATE runs SET status = ?, input_type = ?, error = ?, artifacts = ?, updated_at = ? WHERE id = ?`,
		StatusFailed, inputType, message, string(encoded), time.Now().UTC().Format(time.RFC3339Nano), id)
}

func (s *Store) update(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: rows affected: %w", err)
	}
	if affected == 0 {
		return errors.New("update run: no such run")
	}
	return nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, input_type, slug, status, error, artifacts, created_at, updated_at
         FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run           Run
			artifactsJSON string
			createdAtRaw  string
			updatedAtRaw  string
		)
		if err := rows.Scan(&run.ID, &run.Source, &run.InputType, &run.Slug, &run.Status,
			&run.Error, &artifactsJSON, &createdAtRaw, &updatedAtRaw); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(artifactsJSON), &run.Artifacts); err != nil {
			return nil, fmt.Errorf("decode artifacts for run %s: %w", run.ID, err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtRaw)
		run.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAtRaw)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
