// Package sqlite persists run records to an embedded SQLite database using
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"numatage/pkg/domain"
)

var _ domain.RunStore = (*Store)(nil)

const defaultPath = "numatage.db"

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	started_at TEXT NOT NULL,
	payload BLOB NOT NULL
)`

// Store keeps one JSON-encoded row per run.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// startedAtLayout is fixed width so that started_at sorts lexically in time order.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// SaveRun upserts the record.
func (s *Store) SaveRun(ctx context.Context, run domain.RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("sqlite store: run id required")
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs(id, status, started_at, payload) VALUES(?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET status=excluded.status, started_at=excluded.started_at, payload=excluded.payload`,
		run.ID, string(run.Status), run.StartedAt.UTC().Format(startedAtLayout), payload)
	if err != nil {
		return fmt.Errorf("upsert run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads one record by id.
func (s *Store) GetRun(ctx context.Context, id string) (domain.RunRecord, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RunRecord{}, false, nil
	}
	if err != nil {
		return domain.RunRecord{}, false, fmt.Errorf("select run %s: %w", id, err)
	}
	run, err := decodeRun(payload)
	if err != nil {
		return domain.RunRecord{}, false, err
	}
	return run, true, nil
}

// ListRuns returns every record ordered by start time then id.
func (s *Store) ListRuns(ctx context.Context) ([]domain.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []domain.RunRecord
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		run, err := decodeRun(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func decodeRun(payload []byte) (domain.RunRecord, error) {
	var run domain.RunRecord
	if err := json.Unmarshal(payload, &run); err != nil {
		return domain.RunRecord{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}
