package daemon

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages daemon state in SQLite: gate run records and the kv slots
// backing the benchmark watcher.
type Store struct {
	DBPath string
	db     *sql.DB
}

// Run is one recorded gate run.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Status      string
	SummaryJSON string
}

// Open opens or creates the daemon state database.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve daemon db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure daemon db dir: %w", err)
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("open daemon db: %w", err)
	}

	store := &Store{DBPath: absPath, db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) ensureSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS gate_runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	status TEXT NOT NULL,
	summary_json TEXT
);

CREATE INDEX IF NOT EXISTS idx_gate_runs_started ON gate_runs(started_at);

CREATE TABLE IF NOT EXISTS daemon_kv (
	key TEXT PRIMARY KEY,
	value TEXT
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create daemon schema: %w", err)
	}
	return nil
}

// GetKV returns the value for key, or empty string when unset.
func (s *Store) GetKV(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM daemon_kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get kv %s: %w", key, err)
	}
	return value, nil
}

// SetKV upserts the value for key.
func (s *Store) SetKV(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO daemon_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set kv %s: %w", key, err)
	}
	return nil
}

// StartRun inserts a running gate run row.
func (s *Store) StartRun(id string, startedAt time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO gate_runs (id, started_at, status) VALUES (?, ?, ?)",
		id, startedAt.UTC().Format(time.RFC3339), "running",
	)
	if err != nil {
		return fmt.Errorf("insert gate run: %w", err)
	}
	return nil
}

// FinishRun marks the run finished with a status and summary.
func (s *Store) FinishRun(id string, finishedAt time.Time, status string, summary any) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	_, err = s.db.Exec(
		"UPDATE gate_runs SET finished_at = ?, status = ?, summary_json = ? WHERE id = ?",
		finishedAt.UTC().Format(time.RFC3339), status, string(summaryJSON), id,
	)
	if err != nil {
		return fmt.Errorf("finish gate run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, status, COALESCE(summary_json, '')
		FROM gate_runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query gate runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Status, &run.SummaryJSON); err != nil {
			return nil, fmt.Errorf("scan gate run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if finishedAt.Valid && finishedAt.String != "" {
			t, parseErr := time.Parse(time.RFC3339, finishedAt.String)
			if parseErr == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
