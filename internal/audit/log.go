// Package audit keeps an append-only SQLite log of harness operations:
// gate runs, plan generation, daemon lifecycle. Events are never mutated.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"agiharness/internal/config"
)

const defaultAuditPath = "audit/events.db"

// Logger writes audit events to a specific SQLite DB path. All events from
// one Logger share a run id so an invocation's events correlate.
type Logger struct {
	DBPath string
	RunID  string
}

// NewLogger returns a Logger bound to the provided DB path with a fresh run id.
func NewLogger(dbPath string) *Logger {
	return &Logger{DBPath: dbPath, RunID: uuid.NewString()}
}

// LogEvent appends one audit event.
func (l *Logger) LogEvent(actor string, eventType string, payload any) error {
	dbPath := ""
	runID := ""
	if l != nil {
		dbPath = l.DBPath
		runID = l.RunID
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	resolved, err := resolveDBPath(dbPath)
	if err != nil {
		return err
	}
	return writeEvent(resolved, runID, actor, eventType, payload)
}

func resolveDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		dbPath = os.Getenv(config.EnvAuditDB)
	}
	if dbPath == "" {
		dbPath = defaultAuditPath
	}
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return "", fmt.Errorf("resolve audit db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure audit db dir: %w", err)
	}
	return absPath, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			actor TEXT NOT NULL,
			type TEXT NOT NULL,
			payload_json TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create audit schema: %w", err)
	}
	return nil
}

// writeEvent opens the DB per event; there is no pooling and no batching,
// matching the one-append-per-record telemetry model.
func writeEvent(dbPath, runID, actor, eventType string, payload any) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open audit db: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := ensureSchema(db); err != nil {
		return err
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = db.Exec(
		"INSERT INTO events (id, run_id, ts, actor, type, payload_json) VALUES (?, ?, ?, ?, ?, ?)",
		uuid.NewString(),
		runID,
		time.Now().UTC(),
		actor,
		eventType,
		string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	return nil
}
