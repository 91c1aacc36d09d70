package audit

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestLogEventAppends(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")
	logger := NewLogger(dbPath)

	if err := logger.LogEvent("cli", "gate_started", map[string]any{"dir": "benchmarks"}); err != nil {
		t.Fatalf("log event: %v", err)
	}
	if err := logger.LogEvent("cli", "gate_finished", map[string]any{"pass": true}); err != nil {
		t.Fatalf("log event: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 2 {
		t.Fatalf("event count = %d, want 2", count)
	}

	var distinctRuns int
	if err := db.QueryRow("SELECT COUNT(DISTINCT run_id) FROM events").Scan(&distinctRuns); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if distinctRuns != 1 {
		t.Fatalf("distinct run ids = %d, want 1 (one logger, one run)", distinctRuns)
	}
}

func TestSeparateLoggersSeparateRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")

	if err := NewLogger(dbPath).LogEvent("cli", "a", nil); err != nil {
		t.Fatal(err)
	}
	if err := NewLogger(dbPath).LogEvent("cli", "b", nil); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var distinctRuns int
	if err := db.QueryRow("SELECT COUNT(DISTINCT run_id) FROM events").Scan(&distinctRuns); err != nil {
		t.Fatal(err)
	}
	if distinctRuns != 2 {
		t.Fatalf("distinct run ids = %d, want 2", distinctRuns)
	}
}
