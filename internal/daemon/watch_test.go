package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return parsed
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "daemon.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFingerprintStableAndOrderIndependent(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yml"), []byte("id: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("id: b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := Fingerprint(dir)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	second, err := Fingerprint(dir)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if first != second {
		t.Fatalf("fingerprint not stable: %s vs %s", first, second)
	}
	if first == "" {
		t.Fatal("non-empty dir should have a non-empty fingerprint")
	}
}

func TestFingerprintMissingDirIsEmpty(t *testing.T) {
	got, err := Fingerprint(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	if got != "" {
		t.Fatalf("missing dir fingerprint = %q, want empty", got)
	}
}

func TestWatcherArmsThenDetectsChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yml"), []byte("id: a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := &Watcher{Store: newTestStore(t), Dir: dir}

	// First observation arms the watcher.
	changed, err := w.Changed()
	if err != nil {
		t.Fatalf("changed: %v", err)
	}
	if changed {
		t.Fatal("first observation must not report a change")
	}

	// No change.
	changed, err = w.Changed()
	if err != nil {
		t.Fatalf("changed: %v", err)
	}
	if changed {
		t.Fatal("unchanged dir reported a change")
	}

	// Modify a task file.
	if err := os.WriteFile(filepath.Join(dir, "a.yml"), []byte("id: a2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err = w.Changed()
	if err != nil {
		t.Fatalf("changed: %v", err)
	}
	if !changed {
		t.Fatal("modified dir not detected")
	}

	// And settle again.
	changed, err = w.Changed()
	if err != nil {
		t.Fatalf("changed: %v", err)
	}
	if changed {
		t.Fatal("watcher did not settle after change")
	}
}

func TestStoreRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	if err := store.StartRun("run-1", mustTime(t, "2026-08-24T10:00:00Z")); err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := store.FinishRun("run-1", mustTime(t, "2026-08-24T10:00:05Z"), "passed", map[string]any{"pass": true}); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := store.RecentRuns(5)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	if runs[0].Status != "passed" {
		t.Fatalf("status = %q, want passed", runs[0].Status)
	}
	if runs[0].FinishedAt == nil {
		t.Fatal("finished_at not recorded")
	}
}
