package evaluation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agiharness/internal/planner"
)

func writeTask(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunnerSuccessChecksGoalText(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "t1.yml", "id: t1\ngoal: Generate optimize report\nexpect_contains: report\n")

	r := &Runner{Planner: planner.NewStaticPlanner()}
	results, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("result count = %d, want 1", len(results))
	}

	got := results[0]
	if !got.Success {
		t.Fatal("expect_contains matched the goal, success should be true")
	}
	if got.Steps != 3 {
		t.Fatalf("steps = %d, want 3 (report plan wins over optimize)", got.Steps)
	}
	if got.PlannerStrategy != "static" {
		t.Fatalf("strategy = %q, want static", got.PlannerStrategy)
	}
	if got.LatencyMS < 0 {
		t.Fatalf("latency = %d, want >= 0", got.LatencyMS)
	}
}

func TestRunnerFailureWhenExpectMissing(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "t1.yml", "id: t1\ngoal: deploy the service\nexpect_contains: report\n")

	r := &Runner{Planner: planner.NewStaticPlanner()}
	results, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if results[0].Success {
		t.Fatal("goal does not contain expect_contains, success should be false")
	}
	if results[0].Steps != 2 {
		t.Fatalf("steps = %d, want 2 (fallback plan)", results[0].Steps)
	}
}

func TestRunnerNoExpectMeansSuccess(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "t1.yml", "id: t1\ngoal: anything\n")

	r := &Runner{Planner: planner.NewStaticPlanner()}
	results, err := r.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !results[0].Success {
		t.Fatal("a task without expect_contains always succeeds")
	}
}

func TestRunnerMetricsAppendOnly(t *testing.T) {
	dir := t.TempDir()
	writeTask(t, dir, "t1.yml", "id: t1\ngoal: generate report\n")
	metricsPath := filepath.Join(t.TempDir(), "metrics.jsonl")

	r := &Runner{Planner: planner.NewStaticPlanner(), MetricsPath: metricsPath}
	for i := 0; i < 2; i++ {
		if _, err := r.Run(context.Background(), dir); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("metrics lines = %d, want 2 (append, never truncate)", len(lines))
	}
	var result Result
	if err := json.Unmarshal([]byte(lines[0]), &result); err != nil {
		t.Fatalf("metrics line is not valid JSON: %v", err)
	}
	if result.TaskID != "t1" {
		t.Fatalf("task_id = %q", result.TaskID)
	}
}

func TestRunnerEmptyDir(t *testing.T) {
	r := &Runner{Planner: planner.NewStaticPlanner()}
	results, err := r.Run(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("result count = %d, want 0", len(results))
	}
}
