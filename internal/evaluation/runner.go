// Package evaluation drives the planner over benchmark task specs,
// aggregates KPIs, and gates CI runs on thresholds and baseline regression.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agiharness/internal/benchmarks"
	"agiharness/internal/planner"
	"agiharness/internal/telemetry"
)

// Result is one task's evaluation outcome.
type Result struct {
	TaskID          string `json:"task_id"`
	Success         bool   `json:"success"`
	LatencyMS       int64  `json:"latency_ms"`
	PlannerStrategy string `json:"planner_strategy"`
	Steps           int    `json:"steps"`
}

// Runner evaluates every benchmark task against a planner.
type Runner struct {
	Planner planner.Planner

	// MetricsPath, when set, receives one JSON line per result. The file is
	// only ever appended to.
	MetricsPath string

	// Telemetry, when set, records one instrumentation record per propose call.
	Telemetry *telemetry.Recorder
}

// Run loads the benchmark directory and evaluates each task.
//
// Success is expect_contains matched against the task's own goal text, not
// against any produced artifact. That is a placeholder criterion carried
// over from the original harness; callers should not rely on it measuring
// plan quality.
func (r *Runner) Run(ctx context.Context, dir string) ([]Result, error) {
	_ = ctx

	tasks, err := benchmarks.LoadDir(dir)
	if err != nil {
		return nil, err
	}

	strategy := strategyOf(r.Planner)

	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		goal := task.Goal()

		start := time.Now()
		steps := r.propose(task.ID(), goal)
		latency := time.Since(start).Milliseconds()

		success := true
		if expect := task.ExpectContains(); expect != "" {
			success = strings.Contains(strings.ToLower(goal), strings.ToLower(expect))
		}

		results = append(results, Result{
			TaskID:          task.ID(),
			Success:         success,
			LatencyMS:       latency,
			PlannerStrategy: strategy,
			Steps:           len(steps),
		})
	}

	if r.MetricsPath != "" {
		if err := appendResults(r.MetricsPath, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *Runner) propose(taskID, goal string) []planner.PlanStep {
	if r.Telemetry == nil {
		return r.Planner.Propose(goal, map[string]any{})
	}
	steps, _ := telemetry.WithTelemetry(r.Telemetry, "planner.propose",
		func() map[string]any {
			return map[string]any{"task_id": taskID, "goal": goal}
		},
		func() ([]planner.PlanStep, error) {
			return r.Planner.Propose(goal, map[string]any{}), nil
		},
	)
	return steps
}

func strategyOf(p planner.Planner) string {
	if s, ok := p.(interface{ Strategy() string }); ok {
		return s.Strategy()
	}
	return "static"
}

// appendResults writes one JSON line per result, never truncating the file.
func appendResults(path string, results []Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure metrics dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("append metrics line: %w", err)
		}
	}
	return nil
}
