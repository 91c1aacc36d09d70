package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"agiharness/internal/config"
)

// DefaultBaselinePath is the baseline file relative to the working directory.
const DefaultBaselinePath = "baseline_kpis.json"

// DefaultTrunkRef is the branch indicator that permits baseline capture.
const DefaultTrunkRef = "refs/heads/main"

// Baseline is a persisted prior run's KPIs, used for regression comparison.
// It is the KPISnapshot minus Count.
type Baseline struct {
	TaskSuccessRate          float64 `json:"task_success_rate"`
	MedianLatencyMS          float64 `json:"median_latency_ms"`
	P95LatencyMS             float64 `json:"p95_latency_ms"`
	MedianPlanningIterations float64 `json:"median_planning_iterations"`
}

// IsTrunkBuild reports whether this run may capture a baseline. The check is
// GITHUB_REF equality today; other CI systems swap this one predicate.
func IsTrunkBuild(trunkRef string) bool {
	if trunkRef == "" {
		trunkRef = DefaultTrunkRef
	}
	return config.BranchRef() == trunkRef
}

// LoadBaseline reads the baseline file; a missing file is (nil, nil).
func LoadBaseline(path string) (*Baseline, error) {
	if path == "" {
		path = DefaultBaselinePath
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var baseline Baseline
	if err := json.Unmarshal(data, &baseline); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	return &baseline, nil
}

// SaveBaseline writes the current KPIs, minus count, as the new baseline.
// The write is a plain overwrite: concurrent gate runs sharing a path can
// race, which is acceptable for a single CI runner.
func SaveBaseline(path string, kpis KPISnapshot) error {
	if path == "" {
		path = DefaultBaselinePath
	}
	baseline := Baseline{
		TaskSuccessRate:          kpis.TaskSuccessRate,
		MedianLatencyMS:          kpis.MedianLatencyMS,
		P95LatencyMS:             kpis.P95LatencyMS,
		MedianPlanningIterations: kpis.MedianPlanningIterations,
	}
	data, err := json.MarshalIndent(baseline, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure baseline dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}
	return nil
}
