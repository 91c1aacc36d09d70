package evaluation

import (
	"context"
	"errors"
	"fmt"

	"agiharness/internal/config"
)

// ErrNoTasks distinguishes "nothing to evaluate" from a threshold failure.
var ErrNoTasks = errors.New("no benchmark tasks found")

// Thresholds are the minimums a run must meet. The latency minimums are
// placeholders (default 0) kept for interface stability.
type Thresholds struct {
	MinSuccessRate        float64 `json:"min_success_rate"`
	MinPlanningIterations float64 `json:"min_planning_iterations"`
	MinMedianLatencyMS    float64 `json:"min_median_latency_ms"`
	MinP95LatencyMS       float64 `json:"min_p95_latency_ms"`
}

// DefaultThresholds returns the stock gate configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSuccessRate:        0.9,
		MinPlanningIterations: 1.0,
	}
}

// Report is the gate's full outcome, returned on both pass and fail.
type Report struct {
	KPIs       KPISnapshot `json:"kpis"`
	Thresholds Thresholds  `json:"thresholds"`
	Regression bool        `json:"regression"`
	Baseline   *Baseline   `json:"baseline,omitempty"`
	Failures   []string    `json:"failures,omitempty"`
}

// Gate orchestrates a full evaluation run: benchmarks, KPIs, baseline
// comparison, threshold decision.
type Gate struct {
	Runner       *Runner
	BaselinePath string
	TrunkRef     string
	Thresholds   Thresholds
}

// Run evaluates the benchmark directory and returns the report plus the
// pass/fail outcome. Zero tasks is a hard error, never a KPI report.
func (g *Gate) Run(ctx context.Context, dir string) (*Report, bool, error) {
	results, err := g.Runner.Run(ctx, dir)
	if err != nil {
		return nil, false, err
	}
	if len(results) == 0 {
		return nil, false, fmt.Errorf("%w in %s", ErrNoTasks, dir)
	}

	kpis := ComputeKPIs(results)
	report := &Report{KPIs: kpis, Thresholds: g.Thresholds}

	force := config.ForceBaseline()

	var baseline *Baseline
	if !force {
		baseline, err = LoadBaseline(g.BaselinePath)
		if err != nil {
			return nil, false, err
		}
	}
	if baseline != nil {
		report.Baseline = baseline
		if kpis.TaskSuccessRate < baseline.TaskSuccessRate {
			report.Regression = true
			report.Failures = append(report.Failures,
				fmt.Sprintf("task_success_rate %.4f regressed below baseline %.4f",
					kpis.TaskSuccessRate, baseline.TaskSuccessRate))
		}
	}

	// Baselines are only ever captured on trunk builds, either the first
	// time or under an explicit force override. On capture, report.Baseline
	// carries the freshly written snapshot rather than whatever was on disk
	// before the run; no comparison happened against it (Regression stays
	// false on such runs).
	if (baseline == nil || force) && IsTrunkBuild(g.TrunkRef) {
		if err := SaveBaseline(g.BaselinePath, kpis); err != nil {
			return nil, false, err
		}
		if report.Baseline == nil {
			report.Baseline = &Baseline{
				TaskSuccessRate:          kpis.TaskSuccessRate,
				MedianLatencyMS:          kpis.MedianLatencyMS,
				P95LatencyMS:             kpis.P95LatencyMS,
				MedianPlanningIterations: kpis.MedianPlanningIterations,
			}
		}
	}

	if kpis.TaskSuccessRate < g.Thresholds.MinSuccessRate {
		report.Failures = append(report.Failures,
			fmt.Sprintf("task_success_rate %.4f below minimum %.4f",
				kpis.TaskSuccessRate, g.Thresholds.MinSuccessRate))
	}
	if kpis.MedianPlanningIterations < g.Thresholds.MinPlanningIterations {
		report.Failures = append(report.Failures,
			fmt.Sprintf("median_planning_iterations %.2f below minimum %.2f",
				kpis.MedianPlanningIterations, g.Thresholds.MinPlanningIterations))
	}
	if kpis.MedianLatencyMS < g.Thresholds.MinMedianLatencyMS {
		report.Failures = append(report.Failures,
			fmt.Sprintf("median_latency_ms %.2f below minimum %.2f",
				kpis.MedianLatencyMS, g.Thresholds.MinMedianLatencyMS))
	}
	if kpis.P95LatencyMS < g.Thresholds.MinP95LatencyMS {
		report.Failures = append(report.Failures,
			fmt.Sprintf("p95_latency_ms %.2f below minimum %.2f",
				kpis.P95LatencyMS, g.Thresholds.MinP95LatencyMS))
	}

	return report, len(report.Failures) == 0, nil
}
