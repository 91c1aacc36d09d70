package evaluation

import (
	"math"
	"sort"
)

// KPISnapshot aggregates one evaluation run. The baseline variant persisted
// to disk drops Count.
type KPISnapshot struct {
	TaskSuccessRate          float64 `json:"task_success_rate"`
	MedianLatencyMS          float64 `json:"median_latency_ms"`
	P95LatencyMS             float64 `json:"p95_latency_ms"`
	MedianPlanningIterations float64 `json:"median_planning_iterations"`
	Count                    int     `json:"count"`
}

// ComputeKPIs aggregates per-task results into a snapshot.
func ComputeKPIs(results []Result) KPISnapshot {
	if len(results) == 0 {
		return KPISnapshot{}
	}

	var successes int
	latencies := make([]float64, 0, len(results))
	iterations := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Success {
			successes++
		}
		latencies = append(latencies, float64(r.LatencyMS))
		iterations = append(iterations, float64(r.Steps))
	}

	return KPISnapshot{
		TaskSuccessRate:          float64(successes) / float64(len(results)),
		MedianLatencyMS:          median(latencies),
		P95LatencyMS:             p95(latencies),
		MedianPlanningIterations: median(iterations),
		Count:                    len(results),
	}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// p95 sorts ascending and indexes at floor(0.95 * (n-1)); for five samples
// that is index 3, not the maximum.
func p95(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[int(math.Floor(0.95*float64(len(sorted)-1)))]
}
