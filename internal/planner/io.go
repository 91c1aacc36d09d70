package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildPlan assembles a validated plan artifact from a planner's proposal.
func BuildPlan(p Planner, goal string, now time.Time) (Plan, error) {
	steps := p.Propose(goal, map[string]any{})

	strategy := "static"
	if s, ok := p.(interface{ Strategy() string }); ok {
		strategy = s.Strategy()
	}

	asOf := now.UTC().Format("2006-01-02")
	plan := Plan{
		ID:          fmt.Sprintf("PLAN-%s", asOf),
		Goal:        goal,
		Strategy:    strategy,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Steps:       steps,
	}
	if err := ValidatePlan(plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

// WritePlan persists the plan under <baseDir>/<date>/plan.json and returns the path.
func WritePlan(baseDir string, plan Plan) (string, error) {
	if err := ValidatePlan(plan); err != nil {
		return "", err
	}

	asOf := plan.GeneratedAt
	if t, err := time.Parse(time.RFC3339, plan.GeneratedAt); err == nil {
		asOf = t.UTC().Format("2006-01-02")
	}

	planPath := filepath.Join(baseDir, asOf, "plan.json")
	if err := os.MkdirAll(filepath.Dir(planPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure plan dir: %w", err)
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(planPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write plan: %w", err)
	}
	return planPath, nil
}

// LoadPlan reads and validates a plan artifact.
func LoadPlan(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return Plan{}, fmt.Errorf("parse plan json: %w", err)
	}
	if err := ValidatePlan(plan); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
