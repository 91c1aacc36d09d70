package planner

import (
	"fmt"
	"strings"
)

// ValidatePlan checks structural invariants before a plan artifact is written.
func ValidatePlan(plan Plan) error {
	if strings.TrimSpace(plan.ID) == "" {
		return fmt.Errorf("plan id is required")
	}
	if strings.TrimSpace(plan.Goal) == "" {
		return fmt.Errorf("plan goal is required")
	}
	if len(plan.Steps) == 0 {
		return fmt.Errorf("plan must include at least one step")
	}
	seen := make(map[string]struct{}, len(plan.Steps))
	for idx, step := range plan.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("plan step %d: %w", idx, err)
		}
		if _, dup := seen[step.ID]; dup {
			return fmt.Errorf("plan step %d: duplicate step id %q", idx, step.ID)
		}
		seen[step.ID] = struct{}{}
	}
	return nil
}

func validateStep(step PlanStep) error {
	if strings.TrimSpace(step.ID) == "" {
		return fmt.Errorf("step id is required")
	}
	if strings.TrimSpace(step.Action) == "" {
		return fmt.Errorf("step action is required")
	}
	if step.CostEstimate < 0 {
		return fmt.Errorf("step cost_estimate must be non-negative")
	}
	return nil
}
