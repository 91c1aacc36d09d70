package planner

import (
	"fmt"
	"strings"
)

// DefaultMaxSteps caps a static plan at three steps.
const DefaultMaxSteps = 3

// StaticPlanner maps goal keywords to a fixed step sequence. It never learns
// and never adapts; Refine is intentionally inert.
type StaticPlanner struct {
	MaxSteps int
}

// NewStaticPlanner returns a StaticPlanner with the default step cap.
func NewStaticPlanner() *StaticPlanner {
	return &StaticPlanner{MaxSteps: DefaultMaxSteps}
}

// Strategy identifies this planner in evaluation results.
func (p *StaticPlanner) Strategy() string {
	return "static"
}

// Propose returns the keyword-matched step sequence for the goal, truncated
// to MaxSteps. Matching is case-insensitive and "report" takes precedence
// over "optimize".
func (p *StaticPlanner) Propose(goal string, context map[string]any) []PlanStep {
	_ = context

	lowered := strings.ToLower(goal)

	var actions []string
	var rationale string
	switch {
	case strings.Contains(lowered, "report"):
		actions = []string{"analyze_goal", "collect_data", "generate_report"}
		rationale = "goal requests a report"
	case strings.Contains(lowered, "optimize"):
		actions = []string{"analyze_goal", "collect_metrics", "apply_optimization"}
		rationale = "goal requests an optimization"
	default:
		actions = []string{"analyze_goal", "execute_action"}
		rationale = "no specialized keyword matched"
	}

	maxSteps := p.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	if len(actions) > maxSteps {
		actions = actions[:maxSteps]
	}

	steps := make([]PlanStep, 0, len(actions))
	for i, action := range actions {
		steps = append(steps, PlanStep{
			ID:           stepID(i),
			Action:       action,
			Input:        goal,
			Rationale:    rationale,
			CostEstimate: 1,
		})
	}
	return steps
}

// Refine always returns an empty plan: the static planner does not adapt.
func (p *StaticPlanner) Refine(feedback string) []PlanStep {
	_ = feedback
	return []PlanStep{}
}

func stepID(index int) string {
	return fmt.Sprintf("step-%d", index+1)
}
