package planner

// PlanStep is one atomic unit of a plan naming an action and its input.
type PlanStep struct {
	ID           string  `json:"id"`
	Action       string  `json:"action"`
	Input        string  `json:"input"`
	Rationale    string  `json:"rationale,omitempty"`
	CostEstimate float64 `json:"cost_estimate"`
}

// Planner proposes ordered plan steps for a goal and optionally refines a
// previous plan from feedback.
type Planner interface {
	Propose(goal string, context map[string]any) []PlanStep
	Refine(feedback string) []PlanStep
}

// Plan is the serialized artifact written under artifacts/plans/<date>/.
type Plan struct {
	ID          string     `json:"id"`
	Goal        string     `json:"goal"`
	Strategy    string     `json:"strategy"`
	GeneratedAt string     `json:"generated_at"`
	Steps       []PlanStep `json:"steps"`
}
