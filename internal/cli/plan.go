package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// Step actions understood by a plan.
const (
	ActionSet    = "set"
	ActionReset  = "reset"
	ActionTotal  = "total"
	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Plan is a budget scenario read from a TOML file.
type Plan struct {
	Name        string         `toml:"name"`
	TotalBudget float64        `toml:"total_budget"`
	LineItems   []PlanLineItem `toml:"line_items"`
	Steps       []PlanStep     `toml:"steps"`
}

// PlanLineItem is a line item present before the first step.
type PlanLineItem struct {
	Name     string  `toml:"name"`
	Amount   float64 `toml:"amount"`
	Category string  `toml:"category"`
}

// PlanStep is one change applied to the budget. Action defaults to "set",
// which moves Category to Value percent.
type PlanStep struct {
	Action   string  `toml:"action"`
	Category string  `toml:"category"`
	Value    float64 `toml:"value"`
	Name     string  `toml:"name"`
	Amount   float64 `toml:"amount"`
}

// LoadPlan decodes and validates a plan file.
func LoadPlan(path string) (*Plan, error) {
	var plan Plan
	meta, err := toml.DecodeFile(path, &plan)
	if err != nil {
		return nil, fmt.Errorf("reading plan %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("plan %s: unknown key %q", path, undecoded[0].String())
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan %s: %w", path, err)
	}
	return &plan, nil
}

// Validate checks step actions and categories.
func (p *Plan) Validate() error {
	for i := range p.Steps {
		step := &p.Steps[i]
		if step.Action == "" {
			step.Action = ActionSet
		}

		switch step.Action {
		case ActionSet:
			if !entity.CategoryKey(step.Category).IsValid() {
				return fmt.Errorf("step %d: unknown category %q", i+1, step.Category)
			}
		case ActionReset, ActionTotal:
		case ActionAdd, ActionRemove:
			if step.Name == "" {
				return fmt.Errorf("step %d: %s needs a line item name", i+1, step.Action)
			}
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
	}
	return nil
}
