package cli

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// StepResult is the budget summary after one step of a plan.
type StepResult struct {
	Label   string
	Summary entity.Summary
}

// Simulate runs a plan against a fresh budget and collects the summary the
// budget emits after the initial state and after each step.
func Simulate(plan *Plan) ([]StepResult, error) {
	budget := entity.NewBudget(uuid.Nil, plan.Name, plan.TotalBudget)
	for _, item := range plan.LineItems {
		budget.AddLineItem(item.Name, item.Amount, entity.CategoryKey(item.Category))
	}

	var last entity.Summary
	budget.Observe(func(s entity.Summary) { last = s })

	results := []StepResult{{Label: "start", Summary: last}}

	for i, step := range plan.Steps {
		label, err := applyStep(budget, step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, StepResult{Label: label, Summary: last})
	}

	return results, nil
}

func applyStep(budget *entity.Budget, step PlanStep) (string, error) {
	switch step.Action {
	case ActionSet, "":
		if !budget.SetCategoryPercentage(entity.CategoryKey(step.Category), step.Value) {
			return "", fmt.Errorf("unknown category %q", step.Category)
		}
		return fmt.Sprintf("%s → %s", step.Category, FormatPercent(step.Value)), nil

	case ActionReset:
		budget.ResetBreakdown()
		return "reset", nil

	case ActionTotal:
		budget.SetTotalBudget(step.Value)
		return "total → " + FormatAmount(step.Value), nil

	case ActionAdd:
		item := budget.AddLineItem(step.Name, step.Amount, entity.CategoryKey(step.Category))
		return fmt.Sprintf("+ %s %s", item.Name, FormatAmount(item.Amount)), nil

	case ActionRemove:
		for _, item := range budget.LineItems {
			if item.Name == step.Name {
				budget.RemoveLineItem(item.ID)
				return "- " + step.Name, nil
			}
		}
		return "", fmt.Errorf("no line item named %q", step.Name)
	}

	return "", fmt.Errorf("unknown action %q", step.Action)
}
