// Package cache implements the budget summary publisher on Redis.
package cache

import (
	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// summaryPayload is the JSON form of a summary stored and published in Redis.
type summaryPayload struct {
	BudgetID        uuid.UUID          `json:"budget_id"`
	TotalBudget     float64            `json:"total_budget"`
	Breakdown       map[string]float64 `json:"breakdown"`
	ActualAmounts   map[string]float64 `json:"actual_amounts"`
	LineItems       []lineItemPayload  `json:"line_items"`
	TotalAllocated  float64            `json:"total_allocated"`
	RemainingBudget float64            `json:"remaining_budget"`
	IsOverBudget    bool               `json:"is_over_budget"`
}

type lineItemPayload struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
}

func toPayload(summary entity.Summary) summaryPayload {
	breakdown := make(map[string]float64, len(summary.Breakdown))
	for key, pct := range summary.Breakdown {
		breakdown[string(key)] = pct
	}
	amounts := make(map[string]float64, len(summary.ActualAmounts))
	for key, amount := range summary.ActualAmounts {
		amounts[string(key)] = amount
	}
	items := make([]lineItemPayload, len(summary.LineItems))
	for i, item := range summary.LineItems {
		items[i] = lineItemPayload{
			ID:       item.ID,
			Name:     item.Name,
			Amount:   item.Amount,
			Category: string(item.Category),
		}
	}

	return summaryPayload{
		BudgetID:        summary.BudgetID,
		TotalBudget:     summary.TotalBudget,
		Breakdown:       breakdown,
		ActualAmounts:   amounts,
		LineItems:       items,
		TotalAllocated:  summary.TotalAllocated,
		RemainingBudget: summary.RemainingBudget,
		IsOverBudget:    summary.IsOverBudget,
	}
}

func (p summaryPayload) toSummary() entity.Summary {
	breakdown := make(entity.Breakdown, len(p.Breakdown))
	for key, pct := range p.Breakdown {
		breakdown[entity.CategoryKey(key)] = pct
	}
	amounts := make(map[entity.CategoryKey]float64, len(p.ActualAmounts))
	for key, amount := range p.ActualAmounts {
		amounts[entity.CategoryKey(key)] = amount
	}
	items := make([]entity.LineItem, len(p.LineItems))
	for i, item := range p.LineItems {
		items[i] = entity.LineItem{
			ID:       item.ID,
			Name:     item.Name,
			Amount:   item.Amount,
			Category: entity.CategoryKey(item.Category),
		}
	}

	return entity.Summary{
		BudgetID:      p.BudgetID,
		TotalBudget:   p.TotalBudget,
		Breakdown:     breakdown,
		ActualAmounts: amounts,
		LineItems:     items,
		Totals: entity.Totals{
			TotalAllocated:  p.TotalAllocated,
			RemainingBudget: p.RemainingBudget,
			IsOverBudget:    p.IsOverBudget,
		},
	}
}
