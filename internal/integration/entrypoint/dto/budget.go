// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// Amount is a money value that accepts a JSON number or a numeric string.
// Anything that does not parse as a non-negative number becomes 0.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*a = Amount(entity.CoerceAmount(raw))
	return nil
}

// CreateBudgetRequest represents the request body for budget creation.
type CreateBudgetRequest struct {
	Name        string  `json:"name" binding:"max=100"`
	TotalBudget *Amount `json:"total_budget,omitempty"`
	AlertEmail  string  `json:"alert_email,omitempty" binding:"omitempty,email"`
}

// SetTotalBudgetRequest represents the request body for changing the total budget.
type SetTotalBudgetRequest struct {
	TotalBudget *Amount `json:"total_budget" binding:"required"`
}

// SetCategoryPercentageRequest represents the request body for moving a category slider.
type SetCategoryPercentageRequest struct {
	Percentage *float64 `json:"percentage" binding:"required,gte=0,lte=100"`
}

// AddLineItemRequest represents the request body for adding a line item.
type AddLineItemRequest struct {
	Name     string `json:"name"`
	Amount   Amount `json:"amount"`
	Category string `json:"category,omitempty"`
}

// UpdateLineItemRequest represents the request body for updating a line item.
type UpdateLineItemRequest struct {
	Name     *string `json:"name,omitempty"`
	Amount   *Amount `json:"amount,omitempty"`
	Category *string `json:"category,omitempty"`
}

// LineItemResponse represents a single line item in API responses.
type LineItemResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// CategoryAllocationResponse is one category of the breakdown with its amount.
type CategoryAllocationResponse struct {
	Key        string  `json:"key"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// BudgetSummaryResponse is the snapshot returned after every change.
type BudgetSummaryResponse struct {
	BudgetID        string                       `json:"budget_id"`
	TotalBudget     float64                      `json:"total_budget"`
	Breakdown       map[string]float64           `json:"breakdown"`
	ActualAmounts   map[string]float64           `json:"actual_amounts"`
	Categories      []CategoryAllocationResponse `json:"categories"`
	LineItems       []LineItemResponse           `json:"line_items"`
	TotalAllocated  float64                      `json:"total_allocated"`
	RemainingBudget float64                      `json:"remaining_budget"`
	IsOverBudget    bool                         `json:"is_over_budget"`
}

// BudgetResponse represents a budget with its current summary.
type BudgetResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	AlertEmail string                `json:"alert_email,omitempty"`
	Summary    BudgetSummaryResponse `json:"summary"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// BudgetListResponse represents the response for listing budgets.
type BudgetListResponse struct {
	Budgets []BudgetResponse `json:"budgets"`
}

// AddLineItemResponse represents the response for adding a line item.
type AddLineItemResponse struct {
	LineItem LineItemResponse      `json:"line_item"`
	Summary  BudgetSummaryResponse `json:"summary"`
}

// ToLineItemResponse converts a domain LineItem to a LineItemResponse DTO.
func ToLineItemResponse(item entity.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:       item.ID.String(),
		Name:     item.Name,
		Amount:   item.Amount,
		Category: string(item.Category),
	}
}

// ToBudgetSummaryResponse converts a domain Summary to a BudgetSummaryResponse DTO.
func ToBudgetSummaryResponse(s entity.Summary) BudgetSummaryResponse {
	breakdown := make(map[string]float64, len(s.Breakdown))
	amounts := make(map[string]float64, len(s.ActualAmounts))
	categories := make([]CategoryAllocationResponse, 0, len(entity.CategoryKeys))
	for _, key := range entity.CategoryKeys {
		breakdown[string(key)] = s.Breakdown[key]
		amounts[string(key)] = s.ActualAmounts[key]
		categories = append(categories, CategoryAllocationResponse{
			Key:        string(key),
			Percentage: s.Breakdown[key],
			Amount:     s.ActualAmounts[key],
		})
	}

	items := make([]LineItemResponse, len(s.LineItems))
	for i, item := range s.LineItems {
		items[i] = ToLineItemResponse(item)
	}

	return BudgetSummaryResponse{
		BudgetID:        s.BudgetID.String(),
		TotalBudget:     s.TotalBudget,
		Breakdown:       breakdown,
		ActualAmounts:   amounts,
		Categories:      categories,
		LineItems:       items,
		TotalAllocated:  s.TotalAllocated,
		RemainingBudget: s.RemainingBudget,
		IsOverBudget:    s.IsOverBudget,
	}
}

// ToBudgetResponse converts a domain Budget to a BudgetResponse DTO.
func ToBudgetResponse(b *entity.Budget) BudgetResponse {
	return BudgetResponse{
		ID:         b.ID.String(),
		Name:       b.Name,
		AlertEmail: b.AlertEmail,
		Summary:    ToBudgetSummaryResponse(b.Summary()),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// ToBudgetListResponse converts a list of budgets to a BudgetListResponse DTO.
func ToBudgetListResponse(budgets []*entity.Budget) BudgetListResponse {
	responses := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		responses[i] = ToBudgetResponse(b)
	}
	return BudgetListResponse{Budgets: responses}
}
