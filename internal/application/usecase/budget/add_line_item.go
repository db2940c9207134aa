// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// AddLineItemInput represents the input for adding a line item.
type AddLineItemInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
	Name     string
	Amount   float64
	Category entity.CategoryKey // Optional, defaults to misc
}

// AddLineItemOutput represents the output of adding a line item.
type AddLineItemOutput struct {
	MutationOutput
	LineItem entity.LineItem
}

// AddLineItemUseCase handles adding line items to a budget.
type AddLineItemUseCase struct {
	budgetRepo adapter.BudgetRepository
	notifier   *Notifier
}

// NewAddLineItemUseCase creates a new AddLineItemUseCase instance.
func NewAddLineItemUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier) *AddLineItemUseCase {
	return &AddLineItemUseCase{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// Execute performs the line item creation.
func (uc *AddLineItemUseCase) Execute(ctx context.Context, input AddLineItemInput) (*AddLineItemOutput, error) {
	if input.Category != "" && !input.Category.IsValid() {
		return nil, invalidCategoryError(input.Category)
	}

	var item entity.LineItem
	output, err := mutateBudget(ctx, uc.budgetRepo, uc.notifier, input.BudgetID, input.UserID, func(budget *entity.Budget) error {
		item = *budget.AddLineItem(input.Name, input.Amount, input.Category)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AddLineItemOutput{
		MutationOutput: *output,
		LineItem:       item,
	}, nil
}
