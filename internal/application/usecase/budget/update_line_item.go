// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// UpdateLineItemInput represents the input for line item update.
type UpdateLineItemInput struct {
	BudgetID   uuid.UUID
	UserID     uuid.UUID
	LineItemID uuid.UUID
	Name       *string             // Optional
	Amount     *float64            // Optional
	Category   *entity.CategoryKey // Optional
}

// UpdateLineItemUseCase handles line item update logic.
type UpdateLineItemUseCase struct {
	budgetRepo adapter.BudgetRepository
	notifier   *Notifier
}

// NewUpdateLineItemUseCase creates a new UpdateLineItemUseCase instance.
func NewUpdateLineItemUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier) *UpdateLineItemUseCase {
	return &UpdateLineItemUseCase{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// Execute performs the line item update.
func (uc *UpdateLineItemUseCase) Execute(ctx context.Context, input UpdateLineItemInput) (*MutationOutput, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, invalidCategoryError(*input.Category)
	}

	patch := entity.LineItemPatch{
		Name:     input.Name,
		Amount:   input.Amount,
		Category: input.Category,
	}

	return mutateBudget(ctx, uc.budgetRepo, uc.notifier, input.BudgetID, input.UserID, func(budget *entity.Budget) error {
		if !budget.UpdateLineItem(input.LineItemID, patch) {
			return lineItemNotFoundError()
		}
		return nil
	})
}
