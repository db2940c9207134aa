// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// RemoveLineItemInput represents the input for line item removal.
type RemoveLineItemInput struct {
	BudgetID   uuid.UUID
	UserID     uuid.UUID
	LineItemID uuid.UUID
}

// RemoveLineItemUseCase handles line item removal logic.
type RemoveLineItemUseCase struct {
	budgetRepo adapter.BudgetRepository
	notifier   *Notifier
}

// NewRemoveLineItemUseCase creates a new RemoveLineItemUseCase instance.
func NewRemoveLineItemUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier) *RemoveLineItemUseCase {
	return &RemoveLineItemUseCase{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// Execute performs the line item removal.
func (uc *RemoveLineItemUseCase) Execute(ctx context.Context, input RemoveLineItemInput) (*MutationOutput, error) {
	return mutateBudget(ctx, uc.budgetRepo, uc.notifier, input.BudgetID, input.UserID, func(budget *entity.Budget) error {
		if !budget.RemoveLineItem(input.LineItemID) {
			return lineItemNotFoundError()
		}
		return nil
	})
}
