// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// SetTotalBudgetInput represents the input for changing the total budget.
type SetTotalBudgetInput struct {
	BudgetID    uuid.UUID
	UserID      uuid.UUID
	TotalBudget float64
}

// SetTotalBudgetUseCase handles changing the total budget.
type SetTotalBudgetUseCase struct {
	budgetRepo adapter.BudgetRepository
	notifier   *Notifier
}

// NewSetTotalBudgetUseCase creates a new SetTotalBudgetUseCase instance.
func NewSetTotalBudgetUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier) *SetTotalBudgetUseCase {
	return &SetTotalBudgetUseCase{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// Execute performs the total budget update.
func (uc *SetTotalBudgetUseCase) Execute(ctx context.Context, input SetTotalBudgetInput) (*MutationOutput, error) {
	return mutateBudget(ctx, uc.budgetRepo, uc.notifier, input.BudgetID, input.UserID, func(budget *entity.Budget) error {
		budget.SetTotalBudget(input.TotalBudget)
		return nil
	})
}
