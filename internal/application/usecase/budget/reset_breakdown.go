// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// ResetBreakdownInput represents the input for restoring the default breakdown.
type ResetBreakdownInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
}

// ResetBreakdownUseCase restores the default category percentages.
type ResetBreakdownUseCase struct {
	budgetRepo adapter.BudgetRepository
	notifier   *Notifier
}

// NewResetBreakdownUseCase creates a new ResetBreakdownUseCase instance.
func NewResetBreakdownUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier) *ResetBreakdownUseCase {
	return &ResetBreakdownUseCase{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// Execute performs the breakdown reset.
func (uc *ResetBreakdownUseCase) Execute(ctx context.Context, input ResetBreakdownInput) (*MutationOutput, error) {
	return mutateBudget(ctx, uc.budgetRepo, uc.notifier, input.BudgetID, input.UserID, func(budget *entity.Budget) error {
		budget.ResetBreakdown()
		return nil
	})
}
