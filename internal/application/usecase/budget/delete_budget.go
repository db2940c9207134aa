// Package budget contains wedding budget use cases.
package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
)

// DeleteBudgetInput represents the input for budget deletion.
type DeleteBudgetInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
}

// DeleteBudgetUseCase handles budget deletion logic.
type DeleteBudgetUseCase struct {
	budgetRepo adapter.BudgetRepository
	publisher  adapter.SummaryPublisher
}

// NewDeleteBudgetUseCase creates a new DeleteBudgetUseCase instance.
func NewDeleteBudgetUseCase(budgetRepo adapter.BudgetRepository, publisher adapter.SummaryPublisher) *DeleteBudgetUseCase {
	return &DeleteBudgetUseCase{
		budgetRepo: budgetRepo,
		publisher:  publisher,
	}
}

// Execute performs the budget deletion.
func (uc *DeleteBudgetUseCase) Execute(ctx context.Context, input DeleteBudgetInput) error {
	if _, err := loadOwnedBudget(ctx, uc.budgetRepo, input.BudgetID, input.UserID); err != nil {
		return err
	}

	if err := uc.budgetRepo.Delete(ctx, input.BudgetID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.Evict(ctx, input.BudgetID); err != nil {
			slog.Warn("Failed to evict budget summary", "budget_id", input.BudgetID, "error", err)
		}
	}

	return nil
}
