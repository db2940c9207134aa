// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// GetBudgetInput represents the input for getting a budget.
type GetBudgetInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
}

// GetBudgetOutput represents the output of getting a budget.
type GetBudgetOutput struct {
	Budget  *entity.Budget
	Summary entity.Summary
}

// GetBudgetUseCase handles getting a budget by ID.
type GetBudgetUseCase struct {
	budgetRepo adapter.BudgetRepository
}

// NewGetBudgetUseCase creates a new GetBudgetUseCase instance.
func NewGetBudgetUseCase(budgetRepo adapter.BudgetRepository) *GetBudgetUseCase {
	return &GetBudgetUseCase{
		budgetRepo: budgetRepo,
	}
}

// Execute performs the budget retrieval.
func (uc *GetBudgetUseCase) Execute(ctx context.Context, input GetBudgetInput) (*GetBudgetOutput, error) {
	budget, err := loadOwnedBudget(ctx, uc.budgetRepo, input.BudgetID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &GetBudgetOutput{
		Budget:  budget,
		Summary: budget.Summary(),
	}, nil
}
