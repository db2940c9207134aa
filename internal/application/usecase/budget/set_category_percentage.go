// Package budget contains wedding budget use cases.
package budget

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// SetCategoryPercentageInput represents the input for moving a category slider.
type SetCategoryPercentageInput struct {
	BudgetID   uuid.UUID
	UserID     uuid.UUID
	Category   entity.CategoryKey
	Percentage float64
}

// SetCategoryPercentageUseCase handles changing one category's share of the budget.
type SetCategoryPercentageUseCase struct {
	budgetRepo adapter.BudgetRepository
	notifier   *Notifier
}

// NewSetCategoryPercentageUseCase creates a new SetCategoryPercentageUseCase instance.
func NewSetCategoryPercentageUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier) *SetCategoryPercentageUseCase {
	return &SetCategoryPercentageUseCase{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// Execute sets the category percentage and redistributes the difference over the other categories.
func (uc *SetCategoryPercentageUseCase) Execute(ctx context.Context, input SetCategoryPercentageInput) (*MutationOutput, error) {
	if !input.Category.IsValid() {
		return nil, invalidCategoryError(input.Category)
	}

	return mutateBudget(ctx, uc.budgetRepo, uc.notifier, input.BudgetID, input.UserID, func(budget *entity.Budget) error {
		if !budget.SetCategoryPercentage(input.Category, input.Percentage) {
			return invalidCategoryError(input.Category)
		}
		return nil
	})
}
