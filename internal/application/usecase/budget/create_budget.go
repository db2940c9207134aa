// Package budget contains wedding budget use cases.
package budget

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
)

const (
	// DefaultBudgetName is used when a budget is created without a name.
	DefaultBudgetName = "Wedding budget"

	// MaxBudgetNameLength is the maximum number of characters in a budget name.
	MaxBudgetNameLength = 100
)

// CreateBudgetInput represents the input for budget creation.
type CreateBudgetInput struct {
	OwnerID     uuid.UUID
	Name        string
	TotalBudget *float64 // Optional, defaults to the configured total
	AlertEmail  string   // Optional, enables over-budget alerts
}

// CreateBudgetUseCase handles budget creation logic.
type CreateBudgetUseCase struct {
	budgetRepo         adapter.BudgetRepository
	notifier           *Notifier
	defaultTotalBudget float64
}

// NewCreateBudgetUseCase creates a new CreateBudgetUseCase instance.
func NewCreateBudgetUseCase(budgetRepo adapter.BudgetRepository, notifier *Notifier, defaultTotalBudget float64) *CreateBudgetUseCase {
	return &CreateBudgetUseCase{
		budgetRepo:         budgetRepo,
		notifier:           notifier,
		defaultTotalBudget: defaultTotalBudget,
	}
}

// Execute performs the budget creation.
func (uc *CreateBudgetUseCase) Execute(ctx context.Context, input CreateBudgetInput) (*MutationOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DefaultBudgetName
	}
	if utf8.RuneCountInString(name) > MaxBudgetNameLength {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeInvalidBudgetName,
			fmt.Sprintf("budget name must be at most %d characters", MaxBudgetNameLength),
			domainerror.ErrInvalidBudgetName,
		)
	}

	total := uc.defaultTotalBudget
	if input.TotalBudget != nil {
		total = *input.TotalBudget
	}

	budget := entity.NewBudget(input.OwnerID, name, total)
	budget.AlertEmail = strings.TrimSpace(input.AlertEmail)

	// The initial summary is emitted on registration.
	var summary entity.Summary
	budget.Observe(func(s entity.Summary) { summary = s })
	budget.Observe(nil)

	if err := uc.budgetRepo.Create(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}

	uc.notifier.Notify(ctx, budget, summary, false)

	return &MutationOutput{
		Budget:  budget,
		Summary: summary,
	}, nil
}
