// Package budget contains wedding budget use cases.
package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// StreamSummariesInput represents the input for following a budget's summaries.
type StreamSummariesInput struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
}

// StreamSummariesOutput carries the current summary and the live feed that follows it.
type StreamSummariesOutput struct {
	Current entity.Summary
	Updates <-chan entity.Summary
}

// StreamSummariesUseCase lets the display layer follow a budget as it changes.
type StreamSummariesUseCase struct {
	budgetRepo adapter.BudgetRepository
	publisher  adapter.SummaryPublisher
}

// NewStreamSummariesUseCase creates a new StreamSummariesUseCase instance.
func NewStreamSummariesUseCase(budgetRepo adapter.BudgetRepository, publisher adapter.SummaryPublisher) *StreamSummariesUseCase {
	return &StreamSummariesUseCase{
		budgetRepo: budgetRepo,
		publisher:  publisher,
	}
}

// Execute subscribes to the budget's summaries. The feed closes when ctx is done.
//
// The subscription is opened before the current summary is read, so a change
// landing in between shows up in Current, in Updates, or in both, and is never
// missed.
func (uc *StreamSummariesUseCase) Execute(ctx context.Context, input StreamSummariesInput) (*StreamSummariesOutput, error) {
	if _, err := loadOwnedBudget(ctx, uc.budgetRepo, input.BudgetID, input.UserID); err != nil {
		return nil, err
	}

	updates, err := uc.publisher.Subscribe(ctx, input.BudgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to budget summaries: %w", err)
	}

	cached, err := uc.publisher.Latest(ctx, input.BudgetID)
	if err != nil {
		slog.Warn("Failed to read cached budget summary", "budget_id", input.BudgetID, "error", err)
	}
	if cached != nil {
		return &StreamSummariesOutput{Current: *cached, Updates: updates}, nil
	}

	budget, err := loadOwnedBudget(ctx, uc.budgetRepo, input.BudgetID, input.UserID)
	if err != nil {
		return nil, err
	}

	return &StreamSummariesOutput{
		Current: budget.Summary(),
		Updates: updates,
	}, nil
}
