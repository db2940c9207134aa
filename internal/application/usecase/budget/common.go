// Package budget contains wedding budget use cases.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
)

// MutationOutput is returned by every use case that changes a budget.
type MutationOutput struct {
	Budget  *entity.Budget
	Summary entity.Summary
}

// Notifier forwards budget summaries to the display layer and raises an alert
// when a budget goes over. Failures are logged and never returned to callers.
type Notifier struct {
	publisher    adapter.SummaryPublisher
	emailService adapter.EmailService
}

// NewNotifier creates a new Notifier. Either collaborator may be nil.
func NewNotifier(publisher adapter.SummaryPublisher, emailService adapter.EmailService) *Notifier {
	return &Notifier{
		publisher:    publisher,
		emailService: emailService,
	}
}

// Notify publishes the summary and queues an over-budget alert when the
// budget has just crossed its total.
func (n *Notifier) Notify(ctx context.Context, budget *entity.Budget, summary entity.Summary, wasOverBudget bool) {
	if n == nil {
		return
	}

	logger := slog.With("budget_id", budget.ID)

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, summary); err != nil {
			logger.Warn("Failed to publish budget summary", "error", err)
		}
	}

	if wasOverBudget || !summary.IsOverBudget || budget.AlertEmail == "" || n.emailService == nil {
		return
	}

	err := n.emailService.QueueOverBudgetAlert(ctx, adapter.QueueOverBudgetAlertInput{
		BudgetID:        budget.ID,
		BudgetName:      budget.Name,
		RecipientEmail:  budget.AlertEmail,
		TotalBudget:     summary.TotalBudget,
		TotalAllocated:  summary.TotalAllocated,
		RemainingBudget: summary.RemainingBudget,
	})
	if err != nil {
		logger.Warn("Failed to queue over-budget alert", "error", err)
		return
	}

	logger.Info("Over-budget alert queued", "total_allocated", summary.TotalAllocated)
}

// loadOwnedBudget fetches a budget and checks that userID owns it.
func loadOwnedBudget(ctx context.Context, repo adapter.BudgetRepository, budgetID, userID uuid.UUID) (*entity.Budget, error) {
	budget, err := repo.FindByID(ctx, budgetID)
	if err != nil {
		if errors.Is(err, domainerror.ErrBudgetNotFound) {
			return nil, domainerror.NewBudgetError(
				domainerror.ErrCodeBudgetNotFound,
				"budget not found",
				domainerror.ErrBudgetNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}

	if budget.OwnerID != userID {
		return nil, domainerror.NewBudgetError(
			domainerror.ErrCodeUnauthorizedBudgetAccess,
			"not authorized to access this budget",
			domainerror.ErrUnauthorizedBudgetAccess,
		)
	}

	return budget, nil
}

// maxMutationAttempts bounds how often a mutation is replayed on a freshly
// loaded budget after losing a concurrent save.
const maxMutationAttempts = 3

// mutateBudget loads an owned budget, applies mutate while recording the
// summary the budget emits, persists the result and then notifies. Summaries
// are only sent out once the new state is stored. When another request saved
// the budget in between, the mutation is replayed on the newer state.
func mutateBudget(
	ctx context.Context,
	repo adapter.BudgetRepository,
	notifier *Notifier,
	budgetID, userID uuid.UUID,
	mutate func(budget *entity.Budget) error,
) (*MutationOutput, error) {
	for attempt := 1; ; attempt++ {
		output, err := mutateOnce(ctx, repo, notifier, budgetID, userID, mutate)
		if !errors.Is(err, domainerror.ErrBudgetConflict) {
			return output, err
		}
		if attempt >= maxMutationAttempts {
			return nil, domainerror.NewBudgetError(
				domainerror.ErrCodeBudgetConflict,
				"budget was changed by another request, please retry",
				domainerror.ErrBudgetConflict,
			)
		}
		slog.Debug("Budget save conflicted, retrying", "budget_id", budgetID, "attempt", attempt)
	}
}

func mutateOnce(
	ctx context.Context,
	repo adapter.BudgetRepository,
	notifier *Notifier,
	budgetID, userID uuid.UUID,
	mutate func(budget *entity.Budget) error,
) (*MutationOutput, error) {
	budget, err := loadOwnedBudget(ctx, repo, budgetID, userID)
	if err != nil {
		return nil, err
	}

	wasOverBudget := budget.Totals().IsOverBudget

	var summary entity.Summary
	budget.Observe(func(s entity.Summary) { summary = s })

	if err := mutate(budget); err != nil {
		return nil, err
	}
	budget.Observe(nil)

	if err := repo.Save(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	notifier.Notify(ctx, budget, summary, wasOverBudget)

	return &MutationOutput{
		Budget:  budget,
		Summary: summary,
	}, nil
}

func invalidCategoryError(category entity.CategoryKey) error {
	return domainerror.NewBudgetError(
		domainerror.ErrCodeInvalidCategory,
		fmt.Sprintf("category %q is not one of venue, catering, decor, photography, misc", category),
		domainerror.ErrInvalidCategory,
	)
}

func lineItemNotFoundError() error {
	return domainerror.NewBudgetError(
		domainerror.ErrCodeLineItemNotFound,
		"line item not found",
		domainerror.ErrLineItemNotFound,
	)
}
