package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// AlertOutbox stores over-budget alerts until a worker delivers them.
type AlertOutbox interface {
	Enqueue(ctx context.Context, alert *entity.BudgetAlert) error

	// ClaimDue marks up to limit pending alerts due at now as sending and
	// returns them. An alert is handed to one caller only.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.BudgetAlert, error)

	Save(ctx context.Context, alert *entity.BudgetAlert) error

	// ListByBudget returns a budget's alerts, newest first.
	ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*entity.BudgetAlert, error)

	// PurgeSent deletes sent alerts finished before the cutoff.
	PurgeSent(ctx context.Context, before time.Time) (int64, error)
}
