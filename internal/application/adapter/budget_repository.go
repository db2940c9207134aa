// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// BudgetRepository defines the interface for budget persistence operations.
type BudgetRepository interface {
	// Create stores a new budget with its breakdown and line items.
	Create(ctx context.Context, budget *entity.Budget) error

	// FindByID retrieves a budget with its breakdown and line items.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Budget, error)

	// FindByOwnerID retrieves all budgets of an owner, newest first.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.Budget, error)

	// Save replaces the stored state of a budget, including breakdown and line items.
	Save(ctx context.Context, budget *entity.Budget) error

	// Delete removes a budget (soft delete).
	Delete(ctx context.Context, id uuid.UUID) error
}
