// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// SummaryPublisher fans budget summaries out to the display layer.
type SummaryPublisher interface {
	// Publish stores the summary as the latest snapshot and notifies subscribers.
	Publish(ctx context.Context, summary entity.Summary) error

	// Latest returns the last published summary, or nil when none is cached.
	Latest(ctx context.Context, budgetID uuid.UUID) (*entity.Summary, error)

	// Subscribe streams summaries published for a budget until ctx is done.
	Subscribe(ctx context.Context, budgetID uuid.UUID) (<-chan entity.Summary, error)

	// Evict drops the cached snapshot of a budget.
	Evict(ctx context.Context, budgetID uuid.UUID) error
}
