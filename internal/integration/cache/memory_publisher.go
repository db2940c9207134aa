// Package cache implements the budget summary publisher on Redis.
package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// memoryPublisher keeps summaries in process. It is used when Redis is not
// configured, so a single API instance still serves live updates.
type memoryPublisher struct {
	mu          sync.Mutex
	latest      map[uuid.UUID]entity.Summary
	subscribers map[uuid.UUID]map[chan entity.Summary]struct{}
}

// NewMemoryPublisher creates an in-process summary publisher.
func NewMemoryPublisher() adapter.SummaryPublisher {
	return &memoryPublisher{
		latest:      make(map[uuid.UUID]entity.Summary),
		subscribers: make(map[uuid.UUID]map[chan entity.Summary]struct{}),
	}
}

func (p *memoryPublisher) Publish(_ context.Context, summary entity.Summary) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest[summary.BudgetID] = summary
	for ch := range p.subscribers[summary.BudgetID] {
		select {
		case ch <- summary:
		default:
		}
	}
	return nil
}

func (p *memoryPublisher) Latest(_ context.Context, budgetID uuid.UUID) (*entity.Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	summary, ok := p.latest[budgetID]
	if !ok {
		return nil, nil
	}
	return &summary, nil
}

func (p *memoryPublisher) Subscribe(ctx context.Context, budgetID uuid.UUID) (<-chan entity.Summary, error) {
	ch := make(chan entity.Summary, subscriberBuffer)

	p.mu.Lock()
	if p.subscribers[budgetID] == nil {
		p.subscribers[budgetID] = make(map[chan entity.Summary]struct{})
	}
	p.subscribers[budgetID][ch] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()

		p.mu.Lock()
		delete(p.subscribers[budgetID], ch)
		if len(p.subscribers[budgetID]) == 0 {
			delete(p.subscribers, budgetID)
		}
		p.mu.Unlock()

		close(ch)
	}()

	return ch, nil
}

func (p *memoryPublisher) Evict(_ context.Context, budgetID uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.latest, budgetID)
	return nil
}
