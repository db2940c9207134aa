// Package cache implements the budget summary publisher on Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// subscriberBuffer is how many summaries a slow subscriber may fall behind
// before newer ones are dropped for it.
const subscriberBuffer = 16

// SummaryKey returns the Redis key holding the latest summary of a budget.
func SummaryKey(budgetID uuid.UUID) string {
	return fmt.Sprintf("budget:%s:summary", budgetID)
}

// EventsChannel returns the Redis channel summaries of a budget are published on.
func EventsChannel(budgetID uuid.UUID) string {
	return fmt.Sprintf("budget:%s:events", budgetID)
}

// redisPublisher implements adapter.SummaryPublisher with a Redis key per
// budget for the latest snapshot and a pub/sub channel for live updates.
type redisPublisher struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPublisher creates a new Redis-backed summary publisher.
func NewRedisPublisher(client *redis.Client, ttl time.Duration) adapter.SummaryPublisher {
	return &redisPublisher{
		client: client,
		ttl:    ttl,
	}
}

// Publish stores the summary and announces it on the budget's channel.
func (p *redisPublisher) Publish(ctx context.Context, summary entity.Summary) error {
	data, err := json.Marshal(toPayload(summary))
	if err != nil {
		return fmt.Errorf("failed to marshal budget summary: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, SummaryKey(summary.BudgetID), data, p.ttl)
	pipe.Publish(ctx, EventsChannel(summary.BudgetID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish budget summary: %w", err)
	}

	return nil
}

// Latest returns the cached summary, or nil when there is none.
func (p *redisPublisher) Latest(ctx context.Context, budgetID uuid.UUID) (*entity.Summary, error) {
	data, err := p.client.Get(ctx, SummaryKey(budgetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read budget summary: %w", err)
	}

	var payload summaryPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal budget summary: %w", err)
	}

	summary := payload.toSummary()
	return &summary, nil
}

// Subscribe streams the summaries published for a budget until ctx is done.
func (p *redisPublisher) Subscribe(ctx context.Context, budgetID uuid.UUID) (<-chan entity.Summary, error) {
	pubsub := p.client.Subscribe(ctx, EventsChannel(budgetID))

	// Wait for the subscription to be confirmed so no publish is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to budget events: %w", err)
	}

	out := make(chan entity.Summary, subscriberBuffer)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var payload summaryPayload
				if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
					slog.Warn("Dropping malformed budget event", "budget_id", budgetID, "error", err)
					continue
				}

				select {
				case out <- payload.toSummary():
				default:
					slog.Warn("Budget subscriber is behind, dropping summary", "budget_id", budgetID)
				}
			}
		}
	}()

	return out, nil
}

// Evict removes the cached summary of a budget.
func (p *redisPublisher) Evict(ctx context.Context, budgetID uuid.UUID) error {
	if err := p.client.Del(ctx, SummaryKey(budgetID)).Err(); err != nil {
		return fmt.Errorf("failed to evict budget summary: %w", err)
	}
	return nil
}
