package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return server, client
}

func sampleSummary() entity.Summary {
	budget := entity.NewBudget(uuid.New(), "Our wedding", 50000)
	budget.SetCategoryPercentage(entity.CategoryVenue, 60)
	budget.AddLineItem("Photographer", 3500, entity.CategoryPhotography)
	return budget.Summary()
}

func receive(t *testing.T, ch <-chan entity.Summary) entity.Summary {
	t.Helper()
	select {
	case summary, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return summary
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a summary")
	}
	return entity.Summary{}
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("publish stores the latest summary with a TTL", func(t *testing.T) {
		server, client := newTestRedis(t)
		publisher := NewRedisPublisher(client, time.Hour)
		summary := sampleSummary()

		if err := publisher.Publish(ctx, summary); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}

		if ttl := server.TTL(SummaryKey(summary.BudgetID)); ttl != time.Hour {
			t.Errorf("expected TTL 1h, got %v", ttl)
		}

		latest, err := publisher.Latest(ctx, summary.BudgetID)
		if err != nil {
			t.Fatalf("failed to read latest: %v", err)
		}
		if latest == nil {
			t.Fatal("expected a cached summary")
		}
		if latest.Breakdown[entity.CategoryVenue] != 60 {
			t.Errorf("expected venue 60, got %v", latest.Breakdown[entity.CategoryVenue])
		}
		if latest.TotalAllocated != 3500 || latest.RemainingBudget != 46500 {
			t.Errorf("unexpected totals %+v", latest.Totals)
		}
		if len(latest.LineItems) != 1 || latest.LineItems[0].Name != "Photographer" {
			t.Errorf("unexpected line items %+v", latest.LineItems)
		}
	})

	t.Run("latest is nil when nothing is cached", func(t *testing.T) {
		_, client := newTestRedis(t)
		publisher := NewRedisPublisher(client, time.Hour)

		latest, err := publisher.Latest(ctx, uuid.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if latest != nil {
			t.Errorf("expected nil, got %+v", latest)
		}
	})

	t.Run("subscribers receive published summaries", func(t *testing.T) {
		_, client := newTestRedis(t)
		publisher := NewRedisPublisher(client, time.Hour)
		summary := sampleSummary()

		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		updates, err := publisher.Subscribe(subCtx, summary.BudgetID)
		if err != nil {
			t.Fatalf("failed to subscribe: %v", err)
		}

		if err := publisher.Publish(ctx, summary); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}

		got := receive(t, updates)
		if got.BudgetID != summary.BudgetID || got.TotalBudget != summary.TotalBudget {
			t.Errorf("unexpected summary %+v", got)
		}

		cancel()
		select {
		case _, ok := <-updates:
			if ok {
				t.Error("expected no further summaries after cancel")
			}
		case <-time.After(2 * time.Second):
			t.Error("expected subscription to close after cancel")
		}
	})

	t.Run("evict drops the cached summary", func(t *testing.T) {
		server, client := newTestRedis(t)
		publisher := NewRedisPublisher(client, time.Hour)
		summary := sampleSummary()

		if err := publisher.Publish(ctx, summary); err != nil {
			t.Fatalf("failed to publish: %v", err)
		}
		if err := publisher.Evict(ctx, summary.BudgetID); err != nil {
			t.Fatalf("failed to evict: %v", err)
		}

		if server.Exists(SummaryKey(summary.BudgetID)) {
			t.Error("expected summary key to be gone")
		}
	})
}

func TestMemoryPublisher(t *testing.T) {
	ctx := context.Background()
	var publisher adapter.SummaryPublisher = NewMemoryPublisher()
	summary := sampleSummary()

	subCtx, cancel := context.WithCancel(ctx)
	updates, err := publisher.Subscribe(subCtx, summary.BudgetID)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	if err := publisher.Publish(ctx, summary); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if got := receive(t, updates); got.BudgetID != summary.BudgetID {
		t.Errorf("expected summary for %s, got %s", summary.BudgetID, got.BudgetID)
	}

	latest, _ := publisher.Latest(ctx, summary.BudgetID)
	if latest == nil || latest.TotalBudget != summary.TotalBudget {
		t.Errorf("expected latest summary to be kept, got %+v", latest)
	}

	_ = publisher.Evict(ctx, summary.BudgetID)
	if latest, _ := publisher.Latest(ctx, summary.BudgetID); latest != nil {
		t.Error("expected latest summary to be evicted")
	}

	cancel()
	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected the subscription to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Error("expected subscription to close after cancel")
	}
}
