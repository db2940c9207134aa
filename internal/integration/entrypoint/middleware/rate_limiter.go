package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/dto"
)

// OwnerLimiter caps how many budgets an owner may create in a sliding
// window. Requests without an authenticated owner are keyed by client IP.
type OwnerLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewOwnerLimiter creates a limiter allowing limit requests per window.
// A non-positive limit disables limiting.
func NewOwnerLimiter(limit int, window time.Duration) *OwnerLimiter {
	return &OwnerLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Middleware returns a Gin handler that answers 429 with Retry-After once
// the caller is over the limit.
func (l *OwnerLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}

		retryAfter, ok := l.take(limiterKey(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error: "Too many budgets created. Please try again later.",
				Code:  string(domainerror.ErrCodeBudgetRateLimited),
			})
			return
		}

		c.Next()
	}
}

func limiterKey(c *gin.Context) string {
	if ownerID, ok := OwnerIDFromContext(c); ok {
		return "owner:" + ownerID.String()
	}
	return "ip:" + c.ClientIP()
}

// take records a hit for key. When the key is over the limit it returns how
// long until the oldest hit leaves the window.
func (l *OwnerLimiter) take(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	hits := l.recent(key, now)

	if len(hits) >= l.limit {
		l.hits[key] = hits
		return hits[0].Add(l.window).Sub(now), false
	}

	l.hits[key] = append(hits, now)
	return 0, true
}

// recent drops hits of key that are outside the window. Callers hold mu.
func (l *OwnerLimiter) recent(key string, now time.Time) []time.Time {
	hits := l.hits[key]
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Cleanup forgets keys with no hits inside the window.
func (l *OwnerLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key := range l.hits {
		if hits := l.recent(key, now); len(hits) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = hits
		}
	}
}

// RunCleanup calls Cleanup once per window until ctx is done.
func (l *OwnerLimiter) RunCleanup(ctx context.Context) {
	if l.window <= 0 {
		return
	}

	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}
