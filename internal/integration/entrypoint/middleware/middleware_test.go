package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
)

type stubTokenService struct {
	claims *adapter.TokenClaims
	err    error
}

func (s *stubTokenService) ValidateAccessToken(_ context.Context, _ string) (*adapter.TokenClaims, error) {
	return s.claims, s.err
}

func (s *stubTokenService) GenerateAccessToken(_ uuid.UUID, _ string, _ time.Duration) (string, error) {
	return "token", nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	newRouter := func(tokens adapter.TokenService) *gin.Engine {
		router := gin.New()
		router.Any("/me", NewAuthMiddleware(tokens).Authenticate(), func(c *gin.Context) {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				c.Status(http.StatusInternalServerError)
				return
			}
			c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "email": claims.Email})
		})
		return router
	}

	cases := []struct {
		name       string
		header     string
		query      string
		method     string
		tokens     *stubTokenService
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid token",
			header:     "Bearer good",
			tokens:     &stubTokenService{claims: &adapter.TokenClaims{UserID: userID, Email: "couple@example.com"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "token in query on a stream request",
			query:      "?access_token=good",
			tokens:     &stubTokenService{claims: &adapter.TokenClaims{UserID: userID, Email: "couple@example.com"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "token in query is ignored on writes",
			query:      "?access_token=good",
			method:     http.MethodPost,
			tokens:     &stubTokenService{claims: &adapter.TokenClaims{UserID: userID}},
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeMissingToken),
		},
		{
			name:       "missing header",
			tokens:     &stubTokenService{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeMissingToken),
		},
		{
			name:       "not a bearer token",
			header:     "Basic abc",
			tokens:     &stubTokenService{},
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeInvalidToken),
		},
		{
			name:       "expired token",
			header:     "Bearer old",
			tokens:     &stubTokenService{err: domainerror.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeExpiredToken),
		},
		{
			name:       "invalid token",
			header:     "Bearer bad",
			tokens:     &stubTokenService{err: errors.New("signature is invalid")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(domainerror.ErrCodeInvalidToken),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			newRouter(tc.tokens).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantCode != "" && !strings.Contains(rec.Body.String(), tc.wantCode) {
				t.Errorf("expected code %s in body %s", tc.wantCode, rec.Body.String())
			}
		})
	}
}

func TestOwnerLimiter(t *testing.T) {
	t.Run("blocks after the limit and slides with time", func(t *testing.T) {
		limiter := NewOwnerLimiter(2, time.Minute)
		start := time.Now()
		now := start
		limiter.now = func() time.Time { return now }

		if _, ok := limiter.take("owner:a"); !ok {
			t.Fatal("expected the first request to pass")
		}
		now = start.Add(30 * time.Second)
		if _, ok := limiter.take("owner:a"); !ok {
			t.Fatal("expected the second request to pass")
		}

		retryAfter, ok := limiter.take("owner:a")
		if ok {
			t.Fatal("expected the third request to be blocked")
		}
		if retryAfter != 30*time.Second {
			t.Errorf("expected retry after 30s, got %v", retryAfter)
		}
		if _, ok := limiter.take("owner:b"); !ok {
			t.Error("expected another owner to pass")
		}

		now = start.Add(time.Minute + time.Second)
		if _, ok := limiter.take("owner:a"); !ok {
			t.Error("expected the oldest hit to have left the window")
		}
		if _, ok := limiter.take("owner:a"); ok {
			t.Error("expected the second hit to still count")
		}
	})

	t.Run("cleanup drops idle keys", func(t *testing.T) {
		limiter := NewOwnerLimiter(1, time.Minute)
		now := time.Now()
		limiter.now = func() time.Time { return now }

		limiter.take("owner:a")
		now = now.Add(2 * time.Minute)
		limiter.Cleanup()

		if len(limiter.hits) != 0 {
			t.Errorf("expected no keys, got %d", len(limiter.hits))
		}
	})

	t.Run("limits each owner separately", func(t *testing.T) {
		tokens := map[string]uuid.UUID{"alice": uuid.New(), "bob": uuid.New()}
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(claimsKey, &adapter.TokenClaims{UserID: tokens[c.GetHeader("X-Owner")]})
		})
		router.POST("/budgets", NewOwnerLimiter(1, time.Minute).Middleware(), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		send := func(owner string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/budgets", nil)
			req.Header.Set("X-Owner", owner)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			return rec
		}

		if rec := send("alice"); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 for alice, got %d", rec.Code)
		}
		rec := send("alice")
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429 for alice, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "60" {
			t.Errorf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
		}
		if !strings.Contains(rec.Body.String(), string(domainerror.ErrCodeBudgetRateLimited)) {
			t.Errorf("expected rate limit code in body %s", rec.Body.String())
		}
		if rec := send("bob"); rec.Code != http.StatusCreated {
			t.Errorf("expected 201 for bob, got %d", rec.Code)
		}
	})

	t.Run("zero limit disables limiting", func(t *testing.T) {
		router := gin.New()
		router.POST("/budgets", NewOwnerLimiter(0, time.Minute).Middleware(), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/budgets", nil))
			if rec.Code != http.StatusCreated {
				t.Fatalf("request %d: expected 201, got %d", i+1, rec.Code)
			}
		}
	})
}
