// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wedding-planner/backend/config"
	"github.com/wedding-planner/backend/internal/infra/dependency"
	"github.com/wedding-planner/backend/internal/integration/persistence/model"
	"github.com/wedding-planner/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// createRateLimit is low enough for a scenario to hit it.
const createRateLimit = 5

var resendAPI *mock.ResendAPI

// TestContext holds the test state for each scenario.
type TestContext struct {
	// HTTP
	server       *httptest.Server
	client       *http.Client
	injector     *dependency.Injector
	response     *http.Response
	responseBody []byte

	// Request building
	requestHeaders map[string]string

	// Auth
	accessToken string
	users       map[string]uuid.UUID

	// Budget state
	budgetID    uuid.UUID
	budgetIDs   map[string]uuid.UUID
	lineItemIDs map[string]uuid.UUID
	lastItemID  uuid.UUID

	// Event stream
	events       chan map[string]any
	cancelStream context.CancelFunc

	// Infrastructure
	db    *mock.Db
	redis *mock.Redis
	cfg   *config.Config
}

// contextKey is used to store TestContext in context.Context.
type contextKey struct{}

// GetTestContext retrieves the TestContext from context.
func GetTestContext(ctx context.Context) *TestContext {
	if tc, ok := ctx.Value(contextKey{}).(*TestContext); ok {
		return tc
	}
	return nil
}

// SetTestContext stores the TestContext in context.
func SetTestContext(ctx context.Context, tc *TestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
		resendAPI = mock.NewResendAPI()
	})

	ctx.AfterSuite(func() {
		if resendAPI != nil {
			resendAPI.Close()
		}
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc := &TestContext{
			client:         &http.Client{Timeout: 10 * time.Second},
			requestHeaders: make(map[string]string),
			users:          make(map[string]uuid.UUID),
			budgetIDs:      make(map[string]uuid.UUID),
			lineItemIDs:    make(map[string]uuid.UUID),
			db:             mock.NewDb(model.All()...),
			redis:          mock.NewRedis(),
			cfg:            testConfig(),
		}

		if err := tc.db.ClearDB(); err != nil {
			return ctx, err
		}
		if err := tc.redis.Clear(); err != nil {
			return ctx, err
		}
		resendAPI.Reset()

		injector, err := dependency.NewInjector(tc.cfg, tc.db.DbConn, dependency.Options{
			Redis: tc.redis.Client,
			RedisHealthChecker: func() bool {
				return tc.redis.Client.Ping(context.Background()).Err() == nil
			},
		})
		if err != nil {
			return ctx, fmt.Errorf("failed to build dependencies: %w", err)
		}

		tc.injector = injector
		tc.server = httptest.NewServer(injector.Router.Setup(tc.cfg.Server.Environment))

		return SetTestContext(ctx, tc), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc := GetTestContext(ctx)
		if tc == nil {
			return ctx, nil
		}
		if tc.cancelStream != nil {
			tc.cancelStream()
		}
		if tc.server != nil {
			tc.server.Close()
		}
		return ctx, nil
	})

	// Register step definitions
	registerAPISteps(ctx)
	registerResponseSteps(ctx)
	registerBudgetSteps(ctx)
	registerAlertSteps(ctx)
	registerStorageSteps(ctx)
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.JWT.Secret = testJWTSecret
	cfg.JWT.AccessTokenExpiry = 15 * time.Minute
	cfg.Budget.DefaultTotal = 0
	cfg.Budget.SummaryTTL = time.Hour
	cfg.Budget.CreateRateLimit = createRateLimit
	cfg.Budget.CreateRateWindow = time.Minute
	cfg.Email.ResendAPIKey = "re_test_key"
	cfg.Email.ResendBaseURL = resendAPI.URL()
	cfg.Email.FromName = "Wedding Planner"
	cfg.Email.FromEmail = "alerts@wedding-planner.test"
	cfg.Email.AppBaseURL = "https://app.wedding-planner.test"
	return cfg
}
