// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/wedding-planner/backend/config"
	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/application/usecase/budget"
	"github.com/wedding-planner/backend/internal/infra/server/router"
	"github.com/wedding-planner/backend/internal/integration/adapters"
	"github.com/wedding-planner/backend/internal/integration/cache"
	"github.com/wedding-planner/backend/internal/integration/email"
	"github.com/wedding-planner/backend/internal/integration/email/templates"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/controller"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/middleware"
	"github.com/wedding-planner/backend/internal/integration/persistence"
)

// Options carries the optional collaborators of the injector.
type Options struct {
	// DBHealthChecker reports database health. Defaults to pinging db.
	DBHealthChecker func() bool
	// Redis enables the shared summary cache. Nil keeps summaries in process.
	Redis *redis.Client
	// RedisHealthChecker reports Redis health. Ignored without Redis.
	RedisHealthChecker func() bool
	// EmailSender overrides the Resend client built from the email config.
	EmailSender adapter.EmailSender
}

// Injector holds all application dependencies.
type Injector struct {
	Config        *config.Config
	DB            *gorm.DB
	Router        *router.Router
	TokenService  adapter.TokenService
	Publisher     adapter.SummaryPublisher
	CreateLimiter *middleware.OwnerLimiter
	// EmailWorker is nil when no email sender is configured.
	EmailWorker *email.Worker
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, db *gorm.DB, opts Options) (*Injector, error) {
	// Create repositories
	budgetRepo := persistence.NewBudgetRepository(db)
	alertOutbox := persistence.NewAlertOutbox(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)

	var publisher adapter.SummaryPublisher
	if opts.Redis != nil {
		publisher = cache.NewRedisPublisher(opts.Redis, cfg.Budget.SummaryTTL)
	} else {
		publisher = cache.NewMemoryPublisher()
	}

	sender := opts.EmailSender
	if sender == nil && cfg.Email.ResendAPIKey != "" {
		resendClient, err := email.NewResendClient(
			cfg.Email.ResendAPIKey,
			cfg.Email.FromName,
			cfg.Email.FromEmail,
			cfg.Email.ResendBaseURL,
		)
		if err != nil {
			return nil, err
		}
		sender = resendClient
	}

	var emailService adapter.EmailService
	var emailWorker *email.Worker
	if sender != nil {
		renderer, err := templates.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("failed to load email templates: %w", err)
		}
		emailService = email.NewService(alertOutbox)
		emailWorker = email.NewWorker(alertOutbox, sender, renderer, email.WorkerConfig{
			PollInterval: cfg.Email.PollInterval,
			BatchSize:    cfg.Email.BatchSize,
			AppBaseURL:   cfg.Email.AppBaseURL,
		})
	}

	notifier := budget.NewNotifier(publisher, emailService)

	// Create budget use cases
	useCases := controller.BudgetUseCases{
		List:                  budget.NewListBudgetsUseCase(budgetRepo),
		Create:                budget.NewCreateBudgetUseCase(budgetRepo, notifier, cfg.Budget.DefaultTotal),
		Get:                   budget.NewGetBudgetUseCase(budgetRepo),
		Delete:                budget.NewDeleteBudgetUseCase(budgetRepo, publisher),
		SetTotalBudget:        budget.NewSetTotalBudgetUseCase(budgetRepo, notifier),
		SetCategoryPercentage: budget.NewSetCategoryPercentageUseCase(budgetRepo, notifier),
		ResetBreakdown:        budget.NewResetBreakdownUseCase(budgetRepo, notifier),
		AddLineItem:           budget.NewAddLineItemUseCase(budgetRepo, notifier),
		UpdateLineItem:        budget.NewUpdateLineItemUseCase(budgetRepo, notifier),
		RemoveLineItem:        budget.NewRemoveLineItemUseCase(budgetRepo, notifier),
		StreamSummaries:       budget.NewStreamSummariesUseCase(budgetRepo, publisher),
	}

	// Create controllers
	dbHealthChecker := opts.DBHealthChecker
	if dbHealthChecker == nil {
		dbHealthChecker = func() bool {
			sqlDB, err := db.DB()
			if err != nil {
				return false
			}
			return sqlDB.Ping() == nil
		}
	}
	var redisHealthChecker func() bool
	if opts.Redis != nil {
		redisHealthChecker = opts.RedisHealthChecker
	}

	healthController := controller.NewHealthController(dbHealthChecker, redisHealthChecker)
	budgetController := controller.NewBudgetController(useCases)

	// Create middleware
	createLimiter := middleware.NewOwnerLimiter(cfg.Budget.CreateRateLimit, cfg.Budget.CreateRateWindow)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(healthController, budgetController, createLimiter, authMiddleware)

	return &Injector{
		Config:        cfg,
		DB:            db,
		Router:        r,
		TokenService:  tokenService,
		Publisher:     publisher,
		CreateLimiter: createLimiter,
		EmailWorker:   emailWorker,
	}, nil
}
