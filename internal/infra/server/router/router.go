// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wedding-planner/backend/internal/integration/entrypoint/controller"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine           *gin.Engine
	healthController *controller.HealthController
	budgetController *controller.BudgetController
	createLimiter    *middleware.OwnerLimiter
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	budgetController *controller.BudgetController,
	createLimiter *middleware.OwnerLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController: healthController,
		budgetController: budgetController,
		createLimiter:    createLimiter,
		authMiddleware:   authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")

	// Budget routes (require authentication)
	if r.budgetController != nil && r.authMiddleware != nil {
		createHandlers := []gin.HandlerFunc{r.budgetController.Create}
		if r.createLimiter != nil {
			createHandlers = append([]gin.HandlerFunc{r.createLimiter.Middleware()}, createHandlers...)
		}

		budgets := v1.Group("/budgets")
		budgets.Use(r.authMiddleware.Authenticate())
		{
			budgets.GET("", r.budgetController.List)
			budgets.POST("", createHandlers...)
			budgets.GET("/:id", r.budgetController.Get)
			budgets.DELETE("/:id", r.budgetController.Delete)
			budgets.GET("/:id/events", r.budgetController.Events)
			budgets.PUT("/:id/total", r.budgetController.SetTotalBudget)

			categories := budgets.Group("/:id/categories")
			{
				categories.POST("/reset", r.budgetController.ResetBreakdown)
				categories.PUT("/:category", r.budgetController.SetCategoryPercentage)
			}

			lineItems := budgets.Group("/:id/line-items")
			{
				lineItems.POST("", r.budgetController.AddLineItem)
				lineItems.PATCH("/:item_id", r.budgetController.UpdateLineItem)
				lineItems.DELETE("/:item_id", r.budgetController.RemoveLineItem)
			}
		}
	}
}
