// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/usecase/budget"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/dto"
	"github.com/wedding-planner/backend/internal/integration/entrypoint/middleware"
)

// BudgetUseCases groups the use cases served by BudgetController.
type BudgetUseCases struct {
	List                  *budget.ListBudgetsUseCase
	Create                *budget.CreateBudgetUseCase
	Get                   *budget.GetBudgetUseCase
	Delete                *budget.DeleteBudgetUseCase
	SetTotalBudget        *budget.SetTotalBudgetUseCase
	SetCategoryPercentage *budget.SetCategoryPercentageUseCase
	ResetBreakdown        *budget.ResetBreakdownUseCase
	AddLineItem           *budget.AddLineItemUseCase
	UpdateLineItem        *budget.UpdateLineItemUseCase
	RemoveLineItem        *budget.RemoveLineItemUseCase
	StreamSummaries       *budget.StreamSummariesUseCase
}

// BudgetController handles wedding budget endpoints.
type BudgetController struct {
	useCases BudgetUseCases
}

// NewBudgetController creates a new budget controller instance.
func NewBudgetController(useCases BudgetUseCases) *BudgetController {
	return &BudgetController{
		useCases: useCases,
	}
}

// List handles GET /budgets requests.
func (c *BudgetController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	output, err := c.useCases.List.Execute(ctx.Request.Context(), budget.ListBudgetsInput{UserID: userID})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetListResponse(output.Budgets))
}

// Create handles POST /budgets requests.
func (c *BudgetController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateBudgetRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	input := budget.CreateBudgetInput{
		OwnerID:    userID,
		Name:       req.Name,
		AlertEmail: req.AlertEmail,
	}
	if req.TotalBudget != nil {
		total := float64(*req.TotalBudget)
		input.TotalBudget = &total
	}

	output, err := c.useCases.Create.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToBudgetResponse(output.Budget))
}

// Get handles GET /budgets/:id requests.
func (c *BudgetController) Get(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	output, err := c.useCases.Get.Execute(ctx.Request.Context(), budget.GetBudgetInput{
		BudgetID: budgetID,
		UserID:   userID,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetResponse(output.Budget))
}

// Delete handles DELETE /budgets/:id requests.
func (c *BudgetController) Delete(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	err := c.useCases.Delete.Execute(ctx.Request.Context(), budget.DeleteBudgetInput{
		BudgetID: budgetID,
		UserID:   userID,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// SetTotalBudget handles PUT /budgets/:id/total requests.
func (c *BudgetController) SetTotalBudget(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	var req dto.SetTotalBudgetRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.useCases.SetTotalBudget.Execute(ctx.Request.Context(), budget.SetTotalBudgetInput{
		BudgetID:    budgetID,
		UserID:      userID,
		TotalBudget: float64(*req.TotalBudget),
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(output.Summary))
}

// SetCategoryPercentage handles PUT /budgets/:id/categories/:category requests.
func (c *BudgetController) SetCategoryPercentage(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	var req dto.SetCategoryPercentageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	output, err := c.useCases.SetCategoryPercentage.Execute(ctx.Request.Context(), budget.SetCategoryPercentageInput{
		BudgetID:   budgetID,
		UserID:     userID,
		Category:   entity.CategoryKey(ctx.Param("category")),
		Percentage: *req.Percentage,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(output.Summary))
}

// ResetBreakdown handles POST /budgets/:id/categories/reset requests.
func (c *BudgetController) ResetBreakdown(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	output, err := c.useCases.ResetBreakdown.Execute(ctx.Request.Context(), budget.ResetBreakdownInput{
		BudgetID: budgetID,
		UserID:   userID,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(output.Summary))
}

// AddLineItem handles POST /budgets/:id/line-items requests.
func (c *BudgetController) AddLineItem(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	var req dto.AddLineItemRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	output, err := c.useCases.AddLineItem.Execute(ctx.Request.Context(), budget.AddLineItemInput{
		BudgetID: budgetID,
		UserID:   userID,
		Name:     req.Name,
		Amount:   float64(req.Amount),
		Category: entity.CategoryKey(req.Category),
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.AddLineItemResponse{
		LineItem: dto.ToLineItemResponse(output.LineItem),
		Summary:  dto.ToBudgetSummaryResponse(output.Summary),
	})
}

// UpdateLineItem handles PATCH /budgets/:id/line-items/:item_id requests.
func (c *BudgetController) UpdateLineItem(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(ctx, "item_id", "Invalid line item ID format")
	if !ok {
		return
	}

	var req dto.UpdateLineItemRequest
	if !bindJSON(ctx, &req) {
		return
	}

	input := budget.UpdateLineItemInput{
		BudgetID:   budgetID,
		UserID:     userID,
		LineItemID: itemID,
		Name:       req.Name,
	}
	if req.Amount != nil {
		amount := float64(*req.Amount)
		input.Amount = &amount
	}
	if req.Category != nil {
		category := entity.CategoryKey(*req.Category)
		input.Category = &category
	}

	output, err := c.useCases.UpdateLineItem.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(output.Summary))
}

// RemoveLineItem handles DELETE /budgets/:id/line-items/:item_id requests.
func (c *BudgetController) RemoveLineItem(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(ctx, "item_id", "Invalid line item ID format")
	if !ok {
		return
	}

	output, err := c.useCases.RemoveLineItem.Execute(ctx.Request.Context(), budget.RemoveLineItemInput{
		BudgetID:   budgetID,
		UserID:     userID,
		LineItemID: itemID,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToBudgetSummaryResponse(output.Summary))
}

// Events handles GET /budgets/:id/events requests. It streams the current
// summary followed by every published one as server-sent events.
func (c *BudgetController) Events(ctx *gin.Context) {
	userID, budgetID, ok := requireUserAndBudget(ctx)
	if !ok {
		return
	}

	output, err := c.useCases.StreamSummaries.Execute(ctx.Request.Context(), budget.StreamSummariesInput{
		BudgetID: budgetID,
		UserID:   userID,
	})
	if err != nil {
		c.handleBudgetError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("X-Accel-Buffering", "no")
	ctx.SSEvent("summary", dto.ToBudgetSummaryResponse(output.Current))
	ctx.Writer.Flush()

	ctx.Stream(func(w io.Writer) bool {
		summary, open := <-output.Updates
		if !open {
			return false
		}
		ctx.SSEvent("summary", dto.ToBudgetSummaryResponse(summary))
		return true
	})
}

// handleBudgetError maps budget errors to HTTP responses.
func (c *BudgetController) handleBudgetError(ctx *gin.Context, err error) {
	var budgetErr *domainerror.BudgetError
	if errors.As(err, &budgetErr) {
		status := http.StatusBadRequest
		switch budgetErr.Code {
		case domainerror.ErrCodeBudgetNotFound, domainerror.ErrCodeLineItemNotFound:
			status = http.StatusNotFound
		case domainerror.ErrCodeUnauthorizedBudgetAccess:
			status = http.StatusForbidden
		case domainerror.ErrCodeBudgetRateLimited:
			status = http.StatusTooManyRequests
		case domainerror.ErrCodeBudgetConflict:
			status = http.StatusConflict
		}

		ctx.JSON(status, dto.ErrorResponse{
			Error: budgetErr.Message,
			Code:  string(budgetErr.Code),
		})
		return
	}

	slog.Error("Budget request failed", "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error: "Internal server error",
	})
}

func requireUser(ctx *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.OwnerIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return uuid.Nil, false
	}
	return userID, true
}

func requireUserAndBudget(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := requireUser(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	budgetID, ok := parseIDParam(ctx, "id", "Invalid budget ID format")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, budgetID, true
}

func parseIDParam(ctx *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(param))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: message,
			Code:  string(domainerror.ErrCodeMissingBudgetFields),
		})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body: " + err.Error(),
			Code:  string(domainerror.ErrCodeMissingBudgetFields),
		})
		return false
	}
	return true
}

// bindOptionalJSON accepts an empty body and leaves req at its zero value.
func bindOptionalJSON(ctx *gin.Context, req interface{}) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(ctx, req)
}
