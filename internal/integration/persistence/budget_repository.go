// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/persistence/model"
)

// budgetRepository implements the adapter.BudgetRepository interface.
type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a new budget repository instance.
func NewBudgetRepository(db *gorm.DB) adapter.BudgetRepository {
	return &budgetRepository{
		db: db,
	}
}

// withChildren preloads the breakdown and the line items in display order.
func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Categories").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// Create creates a new budget with its breakdown and line items.
func (r *budgetRepository) Create(ctx context.Context, budget *entity.Budget) error {
	budgetModel := model.BudgetFromEntity(budget)
	result := r.db.WithContext(ctx).Create(budgetModel)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// FindByID retrieves a budget by its ID.
func (r *budgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Budget, error) {
	var budgetModel model.BudgetModel
	result := withChildren(r.db.WithContext(ctx)).Where("id = ?", id).First(&budgetModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrBudgetNotFound
		}
		return nil, result.Error
	}
	return budgetModel.ToEntity(), nil
}

// FindByOwnerID retrieves all budgets for a given owner.
func (r *budgetRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.Budget, error) {
	var budgetModels []model.BudgetModel
	result := withChildren(r.db.WithContext(ctx)).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&budgetModels)
	if result.Error != nil {
		return nil, result.Error
	}

	budgets := make([]*entity.Budget, len(budgetModels))
	for i, bm := range budgetModels {
		budgets[i] = bm.ToEntity()
	}
	return budgets, nil
}

// Save writes the budget row and replaces its category and line item rows in
// one transaction. The write only applies if the stored version still matches
// budget.Version; otherwise ErrBudgetConflict is returned and nothing changes.
func (r *budgetRepository) Save(ctx context.Context, budget *entity.Budget) error {
	budgetModel := model.BudgetFromEntity(budget)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.BudgetModel{}).
			Where("id = ? AND version = ?", budgetModel.ID, budgetModel.Version).
			Updates(map[string]interface{}{
				"name":         budgetModel.Name,
				"total_budget": budgetModel.TotalBudget,
				"alert_email":  budgetModel.AlertEmail,
				"updated_at":   budgetModel.UpdatedAt,
				"version":      budgetModel.Version + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.BudgetModel{}).Where("id = ?", budgetModel.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerror.ErrBudgetNotFound
			}
			return domainerror.ErrBudgetConflict
		}

		if err := tx.Where("budget_id = ?", budgetModel.ID).Delete(&model.BudgetCategoryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("budget_id = ?", budgetModel.ID).Delete(&model.BudgetLineItemModel{}).Error; err != nil {
			return err
		}

		if err := tx.Create(&budgetModel.Categories).Error; err != nil {
			return err
		}
		if len(budgetModel.LineItems) > 0 {
			if err := tx.Create(&budgetModel.LineItems).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	budget.Version++
	return nil
}

// Delete removes a budget from the database (soft delete). Its rows stay in place.
func (r *budgetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.BudgetModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrBudgetNotFound
	}
	return nil
}
