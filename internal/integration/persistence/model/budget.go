// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// BudgetModel represents the budgets table in the database.
type BudgetModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Name        string                `gorm:"type:varchar(100);not null"`
	TotalBudget decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	AlertEmail  string                `gorm:"type:varchar(255)"`
	Version     int64                 `gorm:"not null;default:0"`
	Categories  []BudgetCategoryModel `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
	LineItems   []BudgetLineItemModel `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time             `gorm:"not null"`
	UpdatedAt   time.Time             `gorm:"not null"`
	DeletedAt   gorm.DeletedAt        `gorm:"index"` // Soft-delete support
}

// TableName returns the table name for the BudgetModel.
func (BudgetModel) TableName() string {
	return "budgets"
}

// BudgetCategoryModel represents one row of a budget's percentage breakdown.
// Percentages are stored as float since corrected values may carry more
// precision than a fixed-scale column keeps.
type BudgetCategoryModel struct {
	BudgetID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryKey string    `gorm:"type:varchar(20);primaryKey"`
	Percentage  float64   `gorm:"not null"`
}

// TableName returns the table name for the BudgetCategoryModel.
func (BudgetCategoryModel) TableName() string {
	return "budget_categories"
}

// BudgetLineItemModel represents the budget_line_items table in the database.
type BudgetLineItemModel struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BudgetID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position int             `gorm:"not null"`
	Name     string          `gorm:"type:varchar(255);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Category string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for the BudgetLineItemModel.
func (BudgetLineItemModel) TableName() string {
	return "budget_line_items"
}

// ToEntity converts a BudgetModel, with its children preloaded, to a domain Budget entity.
func (m *BudgetModel) ToEntity() *entity.Budget {
	var deletedAt *time.Time
	if m.DeletedAt.Valid {
		deletedAt = &m.DeletedAt.Time
	}

	// Start from the defaults so a budget stored without category rows still
	// carries every key.
	categories := entity.DefaultBreakdown()
	for _, c := range m.Categories {
		key := entity.CategoryKey(c.CategoryKey)
		if key.IsValid() {
			categories[key] = c.Percentage
		}
	}

	items := make([]*entity.LineItem, len(m.LineItems))
	for i, li := range m.LineItems {
		items[i] = &entity.LineItem{
			ID:       li.ID,
			Name:     li.Name,
			Amount:   li.Amount.InexactFloat64(),
			Category: entity.CategoryKey(li.Category),
		}
	}

	return &entity.Budget{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		TotalBudget: m.TotalBudget.InexactFloat64(),
		Categories:  categories,
		LineItems:   items,
		AlertEmail:  m.AlertEmail,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

// BudgetFromEntity creates a BudgetModel with its category and line item rows from a domain Budget entity.
func BudgetFromEntity(budget *entity.Budget) *BudgetModel {
	var deletedAt gorm.DeletedAt
	if budget.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *budget.DeletedAt, Valid: true}
	}

	categories := make([]BudgetCategoryModel, 0, len(entity.CategoryKeys))
	for _, key := range entity.CategoryKeys {
		categories = append(categories, BudgetCategoryModel{
			BudgetID:    budget.ID,
			CategoryKey: string(key),
			Percentage:  budget.Categories[key],
		})
	}

	items := make([]BudgetLineItemModel, len(budget.LineItems))
	for i, li := range budget.LineItems {
		items[i] = BudgetLineItemModel{
			ID:       li.ID,
			BudgetID: budget.ID,
			Position: i,
			Name:     li.Name,
			Amount:   decimal.NewFromFloat(li.Amount),
			Category: string(li.Category),
		}
	}

	return &BudgetModel{
		ID:          budget.ID,
		OwnerID:     budget.OwnerID,
		Name:        budget.Name,
		TotalBudget: decimal.NewFromFloat(budget.TotalBudget),
		AlertEmail:  budget.AlertEmail,
		Version:     budget.Version,
		Categories:  categories,
		LineItems:   items,
		CreatedAt:   budget.CreatedAt,
		UpdatedAt:   budget.UpdatedAt,
		DeletedAt:   deletedAt,
	}
}

// All returns every model managed by auto-migration.
func All() []interface{} {
	return []interface{}{
		&BudgetModel{},
		&BudgetCategoryModel{},
		&BudgetLineItemModel{},
		&BudgetAlertModel{},
	}
}
