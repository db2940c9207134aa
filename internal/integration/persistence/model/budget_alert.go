package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wedding-planner/backend/internal/domain/entity"
)

// BudgetAlertModel represents the budget_alerts outbox table.
type BudgetAlertModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BudgetID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	BudgetName     string          `gorm:"type:varchar(100);not null"`
	RecipientEmail string          `gorm:"type:varchar(255);not null"`
	TotalBudget    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalAllocated decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null;index:idx_budget_alerts_due,priority:1"`
	Attempts       int             `gorm:"not null;default:0"`
	LastError      string          `gorm:"type:text"`
	ResendID       string          `gorm:"type:varchar(100)"`
	CreatedAt      time.Time       `gorm:"not null"`
	NextAttemptAt  time.Time       `gorm:"not null;index:idx_budget_alerts_due,priority:2"`
	FinishedAt     *time.Time
}

// TableName returns the table name for the BudgetAlertModel.
func (BudgetAlertModel) TableName() string {
	return "budget_alerts"
}

// ToEntity converts a BudgetAlertModel to a domain BudgetAlert entity.
func (m *BudgetAlertModel) ToEntity() *entity.BudgetAlert {
	return &entity.BudgetAlert{
		ID:             m.ID,
		BudgetID:       m.BudgetID,
		BudgetName:     m.BudgetName,
		RecipientEmail: m.RecipientEmail,
		TotalBudget:    m.TotalBudget.InexactFloat64(),
		TotalAllocated: m.TotalAllocated.InexactFloat64(),
		Status:         entity.AlertStatus(m.Status),
		Attempts:       m.Attempts,
		LastError:      m.LastError,
		ResendID:       m.ResendID,
		CreatedAt:      m.CreatedAt,
		NextAttemptAt:  m.NextAttemptAt,
		FinishedAt:     m.FinishedAt,
	}
}

// BudgetAlertFromEntity creates a BudgetAlertModel from a domain BudgetAlert entity.
func BudgetAlertFromEntity(alert *entity.BudgetAlert) *BudgetAlertModel {
	return &BudgetAlertModel{
		ID:             alert.ID,
		BudgetID:       alert.BudgetID,
		BudgetName:     alert.BudgetName,
		RecipientEmail: alert.RecipientEmail,
		TotalBudget:    decimal.NewFromFloat(alert.TotalBudget),
		TotalAllocated: decimal.NewFromFloat(alert.TotalAllocated),
		Status:         string(alert.Status),
		Attempts:       alert.Attempts,
		LastError:      alert.LastError,
		ResendID:       alert.ResendID,
		CreatedAt:      alert.CreatedAt,
		NextAttemptAt:  alert.NextAttemptAt,
		FinishedAt:     alert.FinishedAt,
	}
}
