package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/persistence/model"
)

// alertOutbox implements the adapter.AlertOutbox interface.
type alertOutbox struct {
	db *gorm.DB
}

// NewAlertOutbox creates a new alert outbox backed by the budget_alerts table.
func NewAlertOutbox(db *gorm.DB) adapter.AlertOutbox {
	return &alertOutbox{
		db: db,
	}
}

// Enqueue stores a new alert.
func (o *alertOutbox) Enqueue(ctx context.Context, alert *entity.BudgetAlert) error {
	if err := o.db.WithContext(ctx).Create(model.BudgetAlertFromEntity(alert)).Error; err != nil {
		return domainerror.NewEmailError(
			domainerror.ErrCodeAlertEnqueueFailed,
			"failed to enqueue budget alert",
			err,
		)
	}
	return nil
}

// ClaimDue selects due alerts and flips them to sending in one transaction.
// Alerts left in sending past their lease, by a worker that stopped midway,
// are claimed again. The guard on the update keeps a concurrent claimer from
// taking the same rows, since a fresh claim moves next_attempt_at past now.
func (o *alertOutbox) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*entity.BudgetAlert, error) {
	var claimed []*entity.BudgetAlert
	claimable := []entity.AlertStatus{entity.AlertStatusPending, entity.AlertStatusSending}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []model.BudgetAlertModel
		if err := tx.
			Where("status IN ? AND next_attempt_at <= ?", claimable, now).
			Order("next_attempt_at ASC").
			Limit(limit).
			Find(&due).Error; err != nil {
			return err
		}

		for i := range due {
			alert := due[i].ToEntity()
			alert.MarkSending(now)

			result := tx.Model(&model.BudgetAlertModel{}).
				Where("id = ? AND status IN ? AND next_attempt_at <= ?", due[i].ID, claimable, now).
				Updates(map[string]interface{}{
					"status":          alert.Status,
					"next_attempt_at": alert.NextAttemptAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}

			claimed = append(claimed, alert)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim due alerts: %w", err)
	}

	return claimed, nil
}

// Save writes the alert's delivery state.
func (o *alertOutbox) Save(ctx context.Context, alert *entity.BudgetAlert) error {
	if err := o.db.WithContext(ctx).Save(model.BudgetAlertFromEntity(alert)).Error; err != nil {
		return fmt.Errorf("failed to save budget alert: %w", err)
	}
	return nil
}

// ListByBudget returns a budget's alerts, newest first.
func (o *alertOutbox) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]*entity.BudgetAlert, error) {
	var models []model.BudgetAlertModel
	if err := o.db.WithContext(ctx).
		Where("budget_id = ?", budgetID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list budget alerts: %w", err)
	}

	alerts := make([]*entity.BudgetAlert, len(models))
	for i := range models {
		alerts[i] = models[i].ToEntity()
	}
	return alerts, nil
}

// PurgeSent deletes sent alerts finished before the cutoff.
func (o *alertOutbox) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	result := o.db.WithContext(ctx).
		Where("status = ? AND finished_at < ?", entity.AlertStatusSent, before).
		Delete(&model.BudgetAlertModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sent alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
