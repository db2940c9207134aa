// Package email delivers over-budget alerts through Resend.
package email

import (
	"context"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
)

// Service puts over-budget alerts in the outbox for the worker to send.
type Service struct {
	outbox adapter.AlertOutbox
}

// NewService creates a new email service.
func NewService(outbox adapter.AlertOutbox) *Service {
	return &Service{
		outbox: outbox,
	}
}

// QueueOverBudgetAlert stores an alert with the totals at the moment the budget went over.
func (s *Service) QueueOverBudgetAlert(ctx context.Context, input adapter.QueueOverBudgetAlertInput) error {
	alert := entity.NewBudgetAlert(
		input.BudgetID,
		input.BudgetName,
		input.RecipientEmail,
		input.TotalBudget,
		input.TotalAllocated,
	)
	return s.outbox.Enqueue(ctx, alert)
}

// Ensure Service implements adapter.EmailService.
var _ adapter.EmailService = (*Service)(nil)
