// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ResendID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// EmailService defines the interface for queueing emails.
type EmailService interface {
	// QueueOverBudgetAlert queues an alert for a budget whose line items exceed its total.
	QueueOverBudgetAlert(ctx context.Context, input QueueOverBudgetAlertInput) error
}

// QueueOverBudgetAlertInput represents the input for queueing an over-budget alert.
type QueueOverBudgetAlertInput struct {
	BudgetID        uuid.UUID
	BudgetName      string
	RecipientEmail  string
	TotalBudget     float64
	TotalAllocated  float64
	RemainingBudget float64
}
