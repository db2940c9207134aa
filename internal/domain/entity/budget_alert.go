package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertStatus is where an over-budget alert is in its delivery.
type AlertStatus string

const (
	AlertStatusPending AlertStatus = "pending"
	AlertStatusSending AlertStatus = "sending"
	AlertStatusSent    AlertStatus = "sent"
	AlertStatusFailed  AlertStatus = "failed"
)

// MaxAlertAttempts is how many deliveries are tried before an alert is given up.
const MaxAlertAttempts = 3

// AlertClaimLease is how long a claimed alert stays in sending before another
// worker may claim it again.
const AlertClaimLease = 5 * time.Minute

// alertRetryDelays are indexed by the number of attempts already made.
var alertRetryDelays = []time.Duration{0, time.Minute, 5 * time.Minute}

// BudgetAlert is an over-budget email waiting in the outbox. It carries the
// totals as they were when the budget went over, not as they are when sent.
type BudgetAlert struct {
	ID             uuid.UUID
	BudgetID       uuid.UUID
	BudgetName     string
	RecipientEmail string
	TotalBudget    float64
	TotalAllocated float64
	Status         AlertStatus
	Attempts       int
	LastError      string
	ResendID       string
	CreatedAt      time.Time
	NextAttemptAt  time.Time
	FinishedAt     *time.Time
}

// NewBudgetAlert creates a pending alert due immediately.
func NewBudgetAlert(budgetID uuid.UUID, budgetName, recipientEmail string, totalBudget, totalAllocated float64) *BudgetAlert {
	now := time.Now().UTC()
	return &BudgetAlert{
		ID:             uuid.New(),
		BudgetID:       budgetID,
		BudgetName:     budgetName,
		RecipientEmail: recipientEmail,
		TotalBudget:    totalBudget,
		TotalAllocated: totalAllocated,
		Status:         AlertStatusPending,
		CreatedAt:      now,
		NextAttemptAt:  now,
	}
}

// OverBy is how far the line items exceed the total budget.
func (a *BudgetAlert) OverBy() float64 {
	return a.TotalAllocated - a.TotalBudget
}

// Subject is the email subject line.
func (a *BudgetAlert) Subject() string {
	return fmt.Sprintf("%s is over budget", a.BudgetName)
}

// Claimable reports whether a worker may claim the alert at now: it is a due
// pending alert, or a sending alert whose claim lease ran out.
func (a *BudgetAlert) Claimable(now time.Time) bool {
	if a.Status != AlertStatusPending && a.Status != AlertStatusSending {
		return false
	}
	return !a.NextAttemptAt.After(now)
}

// MarkSending records that a worker claimed the alert at now. NextAttemptAt
// becomes the end of the claim lease.
func (a *BudgetAlert) MarkSending(now time.Time) {
	a.Status = AlertStatusSending
	a.NextAttemptAt = now.Add(AlertClaimLease)
}

// Release hands a claimed alert back without counting an attempt.
func (a *BudgetAlert) Release() {
	a.Status = AlertStatusPending
	a.NextAttemptAt = time.Now().UTC()
}

// MarkSent records a successful delivery.
func (a *BudgetAlert) MarkSent(resendID string) {
	now := time.Now().UTC()
	a.Status = AlertStatusSent
	a.ResendID = resendID
	a.FinishedAt = &now
}

// MarkFailed records a failed delivery. The alert goes back to pending with
// a backoff unless the failure is permanent or attempts are used up.
func (a *BudgetAlert) MarkFailed(err error, permanent bool) {
	a.Attempts++
	a.LastError = err.Error()

	now := time.Now().UTC()
	if permanent || a.Attempts >= MaxAlertAttempts {
		a.Status = AlertStatusFailed
		a.FinishedAt = &now
		return
	}

	a.Status = AlertStatusPending
	a.NextAttemptAt = now.Add(retryDelay(a.Attempts))
}

func retryDelay(attempts int) time.Duration {
	if attempts < len(alertRetryDelays) {
		return alertRetryDelays[attempts]
	}
	return alertRetryDelays[len(alertRetryDelays)-1]
}
