package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestAlert() *BudgetAlert {
	return NewBudgetAlert(uuid.New(), "Our wedding", "couple@example.com", 500000, 505000)
}

func TestBudgetAlert(t *testing.T) {
	t.Run("new alert is pending and due now", func(t *testing.T) {
		alert := newTestAlert()

		if alert.Status != AlertStatusPending {
			t.Errorf("expected pending, got %s", alert.Status)
		}
		if alert.NextAttemptAt.After(time.Now().UTC()) {
			t.Error("expected alert to be due immediately")
		}
		if alert.OverBy() != 5000 {
			t.Errorf("expected over by 5000, got %v", alert.OverBy())
		}
		if alert.Subject() != "Our wedding is over budget" {
			t.Errorf("unexpected subject %q", alert.Subject())
		}
	})

	t.Run("temporary failure is rescheduled with backoff", func(t *testing.T) {
		alert := newTestAlert()
		alert.MarkSending(time.Now().UTC())
		before := time.Now().UTC()

		alert.MarkFailed(errors.New("429 too many requests"), false)

		if alert.Status != AlertStatusPending {
			t.Errorf("expected pending, got %s", alert.Status)
		}
		if alert.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", alert.Attempts)
		}
		if alert.NextAttemptAt.Before(before.Add(time.Minute)) {
			t.Errorf("expected retry at least one minute out, got %v", alert.NextAttemptAt.Sub(before))
		}
		if alert.LastError != "429 too many requests" {
			t.Errorf("expected last error to be recorded, got %q", alert.LastError)
		}
		if alert.FinishedAt != nil {
			t.Error("expected a retried alert not to be finished")
		}
	})

	t.Run("permanent failure ends the alert", func(t *testing.T) {
		alert := newTestAlert()

		alert.MarkFailed(errors.New("422 validation"), true)

		if alert.Status != AlertStatusFailed || alert.FinishedAt == nil {
			t.Errorf("expected finished failed alert, got %+v", alert)
		}
	})

	t.Run("used up attempts end the alert", func(t *testing.T) {
		alert := newTestAlert()

		for i := 0; i < MaxAlertAttempts; i++ {
			alert.MarkFailed(errors.New("503"), false)
		}

		if alert.Status != AlertStatusFailed {
			t.Errorf("expected failed after %d attempts, got %s", MaxAlertAttempts, alert.Status)
		}
	})

	t.Run("claim holds a lease that expires", func(t *testing.T) {
		alert := newTestAlert()
		now := time.Now().UTC()

		if !alert.Claimable(now) {
			t.Fatal("expected a new alert to be claimable")
		}
		alert.MarkSending(now)

		if alert.Claimable(now.Add(AlertClaimLease - time.Second)) {
			t.Error("expected alert not to be claimable while the lease holds")
		}
		if !alert.Claimable(now.Add(AlertClaimLease)) {
			t.Error("expected alert to be claimable once the lease ran out")
		}
	})

	t.Run("release returns the alert without counting an attempt", func(t *testing.T) {
		alert := newTestAlert()
		alert.MarkSending(time.Now().UTC())

		alert.Release()

		if alert.Status != AlertStatusPending {
			t.Errorf("expected pending, got %s", alert.Status)
		}
		if alert.Attempts != 0 {
			t.Errorf("expected no attempt to be counted, got %d", alert.Attempts)
		}
		if !alert.Claimable(time.Now().UTC()) {
			t.Error("expected a released alert to be due again")
		}
	})

	t.Run("finished alerts are never claimable", func(t *testing.T) {
		alert := newTestAlert()
		alert.MarkSent("re_1")

		if alert.Claimable(time.Now().UTC().Add(time.Hour)) {
			t.Error("expected a sent alert not to be claimable")
		}
	})

	t.Run("sent alert keeps the provider id", func(t *testing.T) {
		alert := newTestAlert()
		alert.MarkSending(time.Now().UTC())
		alert.MarkSent("re_123")

		if alert.Status != AlertStatusSent || alert.ResendID != "re_123" || alert.FinishedAt == nil {
			t.Errorf("unexpected alert after MarkSent: %+v", alert)
		}
	})
}
