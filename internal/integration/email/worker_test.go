package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/email/templates"
)

type memoryOutbox struct {
	alerts map[uuid.UUID]*entity.BudgetAlert
}

func newMemoryOutbox() *memoryOutbox {
	return &memoryOutbox{alerts: make(map[uuid.UUID]*entity.BudgetAlert)}
}

func (o *memoryOutbox) Enqueue(_ context.Context, alert *entity.BudgetAlert) error {
	o.alerts[alert.ID] = alert
	return nil
}

func (o *memoryOutbox) ClaimDue(_ context.Context, now time.Time, limit int) ([]*entity.BudgetAlert, error) {
	var claimed []*entity.BudgetAlert
	for _, alert := range o.alerts {
		if alert.Claimable(now) && len(claimed) < limit {
			alert.MarkSending(now)
			claimed = append(claimed, alert)
		}
	}
	return claimed, nil
}

func (o *memoryOutbox) Save(_ context.Context, alert *entity.BudgetAlert) error {
	o.alerts[alert.ID] = alert
	return nil
}

func (o *memoryOutbox) ListByBudget(_ context.Context, budgetID uuid.UUID) ([]*entity.BudgetAlert, error) {
	var alerts []*entity.BudgetAlert
	for _, alert := range o.alerts {
		if alert.BudgetID == budgetID {
			alerts = append(alerts, alert)
		}
	}
	return alerts, nil
}

func (o *memoryOutbox) PurgeSent(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type recordingSender struct {
	sent      []adapter.SendEmailInput
	failErr   error
	permanent bool
}

func (s *recordingSender) failWith(err error, permanent bool) {
	s.failErr = err
	s.permanent = permanent
}

func (s *recordingSender) Send(_ context.Context, input adapter.SendEmailInput) (*adapter.SendEmailResult, error) {
	if s.failErr != nil {
		code := domainerror.ErrCodeTemporaryEmailFailure
		if s.permanent {
			code = domainerror.ErrCodePermanentEmailFailure
		}
		return nil, domainerror.NewEmailError(code, "send failed", s.failErr)
	}

	s.sent = append(s.sent, input)
	return &adapter.SendEmailResult{ResendID: fmt.Sprintf("mock-%d", len(s.sent))}, nil
}

func queueAlert(t *testing.T, outbox *memoryOutbox) uuid.UUID {
	t.Helper()
	budgetID := uuid.New()
	err := NewService(outbox).QueueOverBudgetAlert(context.Background(), adapter.QueueOverBudgetAlertInput{
		BudgetID:        budgetID,
		BudgetName:      "Our wedding",
		RecipientEmail:  "couple@example.com",
		TotalBudget:     500000,
		TotalAllocated:  505000,
		RemainingBudget: -5000,
	})
	if err != nil {
		t.Fatalf("failed to queue alert: %v", err)
	}
	return budgetID
}

func newTestWorker(t *testing.T, outbox *memoryOutbox, sender adapter.EmailSender) *Worker {
	t.Helper()
	renderer, err := templates.NewRenderer()
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	config := DefaultWorkerConfig()
	config.AppBaseURL = "https://app.example.com/"
	return NewWorker(outbox, sender, renderer, config)
}

func onlyAlert(t *testing.T, outbox *memoryOutbox, budgetID uuid.UUID) *entity.BudgetAlert {
	t.Helper()
	alerts, _ := outbox.ListByBudget(context.Background(), budgetID)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	return alerts[0]
}

func TestService_QueueOverBudgetAlert(t *testing.T) {
	outbox := newMemoryOutbox()
	budgetID := queueAlert(t, outbox)

	alert := onlyAlert(t, outbox, budgetID)
	if alert.Status != entity.AlertStatusPending {
		t.Errorf("expected pending alert, got %s", alert.Status)
	}
	if alert.OverBy() != 5000 {
		t.Errorf("expected over by 5000, got %v", alert.OverBy())
	}
	if alert.RecipientEmail != "couple@example.com" {
		t.Errorf("unexpected recipient %q", alert.RecipientEmail)
	}
}

func TestWorker_ProcessNow(t *testing.T) {
	ctx := context.Background()

	t.Run("sends and marks the alert sent", func(t *testing.T) {
		outbox := newMemoryOutbox()
		budgetID := queueAlert(t, outbox)
		sender := &recordingSender{}

		newTestWorker(t, outbox, sender).ProcessNow(ctx)

		if len(sender.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(sender.sent))
		}
		sent := sender.sent[0]
		if sent.To != "couple@example.com" || sent.Subject != "Our wedding is over budget" {
			t.Errorf("unexpected email %q / %q", sent.To, sent.Subject)
		}
		if !strings.Contains(sent.HTML, "5000.00") || !strings.Contains(sent.Text, "Over by:      5000.00") {
			t.Errorf("expected rendered amounts in email bodies, got html=%q text=%q", sent.HTML, sent.Text)
		}
		if !strings.Contains(sent.Text, "https://app.example.com/budgets/"+budgetID.String()) {
			t.Errorf("expected budget link in text body, got %q", sent.Text)
		}

		alert := onlyAlert(t, outbox, budgetID)
		if alert.Status != entity.AlertStatusSent || alert.ResendID != "mock-1" {
			t.Errorf("expected alert marked sent, got %+v", alert)
		}
	})

	t.Run("temporary failure is retried later", func(t *testing.T) {
		outbox := newMemoryOutbox()
		budgetID := queueAlert(t, outbox)
		sender := &recordingSender{}
		sender.failWith(errors.New("503 service unavailable"), false)

		newTestWorker(t, outbox, sender).ProcessNow(ctx)

		alert := onlyAlert(t, outbox, budgetID)
		if alert.Status != entity.AlertStatusPending || alert.Attempts != 1 {
			t.Errorf("expected pending alert with 1 attempt, got %+v", alert)
		}
		if due, _ := outbox.ClaimDue(ctx, time.Now().UTC(), 10); len(due) != 0 {
			t.Error("expected retried alert to wait for its backoff")
		}
	})

	t.Run("permanent failure stops the alert", func(t *testing.T) {
		outbox := newMemoryOutbox()
		budgetID := queueAlert(t, outbox)
		sender := &recordingSender{}
		sender.failWith(errors.New("422 validation error"), true)

		newTestWorker(t, outbox, sender).ProcessNow(ctx)

		if alert := onlyAlert(t, outbox, budgetID); alert.Status != entity.AlertStatusFailed {
			t.Errorf("expected failed alert, got %s", alert.Status)
		}
	})

	t.Run("cancelled context puts the claimed alert back", func(t *testing.T) {
		outbox := newMemoryOutbox()
		budgetID := queueAlert(t, outbox)
		sender := &recordingSender{}

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		newTestWorker(t, outbox, sender).ProcessNow(cancelled)

		if len(sender.sent) != 0 {
			t.Error("expected nothing to be sent")
		}
		alert := onlyAlert(t, outbox, budgetID)
		if alert.Status != entity.AlertStatusPending {
			t.Errorf("expected alert back in pending, got %s", alert.Status)
		}
		if alert.Attempts != 0 || alert.LastError != "" {
			t.Errorf("expected no attempt to be recorded, got attempts=%d last_error=%q", alert.Attempts, alert.LastError)
		}
		if alert.NextAttemptAt.After(time.Now().UTC()) {
			t.Error("expected the released alert to be due right away")
		}
	})

	t.Run("alert left in sending is picked up after its lease", func(t *testing.T) {
		outbox := newMemoryOutbox()
		budgetID := queueAlert(t, outbox)
		sender := &recordingSender{}

		// A worker claimed the alert and stopped before recording anything.
		stuck := onlyAlert(t, outbox, budgetID)
		stuck.MarkSending(time.Now().UTC().Add(-entity.AlertClaimLease - time.Minute))

		newTestWorker(t, outbox, sender).ProcessNow(ctx)

		if len(sender.sent) != 1 {
			t.Fatalf("expected the stuck alert to be sent, got %d sends", len(sender.sent))
		}
		if alert := onlyAlert(t, outbox, budgetID); alert.Status != entity.AlertStatusSent {
			t.Errorf("expected sent, got %s", alert.Status)
		}
	})

	t.Run("alert in sending within its lease is left alone", func(t *testing.T) {
		outbox := newMemoryOutbox()
		budgetID := queueAlert(t, outbox)
		sender := &recordingSender{}

		onlyAlert(t, outbox, budgetID).MarkSending(time.Now().UTC())

		newTestWorker(t, outbox, sender).ProcessNow(ctx)

		if len(sender.sent) != 0 {
			t.Errorf("expected no send while another worker holds the claim, got %d", len(sender.sent))
		}
	})
}

func TestIsPermanentError(t *testing.T) {
	cases := []struct {
		err  string
		want bool
	}{
		{err: "401 unauthorized", want: true},
		{err: "422 validation error", want: true},
		{err: "429 too many requests", want: false},
		{err: "500 internal server error", want: false},
	}

	for _, tc := range cases {
		if got := isPermanentError(errors.New(tc.err)); got != tc.want {
			t.Errorf("isPermanentError(%q): expected %v, got %v", tc.err, tc.want, got)
		}
	}
}
