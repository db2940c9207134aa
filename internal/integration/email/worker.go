package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wedding-planner/backend/internal/application/adapter"
	"github.com/wedding-planner/backend/internal/domain/entity"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
	"github.com/wedding-planner/backend/internal/integration/email/templates"
)

// sentRetention is how long sent alerts stay in the outbox.
const sentRetention = 30 * 24 * time.Hour

// Worker drains the alert outbox and hands alerts to the email sender.
type Worker struct {
	outbox       adapter.AlertOutbox
	sender       adapter.EmailSender
	renderer     *templates.Renderer
	pollInterval time.Duration
	batchSize    int
	appBaseURL   string
}

// WorkerConfig holds configuration for the email worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// AppBaseURL is the frontend address linked from the alert.
	AppBaseURL string
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
	}
}

// NewWorker creates a new email worker.
func NewWorker(outbox adapter.AlertOutbox, sender adapter.EmailSender, renderer *templates.Renderer, config WorkerConfig) *Worker {
	defaults := DefaultWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}

	return &Worker{
		outbox:       outbox,
		sender:       sender,
		renderer:     renderer,
		pollInterval: config.PollInterval,
		batchSize:    config.BatchSize,
		appBaseURL:   strings.TrimRight(config.AppBaseURL, "/"),
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Email worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	purge := time.NewTicker(24 * time.Hour)
	defer purge.Stop()

	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Email worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		case <-purge.C:
			w.purgeSent(ctx)
		}
	}
}

// ProcessNow delivers one batch of due alerts right away.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}

func (w *Worker) processBatch(ctx context.Context) {
	alerts, err := w.outbox.ClaimDue(ctx, time.Now().UTC(), w.batchSize)
	if err != nil {
		slog.Error("Failed to claim due alerts", "error", err)
		return
	}

	if len(alerts) == 0 {
		return
	}

	slog.Debug("Delivering alert batch", "count", len(alerts))

	for _, alert := range alerts {
		w.deliver(ctx, alert)
	}
}

func (w *Worker) deliver(ctx context.Context, alert *entity.BudgetAlert) {
	logger := slog.With("alert_id", alert.ID, "budget_id", alert.BudgetID)

	// Alerts claimed when shutdown started go back untouched.
	if ctx.Err() != nil {
		w.release(ctx, logger, alert)
		return
	}

	html, text, err := w.renderer.RenderOverBudgetAlert(w.alertData(alert))
	if err != nil {
		logger.Error("Failed to render alert", "error", err)
		w.fail(ctx, logger, alert, err, true)
		return
	}

	result, err := w.sender.Send(ctx, adapter.SendEmailInput{
		To:      alert.RecipientEmail,
		Subject: alert.Subject(),
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		logger.Error("Failed to send alert", "error", err)

		var emailErr *domainerror.EmailError
		permanent := errors.As(err, &emailErr) && emailErr.Code == domainerror.ErrCodePermanentEmailFailure

		w.fail(ctx, logger, alert, err, permanent)
		return
	}

	alert.MarkSent(result.ResendID)
	if err := w.outbox.Save(ctx, alert); err != nil {
		logger.Error("Failed to mark alert as sent", "error", err)
		return
	}

	logger.Info("Over-budget alert sent", "resend_id", result.ResendID)
}

func (w *Worker) alertData(alert *entity.BudgetAlert) templates.OverBudgetAlertData {
	return templates.OverBudgetAlertData{
		BudgetName:     alert.BudgetName,
		TotalBudget:    formatAmount(alert.TotalBudget),
		TotalAllocated: formatAmount(alert.TotalAllocated),
		OverBy:         formatAmount(alert.OverBy()),
		BudgetURL:      fmt.Sprintf("%s/budgets/%s", w.appBaseURL, alert.BudgetID),
	}
}

func (w *Worker) fail(ctx context.Context, logger *slog.Logger, alert *entity.BudgetAlert, err error, permanent bool) {
	alert.MarkFailed(err, permanent)

	// Saved without the caller's deadline so a shutdown still records the attempt.
	if saveErr := w.outbox.Save(context.WithoutCancel(ctx), alert); saveErr != nil {
		logger.Error("Failed to record alert failure", "error", saveErr)
	}

	if alert.Status == entity.AlertStatusFailed {
		logger.Warn("Alert delivery given up",
			"attempts", alert.Attempts,
			"last_error", alert.LastError,
		)
		return
	}

	logger.Info("Alert scheduled for retry",
		"attempts", alert.Attempts,
		"next_attempt_at", alert.NextAttemptAt,
	)
}

func (w *Worker) release(ctx context.Context, logger *slog.Logger, alert *entity.BudgetAlert) {
	alert.Release()
	if err := w.outbox.Save(context.WithoutCancel(ctx), alert); err != nil {
		logger.Error("Failed to release alert", "error", err)
		return
	}
	logger.Info("Alert released for a later run")
}

func (w *Worker) purgeSent(ctx context.Context) {
	deleted, err := w.outbox.PurgeSent(ctx, time.Now().UTC().Add(-sentRetention))
	if err != nil {
		slog.Error("Failed to purge sent alerts", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Purged sent alerts", "count", deleted)
	}
}

func formatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
