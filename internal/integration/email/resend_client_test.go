package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wedding-planner/backend/internal/application/adapter"
	domainerror "github.com/wedding-planner/backend/internal/domain/error"
)

func newResendServer(t *testing.T, status int, body map[string]any, received *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/emails" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if received != nil {
			_ = json.NewDecoder(r.Body).Decode(received)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestResendClient_Send(t *testing.T) {
	input := adapter.SendEmailInput{
		To:      "couple@example.com",
		Subject: "Our wedding is over budget",
		HTML:    "<p>over</p>",
		Text:    "over",
	}

	t.Run("returns the resend id", func(t *testing.T) {
		var received map[string]any
		server := newResendServer(t, http.StatusOK, map[string]any{"id": "re_123"}, &received)

		client, err := NewResendClient("re_test", "Wedding Planner", "alerts@example.com", server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result, err := client.Send(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.ResendID != "re_123" {
			t.Errorf("expected resend id re_123, got %q", result.ResendID)
		}
		if received["from"] != "Wedding Planner <alerts@example.com>" {
			t.Errorf("unexpected from %v", received["from"])
		}
		if received["subject"] != input.Subject {
			t.Errorf("unexpected subject %v", received["subject"])
		}
	})

	t.Run("validation errors are permanent", func(t *testing.T) {
		server := newResendServer(t, http.StatusUnprocessableEntity, map[string]any{
			"statusCode": 422,
			"name":       "validation_error",
			"message":    "Invalid `to` field",
		}, nil)

		client, err := NewResendClient("re_test", "Wedding Planner", "alerts@example.com", server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = client.Send(context.Background(), input)

		var emailErr *domainerror.EmailError
		if !errors.As(err, &emailErr) {
			t.Fatalf("expected EmailError, got %v", err)
		}
		if emailErr.Code != domainerror.ErrCodePermanentEmailFailure {
			t.Errorf("expected permanent failure, got %s", emailErr.Code)
		}
	})

	t.Run("bad base url is rejected", func(t *testing.T) {
		if _, err := NewResendClient("re_test", "Wedding Planner", "alerts@example.com", "http://bad host"); err == nil {
			t.Error("expected an error for an unparsable base url")
		}
	})
}
