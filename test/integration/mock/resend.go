package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ResendAPI stands in for the Resend HTTP API and records every email it
// receives.
type ResendAPI struct {
	mu       sync.Mutex
	server   *httptest.Server
	received []map[string]any
	status   int
	failure  map[string]any
}

// NewResendAPI starts the stub server.
func NewResendAPI() *ResendAPI {
	api := &ResendAPI{status: http.StatusOK}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	return api
}

func (a *ResendAPI) handle(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost || r.URL.Path != "/emails" {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{"statusCode": 404, "message": "not found"})
		return
	}

	var request map[string]any
	_ = json.NewDecoder(r.Body).Decode(&request)
	if request == nil {
		request = map[string]any{}
	}

	if a.status != http.StatusOK {
		w.WriteHeader(a.status)
		_ = json.NewEncoder(w).Encode(a.failure)
		return
	}

	a.received = append(a.received, request)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": fmt.Sprintf("re_mock_%d", len(a.received))})
}

// URL returns the base URL of the stub.
func (a *ResendAPI) URL() string {
	return a.server.URL
}

// FailWith makes the stub answer every request with status and message.
func (a *ResendAPI) FailWith(status int, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
	a.failure = map[string]any{"statusCode": status, "message": message}
}

// Received returns the accepted send requests in arrival order.
func (a *ResendAPI) Received() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]map[string]any, len(a.received))
	copy(out, a.received)
	return out
}

// Reset forgets received emails and clears any configured failure.
func (a *ResendAPI) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = nil
	a.status = http.StatusOK
	a.failure = nil
}

// Close stops the stub server.
func (a *ResendAPI) Close() {
	a.server.Close()
}
