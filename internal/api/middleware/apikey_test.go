package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/middleware"
)

func serveGuarded(t *testing.T, mw func(http.Handler) http.Handler, headers map[string]string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	handlerCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/contribution", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mw(next).ServeHTTP(w, req)
	return w, handlerCalled
}

func details(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	s, _ := body["details"].(string)
	return s
}

func TestRequireAPIKey(t *testing.T) {
	const apiKey = "test-api-key-12345"
	mw := middleware.RequireAPIKey(apiKey)

	tests := []struct {
		name        string
		headers     map[string]string
		wantStatus  int
		wantDetails string
	}{
		{
			name:        "rejects request without API key",
			headers:     map[string]string{},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Missing API key",
		},
		{
			name:        "rejects request with invalid API key",
			headers:     map[string]string{"X-API-Key": "invalid"},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Invalid API key",
		},
		{
			name:        "rejects request without time token",
			headers:     map[string]string{"X-API-Key": apiKey},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Missing Time token",
		},
		{
			name:        "rejects malformed time token",
			headers:     map[string]string{"X-API-Key": apiKey, "X-Time-Token": "invalid"},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Time token is invalid or expired",
		},
		{
			name: "rejects time token signed with another key",
			headers: map[string]string{
				"X-API-Key":    apiKey,
				"X-Time-Token": middleware.GenerateTimeToken("some-other-key"),
			},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Time token is invalid or expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called := serveGuarded(t, mw, tt.headers)

			if called {
				t.Error("Expected request not to complete.")
			}
			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
			if got := details(t, w); got != tt.wantDetails {
				t.Errorf("Expected details %q, got %q", tt.wantDetails, got)
			}
		})
	}

	t.Run("allows request with valid API key and time token", func(t *testing.T) {
		w, called := serveGuarded(t, mw, map[string]string{
			"X-API-Key":    apiKey,
			"X-Time-Token": middleware.GenerateTimeToken(apiKey),
		})

		if !called {
			t.Error("Expected handler to complete.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("fails closed without a configured key", func(t *testing.T) {
		w, called := serveGuarded(t, middleware.RequireAPIKey(""), map[string]string{"X-API-Key": "anything"})

		if called {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
		if got := details(t, w); got != "Authentication not loaded" {
			t.Errorf("Expected 'Authentication not loaded', got %q", got)
		}
	})
}

func TestGenerateTimeToken(t *testing.T) {
	a := middleware.GenerateTimeToken("key")
	b := middleware.GenerateTimeToken("key")

	if a == "" {
		t.Fatal("Expected a token")
	}
	if a == b {
		t.Error("Expected tokens to differ between calls")
	}
}
