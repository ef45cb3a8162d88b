package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAdminToken(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{name: "matching token", configured: "s3cret", provided: "s3cret", wantStatus: http.StatusOK},
		{name: "wrong token", configured: "s3cret", provided: "guess", wantStatus: http.StatusUnauthorized},
		{name: "missing token", configured: "s3cret", provided: "", wantStatus: http.StatusUnauthorized},
		{name: "not configured", configured: "", provided: "anything", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdminToken(tt.configured, okHandler())
			req := httptest.NewRequest(http.MethodPost, "/v1/teams", nil)
			if tt.provided != "" {
				req.Header.Set(adminTokenHeader, tt.provided)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRateLimit_PerClientIP(t *testing.T) {
	handler := RateLimit(2, time.Hour)(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/rounds/1/results", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := send("10.0.0.1"); got != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", got)
	}
	if got := send("10.0.0.1"); got != http.StatusTooManyRequests {
		t.Fatalf("expected second request within burst of 1 to be limited, got %d", got)
	}
	if got := send("10.0.0.2"); got != http.StatusOK {
		t.Fatalf("expected another client to have its own budget, got %d", got)
	}
}

func TestRateLimit_DisabledWithoutBudget(t *testing.T) {
	handler := RateLimit(0, time.Minute)(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/teams", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
}

func TestResolveClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	if got := resolveClientIP(req.Context(), req); got != "192.0.2.10" {
		t.Fatalf("expected remote address host, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := resolveClientIP(req.Context(), req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded address, got %q", got)
	}
}
