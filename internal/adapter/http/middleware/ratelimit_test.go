package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterThrottlesPerIP(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/balances", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("10.0.0.1:1234"); code != http.StatusNoContent {
		t.Fatalf("first request status = %d, want 204", code)
	}
	if code := send("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", code)
	}
	// A different client keeps its own budget.
	if code := send("10.0.0.2:1234"); code != http.StatusNoContent {
		t.Fatalf("other client status = %d, want 204", code)
	}
}

func TestRateLimiterSharesBudgetAcrossPorts(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter(clientIP(&http.Request{RemoteAddr: "10.0.0.3:1000"}))

	if !rl.getLimiter("10.0.0.3").Allow() {
		t.Fatalf("expected shared limiter to allow the first request")
	}
	if rl.getLimiter("10.0.0.3").Allow() {
		t.Fatalf("expected shared limiter to exhaust after one request")
	}
}

func TestCleanupLimitersDropsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.getLimiter("10.0.0.4")
	rl.limiters["10.0.0.4"].lastSeen = time.Now().Add(-2 * time.Hour)
	rl.getLimiter("10.0.0.5")

	rl.CleanupLimiters(time.Hour)

	if _, ok := rl.limiters["10.0.0.4"]; ok {
		t.Fatalf("expected idle limiter to be dropped")
	}
	if _, ok := rl.limiters["10.0.0.5"]; !ok {
		t.Fatalf("expected active limiter to survive cleanup")
	}
}
