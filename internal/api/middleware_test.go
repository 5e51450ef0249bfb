package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimingMiddleware(t *testing.T) {
	handler := TimingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Process-Time") == "" {
		t.Error("X-Process-Time header should be set")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// 4 requests per hour gives a burst of 2 and a negligible refill rate
	// within the test.
	limited := RateLimitMiddleware(4, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two requests should pass the burst, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request should be limited, got %v", statuses)
	}
}

func TestRateLimitMiddlewareRetryAfterMatchesWindow(t *testing.T) {
	limited := RateLimitMiddleware(2, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec = httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "3600" {
		t.Errorf("Retry-After = %q, want %q", got, "3600")
	}
}

func TestRateLimitMiddlewareMinimumBurst(t *testing.T) {
	// A one-request quota still admits its single request.
	limited := RateLimitMiddleware(1, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func() int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := hit(); code != http.StatusOK {
		t.Errorf("first request should pass, got %d", code)
	}
	if code := hit(); code != http.StatusTooManyRequests {
		t.Errorf("second request should be limited, got %d", code)
	}
}

func TestRateLimitMiddlewareSeparatesClients(t *testing.T) {
	limited := RateLimitMiddleware(2, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	hit("10.0.0.1:1")
	if code := hit("10.0.0.1:2"); code != http.StatusTooManyRequests {
		t.Errorf("exhausted client should be limited, got %d", code)
	}
	if code := hit("10.0.0.2:1"); code != http.StatusOK {
		t.Errorf("fresh client should pass, got %d", code)
	}
}
