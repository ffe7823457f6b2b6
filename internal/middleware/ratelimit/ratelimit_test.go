package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(perMinute int) (*Limiter, *time.Time) {
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, CleanupInterval: time.Hour})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(2)
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("a"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, wait := rl.Allow("a")
	if ok {
		t.Fatal("third request should be limited")
	}
	if wait != time.Minute {
		t.Fatalf("expected full minute wait, got %v", wait)
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Fatal("other clients are independent")
	}

	*now = now.Add(30 * time.Second)
	if _, wait := rl.Allow("a"); wait != 30*time.Second {
		t.Fatalf("expected 30s wait, got %v", wait)
	}

	*now = now.Add(31 * time.Second)
	if ok, _ := rl.Allow("a"); !ok {
		t.Fatal("window should have reset")
	}
}

func TestLimiter_RejectedRequestsDoNotExtendWindow(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("a")
	for i := 0; i < 5; i++ {
		*now = now.Add(10 * time.Second)
		rl.Allow("a")
	}
	*now = now.Add(11 * time.Second)
	if ok, _ := rl.Allow("a"); !ok {
		t.Fatal("window should reset one minute after it opened")
	}
}

func TestLimiter_CleanupAndMetrics(t *testing.T) {
	rl, now := newTestLimiter(1)
	defer rl.Stop()

	rl.Allow("a")
	rl.Allow("a")
	rl.Allow("b")
	if m := rl.GetMetrics(); m.TotalHits != 1 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}

	*now = now.Add(11 * time.Minute)
	if n := rl.cleanupStaleEntries(); n != 2 {
		t.Fatalf("expected 2 stale entries, got %d", n)
	}
	if rl.ActiveClients() != 0 {
		t.Fatalf("expected no clients, got %d", rl.ActiveClients())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(1)
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewLimiter(Config{})
	rl.Stop()
	rl.Stop()
}
