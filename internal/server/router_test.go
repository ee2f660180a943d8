package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/middleware"
	"github.com/diewo77/school-billing/internal/notify"
	"github.com/diewo77/school-billing/internal/summary"
	"github.com/diewo77/school-billing/internal/testutil"
)

func newHandler(t *testing.T, limiter *middleware.RateLimiter) http.Handler {
	t.Helper()
	d := Deps{
		DB:         testutil.NewDB(t),
		Log:        zap.NewNop(),
		Summarizer: summary.Unavailable{},
		Currency:   "Rs.",
		Limiter:    limiter,
	}
	gen := billing.Generator{Due: billing.DefaultDuePolicy, Now: time.Now}
	NewServices(&d, gen, notify.NewLoggingSender(d.Log), notify.Reminders{})
	return New(d)
}

func TestHealthz(t *testing.T) {
	h := newHandler(t, nil)
	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
	}
}

func TestRoutesAreMounted(t *testing.T) {
	h := newHandler(t, nil)
	for _, path := range []string{"/api/data", "/api/dashboard", "/api/students", "/api/fees", "/api/invoices", "/api/reminders", "/api/audit", "/api/reports/students"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d (%s)", path, w.Code, w.Body.String())
		}
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestMutatingRequestsAreRateLimited(t *testing.T) {
	h := newHandler(t, middleware.NewRateLimiter(0.001, 1))
	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/fees", strings.NewReader(`{"description":"Tuition Fee","amount":5000}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}
	if code := post(); code != http.StatusCreated {
		t.Fatalf("first request: expected 201 got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429 got %d", code)
	}
}
