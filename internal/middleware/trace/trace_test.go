package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	applog "budgetbook/internal/log"
)

func newTestMiddleware(buf *bytes.Buffer) (*Middleware, *Metrics) {
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Format: "json", Component: applog.ComponentHTTP, Output: buf})
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewMiddleware(func(*http.Request) string { return "10.0.0.1" }, logger, metrics), metrics
}

func TestMiddlewareSetsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newTestMiddleware(&buf)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Errorf("request id = %q, want req_ prefix", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header = %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}
	if !strings.Contains(buf.String(), seen) {
		t.Errorf("log output missing request id: %s", buf.String())
	}
}

func TestMiddlewareKeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	m, _ := newTestMiddleware(&buf)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromRequest(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-42" {
		t.Errorf("request id = %q, want upstream-42", seen)
	}
}

func TestMiddlewareRecordsMetricsByRoute(t *testing.T) {
	var buf bytes.Buffer
	m, metrics := newTestMiddleware(&buf)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/budgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/budgets/"+id, nil))
	}

	got := testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "/api/budgets/{id}", "404"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if n := testutil.CollectAndCount(metrics.Duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate request id %s", id)
		}
		seen[id] = true
	}
}
