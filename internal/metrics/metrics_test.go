package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAction(t *testing.T) {
	m := New()
	m.ObserveAction("rod", "click", 20*time.Millisecond, nil)
	m.ObserveAction("rod", "click", 30*time.Millisecond, errors.New("no node"))

	if got := testutil.ToFloat64(m.actions.WithLabelValues("rod", "click", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.actions.WithLabelValues("rod", "click", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.actionTime); n != 1 {
		t.Errorf("histogram series = %d, want 1", n)
	}
}

func TestObserveCompletionAndHistory(t *testing.T) {
	m := New()
	m.ObserveCompletion("openai", time.Second, nil)
	m.HistoryRecorded()
	m.HistoryRecorded()

	if got := testutil.ToFloat64(m.aiCalls.WithLabelValues("openai", "ok")); got != 1 {
		t.Errorf("completions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.historyRows); got != 2 {
		t.Errorf("history rows = %v, want 2", got)
	}
}

func TestStreamGauge(t *testing.T) {
	m := New()
	closeA := m.StreamOpened()
	closeB := m.StreamOpened()
	closeA()
	if got := testutil.ToFloat64(m.streams); got != 1 {
		t.Errorf("streams = %v, want 1", got)
	}
	closeB()
	if got := testutil.ToFloat64(m.streams); got != 0 {
		t.Errorf("streams = %v, want 0", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAction("rod", "click", time.Millisecond, nil)
	m.ObserveCompletion("openai", time.Millisecond, nil)
	m.HistoryRecorded()
	m.StreamOpened()()
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/"+id, nil))
	}

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/items/{id}", "GET", "404")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "browserpilot_http_request_duration_seconds") {
		t.Error("exposition missing request duration histogram")
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("exposition missing go collector")
	}
}
