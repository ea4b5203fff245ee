package metrics_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ErlanBelekov/user-accounts/internal/health"
	"github.com/ErlanBelekov/user-accounts/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, deps map[string]health.Pinger, path string) *httptest.ResponseRecorder {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	checker := health.NewChecker(deps, logger, prometheus.NewRegistry())

	w := httptest.NewRecorder()
	metrics.NewServer(":0", checker).Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProbes(t *testing.T) {
	down := map[string]health.Pinger{"postgres": pinger{err: errors.New("connection refused")}}
	up := map[string]health.Pinger{"postgres": pinger{}}

	tests := []struct {
		name string
		deps map[string]health.Pinger
		path string
		want int
	}{
		{"liveness ignores deps", down, "/healthz", http.StatusOK},
		{"readiness up", up, "/readyz", http.StatusOK},
		{"readiness down", down, "/readyz", http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, tc.deps, tc.path)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}

func TestReadiness_ReportsFailingDependency(t *testing.T) {
	w := serve(t, map[string]health.Pinger{"postgres": pinger{err: errors.New("connection refused")}}, "/readyz")
	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestOutcome(t *testing.T) {
	if metrics.Outcome(nil) != metrics.OutcomeSuccess {
		t.Error("nil error should be success")
	}
	if metrics.Outcome(errors.New("x")) != metrics.OutcomeFailure {
		t.Error("non-nil error should be failure")
	}
}
