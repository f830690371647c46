package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(WithRegistry(reg)), reg
}

func TestMetrics_ObserveInject(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.ObserveInject(assets.Event{Module: "app", Type: assets.Script, Outcome: assets.OutcomeBuilt, Duration: 20 * time.Millisecond, Bytes: 4096})
	m.ObserveInject(assets.Event{Module: "app", Type: assets.Script, Outcome: assets.OutcomeReused, Duration: time.Millisecond})
	m.ObserveInject(assets.Event{Module: "app", Type: assets.Script, Outcome: assets.OutcomeReused, Duration: time.Millisecond})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.injectsTotal.WithLabelValues("app", "script", "built")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.injectsTotal.WithLabelValues("app", "script", "reused")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.artifactBytes))
	assert.Equal(t, 0, testutil.CollectAndCount(m.injectErrors))
}

func TestMetrics_ObserveInjectErrors(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.ObserveInject(assets.Event{Module: "nope", Outcome: assets.OutcomeFailed, Err: errors.New("E110")})
	m.ObserveInject(assets.Event{Module: "app", Outcome: assets.OutcomeFailed, Err: errors.New("E131")})
	m.ObserveInject(assets.Event{Module: "app", Outcome: assets.OutcomeFailed, Err: fmt.Errorf("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.injectErrors.WithLabelValues("nope", "config")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.injectErrors.WithLabelValues("app", "transform")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.injectErrors.WithLabelValues("app", "internal")))
}

func TestMetrics_Handler(t *testing.T) {
	m, _ := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/inject/{module}", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	for _, path := range []string{"/inject/app", "/inject/site", "/missing"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/inject/{module}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/missing", "GET", "404")))
}

func TestMetrics_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("site"), WithConstLabels(prometheus.Labels{"env": "test"}))
	m.ObserveInject(assets.Event{Module: "app", Outcome: assets.OutcomeTags})

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "site_injects_total")
	assert.Contains(t, names, "site_inject_duration_seconds")
}

func TestMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	assert.Panics(t, func() { NewMetrics(WithRegistry(reg)) })
}
