package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
)

// MetricsConfig configures the Prometheus metrics collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "injector").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "injector",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects Prometheus metrics for inject calls and HTTP requests.
// It implements assets.Observer.
type Metrics struct {
	injectsTotal   *prometheus.CounterVec
	injectDuration *prometheus.HistogramVec
	injectErrors   *prometheus.CounterVec
	artifactBytes  *prometheus.HistogramVec
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

var _ assets.Observer = (*Metrics)(nil)

// NewMetrics registers the collector's metrics.
//
// Metrics collected:
//   - injector_injects_total: inject calls by module, type and outcome
//   - injector_inject_duration_seconds: inject latency by type and outcome
//   - injector_inject_errors_total: failed inject calls by module and error category
//   - injector_artifact_bytes: size of newly built artifacts by type
//   - injector_http_requests_total: HTTP requests by route, method and status
//   - injector_http_request_duration_seconds: HTTP latency by route
//
// Example:
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	inj, _ := assets.New(assets.Options{Observer: m, ...})
//	r.Use(m.Handler)
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		injectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "injects_total",
			Help:        "Total number of inject calls",
			ConstLabels: config.ConstLabels,
		}, []string{"module", "type", "outcome"}),

		injectDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "inject_duration_seconds",
			Help:        "Inject call duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type", "outcome"}),

		injectErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "inject_errors_total",
			Help:        "Total number of failed inject calls",
			ConstLabels: config.ConstLabels,
		}, []string{"module", "category"}),

		artifactBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "artifact_bytes",
			Help:        "Size of newly built artifacts in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to 16MB
		}, []string{"type"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "method", "status"}),

		requestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),
	}
}

// ObserveInject records one inject call.
func (m *Metrics) ObserveInject(e assets.Event) {
	typ := e.Type.String()
	outcome := string(e.Outcome)

	m.injectsTotal.WithLabelValues(e.Module, typ, outcome).Inc()
	m.injectDuration.WithLabelValues(typ, outcome).Observe(e.Duration.Seconds())

	if e.Err != nil {
		m.injectErrors.WithLabelValues(e.Module, categorizeError(e.Err)).Inc()
	}
	if e.Outcome == assets.OutcomeBuilt {
		m.artifactBytes.WithLabelValues(typ).Observe(float64(e.Bytes))
	}
}

// Handler is HTTP middleware recording request counts and latency. Requests
// are labeled with the chi route pattern to keep label cardinality bounded.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.requestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// categorizeError returns the error category, or "internal" for errors
// without one. This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	if c := errors.CategoryOf(err); c != "" {
		return string(c)
	}
	return "internal"
}

// routePattern returns the matched chi route, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
