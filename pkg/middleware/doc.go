// Package middleware provides observability for the injector.
//
// This package includes:
//   - A Prometheus collector for inject calls and HTTP requests
//   - OpenTelemetry tracing middleware for net/http handlers
//
// # Prometheus Metrics
//
// Metrics implements assets.Observer, so an Injector reports every call to
// it, and its Handler method wraps HTTP handlers:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("myapp"))
//	inj, err := assets.New(assets.Options{Observer: m, ...})
//
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry Middleware
//
// Tracing opens a server span per request. Inject calls made while serving
// the request open child spans through the request context:
//
//	r.Use(middleware.Tracing(
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
package middleware
