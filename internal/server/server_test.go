package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/injector/pkg/assets"
	"github.com/vango-dev/injector/pkg/middleware"
)

func newTestServer(t *testing.T, prefix string) (*Server, string) {
	t.Helper()
	web := t.TempDir()
	files := map[string]string{
		"js/app/a.js":  "var a = 1;",
		"css/site.css": "body{margin:0}",
		".env":         "SECRET=1",
		"js/.hidden":   "x",
	}
	for name, content := range files {
		p := filepath.Join(web, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	inj, err := assets.New(assets.Options{
		WebDir:    web,
		DeployDir: filepath.Join(web, "deploy"),
		URLPrefix: prefix,
		Modules:   map[string]string{"app": "js/app", "site": "css", "ghost": "missing"},
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	return New(inj, Config{
		WebDir:    web,
		URLPrefix: prefix,
		Metrics:   middleware.NewMetrics(middleware.WithRegistry(reg)),
		Gatherer:  reg,
	}), web
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestInjectEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "/")

	rec := get(t, s.Handler(), "/inject/app")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<script type="text/javascript" src="/js/app/a.js"></script>`+"\n", rec.Body.String())
}

func TestInjectEndpoint_Build(t *testing.T) {
	s, web := newTestServer(t, "/")

	rec := get(t, s.Handler(), "/inject/site?type=style&build=true&version=7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<link rel="stylesheet" href="/deploy/site.build.css?version=7">`+"\n", rec.Body.String())

	_, err := os.Stat(filepath.Join(web, "deploy", "site.build.css"))
	assert.NoError(t, err)
}

func TestInjectEndpoint_Errors(t *testing.T) {
	s, _ := newTestServer(t, "/")

	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{"unknown module", "/inject/nope", http.StatusNotFound, "E110"},
		{"bad type", "/inject/app?type=image", http.StatusBadRequest, "E111"},
		{"bad boolean", "/inject/app?build=maybe", http.StatusBadRequest, "build must be a boolean"},
		{"negative version", "/inject/app?version=-1", http.StatusBadRequest, "version"},
		{"missing root", "/inject/ghost", http.StatusInternalServerError, "E120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s.Handler(), tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t, "/")

	rec := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	get(t, s.Handler(), "/inject/app")

	rec = get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `injector_http_requests_total{method="GET",route="/inject/{module}",status="200"} 1`)
}

func TestStaticFiles(t *testing.T) {
	s, web := newTestServer(t, "/")
	require.NoError(t, os.WriteFile(filepath.Join(web, "deploy", "app.build.js"), []byte("built"), 0644))

	rec := get(t, s.Handler(), "/js/app/a.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "var a = 1;", rec.Body.String())
	assert.Equal(t, staticCacheControl, rec.Header().Get("Cache-Control"))

	rec = get(t, s.Handler(), "/deploy/app.build.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, artifactCacheControl, rec.Header().Get("Cache-Control"))

	for _, target := range []string{"/.env", "/js/.hidden", "/js", "/js/app/missing.js"} {
		assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), target).Code, target)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/js/app/a.js", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStaticFiles_Prefix(t *testing.T) {
	s, _ := newTestServer(t, "/static")

	rec := get(t, s.Handler(), "/static/js/app/a.js")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, s.Handler(), "/js/app/a.js")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, s.Handler(), "/inject/app")
	assert.Equal(t, `<script type="text/javascript" src="/static/js/app/a.js"></script>`+"\n", rec.Body.String())
}

func TestStaticRelPath(t *testing.T) {
	s := &Server{prefix: "/static/"}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/static/js/a.js", "js/a.js", true},
		{"/static/", "", false},
		{"/other/js/a.js", "", false},
		{"/static/../etc/passwd", "", false},
		{"/static/js/./a.js", "", false},
		{"/static//etc/passwd", "", false},
		{"/static/js\\a.js", "", false},
		{"/static/js/a\x00.js", "", false},
		{"/static/.git/config", "", false},
	}

	for _, tt := range tests {
		got, ok := s.staticRelPath(tt.path)
		if ok != tt.ok || got != tt.want {
			t.Errorf("staticRelPath(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMountPrefix(t *testing.T) {
	tests := map[string]string{
		"":                          "/",
		"/":                         "/",
		"/static":                   "/static/",
		"static/":                   "/static/",
		"https://cdn.example.com/":  "/",
		"//cdn.example.com/assets/": "/",
		"./":                        "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, mountPrefix(in), in)
	}
}

func TestIsArtifact(t *testing.T) {
	assert.True(t, isArtifact("deploy/app.build.js"))
	assert.True(t, isArtifact("site.build.css"))
	assert.False(t, isArtifact("deploy/manifest.json"))
	assert.False(t, isArtifact("js/build.js"))
	assert.False(t, isArtifact("js/app.js"))
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, "/")
	s.config.Address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestParseRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/inject/x?type=less&build=1&minify=true&force=false&version=3", nil)
	req, err := parseRequest(r)
	require.NoError(t, err)
	assert.Equal(t, assets.Request{Type: assets.StyleSource, Build: true, Minify: true, Version: 3}, req)

	r = httptest.NewRequest(http.MethodGet, "/inject/x", nil)
	req, err = parseRequest(r)
	require.NoError(t, err)
	assert.Equal(t, assets.Request{}, req)
	assert.False(t, strings.Contains(r.URL.RawQuery, "version"))
}
