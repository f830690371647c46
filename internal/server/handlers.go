package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

// handleInject renders markup for GET /inject/{module}.
//
// Query parameters: type, build, minify, force (booleans) and version
// (non-negative integer).
func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")

	req, err := parseRequest(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	markup, err := s.injector.Inject(r.Context(), module, req)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(markup))
}

func parseRequest(r *http.Request) (assets.Request, error) {
	q := r.URL.Query()
	var req assets.Request

	t, err := assets.ParseAssetType(q.Get("type"))
	if err != nil {
		return req, err
	}
	req.Type = t

	for _, f := range []struct {
		name string
		dst  *bool
	}{
		{"build", &req.Build},
		{"minify", &req.Minify},
		{"force", &req.Force},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, errors.New("E104").WithDetail(f.name + " must be a boolean, got " + strconv.Quote(v))
		}
		*f.dst = b
	}

	if v := q.Get("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, errors.New("E104").WithDetail("version must be a non-negative integer, got " + strconv.Quote(v))
		}
		req.Version = n
	}

	return req, nil
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.New("E110")):
		return http.StatusNotFound
	case errors.Is(err, errors.New("E111")):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := err.Error()
	var ie *errors.Error
	if errors.As(err, &ie) {
		msg = ie.FormatCompact()
		if ie.Detail != "" {
			msg += ": " + ie.Detail
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("inject failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("inject rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, msg, status)
}
