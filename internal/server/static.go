package server

import (
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// Cache-Control values for static files. Artifacts keep their name across
// rebuilds, so clients must revalidate them.
const (
	artifactCacheControl = "public, max-age=0, must-revalidate"
	staticCacheControl   = "public, max-age=3600"
)

// staticRelPath returns a sanitized relative path for a static file request.
// It rejects traversal, absolute-path tricks and hidden files so static
// serving cannot escape the web directory.
func (s *Server) staticRelPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, s.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, s.prefix)
	if rel == "" {
		return "", false
	}

	// Reject NUL early (can appear via %00).
	if strings.IndexByte(rel, 0) != -1 {
		return "", false
	}

	// Reject platform-dependent separators.
	if strings.Contains(rel, "\\") {
		return "", false
	}

	// After prefix stripping, a leading "/" indicates an absolute-path attempt
	// (e.g. "/static//etc/passwd" => "/etc/passwd").
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments and hidden entries before cleaning.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == "" || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "/") {
		return "", false
	}

	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}

	return clean, true
}

// serveStatic handles static file requests.
func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := s.staticRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := s.static.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	if isArtifact(rel) {
		w.Header().Set("Cache-Control", artifactCacheControl)
	} else {
		w.Header().Set("Cache-Control", staticCacheControl)
	}

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		rs = strings.NewReader(string(data))
	}
	http.ServeContent(w, r, rel, info.ModTime(), rs)
}

// isArtifact reports whether a path names a build artifact
// ("<module>.build.<ext>").
func isArtifact(filePath string) bool {
	base := path.Base(filePath)
	parts := strings.Split(base, ".")
	return len(parts) >= 3 && parts[len(parts)-2] == "build"
}
