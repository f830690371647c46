package assets

import (
	"html"
	"strconv"
	"strings"
)

// Renderer renders include markup for asset references.
type Renderer struct {
	prefix string
}

// NewRenderer creates a Renderer that prepends prefix to every reference.
//
// Common prefixes:
//   - "/" - references from the site root
//   - "/static/" - web directory mounted under a path
//   - "./" - references relative to the page
func NewRenderer(prefix string) *Renderer {
	return &Renderer{prefix: prefix}
}

// URL returns the reference for a path relative to the web directory.
func (r *Renderer) URL(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if r.prefix == "" {
		return rel
	}
	if !strings.HasSuffix(r.prefix, "/") {
		return r.prefix + "/" + rel
	}
	return r.prefix + rel
}

// Tag renders one include tag followed by a newline.
//
// For Script and Style, target is a path relative to the web directory and
// version, when positive, is appended as a ?version= query. For StyleSource
// target is compiled CSS, embedded in a <style> element because browsers
// cannot load LESS directly.
func (r *Renderer) Tag(target string, t AssetType, version int) string {
	switch t {
	case StyleSource:
		return "<style>" + target + "</style>\n"
	case Style:
		return `<link rel="stylesheet" href="` + r.ref(target, version) + `">` + "\n"
	default:
		return `<script type="text/javascript" src="` + r.ref(target, version) + `"></script>` + "\n"
	}
}

func (r *Renderer) ref(target string, version int) string {
	ref := r.URL(target)
	if version > 0 {
		ref += "?version=" + strconv.Itoa(version)
	}
	return html.EscapeString(ref)
}
