// Package minify minifies JavaScript bundles with esbuild.
package minify

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/vango-dev/injector/internal/errors"
)

// Minifier minifies concatenated script bundles.
type Minifier struct {
	// Target is the ECMAScript version the output must run on.
	// Default: api.ESNext.
	Target api.Target
}

// New creates a Minifier targeting the latest ECMAScript version.
func New() *Minifier {
	return &Minifier{Target: api.ESNext}
}

// Minify returns the minified form of src. Legal comments are dropped.
func (m *Minifier) Minify(src string) (string, error) {
	target := m.Target
	if target == api.DefaultTarget {
		target = api.ESNext
	}

	result := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            target,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		LegalComments:     api.LegalCommentsNone,
	})
	if len(result.Errors) > 0 {
		return "", messageError(result.Errors)
	}
	return string(result.Code), nil
}

func messageError(msgs []api.Message) *errors.Error {
	first := msgs[0]
	e := errors.New("E133").WithDetail(first.Text)
	if loc := first.Location; loc != nil {
		e.WithDetail(fmt.Sprintf("line %d, column %d: %s", loc.Line, loc.Column+1, first.Text))
		if text := strings.TrimSpace(loc.LineText); text != "" {
			e.Context = []string{loc.LineText}
		}
	}
	if len(msgs) > 1 {
		e.Suggestion = fmt.Sprintf("%d more errors follow the first", len(msgs)-1)
	}
	return e
}
