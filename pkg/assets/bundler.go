package assets

import (
	"context"
	"log/slog"
	"strings"
)

// ErrorPolicy decides what a build does when one file fails to transform.
type ErrorPolicy int

const (
	// FailFast aborts the whole build and returns the error.
	FailFast ErrorPolicy = iota

	// SkipWithWarning drops the failing file, logs a warning and continues.
	SkipWithWarning
)

// ParseErrorPolicy parses "fail" or "skip".
func ParseErrorPolicy(s string) ErrorPolicy {
	if strings.EqualFold(s, "skip") {
		return SkipWithWarning
	}
	return FailFast
}

// Bundler turns a resource list into either include tags or build content.
type Bundler struct {
	transformer Transformer
	renderer    *Renderer
	policy      ErrorPolicy
	logger      *slog.Logger
}

// NewBundler creates a Bundler.
func NewBundler(t Transformer, r *Renderer, policy ErrorPolicy, logger *slog.Logger) *Bundler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bundler{
		transformer: t,
		renderer:    r,
		policy:      policy,
		logger:      logger,
	}
}

// Build concatenates the resources in order.
//
// Outside build mode it returns one include tag per resource; LESS files are
// compiled and embedded inline. In build mode it returns the transformed
// content of every resource, each wrapped in newlines so fragments missing
// a trailing semicolon or newline cannot run together.
func (b *Bundler) Build(ctx context.Context, resources []string, t AssetType, buildMode bool) (string, error) {
	var out strings.Builder

	for _, res := range resources {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if !buildMode && t != StyleSource {
			out.WriteString(b.renderer.Tag(res, t, 0))
			continue
		}

		content, err := b.transformer.Transform(ctx, res, t)
		if err != nil {
			if b.policy == SkipWithWarning {
				b.logger.Warn("skipping asset", "path", res, "type", t.String(), "error", err)
				continue
			}
			return "", err
		}

		if buildMode {
			out.WriteString("\n")
			out.WriteString(content)
			out.WriteString("\n")
		} else {
			out.WriteString(b.renderer.Tag(content, StyleSource, 0))
		}
	}

	return out.String(), nil
}
