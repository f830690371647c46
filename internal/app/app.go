// Package app builds an Injector from configuration. It wires the
// external LESS compiler and the esbuild minifier into the pipeline.
package app

import (
	"io"
	"log/slog"

	"github.com/vango-dev/injector/internal/config"
	"github.com/vango-dev/injector/internal/lessc"
	"github.com/vango-dev/injector/internal/minify"
	"github.com/vango-dev/injector/pkg/assets"
)

// Option customizes the Injector options derived from configuration.
type Option func(*assets.Options)

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *assets.Options) {
		o.Logger = l
	}
}

// WithObserver sets the inject observer.
func WithObserver(obs assets.Observer) Option {
	return func(o *assets.Options) {
		o.Observer = obs
	}
}

// WithOutput sets the markup output sink.
func WithOutput(w io.Writer) Option {
	return func(o *assets.Options) {
		o.Output = w
	}
}

// WithCompiler replaces the lessc compiler.
func WithCompiler(c assets.StyleCompiler) Option {
	return func(o *assets.Options) {
		o.Compiler = c
	}
}

// WithMinifier replaces the esbuild minifier.
func WithMinifier(m assets.Minifier) Option {
	return func(o *assets.Options) {
		o.Minifier = m
	}
}

// Options returns the Injector options described by cfg.
func Options(cfg *config.Config) assets.Options {
	return assets.Options{
		WebDir:      cfg.WebPath(),
		DeployDir:   cfg.DeployPath(),
		Modules:     cfg.Modules,
		Build:       cfg.Injector.Compile,
		Minify:      cfg.Injector.Minify,
		URLPrefix:   cfg.URLPrefix,
		ErrorPolicy: assets.ParseErrorPolicy(cfg.Injector.OnError),
		Compiler:    lessc.New(cfg.Injector.Lessc),
		Minifier:    minify.New(),
	}
}

// New validates cfg and creates an Injector from it.
func New(cfg *config.Config, opts ...Option) (*assets.Injector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := Options(cfg)
	for _, opt := range opts {
		opt(&o)
	}
	return assets.New(o)
}
