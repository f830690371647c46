package assets

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/vango-dev/injector/internal/errors"
)

const tracerName = "github.com/vango-dev/injector/pkg/assets"

// Options configures an Injector.
type Options struct {
	// WebDir is the web root. Module paths are relative to it.
	WebDir string

	// WebFS reads the web root. Default: os.DirFS(WebDir).
	WebFS fs.FS

	// DeployDir is where artifacts are written. It must be inside WebDir.
	DeployDir string

	// Modules maps module names to root paths relative to WebDir.
	Modules map[string]string

	// Build forces build mode for every request.
	Build bool

	// Minify minifies every script build.
	Minify bool

	// URLPrefix is prepended to every reference. Default: "/". Use "./" for
	// references relative to the page.
	URLPrefix string

	// ErrorPolicy decides what a build does when one file fails.
	ErrorPolicy ErrorPolicy

	// Compiler compiles LESS. Required for StyleSource modules.
	Compiler StyleCompiler

	// Minifier minifies scripts. Required when minification is requested.
	Minifier Minifier

	// Policy overrides the artifact reuse decision. Default: the artifact
	// cache's existence check.
	Policy ReusePolicy

	// EnsureDir creates the deploy directory. It is called once, by New.
	// Default: os.MkdirAll with mode 0755.
	EnsureDir func(dir string) error

	// Observer receives an Event for every Inject call.
	Observer Observer

	// Output, when set, receives every markup string Inject returns.
	Output io.Writer

	// Logger is used for pipeline logs. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Request selects how a module is injected.
type Request struct {
	// Type is the asset type. Default: Script.
	Type AssetType

	// Build requests a single artifact instead of per-file tags.
	Build bool

	// Minify minifies a script artifact.
	Minify bool

	// Version, when positive, is appended to the artifact reference as a
	// cache-busting ?version= query.
	Version int

	// Force rebuilds the artifact even if it exists.
	Force bool
}

// Artifact describes a persisted build artifact.
type Artifact struct {
	Module string
	Type   AssetType

	// Path is the artifact's file system path.
	Path string

	// Rel is the artifact path relative to the web directory.
	Rel string

	// Size is the artifact size in bytes.
	Size int
}

// Injector resolves modules and renders their include markup.
// It is safe for concurrent use.
type Injector struct {
	registry *Registry
	resolver *Resolver
	bundler  *Bundler
	renderer *Renderer
	cache    *ArtifactCache
	policy   ReusePolicy
	minifier Minifier
	observer Observer
	output   io.Writer
	logger   *slog.Logger
	tracer   trace.Tracer

	deployRel string
	build     bool
	minify    bool

	// builds coordinates concurrent builds per artifact path so that each
	// artifact is the product of exactly one completed build.
	builds singleflight.Group
}

// New creates an Injector and ensures the deploy directory exists.
func New(opts Options) (*Injector, error) {
	if strings.TrimSpace(opts.WebDir) == "" {
		return nil, errors.New("E102")
	}
	if strings.TrimSpace(opts.DeployDir) == "" {
		return nil, errors.New("E103").WithDetail("deploy directory is empty")
	}

	deployRel, err := filepath.Rel(opts.WebDir, opts.DeployDir)
	if err != nil || deployRel == ".." || strings.HasPrefix(deployRel, ".."+string(filepath.Separator)) {
		return nil, errors.New("E103").
			WithDetail("deploy directory " + opts.DeployDir + " is outside web directory " + opts.WebDir)
	}

	ensure := opts.EnsureDir
	if ensure == nil {
		ensure = func(dir string) error { return os.MkdirAll(dir, 0755) }
	}
	if err := ensure(opts.DeployDir); err != nil {
		return nil, errors.New("E141").WithPath(opts.DeployDir).Wrap(err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fsys := opts.WebFS
	if fsys == nil {
		fsys = os.DirFS(opts.WebDir)
	}
	prefix := opts.URLPrefix
	if prefix == "" {
		prefix = "/"
	}

	registry := NewRegistry(opts.Modules)
	if conflicts := registry.Conflicts(); len(conflicts) > 0 {
		return nil, errors.New("E112").
			WithModule(conflicts[0][0]).
			WithDetail("modules " + strings.Join(conflicts[0], ", ") + " differ only in case")
	}

	renderer := NewRenderer(prefix)
	cache := NewArtifactCache(opts.DeployDir, opts.Build)
	policy := opts.Policy
	if policy == nil {
		policy = cache
	}

	return &Injector{
		registry:  registry,
		resolver:  NewResolver(fsys),
		bundler:   NewBundler(NewTransformer(fsys, opts.WebDir, opts.Compiler), renderer, opts.ErrorPolicy, logger),
		renderer:  renderer,
		cache:     cache,
		policy:    policy,
		minifier:  opts.Minifier,
		observer:  opts.Observer,
		output:    opts.Output,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		deployRel: filepath.ToSlash(deployRel),
		build:     opts.Build,
		minify:    opts.Minify,
	}, nil
}

// Registry returns the module registry.
func (i *Injector) Registry() *Registry {
	return i.registry
}

// Cache returns the artifact cache.
func (i *Injector) Cache() *ArtifactCache {
	return i.cache
}

// Renderer returns the markup renderer.
func (i *Injector) Renderer() *Renderer {
	return i.renderer
}

// Inject renders the include markup for module.
//
// A reusable artifact is referenced directly. Otherwise the module's files
// are resolved; in build mode they are bundled into a new artifact which is
// then referenced, and outside build mode one tag per file is rendered. If
// the artifact cannot be written, Inject falls back to per-file tags.
func (i *Injector) Inject(ctx context.Context, module string, req Request) (string, error) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, "assets.Inject",
		trace.WithAttributes(
			attribute.String("injector.module", module),
			attribute.String("injector.type", req.Type.String()),
			attribute.Bool("injector.build", req.Build || i.build),
		),
	)
	defer span.End()

	markup, outcome, size, err := i.inject(ctx, module, req)
	if err != nil {
		outcome = OutcomeFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("injector.outcome", string(outcome)))

	if i.observer != nil {
		i.observer.ObserveInject(Event{
			Module:   module,
			Type:     req.Type,
			Outcome:  outcome,
			Duration: time.Since(start),
			Bytes:    size,
			Err:      err,
		})
	}
	if err != nil {
		return "", err
	}

	if i.output != nil {
		if _, werr := io.WriteString(i.output, markup); werr != nil {
			i.logger.Warn("writing markup to output failed", "module", module, "error", werr)
		}
	}
	return markup, nil
}

// InjectTo renders the include markup for module, writes it to w and
// returns it. Nothing is written on error.
func (i *Injector) InjectTo(ctx context.Context, w io.Writer, module string, req Request) (string, error) {
	markup, err := i.Inject(ctx, module, req)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(w, markup); err != nil {
		return markup, err
	}
	return markup, nil
}

func (i *Injector) inject(ctx context.Context, module string, req Request) (string, Outcome, int, error) {
	logger := i.logger.With("module", module, "type", req.Type.String())

	def, err := i.registry.Resolve(module)
	if err != nil {
		return "", "", 0, err
	}

	buildMode := req.Build || i.build
	artifactPath := i.cache.Path(def.Name, req.Type)

	if i.policy.ShouldReuse(artifactPath, buildMode, req.Force) {
		logger.Debug("reusing artifact", "artifact", artifactPath)
		return i.artifactTag(def.Name, req), OutcomeReused, 0, nil
	}

	if !buildMode {
		markup, err := i.tags(ctx, def, req.Type)
		if err != nil {
			return "", "", 0, err
		}
		return markup, OutcomeTags, 0, nil
	}

	artifact, reused, err := i.buildOnce(ctx, def, req.Type, req.Minify || i.minify, !req.Force)
	if err != nil {
		if !errors.Is(err, ErrPersistence) {
			return "", "", 0, err
		}
		logger.Warn("artifact not persisted, falling back to per-file tags", "artifact", artifactPath, "error", err)
		markup, terr := i.tags(ctx, def, req.Type)
		if terr != nil {
			return "", "", 0, terr
		}
		return markup, OutcomeFallback, 0, nil
	}

	markup := i.artifactTag(def.Name, req)
	if reused {
		return markup, OutcomeReused, 0, nil
	}
	return markup, OutcomeBuilt, artifact.Size, nil
}

// Build rebuilds the artifact for module unconditionally.
func (i *Injector) Build(ctx context.Context, module string, t AssetType, minify bool) (*Artifact, error) {
	def, err := i.registry.Resolve(module)
	if err != nil {
		return nil, err
	}
	artifact, _, err := i.buildOnce(ctx, def, t, minify || i.minify, false)
	return artifact, err
}

// Resources returns the resolved file list for module.
func (i *Injector) Resources(module string, t AssetType) ([]string, error) {
	def, err := i.registry.Resolve(module)
	if err != nil {
		return nil, err
	}
	list, err := i.resolver.List(def.RootPath, t)
	if err != nil {
		return nil, withModule(err, def.Name)
	}
	return list, nil
}

type buildResult struct {
	artifact *Artifact
	reused   bool
}

// buildOnce runs at most one build per artifact path at a time; concurrent
// callers share its result. With recheck set, an artifact completed by an
// earlier flight is reused instead of rebuilt. Forced builds never join a
// rechecking flight.
//
// The shared build is detached from the caller's cancellation so that one
// caller giving up does not fail the others. A canceled caller returns
// ctx.Err() while the build completes for everyone else.
func (i *Injector) buildOnce(ctx context.Context, def ModuleDefinition, t AssetType, minify, recheck bool) (*Artifact, bool, error) {
	artifactPath := i.cache.Path(def.Name, t)
	key := artifactPath
	if !recheck {
		key += "#force"
	}
	buildCtx := context.WithoutCancel(ctx)

	ch := i.builds.DoChan(key, func() (any, error) {
		if recheck && i.policy.ShouldReuse(artifactPath, true, false) {
			return &buildResult{artifact: i.artifact(def.Name, t, artifactPath, 0), reused: true}, nil
		}
		artifact, err := i.buildArtifact(buildCtx, def, t, minify, artifactPath)
		if err != nil {
			return nil, err
		}
		return &buildResult{artifact: artifact}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, false, res.Err
	}

	br := res.Val.(*buildResult)
	if res.Shared {
		i.logger.Debug("joined in-flight build", "module", def.Name, "artifact", artifactPath)
	}
	return br.artifact, br.reused, nil
}

// buildArtifact resolves, transforms, minifies and persists one artifact.
// Nothing is written unless every earlier stage succeeds.
func (i *Injector) buildArtifact(ctx context.Context, def ModuleDefinition, t AssetType, minify bool, artifactPath string) (*Artifact, error) {
	logger := i.logger.With("module", def.Name, "type", t.String())
	start := time.Now()

	resources, err := i.resolver.List(def.RootPath, t)
	if err != nil {
		return nil, withModule(err, def.Name)
	}
	logger.Debug("resolved resources", "count", len(resources))

	content, err := i.bundler.Build(ctx, resources, t, true)
	if err != nil {
		return nil, withModule(err, def.Name)
	}

	if minify && t == Script {
		if i.minifier == nil {
			return nil, errors.New("E133").
				WithModule(def.Name).
				WithDetail("minification was requested but no minifier is configured")
		}
		min, err := i.minifier.Minify(content)
		if err != nil {
			return nil, errors.FromError(err, "E133").WithModule(def.Name)
		}
		content = min
	}

	if err := i.cache.Write(artifactPath, content); err != nil {
		return nil, withModule(err, def.Name)
	}

	logger.Info("artifact built",
		"artifact", artifactPath,
		"files", len(resources),
		"bytes", len(content),
		"duration", time.Since(start),
	)
	return i.artifact(def.Name, t, artifactPath, len(content)), nil
}

func (i *Injector) artifact(module string, t AssetType, artifactPath string, size int) *Artifact {
	if size == 0 {
		if info, err := os.Stat(artifactPath); err == nil {
			size = int(info.Size())
		}
	}
	return &Artifact{
		Module: module,
		Type:   t,
		Path:   artifactPath,
		Rel:    i.artifactRel(module, t),
		Size:   size,
	}
}

// tags renders per-file markup for a module.
func (i *Injector) tags(ctx context.Context, def ModuleDefinition, t AssetType) (string, error) {
	resources, err := i.resolver.List(def.RootPath, t)
	if err != nil {
		return "", withModule(err, def.Name)
	}
	markup, err := i.bundler.Build(ctx, resources, t, false)
	if err != nil {
		return "", withModule(err, def.Name)
	}
	return markup, nil
}

// artifactRel returns the artifact path relative to the web directory.
func (i *Injector) artifactRel(module string, t AssetType) string {
	if i.deployRel == "." || i.deployRel == "" {
		return Name(module, t)
	}
	return i.deployRel + "/" + Name(module, t)
}

func (i *Injector) artifactTag(module string, req Request) string {
	return i.renderer.Tag(i.artifactRel(module, req.Type), req.Type.ArtifactType(), req.Version)
}

// withModule returns err with module recorded on a copy of its *errors.Error.
func withModule(err error, module string) error {
	ie, ok := err.(*errors.Error)
	if !ok || ie.Module != "" {
		return err
	}
	return ie.Clone().WithModule(module)
}
