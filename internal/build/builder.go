package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/injector/internal/config"
	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
)

// ManifestFileName is the name of the manifest written to the deploy dir.
const ManifestFileName = "manifest.json"

// buildTypes are the asset types tried for every module, in order.
var buildTypes = []assets.AssetType{assets.Script, assets.Style, assets.StyleSource}

// Entry describes one artifact in the manifest.
type Entry struct {
	Module string `json:"module"`
	Type   string `json:"type"`

	// File is the artifact path relative to the web directory.
	File string `json:"file"`

	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest lists the artifacts of one build, keyed by file name.
type Manifest struct {
	Artifacts map[string]Entry `json:"artifacts"`
}

// Result contains the build output.
type Result struct {
	// Duration is how long the build took.
	Duration time.Duration

	// Artifacts are the built artifacts in build order.
	Artifacts []Entry

	// Skipped lists "module (type)" pairs whose artifact path was already
	// produced earlier in the same build.
	Skipped []string

	// Manifest is the path of the written manifest.
	Manifest string
}

// Options configures the builder.
type Options struct {
	// Modules restricts the build to the named modules.
	// Default: every configured module.
	Modules []string

	// Minify enables minification of script artifacts.
	Minify bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)

	// Logger is used for build logs. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Builder handles ahead-of-time builds.
type Builder struct {
	config   *config.Config
	injector *assets.Injector
	options  Options
	logger   *slog.Logger
}

// New creates a new builder.
func New(cfg *config.Config, inj *assets.Injector, options Options) *Builder {
	// Apply config defaults to options
	if !options.Minify && cfg.Injector.Minify {
		options.Minify = true
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		config:   cfg,
		injector: inj,
		options:  options,
		logger:   logger,
	}
}

// Build rebuilds every selected module and writes the manifest.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}
	manifest := Manifest{Artifacts: make(map[string]Entry)}

	modules := b.options.Modules
	if len(modules) == 0 {
		modules = b.injector.Registry().Names()
	}
	for _, name := range modules {
		if _, err := b.injector.Registry().Resolve(name); err != nil {
			return nil, err
		}
	}

	built := make(map[string]string)
	for _, name := range modules {
		for _, t := range buildTypes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			ok, err := b.hasFiles(name, t)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			artifactPath := b.injector.Cache().Path(name, t)
			if prev, dup := built[artifactPath]; dup {
				pair := fmt.Sprintf("%s (%s)", name, t)
				b.logger.Warn("artifact already produced in this build, skipping",
					"module", name, "type", t.String(), "artifact", artifactPath, "by", prev)
				result.Skipped = append(result.Skipped, pair)
				continue
			}

			b.progress(fmt.Sprintf("Building %s (%s)...", name, t))
			artifact, err := b.injector.Build(ctx, name, t, b.options.Minify)
			if err != nil {
				return nil, err
			}
			built[artifactPath] = fmt.Sprintf("%s (%s)", name, t)

			hash, err := hashFile(artifact.Path)
			if err != nil {
				return nil, errors.New("E142").WithPath(artifact.Path).Wrap(err)
			}

			entry := Entry{
				Module: artifact.Module,
				Type:   t.String(),
				File:   artifact.Rel,
				SHA256: hash,
				Size:   int64(artifact.Size),
			}
			result.Artifacts = append(result.Artifacts, entry)
			manifest.Artifacts[filepath.Base(artifact.Path)] = entry
		}
	}

	b.progress("Writing manifest...")
	manifestPath, err := b.writeManifest(manifest)
	if err != nil {
		return nil, err
	}
	result.Manifest = manifestPath
	result.Duration = time.Since(start)

	b.logger.Info("build complete",
		"artifacts", len(result.Artifacts),
		"skipped", len(result.Skipped),
		"duration", result.Duration,
	)
	return result, nil
}

// hasFiles reports whether module has sources of type t. A module whose
// root is a single file only builds the type matching its extension.
func (b *Builder) hasFiles(module string, t assets.AssetType) (bool, error) {
	list, err := b.injector.Resources(module, t)
	if err != nil {
		return false, err
	}
	if len(list) == 0 {
		return false, nil
	}
	if len(list) == 1 && !strings.EqualFold(path.Ext(list[0]), "."+t.Ext()) {
		return false, nil
	}
	return true, nil
}

// writeManifest writes the build manifest atomically.
func (b *Builder) writeManifest(manifest Manifest) (string, error) {
	manifestPath := filepath.Join(b.injector.Cache().Dir(), ManifestFileName)

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", errors.New("E142").Wrap(err)
	}
	if err := b.injector.Cache().Write(manifestPath, string(data)+"\n"); err != nil {
		return "", errors.New("E142").WithPath(manifestPath).Wrap(err)
	}
	return manifestPath, nil
}

// ReadManifest reads the manifest in deployDir.
func ReadManifest(deployDir string) (*Manifest, error) {
	manifestPath := filepath.Join(deployDir, ManifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.New("E142").WithPath(manifestPath).Wrap(err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New("E142").WithPath(manifestPath).Wrap(err)
	}
	return &m, nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// hashFile returns the SHA256 hash of a file.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Clean removes every artifact and the manifest. It returns how many
// artifacts were removed.
func (b *Builder) Clean() (int, error) {
	n, err := b.injector.Cache().Clear()
	if err != nil {
		return n, err
	}
	manifestPath := filepath.Join(b.injector.Cache().Dir(), ManifestFileName)
	if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
		return n, errors.New("E142").WithPath(manifestPath).Wrap(err)
	}
	return n, nil
}
