package assets

import (
	"os"
	"path/filepath"

	"github.com/vango-dev/injector/internal/errors"
)

// ReusePolicy decides whether an existing artifact may be served without
// rebuilding.
type ReusePolicy interface {
	ShouldReuse(artifactPath string, buildMode, force bool) bool
}

// ArtifactCache stores build artifacts in the deploy directory. An
// artifact's existence is the only cache signal: there is no hashing and no
// comparison against source modification times, so an artifact is trusted
// until the deploy directory is cleared.
type ArtifactCache struct {
	dir    string
	pinned bool
}

// NewArtifactCache creates a cache over dir. A pinned cache ignores force
// rebuild requests; it is used when build mode is configured globally.
func NewArtifactCache(dir string, pinned bool) *ArtifactCache {
	return &ArtifactCache{dir: dir, pinned: pinned}
}

// Dir returns the deploy directory.
func (c *ArtifactCache) Dir() string {
	return c.dir
}

// Name returns the artifact file name for a module.
func Name(module string, t AssetType) string {
	return module + ".build." + t.ArtifactExt()
}

// Path returns the artifact path for a module.
func (c *ArtifactCache) Path(module string, t AssetType) string {
	return filepath.Join(c.dir, Name(module, t))
}

// ShouldReuse reports whether the artifact at artifactPath may be reused.
func (c *ArtifactCache) ShouldReuse(artifactPath string, buildMode, force bool) bool {
	if !buildMode {
		return false
	}
	if force && !c.pinned {
		return false
	}
	info, err := os.Stat(artifactPath)
	return err == nil && info.Mode().IsRegular()
}

// Write persists content at artifactPath. The content goes to a temporary
// file in the same directory first and is renamed into place, so a reader
// never observes a partial artifact.
func (c *ArtifactCache) Write(artifactPath, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(artifactPath), "."+filepath.Base(artifactPath)+".*.tmp")
	if err != nil {
		return errors.New("E140").WithPath(artifactPath).Wrap(err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.New("E140").WithPath(artifactPath).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.New("E140").WithPath(artifactPath).Wrap(err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return errors.New("E140").WithPath(artifactPath).Wrap(err)
	}
	if err := os.Rename(tmpPath, artifactPath); err != nil {
		os.Remove(tmpPath)
		return errors.New("E140").WithPath(artifactPath).Wrap(err)
	}
	return nil
}

// Artifacts returns the paths of all artifacts currently in the deploy
// directory.
func (c *ArtifactCache) Artifacts() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.build.*"))
	if err != nil {
		return nil, err
	}
	paths := matches[:0]
	for _, m := range matches {
		// skip in-flight temp files
		if !isHidden(filepath.Base(m)) {
			paths = append(paths, m)
		}
	}
	return paths, nil
}

// Clear removes every artifact and returns how many were removed.
func (c *ArtifactCache) Clear() (int, error) {
	paths, err := c.Artifacts()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return removed, errors.New("E140").WithPath(p).Wrap(err)
		}
		removed++
	}
	return removed, nil
}
