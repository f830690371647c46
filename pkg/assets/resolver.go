package assets

import (
	stderrors "errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/vango-dev/injector/internal/errors"
)

// Resolver lists the source files of a module root.
type Resolver struct {
	fsys fs.FS
}

// NewResolver creates a Resolver over the web directory.
func NewResolver(fsys fs.FS) *Resolver {
	return &Resolver{fsys: fsys}
}

// List returns the files under rootPath matching the type's extension,
// as slash-separated paths relative to the web directory.
//
// A rootPath naming a single file resolves to that file alone. Otherwise
// files directly in rootPath come first, followed by each nested directory
// in ascending path order; every directory is scanned non-recursively and
// its files are sorted by name. Hidden files and directories are skipped.
func (r *Resolver) List(rootPath string, t AssetType) ([]string, error) {
	root := cleanPath(rootPath)

	info, err := fs.Stat(r.fsys, root)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New("E120").WithPath(rootPath).Wrap(err)
		}
		return nil, errors.New("E121").WithPath(rootPath).Wrap(err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	dirs, err := r.directories(root)
	if err != nil {
		return nil, errors.New("E121").WithPath(rootPath).Wrap(err)
	}

	suffix := "." + t.Ext()
	var list []string
	for _, dir := range dirs {
		entries, err := fs.ReadDir(r.fsys, dir)
		if err != nil {
			return nil, errors.New("E121").WithPath(dir).Wrap(err)
		}
		// fs.ReadDir returns entries sorted by filename.
		for _, entry := range entries {
			name := entry.Name()
			if isHidden(name) || !strings.HasSuffix(name, suffix) {
				continue
			}
			if !r.isFile(dir, entry) {
				continue
			}
			list = append(list, path.Join(dir, name))
		}
	}

	return list, nil
}

// directories returns root followed by every nested directory in ascending
// path order.
func (r *Resolver) directories(root string) ([]string, error) {
	var nested []string
	err := fs.WalkDir(r.fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || p == root {
			return nil
		}
		if isHidden(d.Name()) {
			return fs.SkipDir
		}
		nested = append(nested, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(nested)
	return append([]string{root}, nested...), nil
}

// isFile reports whether entry is a regular file, following symlinks.
func (r *Resolver) isFile(dir string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fs.Stat(r.fsys, path.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

// cleanPath turns a configured module path into an fs.FS path.
func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "."
	}
	return path.Clean(p)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
