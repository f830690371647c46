package assets

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/vango-dev/injector/internal/errors"
)

// StyleCompiler compiles a LESS file, including its imports, to CSS.
// file is an operating system path.
type StyleCompiler interface {
	Compile(ctx context.Context, file string) (string, error)
}

// StyleCompilerFunc adapts a function to StyleCompiler.
type StyleCompilerFunc func(ctx context.Context, file string) (string, error)

// Compile calls f.
func (f StyleCompilerFunc) Compile(ctx context.Context, file string) (string, error) {
	return f(ctx, file)
}

// Minifier minifies JavaScript source.
type Minifier interface {
	Minify(src string) (string, error)
}

// MinifierFunc adapts a function to Minifier.
type MinifierFunc func(src string) (string, error)

// Minify calls f.
func (f MinifierFunc) Minify(src string) (string, error) {
	return f(src)
}

// Transformer turns one source file into build-ready text.
type Transformer interface {
	Transform(ctx context.Context, path string, t AssetType) (string, error)
}

// FileTransformer reads scripts and stylesheets as-is and compiles LESS.
// It does not cache.
type FileTransformer struct {
	fsys     fs.FS
	webDir   string
	compiler StyleCompiler
}

// NewTransformer creates a FileTransformer. webDir is the operating system
// path of fsys, used to hand LESS files to the compiler.
func NewTransformer(fsys fs.FS, webDir string, compiler StyleCompiler) *FileTransformer {
	return &FileTransformer{
		fsys:     fsys,
		webDir:   webDir,
		compiler: compiler,
	}
}

// Transform returns the build-ready content of path.
func (t *FileTransformer) Transform(ctx context.Context, path string, typ AssetType) (string, error) {
	if typ != StyleSource {
		data, err := fs.ReadFile(t.fsys, path)
		if err != nil {
			return "", errors.New("E130").WithPath(path).Wrap(err)
		}
		return string(data), nil
	}

	if t.compiler == nil {
		return "", errors.New("E132").
			WithPath(path).
			WithSuggestion("Configure a LESS compiler (injector.lessc)")
	}

	css, err := t.compiler.Compile(ctx, filepath.Join(t.webDir, filepath.FromSlash(path)))
	if err != nil {
		ie := errors.FromError(err, "E131")
		if ie.Location == nil {
			ie.WithPath(path)
		}
		return "", ie
	}
	return css, nil
}
