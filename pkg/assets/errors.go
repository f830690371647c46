package assets

import "github.com/vango-dev/injector/internal/errors"

// Error kinds returned by the pipeline. Match them with errors.Is.
var (
	// ErrConfiguration reports an unknown module or invalid request.
	ErrConfiguration = errors.ErrConfiguration

	// ErrResolution reports a missing or unreadable module root.
	ErrResolution = errors.ErrResolution

	// ErrTransform reports a source file that failed to read, compile or minify.
	ErrTransform = errors.ErrTransform

	// ErrPersistence reports an artifact that could not be written.
	ErrPersistence = errors.ErrPersistence
)
