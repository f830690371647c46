package assets

import (
	"strings"

	"github.com/vango-dev/injector/internal/errors"
)

// AssetType selects how a module's files are discovered, transformed and
// rendered.
type AssetType int

const (
	// Script is plain JavaScript.
	Script AssetType = iota

	// Style is plain CSS.
	Style

	// StyleSource is LESS, compiled to CSS before use.
	StyleSource
)

// ParseAssetType parses a type name. It accepts the long names and the file
// extensions: "script"/"js", "style"/"css", "styleSource"/"less".
func ParseAssetType(s string) (AssetType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "script", "js":
		return Script, nil
	case "style", "css":
		return Style, nil
	case "stylesource", "style-source", "less":
		return StyleSource, nil
	}
	return Script, errors.New("E111").WithDetail("Unknown asset type \"" + s + "\"")
}

// String returns the long name of the type.
func (t AssetType) String() string {
	switch t {
	case Style:
		return "style"
	case StyleSource:
		return "styleSource"
	default:
		return "script"
	}
}

// Ext returns the source file extension used for discovery.
func (t AssetType) Ext() string {
	switch t {
	case Style:
		return "css"
	case StyleSource:
		return "less"
	default:
		return "js"
	}
}

// ArtifactExt returns the extension of a persisted build artifact.
// LESS is always compiled before persistence, so it shares css.
func (t AssetType) ArtifactExt() string {
	if t == Script {
		return "js"
	}
	return "css"
}

// ArtifactType returns the type used to reference a persisted artifact.
func (t AssetType) ArtifactType() AssetType {
	if t == StyleSource {
		return Style
	}
	return t
}

// ContentType returns the MIME type of the type's artifacts.
func (t AssetType) ContentType() string {
	if t == Script {
		return "text/javascript; charset=utf-8"
	}
	return "text/css; charset=utf-8"
}
