package assets

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverList_RootBeforeSubdirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"m/f1.js":   {Data: []byte("1")},
		"m/a/f2.js": {Data: []byte("2")},
	}

	list, err := NewResolver(fsys).List("m", Script)
	require.NoError(t, err)
	assert.Equal(t, []string{"m/f1.js", "m/a/f2.js"}, list)
}

func TestResolverList_SingleFile(t *testing.T) {
	fsys := fstest.MapFS{
		"js/bundle.js": {Data: []byte("x")},
		"js/other.js":  {Data: []byte("y")},
	}

	list, err := NewResolver(fsys).List("js/bundle.js", Script)
	require.NoError(t, err)
	assert.Equal(t, []string{"js/bundle.js"}, list)

	// A single file is returned regardless of the requested type.
	list, err = NewResolver(fsys).List("/js/bundle.js", Style)
	require.NoError(t, err)
	assert.Equal(t, []string{"js/bundle.js"}, list)
}

func TestResolverList_Order(t *testing.T) {
	fsys := fstest.MapFS{
		"m/z.js":         {},
		"m/b.js":         {},
		"m/a/x/deep.js":  {},
		"m/a/2.js":       {},
		"m/a/1.js":       {},
		"m/a-b/dash.js":  {},
		"m/b/only.js":    {},
		"m/empty/readme": {},
	}

	list, err := NewResolver(fsys).List("m", Script)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"m/b.js",
		"m/z.js",
		"m/a/1.js",
		"m/a/2.js",
		"m/a-b/dash.js",
		"m/a/x/deep.js",
		"m/b/only.js",
	}, list)
}

func TestResolverList_FiltersByExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"s/site.css":      {},
		"s/theme.less":    {},
		"s/app.js":        {},
		"s/.hidden.css":   {},
		"s/.cache/x.css":  {},
		"s/print.css.map": {},
		"s/sub/extra.css": {},
	}

	r := NewResolver(fsys)

	css, err := r.List("s", Style)
	require.NoError(t, err)
	assert.Equal(t, []string{"s/site.css", "s/sub/extra.css"}, css)

	less, err := r.List("s", StyleSource)
	require.NoError(t, err)
	assert.Equal(t, []string{"s/theme.less"}, less)
}

func TestResolverList_EmptyDirectory(t *testing.T) {
	fsys := fstest.MapFS{
		"m/readme.txt": {},
	}

	list, err := NewResolver(fsys).List("m", Script)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestResolverList_MissingRoot(t *testing.T) {
	_, err := NewResolver(fstest.MapFS{}).List("js/missing", Script)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResolution)
	assert.Contains(t, err.Error(), "js/missing")
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, ".", cleanPath(""))
	assert.Equal(t, ".", cleanPath("/"))
	assert.Equal(t, "js/app", cleanPath("./js/app/"))
	assert.Equal(t, "js/app", cleanPath(`js\app`))
}
