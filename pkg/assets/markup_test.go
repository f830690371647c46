package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRendererTag(t *testing.T) {
	r := NewRenderer("/")

	tests := []struct {
		name    string
		target  string
		typ     AssetType
		version int
		want    string
	}{
		{
			name:   "script",
			target: "js/app/a.js",
			typ:    Script,
			want:   `<script type="text/javascript" src="/js/app/a.js"></script>` + "\n",
		},
		{
			name:    "script with version",
			target:  "deploy/app.build.js",
			typ:     Script,
			version: 7,
			want:    `<script type="text/javascript" src="/deploy/app.build.js?version=7"></script>` + "\n",
		},
		{
			name:   "style",
			target: "css/site.css",
			typ:    Style,
			want:   `<link rel="stylesheet" href="/css/site.css">` + "\n",
		},
		{
			name:    "style with version",
			target:  "deploy/site.build.css",
			typ:     Style,
			version: 2,
			want:    `<link rel="stylesheet" href="/deploy/site.build.css?version=2">` + "\n",
		},
		{
			name:   "style source inline",
			target: ".a{color:red}",
			typ:    StyleSource,
			want:   "<style>.a{color:red}</style>\n",
		},
		{
			name:   "escaped attribute",
			target: `js/a"b.js`,
			typ:    Script,
			want:   `<script type="text/javascript" src="/js/a&#34;b.js"></script>` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Tag(tt.target, tt.typ, tt.version))
		})
	}
}

func TestRendererNoVersionFragment(t *testing.T) {
	r := NewRenderer("/")
	assert.NotContains(t, r.Tag("deploy/app.build.js", Script, 0), "version=")
}

func TestRendererURL(t *testing.T) {
	assert.Equal(t, "js/a.js", NewRenderer("").URL("js/a.js"))
	assert.Equal(t, "/js/a.js", NewRenderer("/").URL("/js/a.js"))
	assert.Equal(t, "/static/js/a.js", NewRenderer("/static/").URL("js/a.js"))
	assert.Equal(t, "/static/js/a.js", NewRenderer("/static").URL("js/a.js"))
	assert.Equal(t, "https://cdn.example.com/js/a.js", NewRenderer("https://cdn.example.com/").URL("js/a.js"))
}
