package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetType(t *testing.T) {
	tests := []struct {
		in   string
		want AssetType
	}{
		{"", Script},
		{"script", Script},
		{"js", Script},
		{"style", Style},
		{"CSS", Style},
		{"styleSource", StyleSource},
		{"less", StyleSource},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAssetType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseAssetType("sass")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestAssetTypeExtensions(t *testing.T) {
	assert.Equal(t, "js", Script.Ext())
	assert.Equal(t, "css", Style.Ext())
	assert.Equal(t, "less", StyleSource.Ext())

	assert.Equal(t, "js", Script.ArtifactExt())
	assert.Equal(t, "css", Style.ArtifactExt())
	assert.Equal(t, "css", StyleSource.ArtifactExt())

	assert.Equal(t, Style, StyleSource.ArtifactType())
	assert.Equal(t, Script, Script.ArtifactType())
	assert.Equal(t, "styleSource", StyleSource.String())
}
