package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageResolver(t *testing.T) {
	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(imagesDir, 0o755))

	direct := filepath.Join(dir, "direct.jpg")
	require.NoError(t, os.WriteFile(direct, []byte("jpg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(imagesDir, "biryani.jpg"), []byte("jpg"), 0o644))

	const placeholder = "https://via.placeholder.com/250x180"
	r := ImageResolver{Dir: imagesDir, Placeholder: placeholder}

	tests := []struct {
		name string
		ref  string
		want ImageRef
	}{
		{"direct path", direct, ImageRef{Path: direct}},
		{"images dir", "biryani.jpg", ImageRef{Path: filepath.Join(imagesDir, "biryani.jpg")}},
		{"missing", "nope.jpg", ImageRef{URL: placeholder}},
		{"remote url", "https://example.com/images/gulab_jamun.jpg", ImageRef{URL: placeholder}},
		{"empty", "", ImageRef{URL: placeholder}},
		{"directory is not an image", imagesDir, ImageRef{URL: placeholder}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.ref)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Path != "", got.IsLocal())
		})
	}
}
