package metadata_test

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/dupimg/dupimg/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlainJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

func TestReadReturnsNilForFileWithoutEXIF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.jpg")
	writePlainJPEG(t, path)

	r := metadata.NewReader()
	summary, err := r.Read(path)
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestReadFailsOnMissingFile(t *testing.T) {
	r := metadata.NewReader()
	summary, err := r.Read(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestSupportedExtensionsCoversEXIFCapableFormats(t *testing.T) {
	exts := metadata.SupportedExtensions()
	assert.Contains(t, exts, ".jpg")
	assert.Contains(t, exts, ".tiff")
}
