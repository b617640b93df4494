package fingerprint_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dupimg/dupimg/internal/fingerprint"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolidPNG(t *testing.T, path string, w, h int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestFillPopulatesFingerprintFromPNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.png")
	writeSolidPNG(t, path, 64, 64, color.RGBA{R: 120, G: 120, B: 120, A: 255})

	c := fingerprint.New(fingerprint.Options{
		ReducedImageSize: 16,
		NeedPixelData:    true,
		CheckDefects:     true,
	})

	d := &api.ImageData{FileInfo: api.FileInfo{Path: path}}
	c.Fill(d)

	assert.NotZero(t, d.CRC32)
	assert.NotEqual(t, uint32(0xFFFFFFFF), d.CRC32)
	assert.Equal(t, api.ImageTypePNG, d.ImageType)
	assert.Equal(t, 64, d.Width)
	assert.Equal(t, 64, d.Height)
	assert.True(t, d.PixelData.Filled)
	assert.Len(t, d.PixelData.Fast, 16)
}

func TestFillMissingFileYieldsUnknownDefect(t *testing.T) {
	c := fingerprint.New(fingerprint.Options{NeedPixelData: true, CheckDefects: true})
	d := &api.ImageData{FileInfo: api.FileInfo{Path: "/nonexistent/path/does/not/exist.jpg"}}
	c.Fill(d)

	assert.Equal(t, uint32(0xFFFFFFFF), d.CRC32)
	assert.Equal(t, api.ImageTypeNone, d.ImageType)
	assert.Equal(t, api.DefectUnknown, d.Defect)
}

func TestFillFlagsSolidColorImageAsBlank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blank.png")
	writeSolidPNG(t, path, 64, 64, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	c := fingerprint.New(fingerprint.Options{CheckDefects: true})
	d := &api.ImageData{FileInfo: api.FileInfo{Path: path}}
	c.Fill(d)

	assert.Equal(t, api.DefectBlank, d.Defect)
}

func TestFillLeavesEXIFNilWhenReadEXIFDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.png")
	writeSolidPNG(t, path, 32, 32, color.RGBA{R: 80, G: 80, B: 80, A: 255})

	c := fingerprint.New(fingerprint.Options{ReadEXIF: false})
	d := &api.ImageData{FileInfo: api.FileInfo{Path: path}}
	c.Fill(d)

	assert.Nil(t, d.EXIF)
}

func TestFillSkipsEXIFForUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solid.png")
	writeSolidPNG(t, path, 32, 32, color.RGBA{R: 80, G: 80, B: 80, A: 255})

	c := fingerprint.New(fingerprint.Options{ReadEXIF: true})
	d := &api.ImageData{FileInfo: api.FileInfo{Path: path}}
	c.Fill(d)

	assert.Nil(t, d.EXIF, "png has no registered EXIF extension so the reader is never invoked")
}
