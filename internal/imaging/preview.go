// Package imaging produces a color preview bitmap for load_bitmap,
// distinct from internal/imagedecode's grayscale fingerprinting path.
// Grounded on the teacher's internal/imaging/preprocessor.go resize
// step, trimmed to the one concern a preview pane needs: a
// reasonably-sized color copy, format-encoded for a caller to display.
// The teacher's ROI extraction, Hu-moment shape analysis and pyramid
// builder served its quality analyzer, which this engine's defect
// model (blockiness/blurring, adapted in internal/fingerprint) already
// supersedes, so they are not carried forward.
package imaging

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/dupimg/dupimg/pkg/api"
)

// PreviewMaxDimension caps the longer side of a preview bitmap.
const PreviewMaxDimension = 1024

// Preview downsizes img to fit within PreviewMaxDimension on its
// longer side, preserving aspect ratio. Images already within the cap
// are returned unchanged.
func Preview(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= PreviewMaxDimension && h <= PreviewMaxDimension {
		return img
	}
	var newWidth, newHeight uint
	if w > h {
		newWidth = PreviewMaxDimension
	} else {
		newHeight = PreviewMaxDimension
	}
	return resize.Resize(newWidth, newHeight, img, resize.Lanczos3)
}

// Encode serializes img in the format matching kind, defaulting to
// JPEG for types with no lossless need.
func Encode(img image.Image, kind api.ImageType) ([]byte, error) {
	format := imaging.JPEG
	switch kind {
	case api.ImageTypePNG:
		format = imaging.PNG
	case api.ImageTypeGIF:
		format = imaging.GIF
	case api.ImageTypeBMP:
		format = imaging.BMP
	case api.ImageTypeTIFF:
		format = imaging.TIFF
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
