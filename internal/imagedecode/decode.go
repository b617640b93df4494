// Package imagedecode adapts the standard image codecs (plus the
// teacher's imaging/resize libraries) behind the single collaborator the
// core actually depends on: decode(bytes) -> Image. GDI+/libjpeg/libwebp/
// OpenJPEG/libheif equivalents are out of scope; Go's image.Decode plus
// registered format decoders play that role here.
package imagedecode

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/dupimg/dupimg/pkg/api"
	"github.com/nfnt/resize"
)

// Decode turns raw file bytes into an image.Image and its detected type.
// Decode failure is not fatal to a run: the caller stamps the fingerprint
// "type=None" and continues, per the collector's error policy.
func Decode(data []byte) (image.Image, api.ImageType, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, api.ImageTypeNone, err
	}
	return img, typeFromFormat(format), nil
}

func typeFromFormat(format string) api.ImageType {
	switch format {
	case "jpeg":
		return api.ImageTypeJPEG
	case "png":
		return api.ImageTypePNG
	case "gif":
		return api.ImageTypeGIF
	case "bmp":
		return api.ImageTypeBMP
	case "tiff":
		return api.ImageTypeTIFF
	case "webp":
		return api.ImageTypeWEBP
	default:
		return api.ImageTypeUndefined
	}
}

// Grayscale8 renders img down to an 8-bit grayscale buffer at side x side,
// the starting point for the collector's pyramid reduction (spec's
// "render grayscale down to 256x256").
func Grayscale8(img image.Image, side int) []byte {
	resized := resize.Resize(uint(side), uint(side), img, resize.Bilinear)
	out := make([]byte, side*side)
	bounds := resized.Bounds()
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// Rec. 601 luma weights, matched against 16-bit RGBA channels.
			lum := (299*r + 587*g + 114*b) / 1000
			out[i] = byte(lum >> 8)
			i++
		}
	}
	return out
}
