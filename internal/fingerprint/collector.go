// Package fingerprint implements the DataCollector (spec §4.2): it turns
// raw file bytes into a filled ImageData fingerprint — CRC, pixel pyramid,
// and defect classification. Grounded on internal/quality's analyzer
// family, generalized from independent quality scores into the single
// fill() pipeline the comparator and result store depend on.
package fingerprint

import (
	"hash/crc32"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dupimg/dupimg/internal/imagedecode"
	"github.com/dupimg/dupimg/internal/metadata"
	"github.com/dupimg/dupimg/internal/utils"
	"github.com/dupimg/dupimg/pkg/api"
)

// Options configures how much work fill() does for a given fingerprint.
type Options struct {
	ReducedImageSize int
	NeedPixelData    bool
	CheckDefects     bool
	BlockinessMax    float64
	BlurringMax      float64
	DefectMinSize    int64
	DefectMaxSize    int64
	ReadEXIF         bool
}

// Collector fills ImageData records. A Collector has no mutable state of
// its own; one is shared by every collector-pool worker, except the EXIF
// reader which registers its maker-note parsers once at construction.
type Collector struct {
	opts       Options
	exifReader *metadata.Reader
}

// New returns a Collector configured by opts.
func New(opts Options) *Collector {
	if opts.ReducedImageSize <= 0 {
		opts.ReducedImageSize = api.ReducedImageSizeDefault
	}
	c := &Collector{opts: opts}
	if opts.ReadEXIF {
		c.exifReader = metadata.NewReader()
	}
	return c
}

// Fill implements the fill(image_data) operation. d is mutated in place;
// it must not yet be visible to any comparator worker.
func (c *Collector) Fill(d *api.ImageData) {
	var raw []byte
	var readErr error

	if d.CRC32 == 0 {
		raw, readErr = os.ReadFile(d.Path)
		if readErr != nil {
			d.CRC32 = 0xFFFFFFFF
			d.ImageType = api.ImageTypeNone
			d.Defect = api.DefectUnknown
			return
		}
		d.CRC32 = crc32.ChecksumIEEE(raw)
		d.Size = int64(len(raw))
	}

	needPixels := c.opts.NeedPixelData && !d.PixelData.Filled
	if needPixels || c.opts.CheckDefects {
		if raw == nil {
			raw, readErr = os.ReadFile(d.Path)
			if readErr != nil {
				d.ImageType = api.ImageTypeNone
				d.Defect = api.DefectUnknown
				return
			}
		}
		img, imgType, err := imagedecode.Decode(raw)
		if err != nil {
			d.ImageType = api.ImageTypeNone
			return
		}
		d.ImageType = imgType
		bounds := img.Bounds()
		d.Width, d.Height = bounds.Dx(), bounds.Dy()
		d.Ratio = ratioBucket(d.Width, d.Height)

		full := imagedecode.Grayscale8(img, api.PyramidStartSide)
		if needPixels {
			d.PixelData = imagedecode.BuildPyramid(full, api.PyramidStartSide, c.opts.ReducedImageSize)
		}

		if c.opts.CheckDefects {
			c.classifyDefects(d, raw, full, api.PyramidStartSide)
		}
	}

	if c.exifReader != nil && d.EXIF == nil && c.supportsEXIF(d.Path) {
		if summary, err := c.exifReader.Read(d.Path); err == nil && summary != nil {
			d.EXIF = summary
		}
	}
}

func (c *Collector) supportsEXIF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range metadata.SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// ratioBucket maps width/height onto an integer bucket comparable at
// RatioResolution granularity, per spec's "ratio (integer ratio bucket)"
// resolution of the binning ambiguity: round(width/height *
// RATIO_RESOLUTION), not truncate, so images sitting right at a bin
// boundary bucket the same way the spec's own resolution does.
func ratioBucket(w, h int) int {
	if h == 0 {
		return 0
	}
	return int(math.Round(float64(w) / float64(h) * api.RatioResolution))
}

// classifyDefects runs the end-marker, blank, blockiness, and blurring
// checks and stamps d.Defect with the first one that fires. The collector's
// size filters apply only to the blockiness and blurring verdicts.
func (c *Collector) classifyDefects(d *api.ImageData, raw, fullGray []byte, fullSide int) {
	if d.ImageType.IsJPEGFamily() && !hasJPEGEndMarker(raw) {
		d.Defect = api.DefectJpegEndMarkerAbsent
		return
	}

	if utils.IsBlank(fullGray, fullSide, 4, 0.98) {
		d.Defect = api.DefectBlank
		return
	}

	d.Blockiness = blockinessScore(fullGray, fullSide)
	d.Blurring = blurringRadius(fullGray, fullSide)

	if c.opts.DefectMinSize > 0 && d.Size < c.opts.DefectMinSize {
		return
	}
	if c.opts.DefectMaxSize > 0 && d.Size > c.opts.DefectMaxSize {
		return
	}

	switch {
	case c.opts.BlockinessMax > 0 && d.Blockiness > c.opts.BlockinessMax:
		d.Defect = api.DefectBlockiness
	case c.opts.BlurringMax > 0 && d.Blurring > c.opts.BlurringMax:
		d.Defect = api.DefectBlurring
	}
}

// hasJPEGEndMarker reports whether the FF D9 marker pair appears in the
// file's final bytes, scanning backward since trailing padding is common.
func hasJPEGEndMarker(raw []byte) bool {
	const tailScan = 32
	start := len(raw) - tailScan
	if start < 0 {
		start = 0
	}
	for i := len(raw) - 1; i > start; i-- {
		if raw[i] == 0xD9 && raw[i-1] == 0xFF {
			return true
		}
	}
	return false
}
