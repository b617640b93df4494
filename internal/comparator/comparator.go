// Package comparator implements the comparator strategies of spec §4.4:
// a shared fast-path reject chain and squared-difference acceptance test,
// layered under three bucketization strategies (0-D, 1-D, 3-D) and an
// SSIM alternative. Grounded on internal/similarity/distance.go's
// distance-function idiom and internal/similarity/lsh.go's multi-table
// bucket pattern, generalized from float-vector LSH into the engine's
// fixed-size pixel-view buckets.
package comparator

import (
	"math"

	"github.com/dupimg/dupimg/internal/imagedecode"
	"github.com/dupimg/dupimg/pkg/api"
)

// Options mirrors the user-facing comparison settings (spec's "check" and
// "advanced" option groups).
type Options struct {
	ThresholdDifference   float64 // 0..100, default api.DefaultThreshold
	TypeControl           bool
	SizeControl           bool
	RatioControl          bool
	CompareInsideOneFolder bool
	TransformedImage      bool
	IgnoreFrameWidth      int
	ReducedImageSize      int
	UseSSIM               bool
}

// Match is one accepted duplicate candidate produced by accept().
type Match struct {
	Original   *api.ImageData
	Other      *api.ImageData
	Difference float64
	Transform  api.Transform
}

// Strategy is the comparator interface every bucketization strategy
// implements: Accept runs the original fingerprint (and, if enabled, its
// seven transformed copies) against the bucket(s) and optionally inserts
// the original.
type Strategy interface {
	Accept(d *api.ImageData, add bool) []Match
}

// base holds the precomputed thresholds shared by every bucket strategy,
// grounded on adImageComparer.cpp's TImageComparer constructor.
type base struct {
	opts Options

	fastThreshold uint64
	mainThreshold uint64
	maxDifference uint64
	mainSide      int
	mask          []byte // nil unless IgnoreFrameWidth > 0
}

func newBase(opts Options) *base {
	if opts.ThresholdDifference <= 0 {
		opts.ThresholdDifference = api.DefaultThreshold
	}
	if opts.ReducedImageSize <= 0 {
		opts.ReducedImageSize = api.ReducedImageSizeDefault
	}

	perPixel := square(opts.ThresholdDifference*api.PixelMaxDifference) / square(api.DifferenceDenominator)
	b := &base{
		opts:          opts,
		fastThreshold: uint64(api.FastDataSize) * uint64(perPixel),
		mainSide:      opts.ReducedImageSize,
	}

	mainSize := opts.ReducedImageSize * opts.ReducedImageSize
	if opts.IgnoreFrameWidth > 0 {
		effective := square(float64(opts.ReducedImageSize - 2*opts.IgnoreFrameWidth))
		b.mainThreshold = uint64(effective * perPixel)
		b.maxDifference = uint64(square(api.PixelMaxDifference) * effective)
		b.mask = buildFrameMask(opts.ReducedImageSize, opts.IgnoreFrameWidth)
	} else {
		b.mainThreshold = uint64(float64(mainSize) * perPixel)
		b.maxDifference = uint64(square(api.PixelMaxDifference) * float64(mainSize))
	}
	return b
}

func square(v float64) float64 { return v * v }

// buildFrameMask marks the interior (non-border) pixels of a side x side
// view with 1, the ignoreFrameWidth-pixel border with 0.
func buildFrameMask(side, frameWidth int) []byte {
	mask := make([]byte, side*side)
	for row := frameWidth; row < side-frameWidth; row++ {
		for col := frameWidth; col < side-frameWidth; col++ {
			mask[row*side+col] = 1
		}
	}
	return mask
}

// passesGates runs the type/size/ratio/folder fast-reject chain shared by
// every acceptance test, independent of which pixel-comparison formula
// follows it.
func (b *base) passesGates(first, second *api.ImageData) bool {
	if b.opts.TypeControl && first.ImageType != second.ImageType {
		return false
	}
	if b.opts.SizeControl && (first.Width != second.Width || first.Height != second.Height) {
		return false
	}
	if b.opts.RatioControl {
		diff := first.Ratio - second.Ratio
		if diff*diff > api.RatioThresholdDifference*api.RatioThresholdDifference {
			return false
		}
	}
	if !b.opts.CompareInsideOneFolder && first.RootIdx == second.RootIdx {
		return false
	}
	return true
}

// isDuplPair runs the fast-path reject chain then the fast-view and
// main-view squared-difference thresholds, returning the reported
// difference (spec's sqrt(main_diff/max_diff)*100, with the CRC32
// tie-break added) when first and second are accepted as a duplicate
// pair.
func (b *base) isDuplPair(first, second *api.ImageData) (float64, bool) {
	if !b.passesGates(first, second) {
		return 0, false
	}

	fastDiff := squaredDifferenceSum(first.PixelData.Fast, second.PixelData.Fast, nil)
	if fastDiff > b.fastThreshold {
		return 0, false
	}

	mainDiff := squaredDifferenceSum(first.PixelData.Main, second.PixelData.Main, b.mask)
	if mainDiff > b.mainThreshold {
		return 0, false
	}

	difference := math.Sqrt(float64(mainDiff)/float64(b.maxDifference)) * api.DifferenceDenominator
	if first.CRC32 != second.CRC32 {
		difference += api.AdditionalDifferenceForDifferentCRC32
	}
	return difference, true
}

// squaredDifferenceSum sums (a[i]-b[i])^2 over every position where mask
// is nil or mask[i] != 0.
func squaredDifferenceSum(a, b []byte, mask []byte) uint64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum uint64
	for i := 0; i < n; i++ {
		if mask != nil && mask[i] == 0 {
			continue
		}
		d := int(a[i]) - int(b[i])
		sum += uint64(d * d)
	}
	return sum
}

// accept drives the shared Accept() shape every strategy follows: compare
// the untransformed fingerprint, then (if enabled) each of the seven
// non-identity symmetries, then optionally insert the original.
func accept(b *base, s Strategy, bucket bucketStrategy, d *api.ImageData, add bool) []Match {
	var matches []Match
	matches = append(matches, bucket.compareBucket(d, d, api.Turn0)...)

	if b.opts.TransformedImage {
		for _, tr := range api.AllTransforms() {
			if tr == api.Turn0 {
				continue
			}
			transformed := *d
			transformed.PixelData = imagedecode.TransformPyramid(d.PixelData, tr)
			matches = append(matches, bucket.compareBucket(d, &transformed, tr)...)
		}
	}

	if add {
		bucket.addToBucket(d)
	}
	return matches
}

// bucketStrategy is the per-strategy half of Strategy: how a fingerprint
// is inserted into and compared against the bucket structure.
type bucketStrategy interface {
	addToBucket(d *api.ImageData)
	compareBucket(original, transformed *api.ImageData, transform api.Transform) []Match
}

// compareSet runs transformed against every candidate in set.
func (b *base) compareSet(original, transformed *api.ImageData, transform api.Transform, set []*api.ImageData) []Match {
	var matches []Match
	for _, candidate := range set {
		if candidate == original {
			continue
		}
		if diff, ok := b.isDuplPair(transformed, candidate); ok {
			matches = append(matches, Match{Original: original, Other: candidate, Difference: diff, Transform: transform})
		}
	}
	return matches
}
