package comparator

import (
	"math"
	"sync"

	"github.com/dupimg/dupimg/pkg/api"
)

// maxRangesByThresholdStep is the range-table keyed by
// thresholdDifference/Strategy3DMaxRangesStep, tightening the bucket grid
// as the user's threshold narrows. Grounded on the reference blur/
// bucketing tuning recovered from original_source's image comparer.
var maxRangesByThresholdStep = [11]int{48, 48, 48, 48, 48, 48, 40, 32, 28, 24, 24}

type index3D struct {
	s, x, y int
}

// Bucket3D buckets fingerprints on a 3-D grid derived from the four 2x2
// super-blocks of the fast view: total brightness (s), horizontal
// contrast (x), vertical contrast (y). Used above Strategy1DImageCountMax
// images when the threshold is tight enough (Strategy3DThresholdMax).
// Grounded on internal/similarity/lsh.go's multi-table bucket pattern,
// generalized from a 1-D key to a 3-D grid of buckets.
type Bucket3D struct {
	base             *base
	mu               sync.Mutex
	buckets          [][]*api.ImageData
	maxRange         int
	rangeS, rangeX, rangeY int
	strideS, strideX, strideY int
	shiftX, shiftY   int
	halfCompareRange int
}

// NewBucket3D returns a 3-D comparator configured by opts.
func NewBucket3D(opts Options) *Bucket3D {
	b := newBase(opts)

	step := int(b.opts.ThresholdDifference / api.Strategy3DMaxRangesStep)
	if step < 0 {
		step = 0
	}
	if step >= len(maxRangesByThresholdStep) {
		step = len(maxRangesByThresholdStep) - 1
	}
	maxRange := maxRangesByThresholdStep[step]

	rangeS := maxRange
	rangeX := maxRange / 2
	rangeY := maxRange / 2

	c := &Bucket3D{
		base:             b,
		maxRange:         maxRange,
		rangeS:           rangeS,
		rangeX:           rangeX,
		rangeY:           rangeY,
		strideS:          rangeX * rangeY,
		strideX:          rangeY,
		strideY:          1,
		shiftX:           maxRange / 4,
		shiftY:           maxRange / 4,
		halfCompareRange: int(math.Ceil(0.5 + float64(maxRange)*b.opts.ThresholdDifference/api.DifferenceDenominator)),
	}
	c.buckets = make([][]*api.ImageData, rangeS*rangeX*rangeY)
	return c
}

// Accept runs d (and, if enabled, its transforms) against the cube of
// buckets within range of its own cell, optionally inserting d afterward.
func (c *Bucket3D) Accept(d *api.ImageData, add bool) []Match {
	return accept(c.base, c, c, d, add)
}

func (c *Bucket3D) addToBucket(d *api.ImageData) {
	i := c.index(d)
	key := i.s*c.strideS + i.x*c.strideX + i.y*c.strideY
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets[key] = append(c.buckets[key], d)
}

func (c *Bucket3D) compareBucket(original, transformed *api.ImageData, transform api.Transform) []Match {
	i := c.index(transformed)

	loS, hiS := clampRange(i.s, c.halfCompareRange, c.rangeS)
	loX, hiX := clampRange(i.x, c.halfCompareRange, c.rangeX)
	loY, hiY := clampRange(i.y, c.halfCompareRange, c.rangeY)

	c.mu.Lock()
	var snapshot []*api.ImageData
	for s := loS; s < hiS; s++ {
		for x := loX; x < hiX; x++ {
			for y := loY; y < hiY; y++ {
				key := s*c.strideS + x*c.strideX + y*c.strideY
				snapshot = append(snapshot, c.buckets[key]...)
			}
		}
	}
	c.mu.Unlock()

	return c.base.compareSet(original, transformed, transform, snapshot)
}

func clampRange(center, half, max int) (lo, hi int) {
	lo = center - half
	if lo < 0 {
		lo = 0
	}
	hi = center + half
	if hi > max {
		hi = max
	}
	return
}

// index computes the (s, x, y) cell for d's fast view from its four 2x2
// super-block sums.
func (c *Bucket3D) index(d *api.ImageData) index3D {
	p := d.PixelData.Fast
	if len(p) < 16 {
		return index3D{}
	}
	topLeft := int(p[0x0]) + int(p[0x1]) + int(p[0x4]) + int(p[0x5])
	topRight := int(p[0x2]) + int(p[0x3]) + int(p[0x6]) + int(p[0x7])
	bottomLeft := int(p[0x8]) + int(p[0x9]) + int(p[0xC]) + int(p[0xD])
	bottomRight := int(p[0xA]) + int(p[0xB]) + int(p[0xE]) + int(p[0xF])

	s := (topLeft+topRight+bottomLeft+bottomRight)*c.maxRange >> 12
	x := (topLeft-topRight+bottomLeft-bottomRight+0x7FF)*c.maxRange>>12 - c.shiftX
	y := (topLeft+topRight-bottomLeft-bottomRight+0x7FF)*c.maxRange>>12 - c.shiftY

	return index3D{
		s: clampIndex(s, c.rangeS),
		x: clampIndex(x, c.rangeX),
		y: clampIndex(y, c.rangeY),
	}
}

func clampIndex(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max-1 {
		return max - 1
	}
	return v
}
