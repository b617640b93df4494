package comparator

import (
	"math"
	"sync"

	"github.com/dupimg/dupimg/pkg/api"
)

// Bucket1D buckets fingerprints by the sum of their fast-view pixels into
// api.Strategy1DBucketCount buckets, comparing within a threshold-scaled
// window either side of the candidate's own bucket. Used below
// Strategy1DImageCountMax images. Grounded on internal/similarity/lsh.go's
// multi-table hash-bucket pattern, generalized from random-projection
// hashing to the engine's fixed fast-sum key.
type Bucket1D struct {
	base             *base
	mu               sync.Mutex
	buckets          [][]*api.ImageData
	halfCompareRange int
}

// NewBucket1D returns a 1-D comparator configured by opts.
func NewBucket1D(opts Options) *Bucket1D {
	b := newBase(opts)
	const bucketCount = api.Strategy1DBucketCount
	return &Bucket1D{
		base:             b,
		buckets:          make([][]*api.ImageData, bucketCount),
		halfCompareRange: int(math.Ceil(0.5 + float64(bucketCount)*b.opts.ThresholdDifference/api.DifferenceDenominator)),
	}
}

// Accept runs d (and, if enabled, its transforms) against the buckets
// within range of its key, optionally inserting d afterward.
func (c *Bucket1D) Accept(d *api.ImageData, add bool) []Match {
	return accept(c.base, c, c, d, add)
}

func (c *Bucket1D) addToBucket(d *api.ImageData) {
	key := fastSumKey(d)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buckets[key] = append(c.buckets[key], d)
}

func (c *Bucket1D) compareBucket(original, transformed *api.ImageData, transform api.Transform) []Match {
	key := fastSumKey(transformed)
	lo := key - c.halfCompareRange
	if lo < 0 {
		lo = 0
	}
	hi := key + c.halfCompareRange
	if hi > len(c.buckets) {
		hi = len(c.buckets)
	}

	c.mu.Lock()
	var snapshot []*api.ImageData
	for i := lo; i < hi; i++ {
		snapshot = append(snapshot, c.buckets[i]...)
	}
	c.mu.Unlock()

	return c.base.compareSet(original, transformed, transform, snapshot)
}

// fastSumKey computes (sum(fast) + 8) >> 4, a coarse brightness bucket.
func fastSumKey(d *api.ImageData) int {
	sum := 8
	for _, v := range d.PixelData.Fast {
		sum += int(v)
	}
	key := sum >> 4
	if key >= api.Strategy1DBucketCount {
		key = api.Strategy1DBucketCount - 1
	}
	if key < 0 {
		key = 0
	}
	return key
}
