package comparator

import (
	"math"
	"sync"

	"github.com/dupimg/dupimg/pkg/api"
)

// ssimC1, ssimC2 are the stabilizing constants from the standard SSIM
// formula for an 8-bit luminance range (L=255), k1=0.01, k2=0.03.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// SSIM is the single-bucket alternative comparator: instead of the
// squared-pixel-difference acceptance test, pairs are accepted by
// structural similarity over the Main view. Selected by Options.UseSSIM
// regardless of collection size. Grounded on internal/quality's
// statistics idioms, generalized from per-image quality scores to a
// pairwise structural-similarity score, and on adImageComparer.cpp's
// shared fast-reject gate chain (passesGates).
type SSIM struct {
	base      *base
	mu        sync.Mutex
	all       []*api.ImageData
	minScore  float64 // required ssim score in [0,1] derived from ThresholdDifference
}

// NewSSIM returns an SSIM comparator configured by opts. A smaller
// ThresholdDifference demands a higher structural similarity score.
func NewSSIM(opts Options) *SSIM {
	b := newBase(opts)
	minScore := 1 - b.opts.ThresholdDifference/api.DifferenceDenominator
	if minScore < 0 {
		minScore = 0
	}
	return &SSIM{base: b, minScore: minScore}
}

// Accept runs d (and, if enabled, its transforms) against every
// previously-inserted fingerprint, optionally inserting d afterward.
func (c *SSIM) Accept(d *api.ImageData, add bool) []Match {
	return accept(c.base, c, c, d, add)
}

func (c *SSIM) addToBucket(d *api.ImageData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, d)
}

func (c *SSIM) compareBucket(original, transformed *api.ImageData, transform api.Transform) []Match {
	c.mu.Lock()
	c.ensureStats(transformed)
	snapshot := append([]*api.ImageData(nil), c.all...)
	c.mu.Unlock()

	var matches []Match
	for _, candidate := range snapshot {
		if candidate == original {
			continue
		}
		if !c.base.passesGates(transformed, candidate) {
			continue
		}

		c.mu.Lock()
		c.ensureStats(candidate)
		c.mu.Unlock()

		score := structuralSimilarity(transformed, candidate)
		if score < c.minScore {
			continue
		}
		difference := (1 - score) * api.DifferenceDenominator
		if transformed.CRC32 != candidate.CRC32 {
			difference += api.AdditionalDifferenceForDifferentCRC32
		}
		matches = append(matches, Match{Original: original, Other: candidate, Difference: difference, Transform: transform})
	}
	return matches
}

// ensureStats fills d's cached mean and variance over the Main view on
// first use. Caller must hold c.mu.
func (c *SSIM) ensureStats(d *api.ImageData) {
	if d.SSIMValid {
		return
	}
	mean, variance := meanAndVariance(d.PixelData.Main)
	d.SSIMAverage = mean
	d.SSIMVariance = variance
	d.SSIMValid = true
}

func meanAndVariance(pixels []byte) (mean, variance float64) {
	if len(pixels) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range pixels {
		sum += float64(v)
	}
	mean = sum / float64(len(pixels))

	var sumSq float64
	for _, v := range pixels {
		d := float64(v) - mean
		sumSq += d * d
	}
	variance = sumSq / float64(len(pixels))
	return
}

// structuralSimilarity computes SSIM over the two fingerprints' Main
// views using their cached mean/variance and a freshly computed
// cross-covariance, since covariance is pairwise and cannot be cached
// on either image alone.
func structuralSimilarity(a, b *api.ImageData) float64 {
	pa, pb := a.PixelData.Main, b.PixelData.Main
	n := len(pa)
	if n > len(pb) {
		n = len(pb)
	}
	if n == 0 {
		return 0
	}

	var covarSum float64
	for i := 0; i < n; i++ {
		covarSum += (float64(pa[i]) - a.SSIMAverage) * (float64(pb[i]) - b.SSIMAverage)
	}
	covariance := covarSum / float64(n)

	numerator := (2*a.SSIMAverage*b.SSIMAverage + ssimC1) * (2*covariance + ssimC2)
	denominator := (a.SSIMAverage*a.SSIMAverage + b.SSIMAverage*b.SSIMAverage + ssimC1) *
		(a.SSIMVariance + b.SSIMVariance + ssimC2)
	if denominator == 0 {
		return 0
	}
	score := numerator / denominator
	return math.Max(0, math.Min(1, score))
}
