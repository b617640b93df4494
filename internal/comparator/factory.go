package comparator

import "github.com/dupimg/dupimg/pkg/api"

// New selects a bucketization strategy for a collection of
// searchedImageCount fingerprints, grounded on adImageComparer.cpp's
// CreateImageComparer: SSIM overrides the size-driven choice outright,
// otherwise the 0-D single bucket is used below
// Strategy0DImageCountMax images, the 1-D histogram bucket below
// Strategy1DImageCountMax (or once the threshold is too loose for the
// 3-D grid to pay off), and the 3-D spatial bucket otherwise.
func New(opts Options, searchedImageCount int) Strategy {
	if opts.UseSSIM {
		return NewSSIM(opts)
	}

	threshold := opts.ThresholdDifference
	if threshold <= 0 {
		threshold = api.DefaultThreshold
	}

	switch {
	case searchedImageCount < api.Strategy0DImageCountMax:
		return NewBucket0D(opts)
	case searchedImageCount < api.Strategy1DImageCountMax || threshold > api.Strategy3DThresholdMax:
		return NewBucket1D(opts)
	default:
		return NewBucket3D(opts)
	}
}
