package resultstore

import "github.com/dupimg/dupimg/pkg/api"

// autoDeleteThreshold implements spec §4.6's
// min(AUTO_DELETE_MAX, threshold/AUTO_DELETE_FACTOR).
func autoDeleteThreshold(thresholdDifference float64) float64 {
	byFactor := thresholdDifference / api.AutoDeleteFactor
	if byFactor < api.AutoDeleteMax {
		return byFactor
	}
	return api.AutoDeleteMax
}

// computeDuplicateHint implements the hint engine for a duplicate-pair
// result, applied only to the untransformed (Turn0) pairing — rotated
// or mirrored duplicates get no hint at all.
func computeDuplicateHint(r *api.Result, thresholdDifference float64) api.Hint {
	if r.Transform != api.Turn0 {
		return api.HintNone
	}
	first, second := r.First, r.Second

	if r.Difference == 0 {
		return hintExactDuplicate(first, second)
	}

	if r.Difference < autoDeleteThreshold(thresholdDifference) && first.Type == second.Type {
		return hintDominantQuality(first, second)
	}

	return api.HintNone
}

// hintExactDuplicate handles the difference==0 branch: prefer deleting
// whichever side sits in a *delete* path; otherwise delete the smaller
// file, keeping the larger, and on a size tie delete the newer file,
// keeping the older one.
func hintExactDuplicate(first, second *api.ImageInfo) api.Hint {
	switch {
	case first.DeletePath && !second.DeletePath:
		return api.HintDeleteFirst
	case second.DeletePath && !first.DeletePath:
		return api.HintDeleteSecond
	}

	switch {
	case first.Size > second.Size:
		return api.HintDeleteSecond
	case second.Size > first.Size:
		return api.HintDeleteFirst
	}

	switch {
	case first.Time.Before(second.Time):
		return api.HintDeleteSecond
	case second.Time.Before(first.Time):
		return api.HintDeleteFirst
	}
	return api.HintNone
}

// hintDominantQuality handles the near-duplicate, equal-type branch:
// if one side dominates the other in both (size, area) and is no worse
// in blockiness, recommend deleting the dominated side.
func hintDominantQuality(first, second *api.ImageInfo) api.Hint {
	if dominates(first, second) {
		return api.HintDeleteSecond
	}
	if dominates(second, first) {
		return api.HintDeleteFirst
	}
	return api.HintNone
}

// dominates reports whether a is strictly greater-or-equal to b in size
// and area, and less-or-equal in blockiness — spec's dominance test for
// "which side to keep".
func dominates(a, b *api.ImageInfo) bool {
	areaA := int64(a.Width) * int64(a.Height)
	areaB := int64(b.Width) * int64(b.Height)
	return a.Size >= b.Size && areaA >= areaB && a.Blockiness <= b.Blockiness
}
