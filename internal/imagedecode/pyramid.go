package imagedecode

import "github.com/dupimg/dupimg/pkg/api"

// BuildPyramid takes a side x side grayscale buffer (conventionally
// PyramidStartSide) and repeatedly 2x2-averages it down to mainSide. Levels
// runs from the full-size input down to the main view (mainSide x
// mainSide), its last entry; the fast view (4x4, 16 bytes) is averaged
// further down from the main view and returned in Fast only, not in
// Levels.
func BuildPyramid(full []byte, fullSide, mainSide int) api.PixelPyramid {
	levels := [][]byte{full}
	sides := []int{fullSide}

	side := fullSide
	level := full
	for side > mainSide {
		next := halveGrayscale(level, side)
		side /= 2
		level = next
		levels = append(levels, level)
		sides = append(sides, side)
	}

	// Ensure the 4x4 fast view is present even when mainSide == 4.
	fast := level
	fastSide := side
	for fastSide > api.FastViewSide {
		fast = halveGrayscale(fast, fastSide)
		fastSide /= 2
	}

	return api.PixelPyramid{
		Levels: levels,
		Sides:  sides,
		Main:   level,
		Fast:   fast,
		Filled: true,
	}
}

// halveGrayscale averages each non-overlapping 2x2 block of a side x side
// grayscale buffer into a (side/2) x (side/2) buffer.
func halveGrayscale(src []byte, side int) []byte {
	half := side / 2
	dst := make([]byte, half*half)
	for y := 0; y < half; y++ {
		for x := 0; x < half; x++ {
			sx, sy := x*2, y*2
			sum := int(src[sy*side+sx]) + int(src[sy*side+sx+1]) +
				int(src[(sy+1)*side+sx]) + int(src[(sy+1)*side+sx+1])
			dst[y*half+x] = byte(sum / 4)
		}
	}
	return dst
}
