package imagedecode

import "github.com/dupimg/dupimg/pkg/api"

// TransformPyramid returns a fresh pyramid with every level rotated and/or
// mirrored per tr, used by the comparator to check a fingerprint against
// all eight symmetries of a candidate. Grounded on pkg/imaging/
// transformer.go's EXIF-orientation rotate/flip dispatch, generalized from
// "normalize to upright" to "produce each of the eight square-buffer
// symmetries".
func TransformPyramid(p api.PixelPyramid, tr api.Transform) api.PixelPyramid {
	if tr == api.Turn0 {
		return p
	}
	out := api.PixelPyramid{
		Levels: make([][]byte, len(p.Levels)),
		Sides:  append([]int{}, p.Sides...),
		Filled: p.Filled,
	}
	for i, level := range p.Levels {
		out.Levels[i] = transformSquare(level, p.Sides[i], tr)
	}
	if n := len(out.Levels); n > 0 {
		out.Main = out.Levels[n-1]
	}
	out.Fast = transformSquare(p.Fast, sideOf(len(p.Fast)), tr)
	return out
}

func sideOf(n int) int {
	side := 1
	for side*side < n {
		side++
	}
	return side
}

// transformSquare applies one of the eight symmetries of the square to a
// side x side grayscale buffer.
func transformSquare(src []byte, side int, tr api.Transform) []byte {
	dst := make([]byte, len(src))
	at := func(x, y int) byte { return src[y*side+x] }
	set := func(x, y int, v byte) { dst[y*side+x] = v }

	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			sx, sy := sourceCoord(x, y, side, tr)
			set(x, y, at(sx, sy))
		}
	}
	return dst
}

// sourceCoord maps destination (x,y) back to the source pixel that
// produces it under transform tr, so the loop above can stay a single
// forward pass.
func sourceCoord(x, y, side int, tr api.Transform) (int, int) {
	last := side - 1
	switch tr {
	case api.Turn0:
		return x, y
	case api.Turn90:
		return y, last - x
	case api.Turn180:
		return last - x, last - y
	case api.Turn270:
		return last - y, x
	case api.MirrorTurn0:
		return last - x, y
	case api.MirrorTurn90:
		return y, x
	case api.MirrorTurn180:
		return x, last - y
	case api.MirrorTurn270:
		return last - y, last - x
	default:
		return x, y
	}
}
