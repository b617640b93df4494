package utils

// IsBlank reports whether a grayscale image is almost entirely flat
// (solid-color scan artifacts, failed captures). It samples every
// stride'th pixel and considers the image blank once blankRatio of the
// sample sits near pure black or white. Grounded on the teacher's
// internal/utils/image_utils.go DetectBlankImage, generalized from
// operating on a decoded image.Image to the raw grayscale byte buffer
// internal/fingerprint already has in hand, so no second decode or
// color-conversion pass is needed.
func IsBlank(gray []byte, side int, stride int, blankRatio float64) bool {
	if side <= 0 || len(gray) < side*side {
		return false
	}
	if stride < 1 {
		stride = 1
	}

	var sampled, extreme int
	for y := 0; y < side; y += stride {
		for x := 0; x < side; x += stride {
			v := gray[y*side+x]
			sampled++
			if v < 16 || v > 240 {
				extreme++
			}
		}
	}
	if sampled == 0 {
		return false
	}
	return float64(extreme)/float64(sampled) >= blankRatio
}
