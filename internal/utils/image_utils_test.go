package utils_test

import (
	"testing"

	"github.com/dupimg/dupimg/internal/utils"
	"github.com/stretchr/testify/assert"
)

func solidGray(side int, value byte) []byte {
	buf := make([]byte, side*side)
	for i := range buf {
		buf[i] = value
	}
	return buf
}

func TestIsBlankFlagsSolidWhite(t *testing.T) {
	gray := solidGray(16, 255)
	assert.True(t, utils.IsBlank(gray, 16, 4, 0.98))
}

func TestIsBlankFlagsSolidBlack(t *testing.T) {
	gray := solidGray(16, 0)
	assert.True(t, utils.IsBlank(gray, 16, 4, 0.98))
}

func TestIsBlankIgnoresMidToneImage(t *testing.T) {
	gray := solidGray(16, 128)
	assert.False(t, utils.IsBlank(gray, 16, 4, 0.98))
}

func TestIsBlankIgnoresPartialFlatness(t *testing.T) {
	side := 16
	gray := solidGray(side, 255)
	// carve a mid-tone block large enough to drop below the blank ratio
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if x < side/2 {
				gray[y*side+x] = 128
			}
		}
	}
	assert.False(t, utils.IsBlank(gray, side, 1, 0.98))
}

func TestIsBlankRejectsUndersizedBuffer(t *testing.T) {
	assert.False(t, utils.IsBlank(make([]byte, 4), 16, 4, 0.98))
}
