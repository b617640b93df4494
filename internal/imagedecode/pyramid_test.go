package imagedecode_test

import (
	"testing"

	"github.com/dupimg/dupimg/internal/imagedecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPyramidProducesMainAndFastViews(t *testing.T) {
	const fullSide = 16
	full := make([]byte, fullSide*fullSide)
	for i := range full {
		full[i] = byte(i % 256)
	}

	p := imagedecode.BuildPyramid(full, fullSide, 8)
	require.True(t, p.Filled)
	assert.Equal(t, 8, p.Sides[len(p.Sides)-1])
	assert.Len(t, p.Main, 64)
	assert.Len(t, p.Fast, 16)
}

func TestBuildPyramidUniformInputStaysUniform(t *testing.T) {
	const fullSide = 32
	full := make([]byte, fullSide*fullSide)
	for i := range full {
		full[i] = 200
	}
	p := imagedecode.BuildPyramid(full, fullSide, 16)
	for _, v := range p.Main {
		assert.Equal(t, byte(200), v)
	}
	for _, v := range p.Fast {
		assert.Equal(t, byte(200), v)
	}
}
