package imagedecode_test

import (
	"testing"

	"github.com/dupimg/dupimg/internal/imagedecode"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
)

func samplePyramid() api.PixelPyramid {
	// 4x4 grayscale level, values 0..15 row-major.
	level := make([]byte, 16)
	for i := range level {
		level[i] = byte(i)
	}
	return api.PixelPyramid{
		Levels: [][]byte{level},
		Sides:  []int{4},
		Main:   level,
		Fast:   level,
		Filled: true,
	}
}

func TestTransformPyramidIdentity(t *testing.T) {
	p := samplePyramid()
	out := imagedecode.TransformPyramid(p, api.Turn0)
	assert.Equal(t, p.Main, out.Main)
}

func TestTransformPyramidTurn180IsDoubleTurn90(t *testing.T) {
	p := samplePyramid()
	once := imagedecode.TransformPyramid(p, api.Turn90)
	twice := imagedecode.TransformPyramid(once, api.Turn90)
	want := imagedecode.TransformPyramid(p, api.Turn180)
	assert.Equal(t, want.Main, twice.Main)
}

func TestTransformPyramidMirrorIsInvolution(t *testing.T) {
	p := samplePyramid()
	mirrored := imagedecode.TransformPyramid(p, api.MirrorTurn0)
	back := imagedecode.TransformPyramid(mirrored, api.MirrorTurn0)
	assert.Equal(t, p.Main, back.Main)
}
