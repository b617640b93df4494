package comparator_test

import (
	"testing"

	"github.com/dupimg/dupimg/internal/comparator"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solidImage builds a fingerprint whose Main/Fast views are filled with a
// single gray level, distinguished by rootIdx so CompareInsideOneFolder
// gating doesn't reject it against a default-constructed sibling.
func solidImage(path string, rootIdx int, gray byte) *api.ImageData {
	main := make([]byte, 16*16)
	for i := range main {
		main[i] = gray
	}
	fast := make([]byte, 16)
	for i := range fast {
		fast[i] = gray
	}
	return &api.ImageData{
		FileInfo:  api.FileInfo{Path: path, RootIdx: rootIdx},
		ImageType: api.ImageTypePNG,
		Width:     16,
		Height:    16,
		PixelData: api.PixelPyramid{Main: main, Fast: fast, Filled: true},
	}
}

func TestBucket0DAcceptsNearIdenticalImages(t *testing.T) {
	c := comparator.NewBucket0D(comparator.Options{ThresholdDifference: 5, ReducedImageSize: 16})

	a := solidImage("a.png", 0, 128)
	b := solidImage("b.png", 1, 129)

	require.Empty(t, c.Accept(a, true))
	matches := c.Accept(b, true)
	require.Len(t, matches, 1)
	assert.Same(t, b, matches[0].Original)
	assert.Same(t, a, matches[0].Other)
	assert.Less(t, matches[0].Difference, 5.0)
}

func TestBucket0DRejectsDissimilarImages(t *testing.T) {
	c := comparator.NewBucket0D(comparator.Options{ThresholdDifference: 5, ReducedImageSize: 16})

	a := solidImage("a.png", 0, 10)
	b := solidImage("b.png", 1, 250)

	c.Accept(a, true)
	matches := c.Accept(b, true)
	assert.Empty(t, matches)
}

func TestBucket0DRespectsCompareInsideOneFolder(t *testing.T) {
	c := comparator.NewBucket0D(comparator.Options{ThresholdDifference: 5, ReducedImageSize: 16, CompareInsideOneFolder: false})

	a := solidImage("a.png", 3, 100)
	b := solidImage("b.png", 3, 100)

	c.Accept(a, true)
	matches := c.Accept(b, true)
	assert.Empty(t, matches, "same root without CompareInsideOneFolder must be rejected")
}

func TestBucket1DAcceptsNearIdenticalImages(t *testing.T) {
	c := comparator.NewBucket1D(comparator.Options{ThresholdDifference: 5, ReducedImageSize: 16})

	a := solidImage("a.png", 0, 128)
	b := solidImage("b.png", 1, 130)

	c.Accept(a, true)
	matches := c.Accept(b, true)
	require.Len(t, matches, 1)
	assert.Same(t, a, matches[0].Other)
}

func TestBucket3DAcceptsNearIdenticalImages(t *testing.T) {
	c := comparator.NewBucket3D(comparator.Options{ThresholdDifference: 5, ReducedImageSize: 16})

	a := solidImage("a.png", 0, 128)
	b := solidImage("b.png", 1, 130)

	c.Accept(a, true)
	matches := c.Accept(b, true)
	require.Len(t, matches, 1)
	assert.Same(t, a, matches[0].Other)
}

func TestSSIMAcceptsIdenticalImages(t *testing.T) {
	c := comparator.NewSSIM(comparator.Options{ThresholdDifference: 5, ReducedImageSize: 16})

	a := solidImage("a.png", 0, 128)
	b := solidImage("b.png", 1, 128)

	c.Accept(a, true)
	matches := c.Accept(b, true)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0, matches[0].Difference, 1e-6)
}

func TestFactorySelectsBySizeAndOption(t *testing.T) {
	small := comparator.New(comparator.Options{ThresholdDifference: 5}, 10)
	assert.IsType(t, &comparator.Bucket0D{}, small)

	medium := comparator.New(comparator.Options{ThresholdDifference: 5}, api.Strategy0DImageCountMax+1)
	assert.IsType(t, &comparator.Bucket1D{}, medium)

	large := comparator.New(comparator.Options{ThresholdDifference: 5}, api.Strategy1DImageCountMax+1)
	assert.IsType(t, &comparator.Bucket3D{}, large)

	looseLarge := comparator.New(comparator.Options{ThresholdDifference: api.Strategy3DThresholdMax + 1}, api.Strategy1DImageCountMax+1)
	assert.IsType(t, &comparator.Bucket1D{}, looseLarge)

	ssim := comparator.New(comparator.Options{ThresholdDifference: 5, UseSSIM: true}, api.Strategy1DImageCountMax+1)
	assert.IsType(t, &comparator.SSIM{}, ssim)
}
