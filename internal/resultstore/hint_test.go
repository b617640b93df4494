package resultstore_test

import (
	"testing"
	"time"

	"github.com/dupimg/dupimg/internal/resultstore"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExactDuplicateHintPrefersDeletePath(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{IsDeletePath: func(path string) bool { return path == "/trash/a.png" }})
	a := imgData("/trash/a.png", 100, 10, 10)
	b := imgData("/keep/b.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	assert.Equal(t, api.HintDeleteFirst, s.Results()[0].Hint)
}

func TestExactDuplicateHintDeletesSmallerFile(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 200, 10, 10)
	b := imgData("/b.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	assert.Equal(t, api.HintDeleteSecond, s.Results()[0].Hint, "smaller file (b) should be recommended for deletion, keeping the larger a")
}

func TestExactDuplicateHintTieBreaksOnOlderFile(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	a.Time = time.Unix(1000, 0)
	b.Time = time.Unix(2000, 0)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	assert.Equal(t, api.HintDeleteSecond, s.Results()[0].Hint, "newer file (b) should be recommended for deletion, keeping the older a")
}

func TestNearDuplicateHintDeletesDominatedSide(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{ThresholdDifference: 10})
	a := imgData("/a.png", 200, 20, 20)
	b := imgData("/b.png", 100, 10, 10)
	a.Blockiness = 0.1
	b.Blockiness = 0.5

	require.True(t, s.AddDuplicatePair(a, b, 1.0, api.Turn0))
	assert.Equal(t, api.HintDeleteSecond, s.Results()[0].Hint)
}

func TestRotatedDuplicateGetsNoHint(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn90))
	assert.Equal(t, api.HintNone, s.Results()[0].Hint)
}
