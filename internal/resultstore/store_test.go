package resultstore_test

import (
	"testing"
	"time"

	"github.com/dupimg/dupimg/internal/resultstore"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imgData(path string, size int64, w, h int) *api.ImageData {
	return &api.ImageData{
		FileInfo:  api.FileInfo{Path: path, Size: size, Time: time.Unix(0, 0)},
		ImageType: api.ImageTypePNG,
		Width:     w,
		Height:    h,
		Size:      size,
	}
}

func TestAddDuplicatePairAllocatesFreshGroup(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))

	results := s.Results()
	require.Len(t, results, 1)
	assert.Equal(t, results[0].Group, results[0].First.Group)
	assert.Equal(t, results[0].Group, results[0].Second.Group)
	assert.NotZero(t, results[0].Group)
}

func TestAddDuplicatePairMergesLowerGroupIntoHigher(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	c := imgData("/c.png", 100, 10, 10)
	d := imgData("/d.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0)) // group 1: a,b
	require.True(t, s.AddDuplicatePair(c, d, 0, api.Turn0)) // group 2: c,d
	require.True(t, s.AddDuplicatePair(b, c, 1, api.Turn0)) // merges group 1 into group 2

	results := s.Results()
	require.Len(t, results, 3)
	finalGroup := results[2].Group
	for _, r := range results {
		assert.Equal(t, finalGroup, r.Group, "every result should share the merged group id")
	}
}

func TestAddDuplicatePairRejectsDuplicateCanonicalPair(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	assert.False(t, s.AddDuplicatePair(b, a, 0, api.Turn90), "reverse-order symmetry transform duplicate must be rejected")
}

func TestAddDuplicatePairRejectsMistakePair(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{Mistakes: stubMistakes{pairs: map[string]bool{"/a.png\x00/b.png": true}}})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	assert.False(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
}

func TestAddDefectAssignsFreshGroupOnlyOnce(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)

	require.True(t, s.AddDefect(a, api.DefectBlurring))
	require.True(t, s.AddDefect(a, api.DefectBlockiness))

	results := s.Results()
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Group, results[1].Group)
	assert.Equal(t, api.HintDeleteDefective, results[0].Hint)
}

func TestGroupsPartitionsDuplicatesAndDefects(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	c := imgData("/c.png", 100, 10, 10)

	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	require.True(t, s.AddDefect(c, api.DefectBlurring))

	groups := s.Groups()
	require.Len(t, groups, 2)
	for _, g := range groups {
		if len(g.Images) == 2 {
			assert.Len(t, g.Results, 1)
		} else {
			assert.Len(t, g.Images, 1)
		}
	}
}

func TestRestoreReplacesLiveResults(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	require.Len(t, s.Results(), 1)

	snapshot := []*api.Result{api.NewDefectResult(&api.ImageInfo{Path: "/c.png"}, api.DefectBlurring)}
	s.Restore(snapshot)

	require.Len(t, s.Results(), 1)
	assert.Equal(t, "/c.png", s.Results()[0].DefectImage.Path)
}

func TestClearDiscardsResultsAndGroups(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	require.True(t, s.AddDuplicatePair(a, b, 0, api.Turn0))
	require.NotEmpty(t, s.Groups())

	s.Clear()

	assert.Empty(t, s.Results())
	assert.Empty(t, s.Groups())

	// dedup state is reset too: the same pair can be re-added post-clear.
	c := imgData("/a.png", 100, 10, 10)
	d := imgData("/b.png", 100, 10, 10)
	assert.True(t, s.AddDuplicatePair(c, d, 0, api.Turn0))
}

func TestSetThresholdDifferenceWidensFutureHints(t *testing.T) {
	s := resultstore.NewStore(resultstore.Options{ThresholdDifference: 1.0})
	a := imgData("/a.png", 100, 10, 10)
	b := imgData("/b.png", 100, 10, 10)
	require.True(t, s.AddDuplicatePair(a, b, 1.0, api.Turn0))
	assert.Equal(t, api.HintNone, s.Results()[0].Hint, "a tight threshold should leave a near-duplicate unhinted")

	s.SetThresholdDifference(0) // ignored, non-positive
	s.SetThresholdDifference(-1)
	s.SetThresholdDifference(50.0)

	c := imgData("/c.png", 100, 10, 10)
	d := imgData("/d.png", 100, 10, 10)
	require.True(t, s.AddDuplicatePair(c, d, 1.0, api.Turn0))
	assert.Equal(t, api.HintDeleteSecond, s.Results()[1].Hint, "a widened threshold should classify the same difference as a near-duplicate")
}

type stubMistakes struct {
	singles map[string]bool
	pairs   map[string]bool
}

func (m stubMistakes) HasSingle(path string) bool { return m.singles[path] }
func (m stubMistakes) HasPair(a, b string) bool {
	if a > b {
		a, b = b, a
	}
	return m.pairs[a+"\x00"+b]
}
