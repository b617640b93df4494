// Package resultstore implements the result store of spec §4.6: the two
// coarse-locked write paths (add_duplicate_pair, add_defect), ImageInfo
// interning, union-by-id grouping, and the hint engine. Grounded on
// internal/similarity/grouping.go's assigned-map bookkeeping idiom,
// generalized from the teacher's greedy single-pass grouping into true
// union-find semantics (merge lower group id into higher), which
// spec §4.6 requires and the teacher's algorithm does not provide.
package resultstore

import (
	"sort"
	"sync"

	"github.com/dupimg/dupimg/pkg/api"
)

// MistakeChecker is the subset of the mistake store's surface the result
// store depends on, accepted as an interface so this package never
// imports internal/mistakestore directly.
type MistakeChecker interface {
	HasSingle(path string) bool
	HasPair(a, b string) bool
}

type noMistakes struct{}

func (noMistakes) HasSingle(string) bool     { return false }
func (noMistakes) HasPair(string, string) bool { return false }

// Store is the result store: interned ImageInfo records, the result
// list, group bookkeeping, and the duplicate-result filter, all guarded
// by one coarse lock per spec §4.6 and §5's "Result store: guarded by
// one coarse lock around each add/sort/export".
type Store struct {
	mu sync.Mutex

	mistakes MistakeChecker
	isDeletePath func(path string) bool

	images  map[string]*api.ImageInfo
	results []*api.Result

	groupOf    map[string]int // image path -> group id
	groupNext  int
	seenPairs  map[string]struct{} // canonicalized "a\x00b" -> inserted

	thresholdDifference float64
}

// Options configures a new Store.
type Options struct {
	Mistakes            MistakeChecker
	IsDeletePath        func(path string) bool
	ThresholdDifference float64
}

// NewStore returns an empty result store.
func NewStore(opts Options) *Store {
	if opts.Mistakes == nil {
		opts.Mistakes = noMistakes{}
	}
	if opts.IsDeletePath == nil {
		opts.IsDeletePath = func(string) bool { return false }
	}
	if opts.ThresholdDifference <= 0 {
		opts.ThresholdDifference = api.DefaultThreshold
	}
	return &Store{
		mistakes:            opts.Mistakes,
		isDeletePath:         opts.IsDeletePath,
		images:               make(map[string]*api.ImageInfo),
		groupOf:              make(map[string]int),
		seenPairs:            make(map[string]struct{}),
		thresholdDifference:  opts.ThresholdDifference,
	}
}

func canonicalPairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// AddDuplicatePair implements add_duplicate_pair(a, b, diff, transform).
// Rejected if the pair is in the mistake store, or if an equivalent
// canonicalized pair (any transform) was already inserted — the
// duplicate-result filter symmetry transforms would otherwise trigger.
func (s *Store) AddDuplicatePair(first, second *api.ImageData, diff float64, transform api.Transform) bool {
	if first == nil || second == nil || first.Path == second.Path {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mistakes.HasPair(first.Path, second.Path) {
		return false
	}
	key := canonicalPairKey(first.Path, second.Path)
	if _, seen := s.seenPairs[key]; seen {
		return false
	}
	s.seenPairs[key] = struct{}{}

	a := s.intern(first)
	b := s.intern(second)
	a.Links++
	b.Links++

	groupID := s.mergeGroups(a.Path, b.Path)
	a.Group = groupID
	b.Group = groupID

	result := api.NewDuplicateResult(a, b, diff, transform)
	result.Group = groupID
	result.Hint = computeDuplicateHint(result, s.thresholdDifference)
	s.results = append(s.results, result)
	return true
}

// AddDefect implements add_defect(a, defect). Rejected if the image is
// in the mistake store's singles set.
func (s *Store) AddDefect(d *api.ImageData, kind api.DefectKind) bool {
	if d == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mistakes.HasSingle(d.Path) {
		return false
	}

	info := s.intern(d)
	if _, hasGroup := s.groupOf[info.Path]; !hasGroup {
		s.groupNext++
		s.groupOf[info.Path] = s.groupNext
	}
	info.Group = s.groupOf[info.Path]

	result := api.NewDefectResult(info, kind)
	result.Group = info.Group
	result.Hint = api.HintDeleteDefective
	s.results = append(s.results, result)
	return true
}

// SetThresholdDifference updates the hint engine's duplicate-vs-near
// boundary for results added after the call.
func (s *Store) SetThresholdDifference(threshold float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if threshold > 0 {
		s.thresholdDifference = threshold
	}
}

// Results returns a snapshot of every inserted result, in insertion
// order.
func (s *Store) Results() []*api.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*api.Result, len(s.results))
	copy(out, s.results)
	return out
}

// SortResults reorders the live result list by the given less function;
// kept under the coarse lock since other workers may still be writing.
func (s *Store) SortResults(less func(a, b *api.Result) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.results, func(i, j int) bool { return less(s.results[i], s.results[j]) })
}

// Restore replaces the live result list wholesale, used by the
// undo/redo engine to snap the store back to a prior staged snapshot.
func (s *Store) Restore(results []*api.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
}

// Clear discards every result and group, keeping interned ImageInfo
// and mistake bookkeeping untouched.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
	s.groupOf = make(map[string]int)
	s.groupNext = 0
	s.seenPairs = make(map[string]struct{})
}

// Groups rebuilds the ImageGroup view from the current results and
// interned images.
func (s *Store) Groups() []*api.ImageGroup {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[int]*api.ImageGroup)
	order := make([]int, 0)
	ensure := func(id int) *api.ImageGroup {
		g, ok := byID[id]
		if !ok {
			g = &api.ImageGroup{ID: id}
			byID[id] = g
			order = append(order, id)
		}
		return g
	}

	for _, r := range s.results {
		g := ensure(r.Group)
		g.Results = append(g.Results, r)
	}
	for path, id := range s.groupOf {
		info := s.images[path]
		if info == nil {
			continue
		}
		g := ensure(id)
		g.Images = append(g.Images, info)
	}

	sort.Ints(order)
	groups := make([]*api.ImageGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, byID[id])
	}
	return groups
}
