// Package mistakestore implements the mistake store of spec §4.7: a
// sorted multiset of single-image mistakes and a sorted multiset of
// canonicalized image-pair mistakes, persisted through a typed binary
// stream under the "adm" magic. Grounded on internal/cache/store.go's
// sorted-slice-plus-lock idiom and internal/binstream for the wire
// format, generalized from ImageData chunks to ImageInfo singles/pairs.
package mistakestore

import (
	"os"
	"sort"
	"sync"

	"github.com/dupimg/dupimg/internal/binstream"
	"github.com/dupimg/dupimg/pkg/api"
)

type pairEntry struct {
	first, second *api.ImageInfo
}

// Store is the mistake store. It satisfies internal/resultstore's
// MistakeChecker interface.
type Store struct {
	mu      sync.Mutex
	singles []*api.ImageInfo // sorted by Path
	pairs   []pairEntry      // sorted by (first.Path, second.Path)
}

// NewStore returns an empty mistake store.
func NewStore() *Store {
	return &Store{}
}

func canonicalPair(a, b *api.ImageInfo) (first, second *api.ImageInfo) {
	if a.Path <= b.Path {
		return a, b
	}
	return b, a
}

// AddSingle inserts info into the singles multiset, keeping it sorted
// by path.
func (s *Store) AddSingle(info *api.ImageInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.singles), func(i int) bool { return s.singles[i].Path >= info.Path })
	s.singles = append(s.singles, nil)
	copy(s.singles[i+1:], s.singles[i:])
	s.singles[i] = info
}

// AddPair inserts the canonicalized (a, b) pair into the pairs
// multiset, keeping it sorted.
func (s *Store) AddPair(a, b *api.ImageInfo) {
	first, second := canonicalPair(a, b)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.pairs), func(i int) bool { return !pairLess(s.pairs[i], pairEntry{first, second}) })
	s.pairs = append(s.pairs, pairEntry{})
	copy(s.pairs[i+1:], s.pairs[i:])
	s.pairs[i] = pairEntry{first, second}
}

func pairLess(a, b pairEntry) bool {
	if a.first.Path != b.first.Path {
		return a.first.Path < b.first.Path
	}
	return a.second.Path < b.second.Path
}

// HasSingle reports whether path is in the singles multiset.
func (s *Store) HasSingle(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.singles), func(i int) bool { return s.singles[i].Path >= path })
	return i < len(s.singles) && s.singles[i].Path == path
}

// HasPair reports whether the canonicalized (a, b) pair is in the pairs
// multiset.
func (s *Store) HasPair(a, b string) bool {
	if a > b {
		a, b = b, a
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pairs {
		if p.first.Path == a && p.second.Path == b {
			return true
		}
	}
	return false
}

// Relabel implements spec §4.7's rename handling: every entry
// referencing oldPath is removed, relabeled to newPath, and
// re-inserted so sort order is preserved.
func (s *Store) Relabel(oldPath, newPath string) {
	s.mu.Lock()
	var movedSingles []*api.ImageInfo
	kept := s.singles[:0:0]
	for _, info := range s.singles {
		if info.Path == oldPath {
			info.Path = newPath
			movedSingles = append(movedSingles, info)
			continue
		}
		kept = append(kept, info)
	}
	s.singles = kept

	var movedPairs []pairEntry
	keptPairs := s.pairs[:0:0]
	for _, p := range s.pairs {
		if p.first.Path == oldPath || p.second.Path == oldPath {
			if p.first.Path == oldPath {
				p.first.Path = newPath
			}
			if p.second.Path == oldPath {
				p.second.Path = newPath
			}
			movedPairs = append(movedPairs, p)
			continue
		}
		keptPairs = append(keptPairs, p)
	}
	s.pairs = keptPairs
	s.mu.Unlock()

	for _, info := range movedSingles {
		s.AddSingle(info)
	}
	for _, p := range movedPairs {
		s.AddPair(p.first, p.second)
	}
}

// Save writes the store to path under the "adm" magic.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	singles := append([]*api.ImageInfo(nil), s.singles...)
	pairs := append([]pairEntry(nil), s.pairs...)
	s.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return api.WrapError(api.ErrCannotCreate, "creating mistake store file", err)
	}
	defer f.Close()

	w, err := binstream.NewWriter(f, api.MagicMistakes)
	if err != nil {
		return err
	}

	w.WriteUint64(uint64(len(singles)))
	for _, info := range singles {
		writeImageInfo(w, info)
	}
	w.WriteUint64(uint64(len(pairs)))
	for _, p := range pairs {
		writeImageInfo(w, p.first)
		writeImageInfo(w, p.second)
	}
	if err := w.Err(); err != nil {
		return api.WrapError(api.ErrCannotWrite, "writing mistake store", err)
	}
	return w.Flush()
}

// Load replaces the store's contents with what's read from path.
func (s *Store) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return api.NewError(api.ErrFileNotExist, "mistake store file does not exist")
		}
		return api.WrapError(api.ErrCannotOpen, "opening mistake store file", err)
	}
	defer f.Close()

	r, err := binstream.NewReader(f, api.MagicMistakes)
	if err != nil {
		return err
	}

	singleCount := r.ReadUint64()
	if r.Err() != nil || singleCount > api.SizeCheckLimit {
		return api.NewError(api.ErrInvalidFileFormat, "invalid singles count")
	}
	singles := make([]*api.ImageInfo, 0, singleCount)
	for i := uint64(0); i < singleCount; i++ {
		singles = append(singles, readImageInfo(r))
	}

	pairCount := r.ReadUint64()
	if r.Err() != nil || pairCount > api.SizeCheckLimit {
		return api.NewError(api.ErrInvalidFileFormat, "invalid pairs count")
	}
	pairs := make([]pairEntry, 0, pairCount)
	for i := uint64(0); i < pairCount; i++ {
		first := readImageInfo(r)
		second := readImageInfo(r)
		pairs = append(pairs, pairEntry{first, second})
	}

	if r.Err() != nil {
		return api.WrapError(api.ErrCannotRead, "reading mistake store", r.Err())
	}

	sort.Slice(singles, func(i, j int) bool { return singles[i].Path < singles[j].Path })
	sort.Slice(pairs, func(i, j int) bool { return pairLess(pairs[i], pairs[j]) })

	s.mu.Lock()
	s.singles = singles
	s.pairs = pairs
	s.mu.Unlock()
	return nil
}
