// Package cache implements the image-data persistent cache (spec §4.5):
// an indexed, chunked, versioned on-disk store of fingerprints keyed by
// path, so rescans are incremental. Grounded on the bucket-per-concern
// layout of internal/index/boltdb.go, adapted from a generic pluggable
// Store interface to the engine's specific binary chunk format.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dupimg/dupimg/internal/binstream"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/sirupsen/logrus"
)

// chunkEntry mirrors one row of the index file: the key identifying a
// chunk file plus the path interval it covers.
type chunkEntry struct {
	Key       int16
	FirstPath string
	LastPath  string
	Size      uint64
}

// chunk is a loaded (or about-to-be-written) data file: its header plus
// the ImageData records it holds.
type chunk struct {
	Key   int16
	Items []*api.ImageData
}

// Store is the main-thread-owned image-data cache for one run. Workers
// never touch it directly; they mutate only the ImageData instances the
// dispatcher handed them.
type Store struct {
	Dir              string
	ReducedImageSize int

	chunks  []*chunk
	byPath  map[string]*api.ImageData
	nextKey int16
	dirty   bool
	logger  *logrus.Logger
	accel   *boltAccelerator
}

// NewStore opens (without yet loading) a cache rooted at dir.
func NewStore(dir string, reducedImageSize int) *Store {
	if reducedImageSize <= 0 {
		reducedImageSize = api.ReducedImageSizeDefault
	}
	return &Store{
		Dir:              dir,
		ReducedImageSize: reducedImageSize,
		byPath:           make(map[string]*api.ImageData),
		logger:           logrus.New(),
	}
}

func (s *Store) indexPath() string  { return filepath.Join(s.Dir, "index.adi") }
func (s *Store) backupPath() string { return filepath.Join(s.Dir, "backup.adi") }
func (s *Store) chunkPath(key int16) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%04d.adi", key))
}

// Load tries index.adi first; on parse failure it falls back to
// backup.adi. A missing store is not an error: the cache simply starts
// empty.
func (s *Store) Load() error {
	entries, err := s.loadIndex(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		entries, err = s.loadIndex(s.backupPath())
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
	}

	s.chunks = s.chunks[:0]
	s.byPath = make(map[string]*api.ImageData)
	for _, e := range entries {
		c, err := s.loadChunk(e.Key)
		if err != nil {
			s.logger.WithError(err).Warnf("cache: chunk %d unreadable, treating as empty", e.Key)
			continue
		}
		s.chunks = append(s.chunks, c)
		for _, item := range c.Items {
			s.byPath[normalizePath(item.Path)] = item
		}
		if int(e.Key) >= int(s.nextKey) {
			s.nextKey = e.Key + 1
		}
	}
	s.accel = newBoltAccelerator(s.byPath)
	return nil
}

func (s *Store) loadIndex(path string) ([]chunkEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := binstream.NewReader(f, api.MagicImageIndex)
	if err != nil {
		return nil, err
	}
	reduced := r.ReadUint32()
	if reduced > 0 {
		s.ReducedImageSize = int(reduced)
	}
	count := r.ReadUint64()
	if count > api.SizeCheckLimit {
		return nil, api.NewError(api.ErrInvalidFileFormat, "index count exceeds size check limit")
	}
	entries := make([]chunkEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		e := chunkEntry{
			Key: r.ReadInt16(),
		}
		e.FirstPath, _ = r.ReadPath()
		e.LastPath, _ = r.ReadPath()
		e.Size = r.ReadUint64()
		entries = append(entries, e)
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return entries, nil
}

func (s *Store) loadChunk(key int16) (*chunk, error) {
	f, err := os.Open(s.chunkPath(key))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := binstream.NewReader(f, api.MagicImageChunk)
	if err != nil {
		return nil, err
	}
	_ = r.ReadUint32() // reduced_image_size
	gotKey := r.ReadInt16()
	_, _ = r.ReadPath() // first
	_, _ = r.ReadPath() // last
	size := r.ReadUint64()
	if size > api.SizeCheckLimit {
		return nil, api.NewError(api.ErrInvalidFileFormat, "chunk size exceeds size check limit")
	}
	items := make([]*api.ImageData, 0, size)
	for i := uint64(0); i < size; i++ {
		items = append(items, readImageData(r))
	}
	if r.Err() != nil {
		return nil, r.Err()
	}
	return &chunk{Key: gotKey, Items: items}, nil
}

// Lookup returns the cached ImageData matching fi's path whose size and
// time also match, or constructs and registers a fresh empty one and marks
// the cache dirty.
func (s *Store) Lookup(fi api.FileInfo) *api.ImageData {
	key := normalizePath(fi.Path)
	if existing, ok := s.byPath[key]; ok {
		if existing.Size == fi.Size && existing.Time.Equal(fi.Time) {
			return existing
		}
	}
	fresh := api.NewImageData(fi)
	fresh.DirtyOnLoad = true
	s.byPath[key] = fresh
	s.dirty = true
	return fresh
}

// Put registers d under its own path, marking the cache dirty. Used when
// the collector fills a fingerprint the Lookup call had not yet seen
// (e.g. after a ClearDatabase).
func (s *Store) Put(d *api.ImageData) {
	s.byPath[normalizePath(d.Path)] = d
	s.dirty = true
}

// Dirty reports whether any fingerprint was added or replaced since the
// last successful Save.
func (s *Store) Dirty() bool { return s.dirty }

// Save rewrites the cache: an "old" chunk (its path interval intersects
// none of the current search roots) is kept as-is; everything else is
// bucketed into fresh chunks of at most ChunkMaxBytes worth of items. The
// engine writes index.adi, deletes superseded old chunk files, then
// copies index.adi to backup.adi.
func (s *Store) Save(searchRoots []string) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return api.WrapError(api.ErrCannotCreate, "creating cache dir", err)
	}

	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	oldChunks := make([]*chunk, 0, len(s.chunks))
	newChunks := make([]*chunk, 0)
	keptKeys := make(map[int16]bool)

	for _, c := range s.chunks {
		if len(c.Items) == 0 {
			continue
		}
		first := normalizePath(c.Items[0].Path)
		last := normalizePath(c.Items[len(c.Items)-1].Path)
		if intervalIntersectsAnyRoot(first, last, searchRoots) {
			continue // superseded: will be rebuilt below as a new chunk
		}
		oldChunks = append(oldChunks, c)
		keptKeys[c.Key] = true
	}

	keptPaths := make(map[string]bool)
	for _, c := range oldChunks {
		for _, item := range c.Items {
			keptPaths[normalizePath(item.Path)] = true
		}
	}

	itemsPerChunk := s.itemsPerChunk()
	var pending []*api.ImageData
	for _, p := range paths {
		if keptPaths[p] {
			continue // already stored in a kept old chunk
		}
		item := s.byPath[p]
		pending = append(pending, item)
		if len(pending) >= itemsPerChunk {
			newChunks = append(newChunks, &chunk{Key: s.allocKey(keptKeys), Items: pending})
			pending = nil
		}
	}
	if len(pending) > 0 {
		newChunks = append(newChunks, &chunk{Key: s.allocKey(keptKeys), Items: pending})
	}

	allChunks := append(append([]*chunk{}, oldChunks...), newChunks...)

	if err := s.writeIndex(allChunks); err != nil {
		return err
	}
	for _, c := range newChunks {
		if err := s.writeChunk(c); err != nil {
			return err
		}
	}

	for _, c := range s.chunks {
		if !containsChunk(allChunks, c.Key) {
			os.Remove(s.chunkPath(c.Key))
		}
	}

	if data, err := os.ReadFile(s.indexPath()); err == nil {
		os.WriteFile(s.backupPath(), data, 0o644)
	}

	s.chunks = allChunks
	s.dirty = false
	return nil
}

func containsChunk(chunks []*chunk, key int16) bool {
	for _, c := range chunks {
		if c.Key == key {
			return true
		}
	}
	return false
}

func (s *Store) allocKey(kept map[int16]bool) int16 {
	for kept[s.nextKey] {
		s.nextKey++
	}
	k := s.nextKey
	kept[k] = true
	s.nextKey++
	return k
}

func (s *Store) itemsPerChunk() int {
	scale := s.ReducedImageSize / api.ReducedImageSizeDefault
	if scale < 1 {
		scale = 1
	}
	n := api.ChunkMaxBytes / (scale * scale)
	if n < 1 {
		n = 1
	}
	return n
}

func (s *Store) writeIndex(chunks []*chunk) error {
	f, err := os.Create(s.indexPath())
	if err != nil {
		return api.WrapError(api.ErrCannotCreate, "creating index.adi", err)
	}
	defer f.Close()

	w, err := binstream.NewWriter(f, api.MagicImageIndex)
	if err != nil {
		return err
	}
	w.WriteUint32(uint32(s.ReducedImageSize))
	w.WriteUint64(uint64(len(chunks)))
	for _, c := range chunks {
		if len(c.Items) == 0 {
			continue
		}
		w.WriteInt16(c.Key)
		w.WritePath(c.Items[0].Path, false)
		w.WritePath(c.Items[len(c.Items)-1].Path, false)
		w.WriteUint64(uint64(len(c.Items)))
	}
	return w.Flush()
}

func (s *Store) writeChunk(c *chunk) error {
	f, err := os.Create(s.chunkPath(c.Key))
	if err != nil {
		return api.WrapError(api.ErrCannotCreate, "creating chunk file", err)
	}
	defer f.Close()

	w, err := binstream.NewWriter(f, api.MagicImageChunk)
	if err != nil {
		return err
	}
	w.WriteUint32(uint32(s.ReducedImageSize))
	w.WriteInt16(c.Key)
	w.WritePath(c.Items[0].Path, false)
	w.WritePath(c.Items[len(c.Items)-1].Path, false)
	w.WriteUint64(uint64(len(c.Items)))
	for _, item := range c.Items {
		writeImageData(w, item)
	}
	return w.Flush()
}

// ClearDatabase loads everything, deletes all chunk files, then reindexes
// from the in-memory state (effectively a full rewrite with no old
// chunks kept).
func (s *Store) ClearDatabase() error {
	if err := s.Load(); err != nil {
		return err
	}
	for _, c := range s.chunks {
		os.Remove(s.chunkPath(c.Key))
	}
	s.chunks = nil
	return s.Save(nil)
}

func normalizePath(p string) string { return strings.ToLower(filepath.Clean(p)) }

func intervalIntersectsAnyRoot(first, last string, roots []string) bool {
	for _, root := range roots {
		r := normalizePath(root)
		if strings.HasPrefix(first, r) || strings.HasPrefix(last, r) {
			return true
		}
		if r >= first && r <= last {
			return true
		}
	}
	return false
}
