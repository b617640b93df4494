package resultstore

import "github.com/dupimg/dupimg/pkg/api"

// intern returns the shared *api.ImageInfo for d's path, creating and
// caching one from d's fields on first sight. Caller must hold s.mu.
func (s *Store) intern(d *api.ImageData) *api.ImageInfo {
	if info, ok := s.images[d.Path]; ok {
		return info
	}
	info := &api.ImageInfo{
		Path:       d.Path,
		Size:       d.Size,
		Time:       d.Time,
		Type:       d.ImageType,
		Width:      d.Width,
		Height:     d.Height,
		Blockiness: d.Blockiness,
		Blurring:   d.Blurring,
		DeletePath: s.isDeletePath(d.Path),
	}
	s.images[d.Path] = info
	return info
}

// relabel renames an interned ImageInfo's path, used by undo/redo
// primitives after a filesystem rename. The caller is responsible for
// keeping the mistake store's own entries in sync.
func (s *Store) relabel(oldPath, newPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.images[oldPath]
	if !ok {
		return
	}
	delete(s.images, oldPath)
	info.Path = newPath
	s.images[newPath] = info
}
