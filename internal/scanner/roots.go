package scanner

import (
	"path/filepath"
	"strings"
)

// Roots holds the four named root sets spec §4.1 scans against: Search
// roots are walked; Ignore roots are skipped outright; Valid and
// Delete roots don't affect discovery but mark a discovered path (a
// file "in" the valid set is presumed already reviewed, a file "in" the
// delete set is a standing candidate for the hint engine's delete
// hints).
type Roots struct {
	Search []string
	Ignore []string
	Valid  []string
	Delete []string
}

// NewRoots cleans and absolutizes every path in each set so later
// prefix comparisons are reliable regardless of how the caller spelled
// them.
func NewRoots(search, ignore, valid, deletePaths []string) Roots {
	return Roots{
		Search: cleanAll(search),
		Ignore: cleanAll(ignore),
		Valid:  cleanAll(valid),
		Delete: cleanAll(deletePaths),
	}
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, filepath.Clean(abs))
		} else {
			out = append(out, filepath.Clean(p))
		}
	}
	return out
}

// underAny reports whether path is equal to or nested under any root
// in roots (prefix match on full path segments, so "/a/bc" never
// matches root "/a/b").
func underAny(roots []string, path string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// IsIgnored reports whether path falls under any configured ignore root.
func (r Roots) IsIgnored(path string) bool { return underAny(r.Ignore, path) }

// IsValid reports whether path falls under any configured valid root.
func (r Roots) IsValid(path string) bool { return underAny(r.Valid, path) }

// IsDeletePath reports whether path falls under any configured delete root.
func (r Roots) IsDeletePath(path string) bool { return underAny(r.Delete, path) }

// SearchRootIndex returns the ordinal of the search root path falls
// under, and false if it falls under none. When a path is nested under
// more than one search root (overlapping roots), the first match in
// configuration order wins.
func (r Roots) SearchRootIndex(path string) (int, bool) {
	for i, root := range r.Search {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return i, true
		}
	}
	return 0, false
}
