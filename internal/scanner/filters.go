package scanner

import (
	"path/filepath"
	"strings"
)

// Filter decides whether a discovered path belongs in the scan per
// spec §4.1: enabled extension set, size bounds, and the
// hidden/system attribute gates.
type Filter struct {
	extensions    map[string]bool
	minFileSize   int64
	maxFileSize   int64
	includeHidden bool
	includeSystem bool
}

// NewFilter creates a Filter configured for the given extension set
// (case-insensitive, leading dot optional).
func NewFilter(extensions []string) *Filter {
	f := &Filter{extensions: make(map[string]bool, len(extensions))}
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[strings.ToLower(ext)] = true
	}
	return f
}

// SetSizeLimits sets minimum and maximum accepted file size, 0 meaning
// unbounded on that side.
func (f *Filter) SetSizeLimits(minSize, maxSize int64) {
	f.minFileSize = minSize
	f.maxFileSize = maxSize
}

// SetAttributeOptions controls whether hidden/system-flagged files are
// accepted, matching the scanner options of spec §4.1.
func (f *Filter) SetAttributeOptions(includeHidden, includeSystem bool) {
	f.includeHidden = includeHidden
	f.includeSystem = includeSystem
}

// Accept reports whether path with the given size passes every gate.
func (f *Filter) Accept(path string, size int64) bool {
	if !f.hasAllowedExtension(path) {
		return false
	}
	if f.minFileSize > 0 && size < f.minFileSize {
		return false
	}
	if f.maxFileSize > 0 && size > f.maxFileSize {
		return false
	}
	if !f.includeHidden && isHidden(path) {
		return false
	}
	if !f.includeSystem && isSystem(path) {
		return false
	}
	return true
}

func (f *Filter) hasAllowedExtension(path string) bool {
	if len(f.extensions) == 0 {
		return true
	}
	return f.extensions[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the configured allow-list.
func (f *Filter) Extensions() []string {
	out := make([]string, 0, len(f.extensions))
	for ext := range f.extensions {
		out = append(out, ext)
	}
	return out
}

// DefaultImageExtensions mirrors the format set the teacher shipped.
// internal/imagedecode registers decoders only for JPEG, PNG and GIF, so
// .webp, .tiff, .tif and .bmp files pass this filter but do not decode.
var DefaultImageExtensions = []string{
	".jpg", ".jpeg", ".png", ".webp", ".tiff", ".tif", ".bmp", ".gif",
}
