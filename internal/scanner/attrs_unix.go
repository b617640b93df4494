//go:build !windows

package scanner

import (
	"path/filepath"
	"strings"
)

// isHidden reports the Unix convention: a dot-prefixed base name.
// There is no Unix "system" attribute, so isSystem is always false;
// system-flagged files are a Windows-only concept spec §4.1 inherited
// from the original engine's host platform.
func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

func isSystem(path string) bool {
	return false
}
