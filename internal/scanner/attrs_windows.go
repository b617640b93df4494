//go:build windows

package scanner

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// isHidden and isSystem read the Win32 FILE_ATTRIBUTE_HIDDEN and
// FILE_ATTRIBUTE_SYSTEM bits, mirroring internal/recycle's
// attrs_windows.go attribute read/write pair for the recycle bin's
// hide step.
func isHidden(path string) bool {
	return hasAttr(path, syscall.FILE_ATTRIBUTE_HIDDEN)
}

func isSystem(path string) bool {
	return hasAttr(path, syscall.FILE_ATTRIBUTE_SYSTEM)
}

func hasAttr(path string, bit uint32) bool {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&bit != 0
}
