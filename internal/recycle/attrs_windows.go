//go:build windows

package recycle

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// hideFile sets FILE_ATTRIBUTE_HIDDEN on the recycled sibling, matching
// spec §4.8's "hide" step of the Delete primitive.
func hideFile(path string) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return
	}
	attrs, err := windows.GetFileAttributes(pathPtr)
	if err != nil {
		return
	}
	_ = windows.SetFileAttributes(pathPtr, attrs|syscall.FILE_ATTRIBUTE_HIDDEN)
}
