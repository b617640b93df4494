// Package recycle implements the RecycleBin trait of spec §4.8: moving a
// deleted file aside as a hidden sibling so undo can restore it, or
// deleting it outright when the undo queue is disabled. Grounded on
// internal/filesystem/organizer.go's DeleteFile/resolveConflict idiom and
// safe_operations.go's verify-then-act shape, generalized from
// "backup to a directory" into "hide next to the original, restorable by
// name".
package recycle

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/dupimg/dupimg/pkg/api"
)

// Bin is the RecycleBin trait: Recycle hides or deletes a file and
// reports how to undo the operation; Restore reverses a prior Recycle;
// Purge permanently discards a previously recycled file.
type Bin interface {
	Recycle(path string) (hiddenPath string, err error)
	Restore(hiddenPath, originalPath string) error
	Purge(hiddenPath string) error
}

// HiddenSiblingBin implements the default scheme: the file is renamed
// to "~~adt<hex8>~~<name>" next to itself, marked hidden where the
// platform supports it, and left in place until Purge or Restore.
type HiddenSiblingBin struct{}

// NewHiddenSiblingBin returns the default RecycleBin.
func NewHiddenSiblingBin() *HiddenSiblingBin { return &HiddenSiblingBin{} }

// Recycle moves path to a uniquely named hidden sibling in the same
// directory and returns that path.
func (HiddenSiblingBin) Recycle(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", api.NewError(api.ErrFileNotExist, "recycle source does not exist")
		}
		return "", api.WrapError(api.ErrCannotOpen, "stat recycle source", err)
	}

	dir := filepath.Dir(path)
	name := filepath.Base(path)

	for attempt := 0; attempt < 1000; attempt++ {
		hiddenPath := filepath.Join(dir, api.RecycleHiddenPrefix+randomHex8()+api.RecycleHiddenSuffix+name)
		if _, err := os.Stat(hiddenPath); err == nil {
			continue
		}
		if err := os.Rename(path, hiddenPath); err != nil {
			return "", api.WrapError(api.ErrCannotWrite, "moving file to hidden sibling", err)
		}
		hideFile(hiddenPath)
		return hiddenPath, nil
	}
	return "", api.NewError(api.ErrCannotCreate, "could not allocate a unique hidden sibling name")
}

// Restore moves hiddenPath back to originalPath.
func (HiddenSiblingBin) Restore(hiddenPath, originalPath string) error {
	if err := os.Rename(hiddenPath, originalPath); err != nil {
		return api.WrapError(api.ErrCannotWrite, "restoring recycled file", err)
	}
	return nil
}

// Purge permanently deletes a previously recycled file.
func (HiddenSiblingBin) Purge(hiddenPath string) error {
	if err := os.Remove(hiddenPath); err != nil && !os.IsNotExist(err) {
		return api.WrapError(api.ErrCannotWrite, "purging recycled file", err)
	}
	return nil
}

// DirectDeleteBin deletes files immediately with no restore path and
// no OS trash integration. pkg/engine does not select it: engine.New
// always uses HiddenSiblingBin and treats an undo queue size of zero
// as api.DefaultUndoQueueSize.
type DirectDeleteBin struct{}

// NewDirectDeleteBin returns a Bin that deletes immediately.
func NewDirectDeleteBin() *DirectDeleteBin { return &DirectDeleteBin{} }

func (DirectDeleteBin) Recycle(path string) (string, error) {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return "", api.NewError(api.ErrFileNotExist, "delete source does not exist")
		}
		return "", api.WrapError(api.ErrCannotWrite, "deleting file", err)
	}
	return "", nil
}

func (DirectDeleteBin) Restore(string, string) error {
	return api.NewError(api.ErrZeroTarget, "direct-delete bin keeps no restorable copy")
}

func (DirectDeleteBin) Purge(string) error { return nil }

func randomHex8() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf[:])
}
