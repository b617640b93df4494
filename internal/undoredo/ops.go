// Package undoredo implements the undo/redo engine and filesystem
// primitives of spec §4.8: every user transaction executes one or more
// primitive mutations, recording an inverse operation for each
// successful filesystem call, then stages the resulting Change onto a
// bounded undo deque. Grounded on internal/filesystem/organizer.go's
// move/delete/conflict-resolution idiom, generalized from one-shot file
// operations into reversible ones paired with an inverse record.
package undoredo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dupimg/dupimg/internal/recycle"
	"github.com/dupimg/dupimg/pkg/api"
)

// OpKind discriminates the two filesystem primitives every higher-level
// action is built from.
type OpKind int

const (
	OpRename OpKind = iota
	OpRecycle
)

// InverseOp is one recorded inverse of a successful filesystem
// mutation. Undoing a Rename op renames RenameFrom back to RenameTo;
// undoing a Recycle op restores HiddenPath back to OriginalPath.
// Pointer-shared so Redo can update HiddenPath after a fresh Recycle.
type InverseOp struct {
	Kind OpKind

	RenameFrom string
	RenameTo   string

	HiddenPath   string
	OriginalPath string
}

// applyUndo reverses op: restoring a recycled file, or renaming a
// moved/renamed one back to where it was.
func applyUndo(op *InverseOp, bin recycle.Bin) error {
	switch op.Kind {
	case OpRecycle:
		return bin.Restore(op.HiddenPath, op.OriginalPath)
	case OpRename:
		if err := os.Rename(op.RenameFrom, op.RenameTo); err != nil {
			return api.WrapError(api.ErrCannotWrite, "undo rename", err)
		}
		return nil
	default:
		return api.NewError(api.ErrInvalidActionType, "unknown inverse op kind")
	}
}

// applyRedo re-executes the original forward action op was recorded
// from, mutating op in place when the forward action produces a new
// identifier (a fresh recycle hides under a new hidden name).
func applyRedo(op *InverseOp, bin recycle.Bin) error {
	switch op.Kind {
	case OpRecycle:
		hidden, err := bin.Recycle(op.OriginalPath)
		if err != nil {
			return err
		}
		op.HiddenPath = hidden
		return nil
	case OpRename:
		if err := os.Rename(op.RenameTo, op.RenameFrom); err != nil {
			return api.WrapError(api.ErrCannotWrite, "redo rename", err)
		}
		return nil
	default:
		return api.NewError(api.ErrInvalidActionType, "unknown inverse op kind")
	}
}

// uniquePath returns path unchanged if nothing occupies it, otherwise a
// sibling name with a "_N" counter appended before the extension (and a
// timestamp-based fallback past 999 collisions), grounded on
// internal/filesystem/organizer.go's resolveConflict.
func uniquePath(path string) string {
	if !pathExists(path) {
		return path
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	for i := 1; i < 1000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, i, ext))
		if !pathExists(candidate) {
			return candidate
		}
	}

	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", name, timestamp, ext))
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
