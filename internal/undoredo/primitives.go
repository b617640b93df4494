package undoredo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dupimg/dupimg/internal/recycle"
	"github.com/dupimg/dupimg/pkg/api"
)

// Delete recycles info's file, marking it removed. Ignored (not an
// error) if the source no longer exists.
func Delete(info *api.ImageInfo, bin recycle.Bin) ([]*InverseOp, error) {
	if !pathExists(info.Path) {
		return nil, nil
	}
	hidden, err := bin.Recycle(info.Path)
	if err != nil {
		return nil, err
	}
	info.Removed = true
	return []*InverseOp{{Kind: OpRecycle, HiddenPath: hidden, OriginalPath: info.Path}}, nil
}

// Rename atomically moves info's file to newPath (unique-ified on
// collision) and updates info.Path.
func Rename(info *api.ImageInfo, newPath string) ([]*InverseOp, error) {
	if !pathExists(info.Path) {
		return nil, nil
	}
	return renameTo(info, uniquePath(newPath))
}

// RenameWithNewInfo implements the two-image Rename(old_info,
// new_info) primitive: delete new_info's file, then rename old_info's
// file onto new_info's path (unique-ified on any remaining collision).
func RenameWithNewInfo(oldInfo, newInfo *api.ImageInfo, bin recycle.Bin) ([]*InverseOp, error) {
	var ops []*InverseOp

	if pathExists(newInfo.Path) {
		deleteOps, err := Delete(newInfo, bin)
		if err != nil {
			return ops, err
		}
		ops = append(ops, deleteOps...)
	}

	if !pathExists(oldInfo.Path) {
		return ops, nil
	}
	renameOps, err := renameTo(oldInfo, uniquePath(newInfo.Path))
	if err != nil {
		return ops, err
	}
	return append(ops, renameOps...), nil
}

// RenameLike moves oldInfo's file into its own directory under
// newInfo's bare name, keeping oldInfo's extension.
func RenameLike(oldInfo, newInfo *api.ImageInfo) ([]*InverseOp, error) {
	if !pathExists(oldInfo.Path) {
		return nil, nil
	}
	target := filepath.Join(filepath.Dir(oldInfo.Path), bareNameOf(newInfo.Path)+filepath.Ext(oldInfo.Path))
	return renameTo(oldInfo, uniquePath(target))
}

// Move moves oldInfo's file into newInfo's directory, keeping oldInfo's
// own name.
func Move(oldInfo, newInfo *api.ImageInfo) ([]*InverseOp, error) {
	if !pathExists(oldInfo.Path) {
		return nil, nil
	}
	target := filepath.Join(filepath.Dir(newInfo.Path), filepath.Base(oldInfo.Path))
	return renameTo(oldInfo, uniquePath(target))
}

// MoveAndRenameLike combines Move and RenameLike: oldInfo's file lands
// in newInfo's directory under newInfo's bare name with oldInfo's
// extension.
func MoveAndRenameLike(oldInfo, newInfo *api.ImageInfo) ([]*InverseOp, error) {
	if !pathExists(oldInfo.Path) {
		return nil, nil
	}
	target := filepath.Join(filepath.Dir(newInfo.Path), bareNameOf(newInfo.Path)+filepath.Ext(oldInfo.Path))
	return renameTo(oldInfo, uniquePath(target))
}

// MoveGroup applies fn (one of the primitives above, partially applied
// per image) to every image in a group, collecting every inverse op
// produced and the first error encountered. Partial success is
// expected: a later image's failure does not undo earlier successes
// within this call, mirroring spec §4.8's "each is ignored if the
// source no longer exists" per-primitive tolerance.
func MoveGroup(images []*api.ImageInfo, fn func(*api.ImageInfo) ([]*InverseOp, error)) ([]*InverseOp, error) {
	var ops []*InverseOp
	var firstErr error
	for _, info := range images {
		opsForImage, err := fn(info)
		ops = append(ops, opsForImage...)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return ops, firstErr
}

func renameTo(info *api.ImageInfo, target string) ([]*InverseOp, error) {
	oldPath := info.Path
	if err := os.Rename(oldPath, target); err != nil {
		return nil, api.WrapError(api.ErrCannotWrite, "renaming file", err)
	}
	info.Path = target
	return []*InverseOp{{Kind: OpRename, RenameFrom: target, RenameTo: oldPath}}, nil
}

func bareNameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
