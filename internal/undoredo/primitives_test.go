package undoredo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dupimg/dupimg/internal/recycle"
	"github.com/dupimg/dupimg/internal/undoredo"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestDeleteRecyclesAndMarksRemoved(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFile(t, path)

	info := &api.ImageInfo{Path: path}
	bin := recycle.NewHiddenSiblingBin()

	ops, err := undoredo.Delete(info, bin)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.True(t, info.Removed)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDeleteOnMissingFileIsNoOp(t *testing.T) {
	info := &api.ImageInfo{Path: "/does/not/exist.png"}
	ops, err := undoredo.Delete(info, recycle.NewHiddenSiblingBin())
	require.NoError(t, err)
	assert.Nil(t, ops)
}

func TestRenameUpdatesInfoPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeFile(t, path)

	info := &api.ImageInfo{Path: path}
	newPath := filepath.Join(dir, "b.png")

	ops, err := undoredo.Rename(info, newPath)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, newPath, info.Path)
	_, err = os.Stat(newPath)
	assert.NoError(t, err)
}

func TestRenameLikeKeepsOldExtensionAndDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")
	writeFile(t, path)

	oldInfo := &api.ImageInfo{Path: path}
	newInfo := &api.ImageInfo{Path: filepath.Join(t.TempDir(), "target.png")}

	ops, err := undoredo.RenameLike(oldInfo, newInfo)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, dir, filepath.Dir(oldInfo.Path))
	assert.Equal(t, ".jpg", filepath.Ext(oldInfo.Path))
	assert.Equal(t, "target", oldInfo.Path[len(dir)+1:len(oldInfo.Path)-len(".jpg")])
}

func TestMoveKeepsOwnNameInNewDirectory(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	path := filepath.Join(src, "a.jpg")
	writeFile(t, path)

	oldInfo := &api.ImageInfo{Path: path}
	newInfo := &api.ImageInfo{Path: filepath.Join(dst, "unrelated.png")}

	ops, err := undoredo.Move(oldInfo, newInfo)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(dst, "a.jpg"), oldInfo.Path)
}

func TestRenameWithNewInfoDeletesTargetThenRenames(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.png")
	newPath := filepath.Join(dir, "new.png")
	writeFile(t, oldPath)
	writeFile(t, newPath)

	oldInfo := &api.ImageInfo{Path: oldPath}
	newInfo := &api.ImageInfo{Path: newPath}

	ops, err := undoredo.RenameWithNewInfo(oldInfo, newInfo, recycle.NewHiddenSiblingBin())
	require.NoError(t, err)
	require.Len(t, ops, 2, "expect one recycle op and one rename op")
	assert.True(t, newInfo.Removed)
	assert.Equal(t, newPath, oldInfo.Path)
	_, err = os.Stat(newPath)
	assert.NoError(t, err)
}
