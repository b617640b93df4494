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

func TestEngineCommitRejectsEmptyChange(t *testing.T) {
	e := undoredo.NewEngine(recycle.NewHiddenSiblingBin(), 4)
	err := e.Commit(nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, api.ErrZeroTarget, api.CodeOf(err))
}

func TestEngineUndoRestoresDeletedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	bin := recycle.NewHiddenSiblingBin()
	e := undoredo.NewEngine(bin, 4)
	info := &api.ImageInfo{Path: path}

	ops, err := undoredo.Delete(info, bin)
	require.NoError(t, err)
	require.NoError(t, e.Commit(ops, nil, nil))

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	_, err = e.Undo()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err, "undo should have restored the recycled file")

	assert.True(t, e.CanRedo())
	assert.False(t, e.CanUndo())
}

func TestEngineRedoReappliesForwardAction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	bin := recycle.NewHiddenSiblingBin()
	e := undoredo.NewEngine(bin, 4)
	info := &api.ImageInfo{Path: path}

	ops, err := undoredo.Delete(info, bin)
	require.NoError(t, err)
	require.NoError(t, e.Commit(ops, nil, nil))
	_, err = e.Undo()
	require.NoError(t, err)

	_, err = e.Redo()
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "redo should have re-deleted the file")
	assert.True(t, e.CanUndo())
}

func TestEngineRetiresOldestStageBeyondMaxSize(t *testing.T) {
	dir := t.TempDir()
	bin := recycle.NewHiddenSiblingBin()
	e := undoredo.NewEngine(bin, 1)

	for i := 0; i < 2; i++ {
		path := filepath.Join(dir, string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		info := &api.ImageInfo{Path: path}
		ops, err := undoredo.Delete(info, bin)
		require.NoError(t, err)
		require.NoError(t, e.Commit(ops, nil, nil))
	}

	// Only the most recent stage should remain undoable.
	_, err := e.Undo()
	require.NoError(t, err)
	assert.False(t, e.CanUndo())
}
