package engine_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dupimg/dupimg/pkg/api"
	"github.com/dupimg/dupimg/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSolidPNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newTestEngine(t *testing.T) (*engine.Engine, string) {
	t.Helper()
	searchDir := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")

	opts := engine.DefaultOptions()
	opts.Compare.ThresholdDifference = 5.0

	eng, err := engine.New(opts, cacheDir)
	require.NoError(t, err)
	eng.PathSet(engine.PathSearch, []string{searchDir})
	return eng, searchDir
}

func TestSearchFindsExactDuplicatePair(t *testing.T) {
	eng, dir := newTestEngine(t)
	defer eng.Release()

	writeSolidPNG(t, filepath.Join(dir, "a.png"), color.RGBA{R: 200, G: 50, B: 50, A: 255})
	writeSolidPNG(t, filepath.Join(dir, "b.png"), color.RGBA{R: 200, G: 50, B: 50, A: 255})

	require.NoError(t, eng.Search(context.Background()))

	stat := eng.StatisticGet()
	assert.Equal(t, 2, stat.ScannedFiles)
	assert.Equal(t, 2, stat.CollectedImages)
	assert.Equal(t, 1, stat.DuplicatePairs)

	results, err := eng.ResultGet(0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, api.ResultDuplicatePair, results[0].Kind)
	assert.InDelta(t, 0, results[0].Difference, 0.001)
}

func TestSearchRejectsConcurrentRun(t *testing.T) {
	eng, dir := newTestEngine(t)
	defer eng.Release()
	writeSolidPNG(t, filepath.Join(dir, "a.png"), color.White)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- eng.Search(ctx) }()

	err := eng.Search(context.Background())
	<-done
	if err != nil {
		assert.ErrorIs(t, err, api.ErrEngineBusy)
	}
}

func TestSearchHonorsCancellation(t *testing.T) {
	eng, dir := newTestEngine(t)
	defer eng.Release()
	writeSolidPNG(t, filepath.Join(dir, "a.png"), color.White)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Search(ctx)
	if err != nil {
		assert.Equal(t, api.ErrCancelled, api.CodeOf(err))
	}
}

func TestSaveLoadResultRoundtrips(t *testing.T) {
	eng, dir := newTestEngine(t)
	defer eng.Release()

	writeSolidPNG(t, filepath.Join(dir, "a.png"), color.RGBA{R: 10, G: 10, B: 10, A: 255})
	writeSolidPNG(t, filepath.Join(dir, "b.png"), color.RGBA{R: 10, G: 10, B: 10, A: 255})
	require.NoError(t, eng.Search(context.Background()))

	resultPath := filepath.Join(t.TempDir(), "result.bin")
	require.NoError(t, eng.Save(api.FileResult, resultPath))

	fresh, err := engine.New(engine.DefaultOptions(), filepath.Join(t.TempDir(), "cache2"))
	require.NoError(t, err)
	defer fresh.Release()

	require.NoError(t, fresh.Load(api.FileResult, resultPath))
	results, err := fresh.ResultGet(0, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, api.ResultDuplicatePair, results[0].Kind)
}

func TestResultApplyAllHintsThenUndo(t *testing.T) {
	eng, dir := newTestEngine(t)
	defer eng.Release()

	writeSolidPNG(t, filepath.Join(dir, "a.png"), color.RGBA{R: 30, G: 30, B: 30, A: 255})
	writeSolidPNG(t, filepath.Join(dir, "b.png"), color.RGBA{R: 30, G: 30, B: 30, A: 255})
	require.NoError(t, eng.Search(context.Background()))
	require.True(t, eng.CanApply(api.TargetResult))

	require.NoError(t, eng.ResultApply(api.GlobalActionApplyAllHints))

	aExists, bExists := fileExists(filepath.Join(dir, "a.png")), fileExists(filepath.Join(dir, "b.png"))
	assert.NotEqual(t, aExists, bExists, "exactly one side of the duplicate pair should have been deleted")

	require.NoError(t, eng.Undo())
	assert.True(t, fileExists(filepath.Join(dir, "a.png")))
	assert.True(t, fileExists(filepath.Join(dir, "b.png")))

	require.NoError(t, eng.Redo())
	aExists, bExists = fileExists(filepath.Join(dir, "a.png")), fileExists(filepath.Join(dir, "b.png"))
	assert.NotEqual(t, aExists, bExists)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
