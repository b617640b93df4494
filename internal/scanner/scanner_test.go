package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dupimg/dupimg/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestScanAllTagsFilesWithSearchRootIndex(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeImage(t, filepath.Join(rootA, "a.jpg"))
	writeImage(t, filepath.Join(rootB, "b.png"))

	cfg := scanner.DefaultConfig()
	cfg.Roots = scanner.NewRoots([]string{rootA, rootB}, nil, nil, nil)
	s := scanner.NewScanner(cfg)

	files, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)

	byIndex := map[int]string{}
	for _, f := range files {
		byIndex[f.RootIdx] = f.Path
	}
	assert.Contains(t, byIndex[0], rootA)
	assert.Contains(t, byIndex[1], rootB)
}

func TestScanAllSkipsIgnoredSubtree(t *testing.T) {
	root := t.TempDir()
	ignored := filepath.Join(root, "skip")
	writeImage(t, filepath.Join(root, "keep.jpg"))
	writeImage(t, filepath.Join(ignored, "hidden.jpg"))

	cfg := scanner.DefaultConfig()
	cfg.Roots = scanner.NewRoots([]string{root}, []string{ignored}, nil, nil)
	s := scanner.NewScanner(cfg)

	files, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "keep.jpg"), files[0].Path)
}

func TestScanAllRejectsHiddenFilesByDefault(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, ".hidden.jpg"))
	writeImage(t, filepath.Join(root, "visible.jpg"))

	cfg := scanner.DefaultConfig()
	cfg.Roots = scanner.NewRoots([]string{root}, nil, nil, nil)
	s := scanner.NewScanner(cfg)

	files, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(root, "visible.jpg"), files[0].Path)
}

func TestScanAllRespectsExtensionFilter(t *testing.T) {
	root := t.TempDir()
	writeImage(t, filepath.Join(root, "a.jpg"))
	writeImage(t, filepath.Join(root, "a.txt"))

	cfg := scanner.DefaultConfig()
	cfg.Extensions = []string{".jpg"}
	cfg.Roots = scanner.NewRoots([]string{root}, nil, nil, nil)
	s := scanner.NewScanner(cfg)

	files, err := s.ScanAll(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, ".jpg", filepath.Ext(files[0].Path))
}

func TestIsValidAndIsDeletePath(t *testing.T) {
	root := t.TempDir()
	validDir := filepath.Join(root, "valid")
	deleteDir := filepath.Join(root, "trash")
	require.NoError(t, os.MkdirAll(validDir, 0o755))
	require.NoError(t, os.MkdirAll(deleteDir, 0o755))

	cfg := scanner.DefaultConfig()
	cfg.Roots = scanner.NewRoots([]string{root}, nil, []string{validDir}, []string{deleteDir})
	s := scanner.NewScanner(cfg)

	assert.True(t, s.IsValid(filepath.Join(validDir, "x.jpg")))
	assert.False(t, s.IsValid(filepath.Join(deleteDir, "x.jpg")))
	assert.True(t, s.IsDeletePath(filepath.Join(deleteDir, "x.jpg")))
}
