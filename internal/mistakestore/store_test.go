package mistakestore_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dupimg/dupimg/internal/mistakestore"
	"github.com/dupimg/dupimg/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func info(path string) *api.ImageInfo {
	return &api.ImageInfo{Path: path, Size: 10, Time: time.Unix(0, 0).UTC()}
}

func TestAddSingleAndHasSingle(t *testing.T) {
	s := mistakestore.NewStore()
	s.AddSingle(info("/a.png"))

	assert.True(t, s.HasSingle("/a.png"))
	assert.False(t, s.HasSingle("/b.png"))
}

func TestAddPairCanonicalizesOrder(t *testing.T) {
	s := mistakestore.NewStore()
	s.AddPair(info("/b.png"), info("/a.png"))

	assert.True(t, s.HasPair("/a.png", "/b.png"))
	assert.True(t, s.HasPair("/b.png", "/a.png"))
	assert.False(t, s.HasPair("/a.png", "/c.png"))
}

func TestRelabelPreservesSortOrder(t *testing.T) {
	s := mistakestore.NewStore()
	s.AddSingle(info("/a.png"))
	s.AddSingle(info("/old.png"))
	s.AddPair(info("/old.png"), info("/z.png"))

	s.Relabel("/old.png", "/new.png")

	assert.False(t, s.HasSingle("/old.png"))
	assert.True(t, s.HasSingle("/new.png"))
	assert.True(t, s.HasPair("/new.png", "/z.png"))
	assert.False(t, s.HasPair("/old.png", "/z.png"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := mistakestore.NewStore()
	s.AddSingle(info("/a.png"))
	s.AddPair(info("/c.png"), info("/b.png"))

	path := filepath.Join(t.TempDir(), "mistakes.adm")
	require.NoError(t, s.Save(path))

	loaded := mistakestore.NewStore()
	require.NoError(t, loaded.Load(path))

	assert.True(t, loaded.HasSingle("/a.png"))
	assert.True(t, loaded.HasPair("/b.png", "/c.png"))
}
