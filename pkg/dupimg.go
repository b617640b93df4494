// Package dupimg re-exports the commonly used names from pkg/engine and
// pkg/api for library callers that want one import instead of three.
// Grounded on the teacher's pkg/imaged.go convenience-facade idiom,
// generalized from the teacher's EngineConfig/ImageFingerprint re-export
// set onto this engine's Options/Result/ImageGroup shapes.
package dupimg

import (
	"context"

	"github.com/dupimg/dupimg/pkg/api"
	"github.com/dupimg/dupimg/pkg/engine"
)

// Engine construction.
var (
	New            = engine.New
	DefaultOptions = engine.DefaultOptions
)

// Common types.
type (
	Engine       = engine.Engine
	Options      = engine.Options
	Paths        = engine.Paths
	PathKind     = engine.PathKind
	Result       = api.Result
	ImageGroup   = api.ImageGroup
	ImageInfo    = api.ImageInfo
	Statistic    = api.Statistic
	ScanProgress = api.ScanProgress
)

// Path kinds.
const (
	PathSearch = engine.PathSearch
	PathIgnore = engine.PathIgnore
	PathValid  = engine.PathValid
	PathDelete = engine.PathDelete
)

// QuickScan opens an engine with default options rooted at cacheDir,
// searches searchRoot once, and returns its duplicate/defect results.
func QuickScan(ctx context.Context, searchRoot, cacheDir string) ([]*api.Result, *api.Statistic, error) {
	eng, err := engine.New(engine.DefaultOptions(), cacheDir)
	if err != nil {
		return nil, nil, err
	}
	defer eng.Release()

	eng.PathSet(engine.PathSearch, []string{searchRoot})
	if err := eng.Search(ctx); err != nil {
		return nil, nil, err
	}

	results, err := eng.ResultGet(0, 0)
	if err != nil {
		return nil, nil, err
	}
	stat := eng.StatisticGet()
	return results, &stat, nil
}
