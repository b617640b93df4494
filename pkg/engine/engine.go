// Package engine implements the top-level functional API of spec §6:
// create/search/stop/load/save/options/path/result/group/rename/undo/
// redo/status/statistic, wiring internal/scanner, internal/fingerprint,
// internal/comparator, internal/cache, internal/resultstore,
// internal/mistakestore, internal/undoredo and internal/threadmgr into
// one pipeline. Grounded on the teacher's pkg/engine/engine.go (logger
// setup, EngineConfig shape, ScanFolder data flow) and processor.go
// (concurrent batch processing, now superseded by internal/threadmgr).
package engine

import (
	"bytes"
	"context"
	"encoding/gob"
	"os"
	"sync"
	"time"

	"github.com/dupimg/dupimg/internal/cache"
	"github.com/dupimg/dupimg/internal/comparator"
	"github.com/dupimg/dupimg/internal/fingerprint"
	"github.com/dupimg/dupimg/internal/imagedecode"
	"github.com/dupimg/dupimg/internal/imaging"
	"github.com/dupimg/dupimg/internal/mistakestore"
	"github.com/dupimg/dupimg/internal/recycle"
	"github.com/dupimg/dupimg/internal/resultstore"
	"github.com/dupimg/dupimg/internal/scanner"
	"github.com/dupimg/dupimg/internal/threadmgr"
	"github.com/dupimg/dupimg/internal/undoredo"
	"github.com/dupimg/dupimg/internal/utils"
	"github.com/dupimg/dupimg/pkg/api"
)

// Engine is the central coordinator create() hands back to a caller.
// One Engine serves one user collection: its cache, result store,
// mistake store and undo/redo deque all live under CacheDir.
type Engine struct {
	mu sync.Mutex

	opts  Options
	paths Paths

	logger *utils.Logger

	cacheDir string
	cache    *cache.Store
	mistakes *mistakestore.Store
	results  *resultstore.Store
	undo     *undoredo.Engine
	bin      recycle.Bin

	selectedImages map[string]bool
	selectedGroups map[int]bool

	cancel  context.CancelFunc
	running bool

	stat      api.Statistic
	startTime time.Time
}

// New implements create(): it opens (without yet loading any persisted
// state) the cache, mistake store and undo engine rooted at cacheDir.
func New(opts Options, cacheDir string) (*Engine, error) {
	if opts.Advanced.ReducedImageSize <= 0 {
		opts.Advanced.ReducedImageSize = api.ReducedImageSizeDefault
	}
	if opts.Advanced.UndoQueueSize <= 0 {
		opts.Advanced.UndoQueueSize = api.DefaultUndoQueueSize
	}

	logger, err := utils.NewLogger(utils.GetDefaultConfig())
	if err != nil {
		return nil, api.WrapError(api.ErrCannotCreate, "create logger", err)
	}

	bin := recycle.NewHiddenSiblingBin()
	mistakes := mistakestore.NewStore()

	e := &Engine{
		opts:           opts,
		cacheDir:       cacheDir,
		cache:          cache.NewStore(cacheDir, opts.Advanced.ReducedImageSize),
		mistakes:       mistakes,
		logger:         logger,
		bin:            bin,
		selectedImages: make(map[string]bool),
		selectedGroups: make(map[int]bool),
	}
	e.undo = undoredo.NewEngine(bin, opts.Advanced.UndoQueueSize)
	e.results = resultstore.NewStore(resultstore.Options{
		Mistakes:            mistakes,
		IsDeletePath:        e.isDeletePath,
		ThresholdDifference: opts.Compare.ThresholdDifference,
	})
	return e, nil
}

func (e *Engine) isDeletePath(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, root := range e.paths.Delete {
		if len(path) >= len(root) && path[:len(root)] == root {
			return true
		}
	}
	return false
}

func (p Paths) isValid(path string) bool {
	for _, root := range p.Valid {
		if len(path) >= len(root) && path[:len(root)] == root {
			return true
		}
	}
	return false
}

// Release drops in-memory state. It does not persist anything; callers
// that want state kept across runs must Save first.
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = cache.NewStore(e.cacheDir, e.opts.Advanced.ReducedImageSize)
	e.results.Clear()
}

// OptionsGet returns the engine's current full option set; spec's
// kind-scoped options_get/set is expressed as field access on the
// returned struct, which Go's type system already scopes by kind.
func (e *Engine) OptionsGet() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

// OptionsSet replaces the engine's option set. It takes effect on the
// next Search; a run already in progress keeps its original options.
func (e *Engine) OptionsSet(opts Options) {
	e.mu.Lock()
	e.opts = opts
	e.mu.Unlock()
	e.results.SetThresholdDifference(opts.Compare.ThresholdDifference)
}

// PathGet returns the root set named by kind.
func (e *Engine) PathGet(kind PathKind) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paths.Get(kind)
}

// PathSet replaces the root set named by kind.
func (e *Engine) PathSet(kind PathKind, paths []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths.Set(kind, paths)
}

// Search implements search(): one full pipeline run over the
// configured search roots. Returns ErrEngineBusy if a run is already in
// progress.
func (e *Engine) Search(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return api.ErrEngineBusy
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true
	opts := e.opts
	paths := e.paths
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		e.cancel = nil
		e.mu.Unlock()
	}()

	e.startTime = time.Now()

	if err := e.logger.LogOperation("search", func() error {
		return e.runSearch(runCtx, opts, paths)
	}); err != nil {
		return err
	}

	stat := e.StatisticGet()
	e.logger.LogPerformance("search", int64(stat.Elapsed), stat.CollectedImages)
	return nil
}

func (e *Engine) runSearch(runCtx context.Context, opts Options, paths Paths) error {
	files, err := e.scan(runCtx, opts, paths)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.stat.ScannedFiles = len(files)
	e.mu.Unlock()

	if err := e.cache.Load(); err != nil {
		e.logger.WithError(err).Warn("cache load failed, starting fresh")
	}

	strategy := comparator.New(comparator.Options{
		ThresholdDifference:    opts.Compare.ThresholdDifference,
		TypeControl:            opts.Compare.TypeControl,
		SizeControl:            opts.Compare.SizeControl,
		RatioControl:           opts.Compare.RatioControl,
		CompareInsideOneFolder: opts.Compare.CompareInsideOneFolder,
		TransformedImage:       opts.Compare.TransformedImage,
		IgnoreFrameWidth:       opts.Compare.IgnoreFrameWidth,
		ReducedImageSize:       opts.Advanced.ReducedImageSize,
		UseSSIM:                opts.Compare.UseSSIM,
	}, len(files))

	collector := fingerprint.New(fingerprint.Options{
		ReducedImageSize: opts.Advanced.ReducedImageSize,
		NeedPixelData:    true,
		CheckDefects:     opts.Defect.CheckDefects,
		BlockinessMax:    opts.Defect.BlockinessMax,
		BlurringMax:      opts.Defect.BlurringMax,
		DefectMinSize:    opts.Defect.DefectMinSize,
		DefectMaxSize:    opts.Defect.DefectMaxSize,
		ReadEXIF:         true,
	})

	comparatorWorkers := opts.Advanced.ComparatorWorkers
	if comparatorWorkers <= 0 {
		comparatorWorkers = threadmgr.ComparatorWorkerCount(len(files), opts.Advanced.LargeCollection, opts.Compare.TransformedImage)
	}
	collectorWorkers := opts.Advanced.CollectorWorkers
	if collectorWorkers <= 0 {
		collectorWorkers = threadmgr.CollectorWorkerCount()
	}

	var comparedPairs, duplicatePairs, defectiveImages int
	var statMu sync.Mutex

	manager := threadmgr.NewManager(collectorWorkers, comparatorWorkers,
		func(d *api.ImageData) {
			collector.Fill(d)
			e.cache.Put(d)
			statMu.Lock()
			e.stat.CollectedImages++
			if d.Defect != api.DefectNone {
				if e.results.AddDefect(d, d.Defect) {
					defectiveImages++
				}
			}
			statMu.Unlock()
		},
		func(d *api.ImageData, verdict threadmgr.Verdict) {
			matches := strategy.Accept(d, verdict == threadmgr.DoOwn)
			if len(matches) == 0 {
				return
			}
			statMu.Lock()
			comparedPairs += len(matches)
			for _, m := range matches {
				if e.results.AddDuplicatePair(m.Original, m.Other, m.Difference, m.Transform) {
					duplicatePairs++
				}
			}
			statMu.Unlock()
		},
	)
	manager.Start()

	for i := range files {
		select {
		case <-runCtx.Done():
			manager.Stop()
			manager.Close()
			return api.NewError(api.ErrCancelled, "search cancelled")
		default:
		}
		fi := files[i]
		data := e.cache.Lookup(fi)
		if data == nil {
			data = api.NewImageData(fi)
		}
		data.Valid = paths.isValid(data.Path)
		manager.Collector.Dispatch(data)
	}
	manager.Close()

	e.mu.Lock()
	e.stat.ComparedPairs = comparedPairs
	e.stat.DuplicatePairs = duplicatePairs
	e.stat.DefectiveImages = defectiveImages
	e.stat.Elapsed = time.Since(e.startTime)
	e.mu.Unlock()

	return nil
}

func (e *Engine) scan(ctx context.Context, opts Options, paths Paths) ([]api.FileInfo, error) {
	cfg := scanner.Config{
		Roots:          scanner.NewRoots(paths.Search, paths.Ignore, paths.Valid, paths.Delete),
		Extensions:     opts.Search.Extensions,
		MinFileSize:    opts.Search.MinFileSize,
		MaxFileSize:    opts.Search.MaxFileSize,
		IncludeHidden:  opts.Search.IncludeHidden,
		IncludeSystem:  opts.Search.IncludeSystem,
		FollowSymlinks: opts.Search.FollowSymlinks,
		NumWorkers:     threadmgr.CollectorWorkerCount(),
	}
	s := scanner.NewScanner(cfg)
	return s.ScanAll(ctx)
}

// Stop implements stop(): cooperatively cancels the current Search, if
// any is in progress.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// StatisticGet implements statistic_get().
func (e *Engine) StatisticGet() api.Statistic {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stat
}

// ResultGet implements result_get(start, count).
func (e *Engine) ResultGet(start, count int) ([]*api.Result, error) {
	if start < 0 {
		return nil, api.NewError(api.ErrInvalidStartPosition, "start must be >= 0")
	}
	all := e.results.Results()
	if start >= len(all) {
		return nil, nil
	}
	end := start + count
	if count <= 0 || end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// ResultSort implements result_sort(kind, increasing).
func (e *Engine) ResultSort(kind api.SortKind, increasing bool) {
	less := sortLess(kind)
	if increasing {
		e.results.SortResults(less)
		return
	}
	e.results.SortResults(func(a, b *api.Result) bool { return less(b, a) })
}

func sortLess(kind api.SortKind) func(a, b *api.Result) bool {
	switch kind {
	case api.SortByDifference:
		return func(a, b *api.Result) bool { return a.Difference < b.Difference }
	case api.SortBySize:
		return func(a, b *api.Result) bool { return resultSize(a) < resultSize(b) }
	case api.SortByPath:
		return func(a, b *api.Result) bool { return resultPath(a) < resultPath(b) }
	default:
		return func(a, b *api.Result) bool { return a.Group < b.Group }
	}
}

func resultSize(r *api.Result) int64 {
	if r.Kind == api.ResultDefect {
		return r.DefectImage.Size
	}
	return r.First.Size + r.Second.Size
}

func resultPath(r *api.Result) string {
	if r.Kind == api.ResultDefect {
		return r.DefectImage.Path
	}
	return r.First.Path
}

// GroupGet implements group_get.
func (e *Engine) GroupGet() []*api.ImageGroup {
	return e.results.Groups()
}

// ImageInfoGet implements image_info_get(path): it looks the path up
// across every current group, since the result store interns one
// ImageInfo per path shared across all the results it appears in.
func (e *Engine) ImageInfoGet(path string) (*api.ImageInfo, error) {
	for _, g := range e.results.Groups() {
		for _, img := range g.Images {
			if img.Path == path {
				return img, nil
			}
		}
	}
	return nil, api.NewError(api.ErrInvalidIndex, "no image info for path")
}

// ImageInfoSelectionSet implements image_info_selection_set.
func (e *Engine) ImageInfoSelectionSet(kind api.SelectionKind, id string, groupID int, selected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if kind == api.SelectionGroup {
		e.selectedGroups[groupID] = selected
		return
	}
	e.selectedImages[id] = selected
}

// ImageInfoSelectionGet implements image_info_selection_get.
func (e *Engine) ImageInfoSelectionGet(kind api.SelectionKind, id string, groupID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if kind == api.SelectionGroup {
		return e.selectedGroups[groupID]
	}
	return e.selectedImages[id]
}

// CanApply implements can_apply(target_kind): whether a result/group
// list is non-empty.
func (e *Engine) CanApply(kind api.TargetKind) bool {
	switch kind {
	case api.TargetGroup:
		return len(e.results.Groups()) > 0
	default:
		return len(e.results.Results()) > 0
	}
}

// ResultApplyTo implements result_apply_to(target, action): one
// mutating action against a single result, staged onto the undo
// engine as a transaction.
func (e *Engine) ResultApplyTo(index int, action api.ActionKind) error {
	all := e.results.Results()
	if index < 0 || index >= len(all) {
		return api.NewError(api.ErrInvalidIndex, "result index out of range")
	}
	r := all[index]

	var ops []*undoredo.InverseOp
	var err error

	switch action {
	case api.ActionDeleteFirst:
		if r.Kind != api.ResultDuplicatePair {
			return api.NewError(api.ErrInvalidParameterCombination, "delete_first requires a duplicate-pair result")
		}
		ops, err = undoredo.Delete(r.First, e.bin)
	case api.ActionDeleteSecond:
		if r.Kind != api.ResultDuplicatePair {
			return api.NewError(api.ErrInvalidParameterCombination, "delete_second requires a duplicate-pair result")
		}
		ops, err = undoredo.Delete(r.Second, e.bin)
	case api.ActionDeleteDefective:
		if r.Kind != api.ResultDefect {
			return api.NewError(api.ErrInvalidParameterCombination, "delete_defective requires a defect result")
		}
		ops, err = undoredo.Delete(r.DefectImage, e.bin)
	case api.ActionMarkMistake:
		if r.Kind == api.ResultDuplicatePair {
			e.mistakes.AddPair(r.First, r.Second)
		} else {
			e.mistakes.AddSingle(r.DefectImage)
		}
		return nil
	case api.ActionAcceptResult:
		r.Hint = api.HintNone
		return nil
	default:
		return api.NewError(api.ErrInvalidActionType, "unknown action kind")
	}
	if err != nil {
		return err
	}
	return e.undo.Commit(ops, e.results.Results(), e.results.Groups())
}

// ResultApply implements result_apply(global_action): an action across
// every eligible result.
func (e *Engine) ResultApply(action api.GlobalActionKind) error {
	switch action {
	case api.GlobalActionApplyAllHints:
		var ops []*undoredo.InverseOp
		for _, r := range e.results.Results() {
			switch r.Hint {
			case api.HintDeleteFirst:
				if o, err := undoredo.Delete(r.First, e.bin); err == nil {
					ops = append(ops, o...)
				}
			case api.HintDeleteSecond:
				if o, err := undoredo.Delete(r.Second, e.bin); err == nil {
					ops = append(ops, o...)
				}
			case api.HintDeleteDefective:
				if o, err := undoredo.Delete(r.DefectImage, e.bin); err == nil {
					ops = append(ops, o...)
				}
			}
		}
		return e.undo.Commit(ops, e.results.Results(), e.results.Groups())
	case api.GlobalActionClearAll:
		e.results.Clear()
		return nil
	default:
		return api.NewError(api.ErrInvalidGlobalActionType, "unknown global action kind")
	}
}

// RenameCurrent implements the rename_current/image_info_rename/
// move_current_group/rename_current_group_as family (spec §6), unified
// behind RenamingKind since all four reduce to an undoredo primitive
// staged as one transaction.
func (e *Engine) RenameCurrent(kind api.RenamingKind, info *api.ImageInfo, newPath string) error {
	var ops []*undoredo.InverseOp
	var err error

	switch kind {
	case api.RenameCurrentSide, api.RenameImageInfo:
		ops, err = undoredo.Rename(info, newPath)
	case api.MoveCurrentGroup:
		newInfo := *info
		newInfo.Path = newPath
		ops, err = undoredo.Move(info, &newInfo)
	case api.RenameCurrentGroupAs:
		newInfo := *info
		newInfo.Path = newPath
		ops, err = undoredo.RenameLike(info, &newInfo)
	default:
		return api.NewError(api.ErrInvalidRenamingType, "unknown renaming kind")
	}
	if err != nil {
		return err
	}
	return e.undo.Commit(ops, e.results.Results(), e.results.Groups())
}

// Undo implements undo(): plays back the most recent transaction's
// inverse operations and restores the result store to that point's
// snapshot.
func (e *Engine) Undo() error {
	stage, err := e.undo.Undo()
	if err != nil {
		return err
	}
	e.results.Restore(stage.Results)
	return nil
}

// Redo implements redo(): re-applies a previously undone transaction.
func (e *Engine) Redo() error {
	stage, err := e.undo.Redo()
	if err != nil {
		return err
	}
	e.results.Restore(stage.Results)
	return nil
}

// LoadBitmap implements load_bitmap(path): decodes the image at path
// and returns a size-capped, format-encoded color preview for a
// caller's preview pane.
func (e *Engine) LoadBitmap(path string) (api.ImageType, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return api.ImageTypeNone, nil, api.WrapError(api.ErrCannotOpen, "load bitmap", err)
	}
	img, kind, err := imagedecode.Decode(raw)
	if err != nil {
		return api.ImageTypeNone, nil, api.WrapError(api.ErrInvalidFileFormat, "decode bitmap", err)
	}
	encoded, err := imaging.Encode(imaging.Preview(img), kind)
	if err != nil {
		return api.ImageTypeNone, nil, api.WrapError(api.ErrCannotRead, "encode preview", err)
	}
	return kind, encoded, nil
}

// Save implements save(kind, path, check): persist one of the four
// named state kinds to path. FileImageDB ignores path and is written to
// the engine's cache directory.
func (e *Engine) Save(kind api.FileKind, path string) error {
	switch kind {
	case api.FileOptions:
		return utils.NewConfigManager(path).SaveConfig(e.opts)
	case api.FileMistakeDB:
		return e.mistakes.Save(path)
	case api.FileImageDB:
		return e.cache.Save(e.paths.Search)
	case api.FileResult:
		return saveResults(path, e.results.Results())
	default:
		return api.NewError(api.ErrInvalidFileType, "unknown file kind")
	}
}

// Load implements load(kind, path, check): restore one of the four
// named state kinds from path. FileImageDB ignores path and is read
// from the engine's cache directory.
func (e *Engine) Load(kind api.FileKind, path string) error {
	switch kind {
	case api.FileOptions:
		var opts Options
		if err := utils.NewConfigManager(path).LoadConfig(&opts); err != nil {
			return err
		}
		e.OptionsSet(opts)
		return nil
	case api.FileMistakeDB:
		return e.mistakes.Load(path)
	case api.FileImageDB:
		return e.cache.Load()
	case api.FileResult:
		results, err := loadResults(path)
		if err != nil {
			return err
		}
		e.results.Restore(results)
		return nil
	default:
		return api.NewError(api.ErrInvalidFileType, "unknown file kind")
	}
}

// saveResults and loadResults give FileResult a persistence format
// through encoding/gob, which needs no schema. gob flattens pointers, so
// results that shared one interned ImageInfo before saving load back
// with separate ImageInfo copies.
func saveResults(path string, results []*api.Result) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(results); err != nil {
		return api.WrapError(api.ErrCannotWrite, "encode results", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return api.WrapError(api.ErrCannotWrite, "write results", err)
	}
	return nil
}

func loadResults(path string) ([]*api.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, api.WrapError(api.ErrCannotRead, "read results", err)
	}
	var results []*api.Result
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&results); err != nil {
		return nil, api.WrapError(api.ErrInvalidFileFormat, "decode results", err)
	}
	return results, nil
}
