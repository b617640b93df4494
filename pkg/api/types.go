// Package api defines the data model shared across the detection engine:
// file records, fingerprints, comparison results, groups and the error
// taxonomy used to report failures across the functional API surface.
package api

import (
	"math"
	"time"
)

// ImageType enumerates the formats the collector recognizes. None means a
// file that could not be decoded; Undefined is the zero value before any
// decode attempt has been made.
type ImageType int

const (
	ImageTypeUndefined ImageType = iota
	ImageTypeNone
	ImageTypeJPEG
	ImageTypePNG
	ImageTypeGIF
	ImageTypeBMP
	ImageTypeTIFF
	ImageTypeWEBP
	ImageTypeJP2
)

func (t ImageType) String() string {
	switch t {
	case ImageTypeNone:
		return "none"
	case ImageTypeJPEG:
		return "jpeg"
	case ImageTypePNG:
		return "png"
	case ImageTypeGIF:
		return "gif"
	case ImageTypeBMP:
		return "bmp"
	case ImageTypeTIFF:
		return "tiff"
	case ImageTypeWEBP:
		return "webp"
	case ImageTypeJP2:
		return "jp2"
	default:
		return "undefined"
	}
}

// IsJPEGFamily reports whether the type is subject to the JPEG end-marker
// defect check (JPEG and JPEG2000 payloads).
func (t ImageType) IsJPEGFamily() bool {
	return t == ImageTypeJPEG || t == ImageTypeJP2
}

// DefectKind enumerates the technical defects the collector can flag.
type DefectKind int

const (
	DefectNone DefectKind = iota
	DefectUnknown
	DefectJpegEndMarkerAbsent
	DefectBlockiness
	DefectBlurring
	DefectBlank
)

func (d DefectKind) String() string {
	switch d {
	case DefectUnknown:
		return "unknown"
	case DefectJpegEndMarkerAbsent:
		return "jpeg_end_marker_absent"
	case DefectBlockiness:
		return "blockiness"
	case DefectBlurring:
		return "blurring"
	case DefectBlank:
		return "blank"
	default:
		return "none"
	}
}

// Transform enumerates the eight symmetries a comparator checks a pair
// against: four rotations, crossed with an optional mirror.
type Transform int

const (
	Turn0 Transform = iota
	Turn90
	Turn180
	Turn270
	MirrorTurn0
	MirrorTurn90
	MirrorTurn180
	MirrorTurn270
)

// AllTransforms lists every symmetry including the identity.
func AllTransforms() []Transform {
	return []Transform{Turn0, Turn90, Turn180, Turn270, MirrorTurn0, MirrorTurn90, MirrorTurn180, MirrorTurn270}
}

func (t Transform) String() string {
	switch t {
	case Turn0:
		return "turn0"
	case Turn90:
		return "turn90"
	case Turn180:
		return "turn180"
	case Turn270:
		return "turn270"
	case MirrorTurn0:
		return "mirror_turn0"
	case MirrorTurn90:
		return "mirror_turn90"
	case MirrorTurn180:
		return "mirror_turn180"
	case MirrorTurn270:
		return "mirror_turn270"
	default:
		return "unknown"
	}
}

// FileInfo is an immutable record produced by the scanner: a path plus the
// attributes needed for cache lookup and fast equality checks.
type FileInfo struct {
	Path    string
	Size    int64
	Time    time.Time
	Hash    uint64 // deterministic function of Path, bucketing only
	RootIdx int    // ordinal of the search root this file was found under
}

// EXIFSummary carries informational camera metadata. It never feeds
// comparison or defect classification, only reporting.
type EXIFSummary struct {
	CameraModel string
	Orientation int
}

// PixelPyramid holds the reduced grayscale views produced by the collector,
// filled top-down by repeated 2x2 averaging. Main is the smallest view at
// the configured reduced image size (default 16x16); Fast is always 4x4.
type PixelPyramid struct {
	Levels [][]byte // Levels[0] is the largest (finest) retained level, last is Main
	Sides  []int    // side length of each level, parallel to Levels
	Main   []byte   // reduced_image_size x reduced_image_size grayscale
	Fast   []byte   // 4x4 grayscale, always 16 bytes
	Filled bool
}

// MainSide returns the side length of the Main view, or 0 if unfilled.
func (p PixelPyramid) MainSide() int {
	if len(p.Sides) == 0 {
		return 0
	}
	return p.Sides[len(p.Sides)-1]
}

// ImageData is the fingerprint produced by the data collector: metadata,
// a pixel pyramid, and defect scores. It is mutated only by its owning
// collector worker and becomes immutable once inserted into a comparator
// bucket.
type ImageData struct {
	FileInfo

	CRC32     uint32 // 0 = not yet computed, 0xFFFFFFFF = unreadable
	ImageType ImageType
	Width     int
	Height    int
	Ratio     int // round(width/height * RatioResolution), integer bucket

	Defect     DefectKind
	Blockiness float64 // finite, or negative infinity if not measured
	Blurring   float64 // finite, or negative infinity if not measured

	PixelData PixelPyramid

	// SSIM comparator cache, lazily filled under the comparator's shared
	// lock. Persisted as zero when unknown.
	SSIMAverage  float64
	SSIMVariance float64
	SSIMValid    bool

	EXIF *EXIFSummary

	Valid bool // present in the user's *valid* path set

	// DirtyOnLoad marks a fingerprint the cache had to construct fresh
	// because no entry matched path+size+time.
	DirtyOnLoad bool
}

// NewImageData constructs a fresh, not-yet-filled fingerprint for fi.
// Blockiness and Blurring start at negative infinity ("not measured") per
// the data model's finite-or-negative-infinity invariant.
func NewImageData(fi FileInfo) *ImageData {
	return &ImageData{
		FileInfo:   fi,
		Blockiness: math.Inf(-1),
		Blurring:   math.Inf(-1),
	}
}

// NeedsFill reports whether the collector still has work to do on this
// fingerprint: an unset CRC, missing pixel data when comparison is wanted,
// or a pending defect check.
func (d *ImageData) NeedsFill(wantPixels, wantDefect bool) bool {
	if d.CRC32 == 0 {
		return true
	}
	if wantPixels && !d.PixelData.Filled {
		return true
	}
	if wantDefect && d.Defect == DefectNone && math.IsInf(d.Blockiness, -1) && math.IsInf(d.Blurring, -1) {
		return true
	}
	return false
}

// ImageInfo is the subset of ImageData exposed to the result store.
// Multiple results reference the same ImageInfo through interning, so
// mutable bookkeeping fields are guarded by the owning store's lock.
type ImageInfo struct {
	Path       string
	Size       int64
	Time       time.Time
	Type       ImageType
	Width      int
	Height     int
	Blockiness float64
	Blurring   float64

	Group      int
	Links      int
	Removed    bool
	Selected   bool
	DeletePath bool // present in the user's *delete* path set
}

// ResultKind discriminates the two shapes a Result can take.
type ResultKind int

const (
	ResultDefect ResultKind = iota
	ResultDuplicatePair
)

// Hint is a recommended action for a duplicate pair or defect result.
type Hint int

const (
	HintNone Hint = iota
	HintDeleteFirst
	HintDeleteSecond
	HintDeleteDefective
)

// Result is either a defect finding on one image, or a duplicate-pair
// finding between two images. Exactly one of the Defect* / Duplicate*
// field groups is meaningful, selected by Kind.
type Result struct {
	Kind ResultKind

	// ResultDefect
	DefectImage *ImageInfo
	DefectKind  DefectKind

	// ResultDuplicatePair
	First      *ImageInfo
	Second     *ImageInfo
	Difference float64 // in [0, 100]
	Transform  Transform

	Group     int
	GroupSize int
	Hint      Hint
}

// NewDefectResult builds a defect Result for the given image.
func NewDefectResult(img *ImageInfo, kind DefectKind) *Result {
	return &Result{Kind: ResultDefect, DefectImage: img, DefectKind: kind}
}

// NewDuplicateResult builds a duplicate-pair Result. The caller is
// responsible for canonical ordering (first <= second by sort order).
func NewDuplicateResult(first, second *ImageInfo, diff float64, tr Transform) *Result {
	return &Result{Kind: ResultDuplicatePair, First: first, Second: second, Difference: diff, Transform: tr}
}

// ImageGroup is a connected component in the duplicate graph, or a
// singleton wrapping one defective image.
type ImageGroup struct {
	ID          int
	Images      []*ImageInfo
	Results     []*Result
	InvalidHint bool
}

// ScanProgress reports incremental progress of a running search, mirroring
// the engine's collector/comparator throughput.
type ScanProgress struct {
	FilesSeen      int
	FilesFinished  int
	FilesTotal     int
	CurrentPath    string
	DuplicateCount int
	DefectCount    int
}

// Statistic is a point-in-time snapshot returned by statistic_get().
type Statistic struct {
	ScannedFiles    int
	CollectedImages int
	ComparedPairs   int
	DuplicatePairs  int
	DefectiveImages int
	Elapsed         time.Duration
}

// FileKind discriminates the four persisted state kinds load/save
// operate on (spec §6).
type FileKind int

const (
	FileOptions FileKind = iota
	FileResult
	FileMistakeDB
	FileImageDB
)

// SortKind is a result-list sort column.
type SortKind int

const (
	SortByGroup SortKind = iota
	SortByDifference
	SortBySize
	SortByPath
)

// ActionKind is the action result_apply_to performs on one target.
type ActionKind int

const (
	ActionDeleteFirst ActionKind = iota
	ActionDeleteSecond
	ActionDeleteDefective
	ActionMarkMistake
	ActionAcceptResult
)

// GlobalActionKind is the action result_apply performs across every
// eligible result at once.
type GlobalActionKind int

const (
	GlobalActionApplyAllHints GlobalActionKind = iota
	GlobalActionClearAll
)

// TargetKind discriminates what an apply operation's target ordinal
// refers to.
type TargetKind int

const (
	TargetResult TargetKind = iota
	TargetGroup
)

// RenamingKind discriminates the shape of a requested rename, per
// spec §6's rename_current/image_info_rename/move_current_group family.
type RenamingKind int

const (
	RenameCurrentSide RenamingKind = iota
	RenameImageInfo
	MoveCurrentGroup
	RenameCurrentGroupAs
)

// SelectionKind discriminates single-image vs. whole-group selection
// state, per image_info_selection_set/get.
type SelectionKind int

const (
	SelectionImage SelectionKind = iota
	SelectionGroup
)

// ThreadKind names one of the thread manager's two pools, per
// status_get(thread_kind, id).
type ThreadKind int

const (
	ThreadCollector ThreadKind = iota
	ThreadComparator
)

// ThreadStatus is one worker's point-in-time state, returned by
// status_get.
type ThreadStatus struct {
	Kind    ThreadKind
	ID      int
	Verdict string // "wait", "do_own", "do_other", "finish"
}
