package engine

import "github.com/dupimg/dupimg/pkg/api"

// SearchOptions controls what the scanner accepts, per spec §4.1.
type SearchOptions struct {
	Extensions     []string
	MinFileSize    int64
	MaxFileSize    int64
	IncludeHidden  bool
	IncludeSystem  bool
	FollowSymlinks bool
}

// DefaultSearchOptions mirrors the teacher's default format/size set.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Extensions:  api.SupportedFormats(),
		MaxFileSize: 500 * 1024 * 1024,
	}
}

// CompareOptions mirrors the comparator's user-facing settings
// (spec §4.4's "check" option group).
type CompareOptions struct {
	ThresholdDifference    float64
	TypeControl            bool
	SizeControl            bool
	RatioControl           bool
	CompareInsideOneFolder bool
	TransformedImage       bool
	IgnoreFrameWidth       int
	UseSSIM                bool
}

// DefaultCompareOptions mirrors spec's named defaults.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		ThresholdDifference: api.DefaultThreshold,
		TypeControl:         true,
		SizeControl:         false,
		RatioControl:        true,
	}
}

// DefectOptions controls the collector's defect classification gates,
// per spec §4.2/§4.3.
type DefectOptions struct {
	CheckDefects  bool
	BlockinessMax float64
	BlurringMax   float64
	DefectMinSize int64
	DefectMaxSize int64
}

// DefaultDefectOptions disables defect checking, matching the
// original engine's opt-in default.
func DefaultDefectOptions() DefectOptions {
	return DefectOptions{}
}

// AdvancedOptions covers the remaining tunables spec.md groups under
// "advanced": reduced image size, worker counts, and the undo queue
// depth.
type AdvancedOptions struct {
	ReducedImageSize  int
	CollectorWorkers  int // 0 = CollectorWorkerCount() default
	ComparatorWorkers int // 0 = ComparatorWorkerCount() default
	UndoQueueSize     int
	LargeCollection   int // searchedImageCount threshold, spec §4.9
}

// DefaultAdvancedOptions mirrors the named constants' defaults.
func DefaultAdvancedOptions() AdvancedOptions {
	return AdvancedOptions{
		ReducedImageSize: api.ReducedImageSizeDefault,
		UndoQueueSize:    api.DefaultUndoQueueSize,
		LargeCollection:  api.Strategy1DImageCountMax,
	}
}

// Options bundles the four named option groups the functional API's
// options_get/set(kind, struct) operates on.
type Options struct {
	Search   SearchOptions
	Compare  CompareOptions
	Defect   DefectOptions
	Advanced AdvancedOptions
}

// DefaultOptions returns the engine's full default configuration.
func DefaultOptions() Options {
	return Options{
		Search:   DefaultSearchOptions(),
		Compare:  DefaultCompareOptions(),
		Defect:   DefaultDefectOptions(),
		Advanced: DefaultAdvancedOptions(),
	}
}

// PathKind discriminates the four named root sets options get/set and
// path get/set operate on (spec §6's path_get/set(kind)).
type PathKind int

const (
	PathSearch PathKind = iota
	PathIgnore
	PathValid
	PathDelete
)

// Paths holds the four named root sets.
type Paths struct {
	Search []string
	Ignore []string
	Valid  []string
	Delete []string
}

// Get returns the root set named by kind.
func (p Paths) Get(kind PathKind) []string {
	switch kind {
	case PathIgnore:
		return p.Ignore
	case PathValid:
		return p.Valid
	case PathDelete:
		return p.Delete
	default:
		return p.Search
	}
}

// Set replaces the root set named by kind.
func (p *Paths) Set(kind PathKind, paths []string) {
	switch kind {
	case PathIgnore:
		p.Ignore = paths
	case PathValid:
		p.Valid = paths
	case PathDelete:
		p.Delete = paths
	default:
		p.Search = paths
	}
}
