package api

import "time"

// Named constants from the detection pipeline's design, kept together the
// way the teacher groups its format/threshold/performance constants.
const (
	VersionMajor  = 1
	VersionMinor  = 0
	VersionPatch  = 0
	VersionString = "1.0.0"

	// ReducedImageSizeDefault is the default side of the Main pyramid
	// view; always a power of two >= 16.
	ReducedImageSizeDefault = 16
	// FastViewSide is the side of the Fast pyramid view, fixed at 4x4.
	FastViewSide = 4
	// PyramidStartSide is the side pixel reduction starts from before
	// repeated 2x2 averaging down to Main/Fast.
	PyramidStartSide = 256

	// DefaultThreadSleepInterval is how long a worker sleeps on a Wait
	// verdict from its queue before polling again.
	DefaultThreadSleepInterval = 15 * time.Millisecond

	// CollectThreadQueueSizeMax bounds a collector worker's queue; the
	// dispatcher busy-waits once every collector queue is at this size.
	CollectThreadQueueSizeMax = 16

	// AdditionalDifferenceForDifferentCRC32 is added to a reported
	// difference when two matching images have differing CRC32s, as a
	// stable tie-break that never changes comparator accept/reject
	// decisions.
	AdditionalDifferenceForDifferentCRC32 = 1e-6

	// DifferenceDenominator is the scale a reported difference is
	// expressed against ([0, 100]).
	DifferenceDenominator = 100.0

	// AutoDeleteMax and AutoDeleteFactor bound the hint engine's
	// auto-delete threshold: min(AutoDeleteMax, threshold/AutoDeleteFactor).
	AutoDeleteMax    = 0.05 * DifferenceDenominator
	AutoDeleteFactor = 2.0

	// RatioResolution and RatioThresholdDifference govern the
	// aspect-ratio bucket used by ratio_control.
	RatioResolution          = 100
	RatioThresholdDifference = 1

	// SizeCheckLimit bounds a deserialized collection size read from a
	// persisted file; anything larger is treated as format corruption.
	SizeCheckLimit = 1 << 32

	// DefaultUndoQueueSize bounds the undo/redo deque.
	DefaultUndoQueueSize = 32

	// DefaultThreshold is the default comparator difference threshold,
	// on the same [0,100] scale as Result.Difference.
	DefaultThreshold = 5.0

	// Comparator strategy selection boundaries.
	Strategy0DImageCountMax     = 1000
	Strategy1DImageCountMax     = 10000
	Strategy3DThresholdMax      = 10.0
	Strategy3DMaxRangesStep     = 1.0
	PixelMaxDifference          = 255
	FastDataSize                = FastViewSide * FastViewSide
	Strategy1DBucketCount       = 256

	// Binary stream magics, 3-4 ASCII bytes including a terminating NUL
	// where shorter than 4.
	MagicImageIndex = "adii"
	MagicImageChunk = "adid"
	MagicResults    = "adr\x00"
	MagicMistakes   = "adm\x00"

	StreamFormatVersion = 1

	// ChunkMaxBytes bounds an image-data chunk's in-memory footprint;
	// actual item count per chunk is ChunkMaxBytes / (reducedSize/16)^2.
	ChunkMaxBytes = 64 * 1024

	// RecycleHiddenPrefix and RecycleHiddenSuffix bracket the random hex
	// tag in a hidden-sibling recycle filename: "~~adt########~~name".
	RecycleHiddenPrefix = "~~adt"
	RecycleHiddenSuffix = "~~"
)

// SupportedFormats lists the file extensions the scanner recognizes by
// default.
func SupportedFormats() []string {
	return []string{
		".jpg", ".jpeg", ".png", ".webp",
		".tiff", ".tif", ".bmp", ".gif", ".jp2",
	}
}
