package chunk

import "errors"

// Configuration errors reported by Config.Validate and New.
var (
	// ErrInvalidChunkSize indicates the chunk size is neither positive nor
	// the NoChunking sentinel.
	ErrInvalidChunkSize = errors.New("chunk size must be positive or -1")

	// ErrInvalidOverlap indicates a negative overlap value.
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative")

	// ErrOverlapTooLarge indicates the overlap is not smaller than the
	// chunk size.
	ErrOverlapTooLarge = errors.New("chunk overlap must be less than chunk size")

	// ErrInvalidTuning indicates a negative value for one of the tuning
	// knobs (MinRetain, TailWindow, EdgeTolerance).
	ErrInvalidTuning = errors.New("tuning values must be non-negative")
)
