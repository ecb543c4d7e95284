package chunk

import (
	"github.com/tsawler/docmill/logger"
)

// NoChunking is the ChunkSize sentinel that disables splitting entirely:
// the whole input is returned as a single segment.
const NoChunking = -1

// Sizing heuristics. MinRetain defaults to the larger of minRetainFloor and
// minRetainRatio of the chunk size; forced progress is at least
// progressRatio of the chunk size. These constants are empirical (see
// DefaultConfig) and can be overridden per Config.
const (
	minRetainFloor = 10
	minRetainRatio = 0.3
	progressRatio  = 0.1

	defaultTailWindow    = 120
	defaultEdgeTolerance = 8

	// iterationSlack is added to the input length to bound the main loop.
	// Forward progress makes the bound unreachable; it exists purely as a
	// circuit breaker for internal-invariant violations.
	iterationSlack = 1000
)

// Config holds configuration for a Splitter.
//
// ChunkSize and ChunkOverlap are counted in runes. The zero value of the
// tuning fields (MinRetain, TailWindow, EdgeTolerance) selects the built-in
// defaults.
type Config struct {
	// ChunkSize is the target segment size in runes. Must be positive, or
	// NoChunking (-1) to return the input as a single segment.
	ChunkSize int

	// ChunkOverlap is the number of trailing runes of one segment repeated
	// at the start of the next. Must satisfy 0 <= ChunkOverlap < ChunkSize
	// whenever ChunkSize is not NoChunking.
	ChunkOverlap int

	// Separators are preferred break strings in descending priority order.
	// Matching is literal substring search. An empty string is the
	// force-split-anywhere sentinel and is skipped during separator search.
	Separators []string

	// MinRetain is the minimum number of runes a segment must keep when its
	// end is pulled back to a separator. Zero selects
	// max(10, 0.3*ChunkSize).
	MinRetain int

	// TailWindow is how many runes at the end of a tentative segment are
	// inspected for truncated URLs and paths. Zero selects 120.
	TailWindow int

	// EdgeTolerance is how close (in runes) to the segment end a URL or
	// path match must finish to count as truncated. Zero selects 8.
	EdgeTolerance int
}

// DefaultConfig returns the default splitter configuration: 1000-rune
// segments with 100 runes of overlap, breaking preferentially on paragraph
// boundaries, then line breaks, then spaces.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 100,
		Separators:   []string{"\n\n", "\n", " ", ""},
	}
}

// Validate checks the configuration. It returns one of the sentinel errors
// declared in errors.go if a constraint is violated.
func (c Config) Validate() error {
	if c.ChunkSize != NoChunking && c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}
	if c.ChunkOverlap < 0 {
		return ErrInvalidOverlap
	}
	if c.ChunkSize != NoChunking && c.ChunkOverlap >= c.ChunkSize {
		return ErrOverlapTooLarge
	}
	if c.MinRetain < 0 || c.TailWindow < 0 || c.EdgeTolerance < 0 {
		return ErrInvalidTuning
	}
	return nil
}

// minRetain returns the effective minimum retained segment length.
func (c Config) minRetain() int {
	if c.MinRetain > 0 {
		return c.MinRetain
	}
	n := int(minRetainRatio * float64(c.ChunkSize))
	if n < minRetainFloor {
		n = minRetainFloor
	}
	return n
}

// tailWindow returns the effective boundary-inspection window.
func (c Config) tailWindow() int {
	if c.TailWindow > 0 {
		return c.TailWindow
	}
	return defaultTailWindow
}

// edgeTolerance returns the effective boundary-proximity tolerance.
func (c Config) edgeTolerance() int {
	if c.EdgeTolerance > 0 {
		return c.EdgeTolerance
	}
	return defaultEdgeTolerance
}

// Segment is a contiguous slice of the source text produced by Split.
// Start and End are rune offsets into the source; Text is the slice
// [Start, End).
type Segment struct {
	// Index is the segment's position in the output sequence (0-based).
	Index int `json:"index"`

	// Start is the inclusive starting rune offset in the source text.
	Start int `json:"start"`

	// End is the exclusive ending rune offset in the source text.
	End int `json:"end"`

	// Text is the segment content.
	Text string `json:"text"`
}

// Splitter splits text according to an immutable, validated Config.
type Splitter struct {
	config Config
	log    logger.Logger
}

// New creates a Splitter. The configuration is validated here, before any
// splitting work, and is immutable afterwards.
func New(config Config) (*Splitter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{config: config, log: logger.Default()}, nil
}

// SetLogger overrides the logger used for loop diagnostics. Passing nil
// restores the package default.
func (s *Splitter) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.Default()
	}
	s.log = l
}

// Config returns a copy of the splitter's configuration.
func (s *Splitter) Config() Config {
	return s.config
}

// Split partitions text into bounded, overlapping segments.
//
// When ChunkSize is NoChunking, or the text fits in a single segment, the
// whole input is returned as one segment. Otherwise segments are at most
// ChunkSize runes long, except where the end was pushed forward to avoid
// bisecting a protected token. Segment start offsets are strictly
// increasing, and concatenating each segment's non-overlapping prefix
// reconstructs the input exactly.
func (s *Splitter) Split(text string) []Segment {
	size := s.config.ChunkSize
	if size == NoChunking {
		return []Segment{{Index: 0, Start: 0, End: len([]rune(text)), Text: text}}
	}

	runes := []rune(text)
	n := len(runes)
	if n <= size {
		return []Segment{{Index: 0, Start: 0, End: n, Text: text}}
	}

	var segments []Segment
	start := 0
	maxIterations := n + iterationSlack
	iterations := 0

	for start < n {
		iterations++
		if iterations > maxIterations {
			// Unreachable given the forced-progress guards below; abort
			// with the valid prefix rather than looping forever.
			s.log.Error("chunk loop exceeded iteration bound",
				"bound", maxIterations,
				"start", start,
				"segments", len(segments),
			)
			break
		}

		end := start + size
		if end > n {
			end = n
		}
		if end <= start {
			end = start + 1
		}

		// Prefer a separator boundary, but never at the cost of a
		// degenerate segment.
		if end < n {
			if cut, ok := findBreak(runes[start:end], s.config.Separators, s.config.minRetain()); ok && start+cut > start {
				end = start + cut
			}
		}

		// Token protection runs after separator snapping and only ever
		// pushes the end forward.
		end = s.repair(runes, start, end)

		if end <= start {
			end = start + 1
		}

		segments = append(segments, Segment{
			Index: len(segments),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		// The final segment reaches end-of-text; re-chunking its overlap
		// tail would only duplicate already-covered content.
		if end >= n {
			break
		}

		newStart := end - s.config.ChunkOverlap
		if newStart <= start {
			// Overlap ate all forward progress; advance by a fraction of
			// the chunk size so the loop always terminates.
			minProgress := int(progressRatio * float64(size))
			if minProgress < 1 {
				minProgress = 1
			}
			newStart = start + minProgress
		}
		start = newStart
	}

	return segments
}

// Stats summarizes a Split result.
type Stats struct {
	TotalSegments int
	TotalRunes    int
	MinSize       int
	MaxSize       int
	AvgSize       int
}

// Summarize computes size statistics over a slice of segments.
func Summarize(segments []Segment) Stats {
	stats := Stats{
		TotalSegments: len(segments),
		MinSize:       -1,
	}

	for _, seg := range segments {
		size := seg.End - seg.Start
		stats.TotalRunes += size
		if stats.MinSize < 0 || size < stats.MinSize {
			stats.MinSize = size
		}
		if size > stats.MaxSize {
			stats.MaxSize = size
		}
	}

	if stats.TotalSegments > 0 {
		stats.AvgSize = stats.TotalRunes / stats.TotalSegments
	}
	if stats.MinSize < 0 {
		stats.MinSize = 0
	}

	return stats
}
