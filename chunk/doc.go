// Package chunk splits long Markdown text into bounded, overlapping segments
// suitable for retrieval indexing.
//
// The splitter partitions text by rune count, snaps segment ends backward to
// preferred separators when one falls late enough in the segment, and pushes
// segment ends forward when a boundary would otherwise bisect a protected
// token: a Markdown image reference, a bare URL, or a filesystem-style path.
// Every loop iteration advances the segment start, so splitting terminates
// for any valid configuration, including maximal overlap and degenerate
// separator lists.
//
// All offsets, sizes and overlap values are counted in Unicode code points
// (runes), not bytes. A chunk size of 1000 therefore means 1000 characters
// regardless of how many bytes the underlying UTF-8 encoding uses, which
// keeps behavior consistent for non-ASCII documents.
//
// Basic usage:
//
//	s, err := chunk.New(chunk.DefaultConfig())
//	if err != nil {
//	    // handle error
//	}
//	segments := s.Split(text)
//
// The splitter holds no state across calls; a single Splitter may be used
// from multiple goroutines concurrently.
package chunk
