package chunk

import (
	"strings"
	"unicode/utf8"
)

// findBreak locates a preferred break point inside slice.
//
// Separators are tried in priority order. For each, the right-most
// occurrence whose rune offset is at least minRetain yields the break point
// offset+len(separator): the break falls after the separator, so the
// separator stays with the left segment. The first qualifying separator
// wins. The empty-string sentinel is skipped; it only signals that the
// caller may split anywhere when no separator qualifies.
//
// The returned offset is a rune count relative to the start of slice. The
// second return value is false when no separator qualifies, in which case
// the caller keeps its tentative end.
func findBreak(slice []rune, separators []string, minRetain int) (int, bool) {
	// Segments this small are never worth re-cutting.
	if len(slice) < minRetainFloor {
		return 0, false
	}

	text := string(slice)
	for _, sep := range separators {
		if sep == "" {
			continue
		}

		byteIdx := strings.LastIndex(text, sep)
		if byteIdx < 0 {
			continue
		}

		runeIdx := utf8.RuneCountInString(text[:byteIdx])
		if runeIdx < minRetain {
			continue
		}

		cut := runeIdx + utf8.RuneCountInString(sep)
		if cut > 0 && cut <= len(slice) {
			return cut, true
		}
	}

	return 0, false
}
