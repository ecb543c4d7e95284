package chunk

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Protected-token matchers. These are stateless, deterministic pattern
// predicates: the same slice always yields the same answer. They are
// compiled once and shared by all splitters.
var (
	// openImageRef matches a Markdown image reference whose target is
	// still open at the end of the slice: "![alt](..." with no closing
	// parenthesis before end-of-slice.
	openImageRef = regexp.MustCompile(`!\[[^\]]*\]\([^)]*$`)

	// urlToken matches a bare http(s) URL. Close parens and brackets are
	// excluded so Markdown link syntax does not leak into the match.
	urlToken = regexp.MustCompile(`https?://[^\s)\]]+`)

	// pathToken matches filesystem-style paths: Unix absolute, drive
	// letter, or the media-relative "image/" prefix issued for extracted
	// images.
	pathToken = regexp.MustCompile(`(?:[A-Za-z]:[/\\]|image/|/)[\w.\-/\\]+`)
)

// TokenKind identifies the family of a protected token.
type TokenKind int

const (
	// TokenImage is a Markdown image reference.
	TokenImage TokenKind = iota
	// TokenURL is a bare URL.
	TokenURL
	// TokenPath is a filesystem-style path.
	TokenPath
)

// String returns a human-readable representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenImage:
		return "image"
	case TokenURL:
		return "url"
	case TokenPath:
		return "path"
	default:
		return "unknown"
	}
}

// repair extends a tentative segment end so it does not bisect a protected
// token. Three checks run in priority order, image reference first, and the
// first one that fires decides the new end. Extension is forward-only and a
// single pass: each repair lands strictly past the token it protects, so
// re-checking after extension is unnecessary. If the token runs past the
// end of the document, the end is clamped to the document length and the
// truncated token is accepted as-is.
func (s *Splitter) repair(runes []rune, start, end int) int {
	if end >= len(runes) {
		return end
	}

	slice := string(runes[start:end])

	// Check 1: segment ends inside an opened image reference. Extend to
	// just past the next closing parenthesis.
	if openImageRef.MatchString(slice) {
		for k := end; k < len(runes); k++ {
			if runes[k] == ')' {
				return k + 1
			}
		}
		return len(runes)
	}

	tail, tailLen := s.tail(runes, start, end)

	// Check 2: a URL touches the segment's right edge. Consume the
	// forward-continuing run of URL characters.
	if matchTouchesEdge(urlToken, tail, tailLen, s.config.edgeTolerance()) {
		j := end
		for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != ')' {
			j++
		}
		if j > end {
			return j
		}
	}

	// Check 3: a path fragment touches the segment's right edge. Consume
	// the forward-continuing path characters up to the first delimiter.
	if matchTouchesEdge(pathToken, tail, tailLen, s.config.edgeTolerance()) {
		j := end
		for j < len(runes) && isPathRune(runes[j]) {
			j++
		}
		if j > end {
			return j
		}
	}

	return end
}

// tail returns the inspection window at the end of the tentative segment
// as a string, plus its length in runes.
func (s *Splitter) tail(runes []rune, start, end int) (string, int) {
	w := s.config.tailWindow()
	if w > end-start {
		w = end - start
	}
	return string(runes[end-w : end]), w
}

// matchTouchesEdge reports whether the right-most match of re in tail ends
// within tolerance runes of the end of the window. A token that ends well
// before the boundary is complete and needs no protection.
func matchTouchesEdge(re *regexp.Regexp, tail string, tailLen, tolerance int) bool {
	locs := re.FindAllStringIndex(tail, -1)
	if len(locs) == 0 {
		return false
	}

	last := locs[len(locs)-1]
	matchEnd := utf8.RuneCountInString(tail[:last[1]])
	return matchEnd >= tailLen-tolerance
}

// isPathRune reports whether r may continue a filesystem path.
func isPathRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '_' || r == '-' || r == '.' || r == '/' || r == '\\'
}
