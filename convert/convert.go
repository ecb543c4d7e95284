// Package convert turns documents into normalized Markdown text suitable
// for chunking. Each supported format has a dedicated converter; all of
// them emit plain Markdown with image content extracted through a media
// store and re-referenced by URL.
package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/docmill/logger"
	"github.com/tsawler/docmill/media"
)

// ErrUnsupportedFormat is returned when a file's format cannot be
// converted. PDF decoding in particular is delegated to an external
// collaborator and is deliberately not handled here.
var ErrUnsupportedFormat = errors.New("convert: unsupported document format")

// SupportedFormats lists the file extensions the converter accepts.
func SupportedFormats() []string {
	return []string{".txt", ".md", ".csv", ".json", ".html", ".htm", ".docx", ".pptx", ".xlsx"}
}

// Result is the outcome of a conversion: normalized Markdown plus the URLs
// of every image extracted from the document.
type Result struct {
	// Markdown is the normalized document text.
	Markdown string

	// Images are the issued URLs of extracted images, in extraction order.
	Images []string

	// Format is the extension the file was handled as (e.g. ".docx").
	Format string
}

// Converter converts files to Markdown. Extracted images are persisted
// through the media store.
type Converter struct {
	store    *media.Store
	relative bool
	log      logger.Logger
}

// New creates a Converter backed by the given media store. When relative is
// true, image references use media-relative paths ("image/<name>") instead
// of absolute URLs.
func New(store *media.Store, relative bool) *Converter {
	return &Converter{
		store:    store,
		relative: relative,
		log:      logger.Default(),
	}
}

// Convert reads the file at path and produces its Markdown rendition.
// The format is chosen by extension, falling back to content sniffing for
// unknown extensions.
func (c *Converter) Convert(path string) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("convert: resolving path: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(abs))
	if !isSupported(ext) {
		ext, err = c.sniffFormat(abs)
		if err != nil {
			return nil, err
		}
	}

	c.log.Debug("converting document", "path", abs, "format", ext)

	var result *Result
	switch ext {
	case ".txt", ".md":
		result, err = c.convertText(abs)
	case ".csv":
		result, err = c.convertCSV(abs)
	case ".json":
		result, err = c.convertJSON(abs)
	case ".html", ".htm":
		result, err = c.convertHTML(abs)
	case ".docx":
		result, err = c.convertDocx(abs)
	case ".pptx":
		result, err = c.convertPptx(abs)
	case ".xlsx":
		result, err = c.convertXlsx(abs)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	result.Format = ext
	// NFC keeps rune offsets stable for downstream chunking regardless of
	// how the source encoded combining characters.
	result.Markdown = norm.NFC.String(normalizeNewlines(result.Markdown))
	return result, nil
}

// sniffFormat maps detected MIME types to a handled extension.
func (c *Converter) sniffFormat(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("convert: detecting format: %w", err)
	}

	switch {
	case mtype.Is("text/html"):
		return ".html", nil
	case mtype.Is("text/csv"):
		return ".csv", nil
	case mtype.Is("application/json"):
		return ".json", nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return ".docx", nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.presentationml.presentation"):
		return ".pptx", nil
	case mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return ".xlsx", nil
	case strings.HasPrefix(mtype.String(), "text/"):
		return ".txt", nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mtype.String())
}

func isSupported(ext string) bool {
	for _, s := range SupportedFormats() {
		if ext == s {
			return true
		}
	}
	return false
}

// convertText reads plain text or Markdown, decoding legacy charsets when
// the content is not valid UTF-8.
func (c *Converter) convertText(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: opening file: %w", err)
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/plain")
	if err != nil {
		return nil, fmt.Errorf("convert: detecting charset: %w", err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("convert: reading file: %w", err)
	}

	return &Result{Markdown: string(data)}, nil
}

// convertJSON validates and fences JSON content as a code block.
func (c *Converter) convertJSON(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("convert: reading file: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return nil, fmt.Errorf("convert: invalid JSON: %w", err)
	}

	return &Result{Markdown: "```json\n" + pretty.String() + "\n```\n"}, nil
}

var crlf = regexp.MustCompile(`\r\n?`)

// normalizeNewlines rewrites CRLF and bare CR line endings to LF.
func normalizeNewlines(s string) string {
	return crlf.ReplaceAllString(s, "\n")
}
