// Package docmill provides a fluent API for converting documents to
// Markdown and splitting them into bounded, overlapping segments for
// retrieval pipelines.
//
// Basic usage:
//
//	chunks, err := docmill.Open("report.docx").Chunks()
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	chunks, err := docmill.Open("report.docx").
//	    MediaDir("/var/lib/docmill/images").
//	    ChunkSize(500).
//	    ChunkOverlap(50).
//	    Chunks()
//
// For lower-level control, the convert, chunk, and media packages are also
// available.
package docmill

import (
	"fmt"
	"os"

	"github.com/tsawler/docmill/chunk"
	"github.com/tsawler/docmill/convert"
	"github.com/tsawler/docmill/media"
)

// Chunk is one segment of a parsed document together with the images whose
// references fall inside it.
type Chunk struct {
	Index  int
	Text   string
	Images []string
}

// Open prepares a document for parsing and returns a Pipeline for fluent
// configuration. Nothing is read until a terminal operation (Markdown or
// Chunks) runs.
//
// Example:
//
//	text, err := docmill.Open("notes.md").Markdown()
func Open(filename string) *Pipeline {
	return &Pipeline{
		filename: filename,
		options:  defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for scripts and tests
// where error handling would be cumbersome.
//
// Example:
//
//	chunks := docmill.Must(docmill.Open("report.docx").Chunks())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// Markdown converts the document and returns its full Markdown text
// without chunking.
func (p *Pipeline) Markdown() (string, error) {
	res, err := p.convert()
	if err != nil {
		return "", err
	}
	return res.Markdown, nil
}

// Chunks converts the document, splits it into segments, and assigns each
// extracted image to the first segment referencing it.
func (p *Pipeline) Chunks() ([]Chunk, error) {
	res, err := p.convert()
	if err != nil {
		return nil, err
	}

	splitter, err := chunk.New(p.options.chunk)
	if err != nil {
		return nil, err
	}

	assigned := media.AssignImages(splitter.Split(res.Markdown))
	chunks := make([]Chunk, len(assigned))
	for i, seg := range assigned {
		chunks[i] = Chunk{Index: seg.Index, Text: seg.Text, Images: seg.Images}
	}
	return chunks, nil
}

// Images converts the document and returns only the issued image URLs.
func (p *Pipeline) Images() ([]string, error) {
	res, err := p.convert()
	if err != nil {
		return nil, err
	}
	return res.Images, nil
}

// convert runs the conversion once per terminal call.
func (p *Pipeline) convert() (*convert.Result, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.filename == "" {
		return nil, fmt.Errorf("no filename specified")
	}

	dir := p.options.mediaDir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "docmill-media-*")
		if err != nil {
			return nil, fmt.Errorf("creating media dir: %w", err)
		}
	}

	store, err := media.NewStore(media.StoreConfig{
		Dir:     dir,
		BaseURL: p.options.baseURL,
	})
	if err != nil {
		return nil, err
	}

	return convert.New(store, p.options.relativeURLs).Convert(p.filename)
}
