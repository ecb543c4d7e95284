package docmill

import (
	"github.com/tsawler/docmill/chunk"
)

// pipelineOptions holds configuration for a Pipeline.
type pipelineOptions struct {
	chunk        chunk.Config
	mediaDir     string
	baseURL      string
	relativeURLs bool
}

// defaultOptions returns the default pipeline options.
func defaultOptions() pipelineOptions {
	return pipelineOptions{
		chunk: chunk.DefaultConfig(),
	}
}

// clone creates a deep copy of pipelineOptions.
func (o pipelineOptions) clone() pipelineOptions {
	newOpts := o
	if o.chunk.Separators != nil {
		newOpts.chunk.Separators = make([]string, len(o.chunk.Separators))
		copy(newOpts.chunk.Separators, o.chunk.Separators)
	}
	return newOpts
}

// Pipeline provides a fluent interface for converting and chunking a
// document. Each configuration method returns a new Pipeline instance,
// making chains safe to branch and reuse.
type Pipeline struct {
	filename string
	options  pipelineOptions
	err      error
}

// clone creates a copy of the Pipeline with deep-copied options.
func (p *Pipeline) clone() *Pipeline {
	return &Pipeline{
		filename: p.filename,
		options:  p.options.clone(),
		err:      p.err,
	}
}

// ChunkSize sets the target segment size in runes.
func (p *Pipeline) ChunkSize(n int) *Pipeline {
	np := p.clone()
	np.options.chunk.ChunkSize = n
	return np
}

// ChunkOverlap sets how many trailing runes of one segment repeat at the
// start of the next.
func (p *Pipeline) ChunkOverlap(n int) *Pipeline {
	np := p.clone()
	np.options.chunk.ChunkOverlap = n
	return np
}

// Separators sets the preferred break strings in descending priority
// order.
func (p *Pipeline) Separators(seps ...string) *Pipeline {
	np := p.clone()
	np.options.chunk.Separators = seps
	return np
}

// NoChunking disables splitting; Chunks returns the whole document as a
// single segment.
func (p *Pipeline) NoChunking() *Pipeline {
	np := p.clone()
	np.options.chunk.ChunkSize = chunk.NoChunking
	return np
}

// MediaDir sets where extracted images are written. When unset, a
// temporary directory is created per terminal call.
func (p *Pipeline) MediaDir(dir string) *Pipeline {
	np := p.clone()
	np.options.mediaDir = dir
	return np
}

// BaseURL sets the prefix for issued image URLs.
func (p *Pipeline) BaseURL(url string) *Pipeline {
	np := p.clone()
	np.options.baseURL = url
	return np
}

// RelativeURLs makes image references use media-relative paths
// ("image/<name>") instead of absolute URLs.
func (p *Pipeline) RelativeURLs() *Pipeline {
	np := p.clone()
	np.options.relativeURLs = true
	return np
}
