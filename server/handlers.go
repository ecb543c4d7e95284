package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/tsawler/docmill/chunk"
	"github.com/tsawler/docmill/config"
	"github.com/tsawler/docmill/convert"
	"github.com/tsawler/docmill/media"
)

// ParseRequest asks the service to convert and segment one document.
// ChunkSize may be -1 to disable chunking and return the whole document as
// a single segment. ImageURLFormat selects between absolute URLs ("url",
// the default) and media-relative paths ("relative").
type ParseRequest struct {
	FilePath       string   `json:"file_path" binding:"required"`
	ChunkSize      *int     `json:"chunk_size"`
	ChunkOverlap   *int     `json:"chunk_overlap"`
	Separators     []string `json:"separators"`
	ImageURLFormat string   `json:"image_url_format" binding:"omitempty,oneof=url relative"`
}

// ChunkResult is one segment of the parsed document.
type ChunkResult struct {
	ChunkIndex      int      `json:"chunk_index"`
	Text            string   `json:"text"`
	ImageURLs       []string `json:"image_urls"`
	EstimatedTokens int      `json:"estimated_tokens"`
}

// FileInfo describes the parsed file.
type FileInfo struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Format string `json:"format"`
}

// ParseResponse is the full parse result. TotalImages counts images
// extracted from the document; TotalImageURLs counts the references
// assigned to chunks after deduplication.
type ParseResponse struct {
	Success        bool          `json:"success"`
	Result         []ChunkResult `json:"result"`
	TotalChunks    int           `json:"total_chunks"`
	TotalImages    int           `json:"total_images"`
	TotalImageURLs int           `json:"total_image_urls"`
	FileInfo       FileInfo      `json:"file_info"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Success: false, Error: msg})
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "docmill",
		"version": Version,
		"endpoints": []string{
			"GET /health", "GET /config", "GET /supported-formats", "POST /parse",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

func (s *Server) handleSupportedFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"formats": convert.SupportedFormats()})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chunk_size":     s.cfg.Chunk.Size,
		"chunk_overlap":  s.cfg.Chunk.Overlap,
		"separators":     s.cfg.Chunk.Separators,
		"min_chunk_size": config.MinChunkSize,
		"max_chunk_size": config.MaxChunkSize,
		"image_dir":      s.cfg.Media.Dir,
		"image_base_url": s.cfg.Media.BaseURL,
		"ocr_enabled":    s.cfg.OCR.Enabled,
	})
}

func (s *Server) handleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	size := s.cfg.Chunk.Size
	if req.ChunkSize != nil {
		size = *req.ChunkSize
	}
	overlap := s.cfg.Chunk.Overlap
	if req.ChunkOverlap != nil {
		overlap = *req.ChunkOverlap
	}
	separators := s.cfg.Chunk.Separators
	if len(req.Separators) > 0 {
		separators = req.Separators
	}
	relative := req.ImageURLFormat == "relative"

	if size != chunk.NoChunking {
		if size < config.MinChunkSize || size > config.MaxChunkSize {
			fail(c, http.StatusBadRequest, "chunk_size out of range")
			return
		}
		if overlap < 0 || overlap >= size {
			fail(c, http.StatusBadRequest, "chunk_overlap must be non-negative and smaller than chunk_size")
			return
		}
	}

	path, err := filepath.Abs(req.FilePath)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid file path")
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		fail(c, http.StatusNotFound, "file not found: "+req.FilePath)
		return
	}
	if info.IsDir() {
		fail(c, http.StatusBadRequest, "path is a directory")
		return
	}

	key, keyErr := s.cache.key(path, size, overlap, separators, relative)
	if keyErr == nil {
		if resp, ok := s.cache.get(key); ok {
			s.log.Debug("cache hit", "path", path)
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp, err := s.parse(path, info, size, overlap, separators, relative)
	if err != nil {
		if errors.Is(err, convert.ErrUnsupportedFormat) {
			fail(c, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		s.log.Error("parse failed", "path", path, "error", err)
		fail(c, http.StatusInternalServerError, "failed to parse document")
		return
	}

	if keyErr == nil {
		s.cache.put(key, resp)
	}
	c.JSON(http.StatusOK, resp)
}

// parse runs the conversion and chunking pipeline for one file.
func (s *Server) parse(path string, info os.FileInfo, size, overlap int, separators []string, relative bool) (*ParseResponse, error) {
	converter := convert.New(s.store, relative)
	doc, err := converter.Convert(path)
	if err != nil {
		return nil, err
	}

	splitter, err := chunk.New(chunk.Config{
		ChunkSize:    size,
		ChunkOverlap: overlap,
		Separators:   separators,
	})
	if err != nil {
		return nil, err
	}

	segments := splitter.Split(doc.Markdown)
	assigned := media.AssignImages(segments)

	totalURLs := 0
	results := make([]ChunkResult, len(assigned))
	for i, seg := range assigned {
		results[i] = ChunkResult{
			ChunkIndex:      seg.Index,
			Text:            seg.Text,
			ImageURLs:       seg.Images,
			EstimatedTokens: s.tokens.estimate(seg.Text),
		}
		if results[i].ImageURLs == nil {
			results[i].ImageURLs = []string{}
		}
		totalURLs += len(seg.Images)
	}

	return &ParseResponse{
		Success:        true,
		Result:         results,
		TotalChunks:    len(results),
		TotalImages:    len(doc.Images),
		TotalImageURLs: totalURLs,
		FileInfo: FileInfo{
			Name:   filepath.Base(path),
			Size:   info.Size(),
			Format: doc.Format,
		},
	}, nil
}
