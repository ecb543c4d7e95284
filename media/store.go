// Package media persists images extracted from documents and issues the
// URLs that replace them in the normalized Markdown text. Raster images are
// normalized to bounded JPEGs so downstream consumers see one predictable
// format regardless of what the source document embedded.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/tsawler/docmill/logger"

	// Register decoders for the formats documents commonly embed.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Default bounding box for stored images, in pixels.
const (
	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 1024
)

const jpegQuality = 85

// Store saves images under a directory and issues URLs for them.
type Store struct {
	dir       string
	baseURL   string
	maxWidth  int
	maxHeight int
	log       logger.Logger
}

// StoreConfig configures a Store. Zero values select defaults.
type StoreConfig struct {
	// Dir is the directory images are written to. Required; created if
	// missing.
	Dir string

	// BaseURL is the prefix for issued URLs, e.g. "http://127.0.0.1:8002".
	// Issued URLs have the form BaseURL + "/images/" + name.
	BaseURL string

	// MaxWidth and MaxHeight bound stored image dimensions. Larger images
	// are scaled down preserving aspect ratio.
	MaxWidth  int
	MaxHeight int
}

// NewStore creates a Store, creating the image directory if needed.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("media: image directory not configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating image directory: %w", err)
	}

	maxW, maxH := cfg.MaxWidth, cfg.MaxHeight
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}

	return &Store{
		dir:       cfg.Dir,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		maxWidth:  maxW,
		maxHeight: maxH,
		log:       logger.Default(),
	}, nil
}

// Dir returns the directory images are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save persists image data and returns the stored file name. Raster data is
// re-encoded as a bounded JPEG; SVG and undecodable payloads are stored
// verbatim with an extension derived from ext (defaulting to ".png").
func (s *Store) Save(data []byte, ext string) (string, error) {
	ext = strings.ToLower(ext)

	if ext == ".svg" {
		name := uuid.NewString() + ".svg"
		if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
			return "", fmt.Errorf("media: writing svg: %w", err)
		}
		return name, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Formats we cannot decode (EMF, WMF, ...) are kept as-is rather
		// than dropped.
		s.log.Warn("storing undecodable image verbatim", "error", err)
		if ext == "" {
			ext = ".png"
		}
		name := uuid.NewString() + ext
		if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
			return "", fmt.Errorf("media: writing image: %w", err)
		}
		return name, nil
	}

	name := uuid.NewString() + ".jpeg"
	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("media: creating image file: %w", err)
	}
	defer out.Close()

	flattened := s.normalize(img)
	if err := jpeg.Encode(out, flattened, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("media: encoding jpeg: %w", err)
	}

	return name, nil
}

// URL returns the public URL for a stored file name.
func (s *Store) URL(name string) string {
	return s.baseURL + "/images/" + name
}

// RelativePath returns the media-relative reference for a stored file name,
// used when the caller joins its own host prefix.
func (s *Store) RelativePath(name string) string {
	return "image/" + name
}

// normalize scales img into the configured bounding box and flattens any
// alpha channel onto a white background, since JPEG has no transparency.
func (s *Store) normalize(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	targetW, targetH := fitWithin(w, h, s.maxWidth, s.maxHeight)

	flat := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	if targetW == w && targetH == h {
		draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)
		return flat
	}

	draw.CatmullRom.Scale(flat, flat.Bounds(), img, bounds, draw.Over, nil)
	return flat
}

// fitWithin computes the largest dimensions no bigger than maxW x maxH that
// preserve the w:h aspect ratio. Images already inside the box keep their
// size.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	targetW := int(float64(w) * scale)
	targetH := int(float64(h) * scale)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	return targetW, targetH
}
