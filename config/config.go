// Package config holds the runtime settings for the document parsing
// service. Settings come from defaults, an optional YAML file, and
// environment variables, with later sources winning.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Limits on the chunking parameters a request may ask for.
const (
	MinChunkSize = 100
	MaxChunkSize = 100000
)

// Config is the full service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Chunk   ChunkConfig   `yaml:"chunk"`
	Media   MediaConfig   `yaml:"media"`
	OCR     OCRConfig     `yaml:"ocr"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ChunkConfig carries the default text segmentation parameters. Requests
// may override size and overlap within the service limits.
type ChunkConfig struct {
	Size       int      `yaml:"size"`
	Overlap    int      `yaml:"overlap"`
	Separators []string `yaml:"separators"`
}

// MediaConfig configures extracted image storage.
type MediaConfig struct {
	// Dir is where extracted images are written. Resolved to an
	// absolute path during validation.
	Dir string `yaml:"dir"`

	// BaseURL prefixes issued image URLs. Defaults to the server's own
	// address.
	BaseURL string `yaml:"base_url"`

	// MaxWidth and MaxHeight bound stored image dimensions; larger
	// images are scaled down preserving aspect ratio.
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// OCRConfig configures text recognition for document images.
type OCRConfig struct {
	Enabled bool `yaml:"enabled"`

	// Languages is the Tesseract language string, e.g. "chi_sim+eng".
	Languages string `yaml:"languages"`
}

// LoggingConfig configures the service logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8002,
		},
		Chunk: ChunkConfig{
			Size:       1000,
			Overlap:    100,
			Separators: []string{"\n\n", "\n", " ", ""},
		},
		Media: MediaConfig{
			Dir:       "images",
			MaxWidth:  1024,
			MaxHeight: 1024,
		},
		OCR: OCRConfig{
			Languages: "chi_sim+eng",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty), a .env file in the working directory (if present),
// and DOCMILL_* environment variables, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	// Missing .env is fine; env vars may come from the environment itself.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays DOCMILL_* environment variables onto the config.
func (c *Config) applyEnv() error {
	if v := os.Getenv("DOCMILL_HOST"); v != "" {
		c.Server.Host = v
	}
	if err := envInt("DOCMILL_PORT", &c.Server.Port); err != nil {
		return err
	}
	if err := envInt("DOCMILL_CHUNK_SIZE", &c.Chunk.Size); err != nil {
		return err
	}
	if err := envInt("DOCMILL_CHUNK_OVERLAP", &c.Chunk.Overlap); err != nil {
		return err
	}
	if v := os.Getenv("DOCMILL_IMAGE_DIR"); v != "" {
		c.Media.Dir = v
	}
	if v := os.Getenv("DOCMILL_IMAGE_BASE_URL"); v != "" {
		c.Media.BaseURL = v
	}
	if v := os.Getenv("DOCMILL_OCR_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: DOCMILL_OCR_ENABLED: %w", err)
		}
		c.OCR.Enabled = enabled
	}
	if v := os.Getenv("DOCMILL_OCR_LANGUAGES"); v != "" {
		c.OCR.Languages = v
	}
	if v := os.Getenv("DOCMILL_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks the configuration and resolves the media directory to an
// absolute path.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Server.Port)
	}
	if c.Server.Host == "" {
		return errors.New("config: host must not be empty")
	}
	if c.Chunk.Size < MinChunkSize || c.Chunk.Size > MaxChunkSize {
		return fmt.Errorf("config: chunk size %d outside [%d, %d]", c.Chunk.Size, MinChunkSize, MaxChunkSize)
	}
	if c.Chunk.Overlap < 0 {
		return fmt.Errorf("config: chunk overlap %d is negative", c.Chunk.Overlap)
	}
	if c.Chunk.Overlap >= c.Chunk.Size {
		return fmt.Errorf("config: chunk overlap %d must be smaller than chunk size %d", c.Chunk.Overlap, c.Chunk.Size)
	}
	if len(c.Chunk.Separators) == 0 {
		return errors.New("config: at least one separator is required")
	}
	if c.Media.MaxWidth <= 0 || c.Media.MaxHeight <= 0 {
		return errors.New("config: image dimension limits must be positive")
	}

	abs, err := filepath.Abs(c.Media.Dir)
	if err != nil {
		return fmt.Errorf("config: resolving media dir: %w", err)
	}
	c.Media.Dir = abs

	if c.Media.BaseURL == "" {
		c.Media.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	c.Media.BaseURL = strings.TrimRight(c.Media.BaseURL, "/")

	return nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
