//go:build ocr

// Package ocr extracts text from document images via the Tesseract
// engine (through gosseract). Tesseract must be installed on the system,
// along with the language data files for the configured languages. On
// macOS:
//
//	brew install tesseract tesseract-lang
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-chi-sim tesseract-ocr-chi-tra
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tsawler/docmill/script"
)

// Language model combinations for Chinese-aware recognition.
const (
	LangSimplified  = "chi_sim+eng"
	LangTraditional = "chi_tra+eng"
	LangEnglish     = "eng"
)

// Client wraps Tesseract for OCR operations. A Client is not safe for
// concurrent use; callers needing parallelism should create one per
// goroutine.
type Client struct {
	client *gosseract.Client
	lang   string
}

// New creates an OCR client recognizing the given languages (a "+"
// separated Tesseract language string, e.g. "chi_sim+eng"). An empty lang
// defaults to English. Close the client when done.
func New(lang string) (*Client, error) {
	if lang == "" {
		lang = LangEnglish
	}
	client := gosseract.NewClient()
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		client.Close()
		return nil, fmt.Errorf("ocr: setting language %q: %w", lang, err)
	}
	return &Client{client: client, lang: lang}, nil
}

// Close releases Tesseract resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Recognize performs OCR on image data (PNG, TIFF, JPEG, etc.) with the
// client's configured languages. The result is whitespace-trimmed.
func (c *Client) Recognize(imageData []byte) (string, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return "", fmt.Errorf("ocr: setting image: %w", err)
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: recognition failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// RecognizeAuto performs Chinese-aware recognition: the image is first
// read with the simplified Chinese model, and when the output reads as
// traditional Chinese it is re-read with the traditional model. Returns
// the text and the language string that produced it.
func (c *Client) RecognizeAuto(imageData []byte) (string, string, error) {
	if err := c.SetLanguage(LangSimplified); err != nil {
		return "", "", err
	}
	text, err := c.Recognize(imageData)
	if err != nil {
		return "", "", err
	}

	if !script.IsTraditional(text) {
		return text, LangSimplified, nil
	}

	if err := c.SetLanguage(LangTraditional); err != nil {
		return "", "", err
	}
	text, err = c.Recognize(imageData)
	if err != nil {
		return "", "", err
	}
	return text, LangTraditional, nil
}

// SetLanguage switches the recognition languages ("+" separated).
func (c *Client) SetLanguage(lang string) error {
	if err := c.client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return fmt.Errorf("ocr: setting language %q: %w", lang, err)
	}
	c.lang = lang
	return nil
}

// Language reports the currently configured language string.
func (c *Client) Language() string {
	return c.lang
}

// SetPageSegMode sets the page segmentation mode, which controls how
// Tesseract analyzes page layout. See gosseract.PageSegMode.
func (c *Client) SetPageSegMode(mode gosseract.PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}
