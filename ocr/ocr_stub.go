//go:build !ocr

// Package ocr extracts text from document images via the Tesseract
// engine. This is the stub used when the "ocr" build tag is not set; every
// operation returns ErrNotEnabled. To enable recognition, rebuild with:
//
//	go build -tags ocr
//
// which requires Tesseract and its language data installed on the system.
package ocr

import "errors"

// ErrNotEnabled is returned when OCR operations are invoked but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Language model combinations for Chinese-aware recognition.
const (
	LangSimplified  = "chi_sim+eng"
	LangTraditional = "chi_tra+eng"
	LangEnglish     = "eng"
)

// Client is a stub OCR client; all operations fail with ErrNotEnabled.
type Client struct{}

// New returns ErrNotEnabled.
func New(lang string) (*Client, error) {
	return nil, ErrNotEnabled
}

// Close is a no-op, safe on a nil client.
func (c *Client) Close() error {
	return nil
}

// Recognize returns ErrNotEnabled.
func (c *Client) Recognize(imageData []byte) (string, error) {
	return "", ErrNotEnabled
}

// RecognizeAuto returns ErrNotEnabled.
func (c *Client) RecognizeAuto(imageData []byte) (string, string, error) {
	return "", "", ErrNotEnabled
}

// SetLanguage returns ErrNotEnabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrNotEnabled
}

// Language reports an empty language string.
func (c *Client) Language() string {
	return ""
}
