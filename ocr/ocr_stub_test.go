//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestNewReturnsErrNotEnabled(t *testing.T) {
	client, err := New(LangSimplified)
	if !errors.Is(err, ErrNotEnabled) {
		t.Errorf("expected ErrNotEnabled, got %v", err)
	}
	if client != nil {
		t.Error("expected nil client when OCR is disabled")
	}
}

func TestStubOperations(t *testing.T) {
	var client *Client
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client: %v", err)
	}

	c := &Client{}
	if _, err := c.Recognize(nil); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("Recognize: expected ErrNotEnabled, got %v", err)
	}
	if _, _, err := c.RecognizeAuto(nil); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("RecognizeAuto: expected ErrNotEnabled, got %v", err)
	}
	if err := c.SetLanguage(LangTraditional); !errors.Is(err, ErrNotEnabled) {
		t.Errorf("SetLanguage: expected ErrNotEnabled, got %v", err)
	}
	if c.Language() != "" {
		t.Errorf("Language: expected empty string, got %q", c.Language())
	}
}
