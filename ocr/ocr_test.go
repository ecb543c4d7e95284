//go:build ocr

package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
)

// whitePNG renders a blank page; recognition should yield empty or
// near-empty text without erroring.
func whitePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestNewAndClose(t *testing.T) {
	client, err := New("")
	if err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
	if client.Language() != LangEnglish {
		t.Errorf("expected default language %q, got %q", LangEnglish, client.Language())
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestRecognizeBlankImage(t *testing.T) {
	client, err := New(LangEnglish)
	if err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
	defer client.Close()

	text, err := client.Recognize(whitePNG(t, 200, 100))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(text) > 10 {
		t.Errorf("blank image produced unexpected text: %q", text)
	}
}

func TestSetLanguage(t *testing.T) {
	client, err := New(LangEnglish)
	if err != nil {
		t.Skipf("tesseract unavailable: %v", err)
	}
	defer client.Close()

	if err := client.SetLanguage(LangSimplified); err != nil {
		t.Skipf("chi_sim language data unavailable: %v", err)
	}
	if client.Language() != LangSimplified {
		t.Errorf("expected %q, got %q", LangSimplified, client.Language())
	}
}
