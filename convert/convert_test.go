package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docmill/media"
)

func newTestConverter(t *testing.T) *Converter {
	t.Helper()
	store, err := media.NewStore(media.StoreConfig{
		Dir:     t.TempDir(),
		BaseURL: "http://127.0.0.1:8002",
	})
	require.NoError(t, err)
	return New(store, false)
}

func writeTestFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestConvertText(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "notes.txt", []byte("first line\r\nsecond line\r\n"))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Equal(t, ".txt", res.Format)
	assert.Equal(t, "first line\nsecond line\n", res.Markdown)
	assert.Empty(t, res.Images)
}

func TestConvertMarkdownPassthrough(t *testing.T) {
	c := newTestConverter(t)
	src := "# Title\n\nBody text with **emphasis**.\n"
	path := writeTestFile(t, "doc.md", []byte(src))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Equal(t, ".md", res.Format)
	assert.Equal(t, src, res.Markdown)
}

func TestConvertJSON(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "payload.json", []byte(`{"name":"report","pages":3}`))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "```json\n")
	assert.Contains(t, res.Markdown, `"name": "report"`)
	assert.Contains(t, res.Markdown, "\n```")
}

func TestConvertJSONInvalid(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "broken.json", []byte(`{"name":`))

	_, err := c.Convert(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestConvertCSV(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "table.csv", []byte("name,count\nalpha,1\nbeta,2\n"))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "| name | count |")
	assert.Contains(t, res.Markdown, "| --- | --- |")
	assert.Contains(t, res.Markdown, "| alpha | 1 |")
	assert.Contains(t, res.Markdown, "| beta | 2 |")
}

func TestConvertHTML(t *testing.T) {
	c := newTestConverter(t)
	src := `<html><head><title>skip</title><style>p{}</style></head><body>
<h1>Report</h1>
<p>Intro with a <a href="https://example.com/x">link</a> inside.</p>
<ul><li>first</li><li>second</li></ul>
<img src="https://example.com/fig.png" alt="figure">
<table><tr><th>k</th><th>v</th></tr><tr><td>a</td><td>1</td></tr></table>
</body></html>`
	path := writeTestFile(t, "page.html", []byte(src))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "# Report")
	assert.Contains(t, res.Markdown, "[link](https://example.com/x)")
	assert.Contains(t, res.Markdown, "- first\n- second")
	assert.Contains(t, res.Markdown, "![figure](https://example.com/fig.png)")
	assert.Contains(t, res.Markdown, "| k | v |")
	assert.NotContains(t, res.Markdown, "skip")
	assert.NotContains(t, res.Markdown, "p{}")
}

func TestConvertHTMLAttributes(t *testing.T) {
	c := newTestConverter(t)
	src := `<p><a href="https://example.com/doc" title="ignored">read</a>
<a>bare anchor</a>
<img src="https://example.com/i.png">
<img alt="no source"></p>`
	path := writeTestFile(t, "attrs.html", []byte(src))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "[read](https://example.com/doc)")
	// An anchor without href degrades to its text.
	assert.Contains(t, res.Markdown, "bare anchor")
	assert.NotContains(t, res.Markdown, "[bare anchor]")
	// An image without src is dropped; one without alt keeps empty brackets.
	assert.Contains(t, res.Markdown, "![](https://example.com/i.png)")
	assert.NotContains(t, res.Markdown, "no source")
}

func TestConvertHTMLInlineSpacing(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "inline.html", []byte("<p>hello <b>world</b> again</p>"))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "hello **world** again")
}

func TestConvertUnsupportedExtension(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "archive.tar", []byte{0x00, 0x01, 0x02, 0x03})

	_, err := c.Convert(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestConvertSniffsUnknownExtension(t *testing.T) {
	c := newTestConverter(t)
	path := writeTestFile(t, "page.data", []byte("<!DOCTYPE html><html><body><h2>Sniffed</h2></body></html>"))

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Equal(t, ".html", res.Format)
	assert.Contains(t, res.Markdown, "## Sniffed")
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	assert.Contains(t, formats, ".docx")
	assert.Contains(t, formats, ".md")
	assert.NotContains(t, formats, ".pdf")
}

func TestMarkdownTableRagged(t *testing.T) {
	got := markdownTable([][]string{{"a", "b"}, {"only"}})
	assert.Contains(t, got, "| a | b |")
	assert.Contains(t, got, "| only |  |")
}

func TestTableCellEscapesPipes(t *testing.T) {
	assert.Equal(t, `a \| b`, tableCell("a | b"))
	assert.Equal(t, "two lines", tableCell("two\nlines"))
}
