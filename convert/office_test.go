package convert

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, name string, entries map[string][]byte) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for entry, data := range entries {
		f, err := w.Create(entry)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

const docxBodyXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Quarterly Report</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>Revenue grew in </w:t></w:r><w:r><w:t>all regions.</w:t></w:r></w:p>
    <w:p>
      <w:pPr><w:numPr><w:ilvl w:val="0"/></w:numPr></w:pPr>
      <w:r><w:t>first item</w:t></w:r>
    </w:p>
    <w:p><w:r><w:drawing/></w:r></w:p>
    <w:tbl>
      <w:tr><w:tc><w:p><w:r><w:t>Region</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Total</w:t></w:r></w:p></w:tc></w:tr>
      <w:tr><w:tc><w:p><w:r><w:t>West</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>42</w:t></w:r></w:p></w:tc></w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func TestConvertDocx(t *testing.T) {
	c := newTestConverter(t)
	path := writeArchive(t, "report.docx", map[string][]byte{
		"word/document.xml":     []byte(docxBodyXML),
		"word/media/image1.png": pngBytes(t),
	})

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Equal(t, ".docx", res.Format)
	assert.Contains(t, res.Markdown, "# Quarterly Report")
	assert.Contains(t, res.Markdown, "Revenue grew in all regions.")
	assert.Contains(t, res.Markdown, "- first item")
	assert.Contains(t, res.Markdown, "| Region | Total |")
	assert.Contains(t, res.Markdown, "| West | 42 |")

	require.Len(t, res.Images, 1)
	assert.Contains(t, res.Markdown, "![image-1]("+res.Images[0]+")")
}

func TestConvertDocxUnreferencedImageAppended(t *testing.T) {
	c := newTestConverter(t)
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>No drawings here.</w:t></w:r></w:p></w:body>
</w:document>`
	path := writeArchive(t, "plain.docx", map[string][]byte{
		"word/document.xml":     []byte(doc),
		"word/media/image1.png": pngBytes(t),
	})

	res, err := c.Convert(path)
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Contains(t, res.Markdown, "![image-1]("+res.Images[0]+")")
}

func TestHeadingLevel(t *testing.T) {
	assert.Equal(t, 1, headingLevel("Heading1"))
	assert.Equal(t, 6, headingLevel("Heading6"))
	assert.Equal(t, 0, headingLevel("Heading7"))
	assert.Equal(t, 0, headingLevel("Normal"))
	assert.Equal(t, 0, headingLevel(""))
}

func slideXML(lines ...string) []byte {
	body := ""
	for _, l := range lines {
		body += `<a:p><a:r><a:t>` + l + `</a:t></a:r></a:p>`
	}
	return []byte(`<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>` + body + `</p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`)
}

func TestConvertPptx(t *testing.T) {
	c := newTestConverter(t)
	path := writeArchive(t, "deck.pptx", map[string][]byte{
		"ppt/slides/slide2.xml":  slideXML("Second slide body"),
		"ppt/slides/slide1.xml":  slideXML("Opening Title", "Agenda overview"),
		"ppt/slides/slide10.xml": slideXML("Tenth slide"),
	})

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Equal(t, ".pptx", res.Format)

	first := bytes.Index([]byte(res.Markdown), []byte("## Slide 1\n"))
	second := bytes.Index([]byte(res.Markdown), []byte("## Slide 2\n"))
	tenth := bytes.Index([]byte(res.Markdown), []byte("## Slide 10\n"))
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
	assert.Greater(t, tenth, second)

	assert.Contains(t, res.Markdown, "Opening Title\nAgenda overview")
	assert.Contains(t, res.Markdown, "Second slide body")
}

func TestConvertPptxImages(t *testing.T) {
	c := newTestConverter(t)
	slide := []byte(`<?xml version="1.0"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree>
    <p:sp><p:txBody><a:p><a:r><a:t>Chart discussion</a:t></a:r></a:p></p:txBody></p:sp>
    <p:pic/>
  </p:spTree></p:cSld>
</p:sld>`)
	path := writeArchive(t, "charts.pptx", map[string][]byte{
		"ppt/slides/slide1.xml": slide,
		"ppt/media/image1.png":  pngBytes(t),
	})

	res, err := c.Convert(path)
	require.NoError(t, err)
	require.Len(t, res.Images, 1)
	assert.Contains(t, res.Markdown, "![image-1]("+res.Images[0]+")")
}

const sharedStringsXML = `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
  <si><t>Name</t></si>
  <si><t>Score</t></si>
  <si><r><t>al</t></r><r><t>pha</t></r></si>
</sst>`

const sheetXML = `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
    <row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>97.5</v></c></row>
    <row r="3"><c r="B3" t="b"><v>1</v></c></row>
  </sheetData>
</worksheet>`

func TestConvertXlsx(t *testing.T) {
	c := newTestConverter(t)
	path := writeArchive(t, "scores.xlsx", map[string][]byte{
		"xl/sharedStrings.xml":     []byte(sharedStringsXML),
		"xl/worksheets/sheet1.xml": []byte(sheetXML),
	})

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", res.Format)
	assert.Contains(t, res.Markdown, "| Name | Score |")
	assert.Contains(t, res.Markdown, "| alpha | 97.5 |")
	assert.Contains(t, res.Markdown, "|  | TRUE |")
	assert.NotContains(t, res.Markdown, "## Sheet")
}

func TestConvertXlsxMultipleSheets(t *testing.T) {
	c := newTestConverter(t)
	path := writeArchive(t, "multi.xlsx", map[string][]byte{
		"xl/worksheets/sheet1.xml": []byte(`<worksheet><sheetData><row r="1"><c r="A1"><v>1</v></c></row></sheetData></worksheet>`),
		"xl/worksheets/sheet2.xml": []byte(`<worksheet><sheetData><row r="1"><c r="A1"><v>2</v></c></row></sheetData></worksheet>`),
	})

	res, err := c.Convert(path)
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "## Sheet 1")
	assert.Contains(t, res.Markdown, "## Sheet 2")
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"A1", 0},
		{"B12", 1},
		{"Z3", 25},
		{"AA1", 26},
		{"BC7", 54},
		{"", 0},
		{"7", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnIndex(tt.ref), "ref %q", tt.ref)
	}
}
