package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// docxParagraph mirrors the subset of WordprocessingML needed for text
// extraction: paragraph properties for heading and list detection, and
// runs carrying text or embedded drawings.
type docxParagraph struct {
	Props docxParaProps `xml:"pPr"`
	Runs  []docxRun     `xml:"r"`
}

type docxParaProps struct {
	Style struct {
		Val string `xml:"val,attr"`
	} `xml:"pStyle"`
	NumProps *struct{} `xml:"numPr"`
}

type docxRun struct {
	Texts    []docxText    `xml:"t"`
	Breaks   []struct{}    `xml:"br"`
	Drawings []docxDrawing `xml:"drawing"`
	Pictures []docxDrawing `xml:"pict"`
}

type docxText struct {
	Value string `xml:",chardata"`
}

type docxDrawing struct{}

type docxTable struct {
	Rows []docxTableRow `xml:"tr"`
}

type docxTableRow struct {
	Cells []docxTableCell `xml:"tc"`
}

type docxTableCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// convertDocx extracts the main document body of a Word file, preserving
// the order of paragraphs and tables, and rewrites embedded drawings to
// Markdown references for the images stored from word/media.
func (c *Converter) convertDocx(filename string) (*Result, error) {
	archive, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("convert: opening docx archive: %w", err)
	}
	defer archive.Close()

	images, err := c.storeArchiveMedia(&archive.Reader, "word/media/")
	if err != nil {
		return nil, err
	}

	doc, err := archiveFile(&archive.Reader, "word/document.xml")
	if err != nil {
		return nil, err
	}

	refs := newImageRefs(images)
	var sb strings.Builder

	decoder := xml.NewDecoder(bytes.NewReader(doc))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("convert: parsing document.xml: %w", err)
		}

		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "p":
			var para docxParagraph
			if err := decoder.DecodeElement(&para, &start); err != nil {
				return nil, fmt.Errorf("convert: parsing paragraph: %w", err)
			}
			sb.WriteString(renderDocxParagraph(para, refs))
			sb.WriteString("\n\n")
		case "tbl":
			var table docxTable
			if err := decoder.DecodeElement(&table, &start); err != nil {
				return nil, fmt.Errorf("convert: parsing table: %w", err)
			}
			sb.WriteString(markdownTable(docxTableText(table, refs)))
			sb.WriteString("\n")
		}
	}

	// Images never referenced from a drawing still belong to the document.
	for _, ref := range refs.remaining() {
		sb.WriteString(ref + "\n\n")
	}

	return &Result{Markdown: sb.String(), Images: refs.urls}, nil
}

// renderDocxParagraph flattens a paragraph's runs, mapping heading styles
// to Markdown headings and numbered properties to list items.
func renderDocxParagraph(para docxParagraph, refs *imageRefs) string {
	var sb strings.Builder
	for _, run := range para.Runs {
		for range run.Drawings {
			sb.WriteString(refs.next())
		}
		for range run.Pictures {
			sb.WriteString(refs.next())
		}
		for _, t := range run.Texts {
			sb.WriteString(t.Value)
		}
		for range run.Breaks {
			sb.WriteString("\n")
		}
	}

	text := sb.String()
	if level := headingLevel(para.Props.Style.Val); level > 0 && strings.TrimSpace(text) != "" {
		return strings.Repeat("#", level) + " " + strings.TrimSpace(text)
	}
	if para.Props.NumProps != nil && strings.TrimSpace(text) != "" {
		return "- " + strings.TrimSpace(text)
	}
	return text
}

// headingLevel maps Word heading style IDs ("Heading1".."Heading6") to
// Markdown levels. Localized style IDs are not recognized.
func headingLevel(style string) int {
	if !strings.HasPrefix(style, "Heading") {
		return 0
	}
	rest := strings.TrimPrefix(style, "Heading")
	if len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

func docxTableText(table docxTable, refs *imageRefs) [][]string {
	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if text := strings.TrimSpace(renderDocxParagraph(para, refs)); text != "" {
					parts = append(parts, text)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		rows = append(rows, cells)
	}
	return rows
}

// storeArchiveMedia persists every file under the given archive prefix
// through the media store and returns the issued references in a stable
// name order.
func (c *Converter) storeArchiveMedia(archive *zip.Reader, prefix string) ([]string, error) {
	var names []string
	files := make(map[string]*zip.File)
	for _, f := range archive.File {
		if strings.HasPrefix(f.Name, prefix) && !f.FileInfo().IsDir() {
			names = append(names, f.Name)
			files[f.Name] = f
		}
	}
	sort.Strings(names)

	var refs []string
	for _, name := range names {
		rc, err := files[name].Open()
		if err != nil {
			return nil, fmt.Errorf("convert: opening embedded media %s: %w", name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("convert: reading embedded media %s: %w", name, err)
		}

		stored, err := c.store.Save(data, path.Ext(name))
		if err != nil {
			c.log.Warn("skipping embedded image", "name", name, "error", err)
			continue
		}
		if c.relative {
			refs = append(refs, c.store.RelativePath(stored))
		} else {
			refs = append(refs, c.store.URL(stored))
		}
	}
	return refs, nil
}

// archiveFile reads one named entry out of a zip archive.
func archiveFile(archive *zip.Reader, name string) ([]byte, error) {
	for _, f := range archive.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("convert: opening %s: %w", name, err)
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, fmt.Errorf("convert: reading %s: %w", name, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("convert: archive entry %s not found", name)
}

// imageRefs hands out Markdown image references in document order as
// drawings are encountered, then reports any never consumed.
type imageRefs struct {
	urls []string
	pos  int
}

func newImageRefs(urls []string) *imageRefs {
	return &imageRefs{urls: urls}
}

// next returns the Markdown reference for the next stored image, or an
// empty string when the drawings outnumber the stored media.
func (r *imageRefs) next() string {
	if r.pos >= len(r.urls) {
		return ""
	}
	url := r.urls[r.pos]
	r.pos++
	return fmt.Sprintf("![image-%d](%s)", r.pos, url)
}

// remaining returns references for images no drawing consumed.
func (r *imageRefs) remaining() []string {
	var refs []string
	for r.pos < len(r.urls) {
		refs = append(refs, r.next())
	}
	return refs
}
