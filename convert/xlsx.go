package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// xlsxSharedStrings is the xl/sharedStrings.xml string table. Rich-text
// entries carry their text in nested runs instead of a direct t element.
type xlsxSharedStrings struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

type xlsxWorksheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxCell struct {
	Ref   string `xml:"r,attr"`
	Type  string `xml:"t,attr"`
	Value string `xml:"v"`
	// Inline strings live under is>t rather than v.
	Inline string `xml:"is>t"`
}

var sheetName = regexp.MustCompile(`^xl/worksheets/sheet(\d+)\.xml$`)

// convertXlsx renders each worksheet as a Markdown table, resolving
// shared-string cells against the workbook string table.
func (c *Converter) convertXlsx(filename string) (*Result, error) {
	archive, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("convert: opening xlsx archive: %w", err)
	}
	defer archive.Close()

	shared, err := readSharedStrings(&archive.Reader)
	if err != nil {
		return nil, err
	}

	numbers := sheetNumbers(&archive.Reader)
	multi := len(numbers) > 1

	var sb strings.Builder
	for _, num := range numbers {
		data, err := archiveFile(&archive.Reader, fmt.Sprintf("xl/worksheets/sheet%d.xml", num))
		if err != nil {
			return nil, err
		}

		var sheet xlsxWorksheet
		if err := xml.Unmarshal(data, &sheet); err != nil {
			return nil, fmt.Errorf("convert: parsing sheet %d: %w", num, err)
		}

		if multi {
			sb.WriteString(fmt.Sprintf("## Sheet %d\n\n", num))
		}
		sb.WriteString(markdownTable(sheetRows(sheet, shared)))
		sb.WriteString("\n")
	}

	return &Result{Markdown: sb.String()}, nil
}

func readSharedStrings(archive *zip.Reader) ([]string, error) {
	data, err := archiveFile(archive, "xl/sharedStrings.xml")
	if err != nil {
		// Workbooks with no string cells omit the table entirely.
		return nil, nil
	}

	var table xlsxSharedStrings
	if err := xml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("convert: parsing shared strings: %w", err)
	}

	strs := make([]string, len(table.Items))
	for i, item := range table.Items {
		if item.Text != "" {
			strs[i] = item.Text
			continue
		}
		var sb strings.Builder
		for _, run := range item.Runs {
			sb.WriteString(run.Text)
		}
		strs[i] = sb.String()
	}
	return strs, nil
}

// sheetRows converts worksheet rows to text, placing each cell at the
// column its reference names so sparse rows keep their alignment.
func sheetRows(sheet xlsxWorksheet, shared []string) [][]string {
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		var cells []string
		for _, cell := range row.Cells {
			col := columnIndex(cell.Ref)
			for len(cells) <= col {
				cells = append(cells, "")
			}
			cells[col] = cellValue(cell, shared)
		}
		rows = append(rows, cells)
	}
	return rows
}

func cellValue(cell xlsxCell, shared []string) string {
	switch cell.Type {
	case "s":
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return cell.Inline
	case "b":
		if cell.Value == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return cell.Value
	}
}

// columnIndex converts the column letters of a cell reference ("BC12") to
// a zero-based index. Malformed references map to column zero.
func columnIndex(ref string) int {
	idx := 0
	seen := false
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A') + 1
		seen = true
	}
	if !seen {
		return 0
	}
	return idx - 1
}

func sheetNumbers(archive *zip.Reader) []int {
	var numbers []int
	for _, f := range archive.File {
		m := sheetName.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}
