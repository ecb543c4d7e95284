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

// pptxSlide mirrors the DrawingML slide structure: shapes carrying text
// bodies, each holding paragraphs of runs.
type pptxSlide struct {
	Common struct {
		Tree pptxShapeTree `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxShapeTree struct {
	Shapes   []pptxShape `xml:"sp"`
	Pictures []struct{}  `xml:"pic"`
}

type pptxShape struct {
	TextBody struct {
		Paragraphs []pptxTextPara `xml:"p"`
	} `xml:"txBody"`
}

type pptxTextPara struct {
	Runs []struct {
		Text string `xml:"t"`
	} `xml:"r"`
}

var slideName = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// convertPptx extracts slide text in presentation order, one Markdown
// section per slide. Pictures are stored from ppt/media and referenced at
// the end of the slide that embeds them.
func (c *Converter) convertPptx(filename string) (*Result, error) {
	archive, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("convert: opening pptx archive: %w", err)
	}
	defer archive.Close()

	images, err := c.storeArchiveMedia(&archive.Reader, "ppt/media/")
	if err != nil {
		return nil, err
	}

	numbers := slideNumbers(&archive.Reader)
	refs := newImageRefs(images)

	var sb strings.Builder
	for _, num := range numbers {
		data, err := archiveFile(&archive.Reader, fmt.Sprintf("ppt/slides/slide%d.xml", num))
		if err != nil {
			return nil, err
		}

		var slide pptxSlide
		if err := xml.Unmarshal(data, &slide); err != nil {
			return nil, fmt.Errorf("convert: parsing slide %d: %w", num, err)
		}

		sb.WriteString(fmt.Sprintf("## Slide %d\n\n", num))
		for _, shape := range slide.Common.Tree.Shapes {
			for _, para := range shape.TextBody.Paragraphs {
				var line strings.Builder
				for _, run := range para.Runs {
					line.WriteString(run.Text)
				}
				if text := strings.TrimSpace(line.String()); text != "" {
					sb.WriteString(text + "\n")
				}
			}
		}
		for range slide.Common.Tree.Pictures {
			if ref := refs.next(); ref != "" {
				sb.WriteString(ref + "\n")
			}
		}
		sb.WriteString("\n")
	}

	for _, ref := range refs.remaining() {
		sb.WriteString(ref + "\n\n")
	}

	return &Result{Markdown: sb.String(), Images: refs.urls}, nil
}

// slideNumbers lists the slide indices present in the archive, sorted
// numerically so slide10 follows slide9.
func slideNumbers(archive *zip.Reader) []int {
	var numbers []int
	for _, f := range archive.File {
		m := slideName.FindStringSubmatch(f.Name)
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
