package media

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tsawler/docmill/chunk"
)

var (
	// dataURIImage matches a Markdown image whose target is an inline
	// base64 data URI; group 1 is the full URI, group 2 the MIME subtype,
	// group 3 the payload.
	dataURIImage = regexp.MustCompile(`!\[[^\]]*\]\((data:image/([^;)]+);base64,([^)]*))\)`)

	// httpImage matches a Markdown image with an http(s) target; group 1
	// is the URL.
	httpImage = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^)]*)\)`)

	// relImage matches a Markdown image with a media-relative target
	// ("image/<name>"); group 1 is the path.
	relImage = regexp.MustCompile(`!\[[^\]]*\]\((image/[^)]*)\)`)

	// excessBlankLines collapses runs of three or more newlines left
	// behind when images are removed.
	excessBlankLines = regexp.MustCompile(`\n{3,}`)
)

// extToMIME maps data-URI subtypes to stored file extensions.
var mimeExt = map[string]string{
	"png":     ".png",
	"jpeg":    ".jpg",
	"jpg":     ".jpg",
	"webp":    ".webp",
	"gif":     ".gif",
	"svg+xml": ".svg",
}

// saveConcurrency bounds parallel image writes during base64 replacement.
const saveConcurrency = 4

// ReplaceBase64Images persists every inline base64 image in md through the
// store and replaces the data URI with the issued URL. It returns the
// rewritten text and the URLs in order of appearance. Images that fail to
// decode are left in place.
func (s *Store) ReplaceBase64Images(md string, relative bool) (string, []string) {
	matches := dataURIImage.FindAllStringSubmatch(md, -1)
	if len(matches) == 0 {
		return md, nil
	}

	type saved struct {
		dataURI string
		url     string
	}

	results := make([]saved, len(matches))
	var wg sync.WaitGroup
	sem := make(chan struct{}, saveConcurrency)

	for i, m := range matches {
		wg.Add(1)
		go func(i int, dataURI, subtype, payload string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			url, err := s.saveDataURI(subtype, payload, relative)
			if err != nil {
				s.log.Warn("skipping undecodable base64 image", "error", err)
				return
			}
			results[i] = saved{dataURI: dataURI, url: url}
		}(i, m[1], m[2], m[3])
	}
	wg.Wait()

	var urls []string
	for _, r := range results {
		if r.url == "" {
			continue
		}
		md = strings.Replace(md, r.dataURI, r.url, 1)
		urls = append(urls, r.url)
	}

	return md, urls
}

// saveDataURI decodes and stores one base64 payload, returning its URL.
func (s *Store) saveDataURI(subtype, payload string, relative bool) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("media: decoding base64 image: %w", err)
	}

	ext, ok := mimeExt[strings.ToLower(subtype)]
	if !ok {
		ext = ".png"
	}

	name, err := s.Save(data, ext)
	if err != nil {
		return "", err
	}

	if relative {
		return s.RelativePath(name), nil
	}
	return s.URL(name), nil
}

// StripBase64Images removes Markdown images whose targets are inline base64
// data URIs, then collapses the blank lines they leave behind. Converters
// use this for images that were already extracted through the store.
func StripBase64Images(md string) string {
	md = dataURIImage.ReplaceAllString(md, "")
	return excessBlankLines.ReplaceAllString(md, "\n\n")
}

// ExtractImageURLs returns every image reference in text, in order of
// appearance: http(s) URLs and media-relative "image/<name>" paths.
func ExtractImageURLs(text string) []string {
	type ref struct {
		pos int
		url string
	}
	var refs []ref
	for _, re := range []*regexp.Regexp{httpImage, relImage} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			refs = append(refs, ref{pos: m[0], url: text[m[2]:m[3]]})
		}
	}
	if len(refs) == 0 {
		return nil
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].pos < refs[j].pos })
	urls := make([]string, 0, len(refs))
	for _, r := range refs {
		urls = append(urls, r.url)
	}
	return urls
}

// SegmentImages is a text segment with its associated image URLs.
type SegmentImages struct {
	// Index is the segment's position in the sequence.
	Index int `json:"chunk_index"`

	// Text is the segment content, with duplicate image references
	// removed.
	Text string `json:"text"`

	// Images are the URLs first seen in this segment.
	Images []string `json:"image_urls"`
}

// AssignImages attributes image URLs to the segments that contain them.
// Overlapping segments repeat text, so an image can appear in more than one
// segment: each URL is credited to the first segment it appears in, and its
// Markdown reference is removed from later segments so downstream consumers
// never index the same image twice.
func AssignImages(segments []chunk.Segment) []SegmentImages {
	seen := make(map[string]struct{})
	out := make([]SegmentImages, 0, len(segments))

	for _, seg := range segments {
		text := seg.Text
		var fresh []string
		freshSet := make(map[string]struct{})

		for _, url := range ExtractImageURLs(text) {
			if _, own := freshSet[url]; own {
				continue
			}
			if _, dup := seen[url]; dup {
				text = removeImageRef(text, url)
				continue
			}
			seen[url] = struct{}{}
			freshSet[url] = struct{}{}
			fresh = append(fresh, url)
		}

		out = append(out, SegmentImages{
			Index:  seg.Index,
			Text:   text,
			Images: fresh,
		})
	}

	return out
}

// removeImageRef deletes every Markdown image reference to url from text.
func removeImageRef(text, url string) string {
	re := regexp.MustCompile(`!\[[^\]]*\]\(` + regexp.QuoteMeta(url) + `\)`)
	return re.ReplaceAllString(text, "")
}
