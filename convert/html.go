package convert

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// convertHTML parses the document and renders its content as Markdown.
// Base64 data-URI images are persisted through the media store and
// rewritten to issued URLs.
func (c *Converter) convertHTML(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: opening file: %w", err)
	}
	defer f.Close()

	r, err := charset.NewReader(f, "text/html")
	if err != nil {
		return nil, fmt.Errorf("convert: detecting charset: %w", err)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("convert: parsing HTML: %w", err)
	}

	var sb strings.Builder
	renderNode(&sb, doc)

	md, images := c.store.ReplaceBase64Images(sb.String(), c.relative)
	return &Result{Markdown: md, Images: images}, nil
}

// renderNode walks the DOM and appends each element's Markdown rendition.
func renderNode(sb *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head", "noscript":
			return
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(n.Data[1] - '0')
			sb.WriteString("\n" + strings.Repeat("#", level) + " " + inlineText(n) + "\n\n")
			return
		case "p", "div", "section", "article":
			renderChildren(sb, n)
			sb.WriteString("\n\n")
			return
		case "br":
			sb.WriteString("\n")
			return
		case "hr":
			sb.WriteString("\n---\n\n")
			return
		case "ul", "ol":
			renderList(sb, n, n.Data == "ol")
			sb.WriteString("\n")
			return
		case "a":
			href := attr(n, "href")
			text := inlineText(n)
			if href != "" && text != "" {
				sb.WriteString("[" + text + "](" + href + ")")
			} else {
				sb.WriteString(text)
			}
			return
		case "img":
			src := attr(n, "src")
			if src != "" {
				sb.WriteString("![" + attr(n, "alt") + "](" + src + ")")
			}
			return
		case "strong", "b":
			sb.WriteString("**" + inlineText(n) + "**")
			return
		case "em", "i":
			sb.WriteString("*" + inlineText(n) + "*")
			return
		case "code":
			if n.Parent == nil || n.Parent.Data != "pre" {
				sb.WriteString("`" + inlineText(n) + "`")
				return
			}
		case "pre":
			sb.WriteString("\n```\n" + inlineText(n) + "\n```\n\n")
			return
		case "table":
			sb.WriteString("\n" + markdownTable(tableRows(n)) + "\n")
			return
		case "blockquote":
			var inner strings.Builder
			renderChildren(&inner, n)
			for _, line := range strings.Split(strings.TrimSpace(inner.String()), "\n") {
				sb.WriteString("> " + line + "\n")
			}
			sb.WriteString("\n")
			return
		}
	}

	if n.Type == html.TextNode {
		text := collapseSpace(n.Data)
		if text == "" {
			return
		}
		// Keep a single boundary space so adjacent inline elements do
		// not fuse ("hello <b>world</b>").
		if strings.HasPrefix(n.Data, " ") || strings.HasPrefix(n.Data, "\n") || strings.HasPrefix(n.Data, "\t") {
			text = " " + text
		}
		if strings.HasSuffix(n.Data, " ") || strings.HasSuffix(n.Data, "\n") || strings.HasSuffix(n.Data, "\t") {
			text += " "
		}
		sb.WriteString(text)
		return
	}

	renderChildren(sb, n)
}

func renderChildren(sb *strings.Builder, n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		renderNode(sb, child)
	}
}

// renderList emits one bullet or numbered line per list item.
func renderList(sb *strings.Builder, n *html.Node, ordered bool) {
	idx := 0
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "li" {
			continue
		}
		idx++
		var item strings.Builder
		renderChildren(&item, child)
		text := strings.TrimSpace(item.String())
		if ordered {
			sb.WriteString(fmt.Sprintf("%d. %s\n", idx, text))
		} else {
			sb.WriteString("- " + text + "\n")
		}
	}
}

// tableRows flattens a table element into row/cell text.
func tableRows(n *html.Node) [][]string {
	var rows [][]string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					row = append(row, inlineText(cell))
				}
			}
			rows = append(rows, row)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return rows
}

// attr returns the value of an attribute on a node, or empty string if not
// found.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// inlineText returns the collapsed text content of a node's subtree.
func inlineText(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(collapseSpace(sb.String()))
}

// collapseSpace folds runs of whitespace into a single space, preserving
// nothing of the original layout.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
