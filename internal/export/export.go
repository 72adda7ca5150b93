// Package export renders extraction markdown for the consumers outside this
// core: HTML for the document viewer, plain text for callers that only want
// the words.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

var md = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// HTML renders markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText derives the text content of a markdown document by rendering it
// and stripping the markup. Block boundaries become blank lines.
func PlainText(markdown string) string {
	rendered, err := HTML(markdown)
	if err != nil {
		return markdown
	}

	doc, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return markdown
	}

	var blocks []string
	var current strings.Builder

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			blocks = append(blocks, t)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "tr", "pre", "blockquote":
				flush()
			case "td", "th":
				if current.Len() > 0 {
					current.WriteString(" ")
				}
			case "br":
				current.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()

	return strings.Join(blocks, "\n\n")
}
