// Package ingest normalizes raw captured text before classification.
// Captures pasted from web pages often carry markup; the classifier gets
// visible text only.
package ingest

import (
	"strings"

	"golang.org/x/net/html"
)

// MaxInputRunes caps captured text so a stray paste cannot blow up prompts.
const MaxInputRunes = 8000

// Normalize trims, strips markup when the input looks like HTML, collapses
// whitespace, and caps the length.
func Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	if looksLikeHTML(text) {
		if stripped, ok := stripMarkup(text); ok {
			text = stripped
		}
	}

	text = collapseWhitespace(text)

	runes := []rune(text)
	if len(runes) > MaxInputRunes {
		text = string(runes[:MaxInputRunes])
	}
	return text
}

func looksLikeHTML(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range []string{"<html", "<body", "<div", "<p>", "<br", "<span", "<!doctype"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// stripMarkup extracts visible text nodes, skipping script/style content
func stripMarkup(s string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", false
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), true
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
