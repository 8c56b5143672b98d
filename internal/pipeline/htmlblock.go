package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// pageBreakStyle matches the inline styles that request a page break, including
// the landscape variant used by pandoc page-break filters.
var pageBreakStyle = regexp.MustCompile(`(?i)(page-break(-landscape)?-after\s*:\s*always|break-after\s*:\s*page)`)

// htmlTokens converts raw HTML into tokens. Only page-break divs, <img> and
// <br> are understood; anything else keeps its literal source text.
// block selects block-level output (images wrapped in their own paragraph).
func htmlTokens(raw string, block bool) []Token {
	nodes, err := parseHTMLFragment(raw)
	if err != nil {
		return literalHTML(raw, block)
	}

	var out []Token
	for _, n := range nodes {
		switch {
		case n.Type == html.CommentNode:
			continue
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
			continue
		case n.Type != html.ElementNode:
			return literalHTML(raw, block)
		}

		switch n.DataAtom {
		case atom.Div:
			if !pageBreakStyle.MatchString(attr(n, "style")) || !block {
				return literalHTML(raw, block)
			}
			out = append(out, HorizontalRule{})
		case atom.Img:
			img := Image{Src: attr(n, "src"), Alt: attr(n, "alt"), Title: attr(n, "title")}
			if block {
				out = append(out, Paragraph{Inline: []Token{img}})
			} else {
				out = append(out, img)
			}
		case atom.Br:
			if block {
				continue
			}
			out = append(out, LineBreak{})
		default:
			return literalHTML(raw, block)
		}
	}
	return out
}

func literalHTML(raw string, block bool) []Token {
	if block {
		text := strings.TrimRight(raw, "\n")
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []Token{Paragraph{Inline: []Token{PlainText{Text: text}}}}
	}
	return []Token{PlainText{Text: raw}}
}

// parseHTMLFragment parses content in a <body> context so no html/head
// wrapper is synthesized.
func parseHTMLFragment(content string) ([]*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	return html.ParseFragment(strings.NewReader(content), context)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
