package pipeline

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultTheme is the chroma style used when none is configured.
const DefaultTheme = "github"

// ColoredText is a span of code with an optional RRGGBB color.
type ColoredText struct {
	Text  string
	Color string
}

// Highlighter splits code into colored spans. Concatenating the spans yields
// the input unchanged.
type Highlighter interface {
	Highlight(code, language string) []ColoredText
}

// ChromaHighlighter colors code with chroma lexers and a named style.
type ChromaHighlighter struct {
	style *chroma.Style
}

// NewChromaHighlighter creates a highlighter for the named chroma style,
// falling back to the default theme for unknown names.
func NewChromaHighlighter(theme string) *ChromaHighlighter {
	if theme == "" {
		theme = DefaultTheme
	}
	return &ChromaHighlighter{style: styles.Get(theme)}
}

// Highlight tokenizes code. Unknown languages are detected from content, then
// fall back to plain text.
func (h *ChromaHighlighter) Highlight(code, language string) []ColoredText {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iter, err := lexer.Tokenise(nil, code)
	if err != nil {
		return []ColoredText{{Text: code}}
	}

	var spans []ColoredText
	for _, tok := range iter.Tokens() {
		if tok.Value == "" {
			continue
		}
		color := ""
		if entry := h.style.Get(tok.Type); entry.Colour.IsSet() {
			color = strings.TrimPrefix(entry.Colour.String(), "#")
		}
		if n := len(spans); n > 0 && spans[n-1].Color == color {
			spans[n-1].Text += tok.Value
			continue
		}
		spans = append(spans, ColoredText{Text: tok.Value, Color: color})
	}
	switch joinSpans(spans) {
	case code:
		return spans
	case code + "\n":
		// Lexers with EnsureNL append a newline the literal does not have.
		last := &spans[len(spans)-1]
		last.Text = strings.TrimSuffix(last.Text, "\n")
		if last.Text == "" {
			spans = spans[:len(spans)-1]
		}
		return spans
	default:
		return []ColoredText{{Text: code}}
	}
}

func joinSpans(spans []ColoredText) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
