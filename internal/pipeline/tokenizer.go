package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ListStyles names the paragraph styles given to list items. Empty means the
// items use the default paragraph style.
type ListStyles struct {
	Bullet string
	Number string
}

// Tokenizer parses Markdown with GFM extensions and $$ math blocks into tokens.
type Tokenizer struct {
	md     goldmark.Markdown
	styles ListStyles
}

// NewTokenizer creates a Tokenizer that assigns styles to list items.
func NewTokenizer(styles ListStyles) *Tokenizer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Tables, strikethrough, autolinks, task lists
		),
		goldmark.WithParserOptions(
			parser.WithBlockParsers(newMathBlockParser()),
		),
	)
	return &Tokenizer{md: md, styles: styles}
}

// Tokenize parses source into block tokens in document order. The only
// failure is a math block with no closing $$. Text after a $$...$$ block on
// the same line is parsed as the next block, whether or not source has been
// through a MarkdownPreprocessor.
func (t *Tokenizer) Tokenize(source string) ([]Token, error) {
	src := []byte(normalizeBlocks(source))
	doc := t.md.Parser().Parse(text.NewReader(src))
	w := &walker{src: src, styles: t.styles}
	return w.blocks(doc, nil)
}

// walker converts a goldmark AST into tokens.
type walker struct {
	src    []byte
	styles ListStyles
}

func (w *walker) blocks(parent ast.Node, out []Token) ([]Token, error) {
	var err error
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if out, err = w.block(n, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (w *walker) block(n ast.Node, out []Token) ([]Token, error) {
	switch v := n.(type) {
	case *mathBlockNode:
		if !v.closed {
			return nil, fmt.Errorf("%w: unclosed math block starting on line %d", ErrParse, w.lineOf(v))
		}
		return append(out, MathBlock{Expr: mathExpr(v, w.src)}), nil

	case *ast.Heading:
		return append(out, Heading{Level: v.Level, Inline: w.inlines(v)}), nil

	case *ast.Paragraph, *ast.TextBlock:
		if inline := w.inlines(v); len(inline) > 0 {
			out = append(out, Paragraph{Inline: inline})
		}
		return out, nil

	case *ast.List:
		return w.list(v, out)

	case *ast.FencedCodeBlock:
		lang := ""
		if v.Info != nil {
			lang = string(v.Language(w.src))
		}
		return append(out, CodeBlock{Code: w.lines(v), Language: lang}), nil

	case *ast.CodeBlock:
		return append(out, CodeBlock{Code: w.lines(v)}), nil

	case *ast.Blockquote:
		return w.blocks(v, out)

	case *ast.ThematicBreak:
		return append(out, HorizontalRule{}), nil

	case *ast.HTMLBlock:
		raw := w.lines(v)
		if v.HasClosure() {
			raw += string(v.ClosureLine.Value(w.src))
		}
		return append(out, htmlTokens(raw, true)...), nil

	case *east.Table:
		return append(out, w.table(v)), nil

	default:
		return w.blocks(n, out)
	}
}

// listRun collects consecutive list items into List tokens.
type listRun struct {
	ordered bool
	items   []ListItem
	out     []Token
}

func (r *listRun) flush() {
	if len(r.items) > 0 {
		r.out = append(r.out, List{Items: r.items, Ordered: r.ordered})
		r.items = nil
	}
}

// list flattens a list, nested lists included, in document order. A block
// inside an item that is not a paragraph (math, code, a table) closes the
// current List and follows it as its own token.
func (w *walker) list(list *ast.List, out []Token) ([]Token, error) {
	r := &listRun{ordered: list.IsOrdered(), out: out}
	if err := w.listItems(list, r); err != nil {
		return nil, err
	}
	r.flush()
	return r.out, nil
}

func (w *walker) listItems(list *ast.List, r *listRun) error {
	style := w.styles.Bullet
	if list.IsOrdered() {
		style = w.styles.Number
	}

	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var inline, after []Token
		var nested []*ast.List
		var err error
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch v := c.(type) {
			case *ast.List:
				nested = append(nested, v)
				continue
			case *ast.Paragraph, *ast.TextBlock:
				// Text after a block inside the item is no longer part of it.
				if len(after) == 0 {
					if len(inline) > 0 {
						inline = append(inline, LineBreak{})
					}
					inline = append(inline, w.inlines(v)...)
					continue
				}
			}
			if after, err = w.block(c, after); err != nil {
				return err
			}
		}
		if len(inline) > 0 || len(after) == 0 {
			r.items = append(r.items, ListItem{Inline: coalesce(inline), Style: style})
		}
		if len(after) > 0 {
			r.flush()
			r.out = append(r.out, after...)
		}
		for _, sub := range nested {
			if err := w.listItems(sub, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *walker) table(t *east.Table) Table {
	var tbl Table
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []TableCell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, TableCell{Inline: w.inlines(cell)})
		}
		if _, ok := row.(*east.TableHeader); ok {
			tbl.Header = append(tbl.Header, cells...)
		} else {
			tbl.Body = append(tbl.Body, cells...)
		}
	}
	return tbl
}

func (w *walker) inlines(parent ast.Node) []Token {
	var out []Token
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = w.inline(n, out)
	}
	return coalesce(out)
}

func (w *walker) inline(n ast.Node, out []Token) []Token {
	switch v := n.(type) {
	case *ast.Text:
		out = append(out, PlainText{Text: w.text(v)})
		switch {
		case v.HardLineBreak():
			out = append(out, LineBreak{})
		case v.SoftLineBreak():
			out = append(out, PlainText{Text: " "})
		}
	case *ast.String:
		out = append(out, PlainText{Text: string(v.Value)})
	case *ast.Emphasis:
		if v.Level >= 2 {
			out = append(out, StrongEmphasis{Inline: w.inlines(v)})
		} else {
			out = append(out, Emphasis{Inline: w.inlines(v)})
		}
	case *ast.Link:
		out = append(out, Link{Href: string(v.Destination), Title: string(v.Title), Inline: w.inlines(v)})
	case *ast.AutoLink:
		label := string(v.Label(w.src))
		out = append(out, Link{Href: string(v.URL(w.src)), Inline: []Token{PlainText{Text: label}}})
	case *ast.Image:
		out = append(out, Image{Src: string(v.Destination), Title: string(v.Title), Alt: w.plain(v)})
	case *ast.CodeSpan:
		out = append(out, PlainText{Text: w.plain(v)})
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			buf.Write(seg.Value(w.src))
		}
		out = append(out, htmlTokens(buf.String(), false)...)
	case *east.TaskCheckBox:
		if v.IsChecked {
			out = append(out, PlainText{Text: "[x] "})
		} else {
			out = append(out, PlainText{Text: "[ ] "})
		}
	default:
		// Strikethrough and unknown inlines keep their text.
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			out = w.inline(c, out)
		}
	}
	return out
}

// plain returns the concatenated text beneath n.
func (w *walker) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.WriteString(w.text(v))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// text returns the content of a text node with backslash escapes and
// character references resolved. Raw text (code spans) is kept as written.
func (w *walker) text(t *ast.Text) string {
	value := t.Segment.Value(w.src)
	if t.IsRaw() {
		return string(value)
	}
	value = util.UnescapePunctuations(value)
	value = util.ResolveNumericReferences(value)
	value = util.ResolveEntityNames(value)
	return string(value)
}

// lines returns the raw source lines of a block node.
func (w *walker) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(w.src))
	}
	return buf.String()
}

func (w *walker) lineOf(n ast.Node) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 0
	}
	return bytes.Count(w.src[:lines.At(0).Start], []byte{'\n'}) + 1
}

// coalesce merges adjacent PlainText tokens.
func coalesce(tokens []Token) []Token {
	out := tokens[:0]
	for _, tok := range tokens {
		if pt, ok := tok.(PlainText); ok && len(out) > 0 {
			if prev, ok := out[len(out)-1].(PlainText); ok {
				out[len(out)-1] = PlainText{Text: prev.Text + pt.Text}
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}
