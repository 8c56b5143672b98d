package pipeline

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// CommonMarkPreprocessor applies transformations before tokenizing.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown applies all transformations to prepare Markdown for tokenizing.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content
	}

	content = normalizeLineEndings(content)
	content = norm.NFC.String(content)
	content = normalizeBlocks(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// normalizeBlocks moves text that follows a single-line $$...$$ block onto its
// own line so it is not swallowed by the math block, and keeps at most one
// blank line between blocks. Fenced code, indented code and multi-line math
// are left alone.
func normalizeBlocks(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	var fence string
	inMath := false
	afterCode := false // last non-blank line outside fences and math was indented code
	blanks := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		indent := len(line) - len(strings.TrimLeft(line, " "))
		body := line[indent:]

		outside := fence == "" && !inMath
		if outside && line == "" {
			blanks++
			continue
		}
		if blanks > 0 {
			keep := 1
			switch {
			case afterCode && indent >= 4:
				keep = blanks
			case len(out) == 0:
				keep = min(blanks, 2)
			}
			out = appendBlank(out, keep)
			blanks = 0
		}
		if outside {
			afterCode = indent >= 4
		}

		switch {
		case fence != "":
			if indent < 4 && closesFence(body, fence) {
				fence = ""
			}
		case inMath:
			if strings.Contains(line, "$$") {
				inMath = false
			}
		case indent >= 4:
		case isFence(body):
			fence = fenceMarker(body)
		case strings.HasPrefix(body, "$$"):
			closing := strings.Index(body[2:], "$$")
			if closing < 0 {
				inMath = true
				break
			}
			end := indent + 2 + closing + 2
			rest := strings.TrimSpace(line[end:])
			if rest != "" {
				out = append(out, line[:end])
				// Re-examine the remainder: it may open another block.
				lines[i] = rest
				i--
				continue
			}
		}
		out = append(out, line)
	}
	out = appendBlank(out, min(blanks, 2))
	return strings.Join(out, "\n")
}

func appendBlank(out []string, n int) []string {
	for range n {
		out = append(out, "")
	}
	return out
}

func isFence(body string) bool {
	return strings.HasPrefix(body, "```") || strings.HasPrefix(body, "~~~")
}

// fenceMarker returns the run of fence characters opening a code block.
func fenceMarker(body string) string {
	c := body[0]
	n := 0
	for n < len(body) && body[n] == c {
		n++
	}
	return body[:n]
}

// closesFence reports whether body is a closing fence for marker: at least as
// many fence characters followed only by whitespace.
func closesFence(body, marker string) bool {
	return strings.HasPrefix(body, marker) && strings.TrimSpace(strings.TrimLeft(body, marker[:1])) == ""
}
