package pipeline

import (
	"bytes"
	"strconv"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMathBlock is the node kind of a $$ math block.
var KindMathBlock = ast.NewNodeKind("MathBlock")

var mathDelimiter = []byte("$$")

// mathBlockNode holds the raw TeX lines between the delimiters.
type mathBlockNode struct {
	ast.BaseBlock
	closed bool
}

func (n *mathBlockNode) Kind() ast.NodeKind { return KindMathBlock }

func (n *mathBlockNode) IsRaw() bool { return true }

func (n *mathBlockNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Closed": strconv.FormatBool(n.closed),
	}, nil)
}

// mathBlockParser opens a block on a line starting with $$ and closes it at the
// first following $$, on the same line or a later one.
type mathBlockParser struct{}

var _ parser.BlockParser = mathBlockParser{}

// mathBlockPriority places the parser ahead of every built-in block parser.
const mathBlockPriority = 99

func newMathBlockParser() util.PrioritizedValue {
	return util.Prioritized(mathBlockParser{}, mathBlockPriority)
}

func (mathBlockParser) Trigger() []byte {
	return []byte{'$'}
}

func (mathBlockParser) Open(_ ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !bytes.HasPrefix(line[pos:], mathDelimiter) {
		return nil, parser.NoChildren
	}

	node := &mathBlockNode{}
	start := segment.Start + pos + len(mathDelimiter)
	rest := line[pos+len(mathDelimiter):]
	if i := bytes.Index(rest, mathDelimiter); i >= 0 {
		node.Lines().Append(text.NewSegment(start, start+i))
		node.closed = true
		return node, parser.NoChildren
	}
	node.Lines().Append(text.NewSegment(start, segment.Stop))
	return node, parser.NoChildren
}

func (mathBlockParser) Continue(node ast.Node, reader text.Reader, _ parser.Context) parser.State {
	n := node.(*mathBlockNode)
	if n.closed {
		return parser.Close
	}

	line, segment := reader.PeekLine()
	if i := bytes.Index(line, mathDelimiter); i >= 0 {
		n.Lines().Append(text.NewSegment(segment.Start, segment.Start+i))
		n.closed = true
		reader.Advance(i + len(mathDelimiter))
		return parser.Close
	}

	n.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (mathBlockParser) Close(ast.Node, text.Reader, parser.Context) {}

func (mathBlockParser) CanInterruptParagraph() bool { return true }

func (mathBlockParser) CanAcceptIndentedLine() bool { return false }

// mathExpr returns the block content between the delimiters.
func mathExpr(n *mathBlockNode, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}
