package pipeline

// Token is one node of the tokenized document. Block tokens hold their inline
// content; ordering is document order.
type Token interface {
	token()
}

// Heading is an ATX or setext heading, Level 1 to 6.
type Heading struct {
	Level  int
	Inline []Token
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inline []Token
}

// List is an ordered or bullet list. Nested lists are flattened into Items.
type List struct {
	Items   []ListItem
	Ordered bool
}

// ListItem is one list entry with the paragraph style it is emitted with.
type ListItem struct {
	Inline []Token
	Style  string
}

// Table holds header cells and body cells, the latter flattened row-major.
type Table struct {
	Header []TableCell
	Body   []TableCell
}

// TableCell is the inline content of one cell.
type TableCell struct {
	Inline []Token
}

// CodeBlock is fenced or indented literal code.
type CodeBlock struct {
	Code     string
	Language string
}

// MathBlock is the TeX source between a pair of $$ delimiters.
type MathBlock struct {
	Expr string
}

// Image references a picture by path, URL or data URI.
type Image struct {
	Src   string
	Title string
	Alt   string
}

// Link is a hyperlink with inline text.
type Link struct {
	Href   string
	Title  string
	Inline []Token
}

// Emphasis is italic text.
type Emphasis struct {
	Inline []Token
}

// StrongEmphasis is bold text.
type StrongEmphasis struct {
	Inline []Token
}

// HorizontalRule is a thematic break, emitted as a page break.
type HorizontalRule struct{}

// PlainText is literal text.
type PlainText struct {
	Text string
}

// LineBreak is a hard line break.
type LineBreak struct{}

func (Heading) token()        {}
func (Paragraph) token()      {}
func (List) token()           {}
func (ListItem) token()       {}
func (Table) token()          {}
func (TableCell) token()      {}
func (CodeBlock) token()      {}
func (MathBlock) token()      {}
func (Image) token()          {}
func (Link) token()           {}
func (Emphasis) token()       {}
func (StrongEmphasis) token() {}
func (HorizontalRule) token() {}
func (PlainText) token()      {}
func (LineBreak) token()      {}
