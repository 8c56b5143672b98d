package docx

import (
	"fmt"
	"strings"
)

// Image paragraph layout.
const (
	imageSpaceAfter = 360 // 18pt
	maxHeadingLevel = 9
)

// checkpoint records what a failing Apply must undo.
type checkpoint struct {
	blocks    int
	media     int
	pictureID int
	lastTable *Table
	undo      []func()
}

// Apply executes commands strictly in order. If any command fails, the
// document is restored to its state before the call.
func (d *Document) Apply(cmds []Command) error {
	cp := &checkpoint{
		blocks:    len(d.Blocks),
		media:     len(d.media),
		pictureID: d.pictureID,
		lastTable: d.lastTable,
	}
	for i, cmd := range cmds {
		if err := d.apply(cmd, cp); err != nil {
			d.rollback(cp)
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	return nil
}

func (d *Document) rollback(cp *checkpoint) {
	for i := len(cp.undo) - 1; i >= 0; i-- {
		cp.undo[i]()
	}
	for _, m := range d.media[cp.media:] {
		for key, existing := range d.mediaHash {
			if existing == m {
				delete(d.mediaHash, key)
			}
		}
	}
	d.Blocks = d.Blocks[:cp.blocks]
	d.media = d.media[:cp.media]
	d.pictureID = cp.pictureID
	d.lastTable = cp.lastTable
}

func (d *Document) apply(cmd Command, cp *checkpoint) error {
	switch c := cmd.(type) {
	case AddHeading:
		if c.Level < 0 {
			return fmt.Errorf("%w: heading level %d", ErrInvalidCommand, c.Level)
		}
		runs, err := buildRuns(c.Runs)
		if err != nil {
			return err
		}
		d.Blocks = append(d.Blocks, &Heading{Level: min(c.Level, maxHeadingLevel), Runs: runs})

	case AddParagraph:
		runs, err := buildRuns(c.Runs)
		if err != nil {
			return err
		}
		d.Blocks = append(d.Blocks, &Paragraph{Style: c.Style, Runs: runs})

	case AddTable:
		if c.Rows <= 0 || c.Cols <= 0 {
			return fmt.Errorf("%w: table %dx%d", ErrInvalidCommand, c.Rows, c.Cols)
		}
		t := newTable(c.Rows, c.Cols, c.Style)
		d.Blocks = append(d.Blocks, t)
		d.lastTable = t

	case SetCellContent:
		return d.setCell(c, cp)

	case AddImage:
		return d.addImage(c)

	case AddPageBreak:
		d.Blocks = append(d.Blocks, PageBreak{})

	default:
		return fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
	}
	return nil
}

func (d *Document) setCell(c SetCellContent, cp *checkpoint) error {
	t := d.lastTable
	if t == nil {
		return fmt.Errorf("%w: (%d, %d) with no table declared", ErrOutOfBounds, c.Row, c.Col)
	}
	if c.Row < 0 || c.Row >= t.Rows || c.Col < 0 || c.Col >= t.Cols {
		return fmt.Errorf("%w: (%d, %d) in %dx%d table", ErrOutOfBounds, c.Row, c.Col, t.Rows, t.Cols)
	}
	runs, err := buildRuns(c.Runs)
	if err != nil {
		return err
	}
	cell := t.Cells[c.Row][c.Col]
	old := cell.Runs
	cp.undo = append(cp.undo, func() { cell.Runs = old })
	cell.Runs = runs
	return nil
}

func (d *Document) addImage(c AddImage) error {
	var data []byte
	switch src := c.Source.(type) {
	case InlineData:
		data = src.Data
	case FileRef:
		b, err := d.readFile(src.Path)
		if err != nil {
			return fmt.Errorf("%w: reading image %s: %v", ErrIO, src.Path, err)
		}
		data = b
	default:
		return fmt.Errorf("%w: image source %T", ErrInvalidCommand, c.Source)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image data", ErrUnsupportedImage)
	}

	m, err := d.addMedia(data)
	if err != nil {
		return err
	}

	d.pictureID++
	w, h := extent(m, c.Width)
	pic := &Picture{ID: d.pictureID, Media: m, Width: w, Height: h, Alt: c.Alt}
	d.Blocks = append(d.Blocks, &Paragraph{
		Align:      "center",
		SpaceAfter: imageSpaceAfter,
		Runs: []*Run{
			{Content: []RunContent{pic}},
			{Content: []RunContent{Break{}}},
			{Italic: true, Content: []RunContent{Text(c.Alt)}},
			{Content: []RunContent{Break{}}},
		},
	})
	return nil
}

// buildRuns interprets run operations. SetRunFormat affects only the last run.
func buildRuns(ops []RunOp) ([]*Run, error) {
	var runs []*Run
	for _, op := range ops {
		switch o := op.(type) {
		case AddRun:
			r := &Run{Color: o.Color}
			appendText(r, o.Text)
			runs = append(runs, r)
		case SetRunFormat:
			if len(runs) == 0 {
				continue
			}
			last := runs[len(runs)-1]
			switch o.Format {
			case Bold:
				last.Bold = true
			case Italic:
				last.Italic = true
			default:
				return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, o.Format)
			}
		case AddBreak:
			if len(runs) == 0 {
				runs = append(runs, &Run{})
			}
			last := runs[len(runs)-1]
			last.Content = append(last.Content, Break{})
		default:
			return nil, fmt.Errorf("%w: run op %T", ErrInvalidCommand, op)
		}
	}
	return runs, nil
}

func appendText(r *Run, s string) {
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			r.Content = append(r.Content, Break{})
		}
		if line != "" {
			r.Content = append(r.Content, Text(line))
		}
	}
}
