package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sfu-bigdata/go-mdocx/internal/fileutil"
)

// Package namespaces.
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relCoreProps      = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relExtendedProps  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctDocument  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	// Application is recorded in docProps/app.xml.
	Application = "go-mdocx"
)

// Part names inside the package.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartStyles       = "word/styles.xml"
	PartNumbering    = "word/numbering.xml"
	PartCore         = "docProps/core.xml"
	PartApp          = "docProps/app.xml"
)

// countingWriter tracks bytes written for io.WriterTo.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo serializes the document as a .docx package.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if len(d.template.Styles) == 0 {
		return 0, ErrMissingTemplate
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	parts := []struct {
		name  string
		write func(io.Writer) error
	}{
		{PartContentTypes, d.writeContentTypes},
		{PartRootRels, writeRootRels},
		{PartDocument, d.writeDocument},
		{PartDocumentRels, d.writeDocumentRels},
		{PartStyles, rawPart(d.template.Styles)},
		{PartCore, d.writeCore},
		{PartApp, writeApp},
	}
	if d.hasNumbering() {
		parts = append(parts, struct {
			name  string
			write func(io.Writer) error
		}{PartNumbering, rawPart(d.template.Numbering)})
	}

	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("%w: creating %s: %v", ErrIO, p.name, err)
		}
		if err := p.write(f); err != nil {
			return cw.n, fmt.Errorf("%w: writing %s: %v", ErrIO, p.name, err)
		}
	}

	for _, m := range d.media {
		name := "word/media/" + m.Name
		f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return cw.n, fmt.Errorf("%w: creating %s: %v", ErrIO, name, err)
		}
		if _, err := f.Write(m.Data); err != nil {
			return cw.n, fmt.Errorf("%w: writing %s: %v", ErrIO, name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("%w: finalizing package: %v", ErrIO, err)
	}
	return cw.n, nil
}

// Save writes the package to path atomically.
func (d *Document) Save(path string) error {
	err := fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		_, err := d.WriteTo(w)
		return err
	})
	if err != nil && !errors.Is(err, ErrIO) && !errors.Is(err, ErrMissingTemplate) {
		return fmt.Errorf("%w: saving %s: %v", ErrIO, path, err)
	}
	return err
}

func (d *Document) hasNumbering() bool {
	return len(d.template.Numbering) > 0
}

func rawPart(data []byte) func(io.Writer) error {
	return func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
}

// xmlWriter accumulates the first write error so markup code stays linear.
type xmlWriter struct {
	w   io.Writer
	err error
}

func (x *xmlWriter) raw(s string) {
	if x.err != nil {
		return
	}
	_, x.err = io.WriteString(x.w, s)
}

func (x *xmlWriter) text(s string) {
	if x.err != nil {
		return
	}
	x.err = xml.EscapeText(x.w, []byte(s))
}

func (x *xmlWriter) attr(name, value string) {
	x.raw(" " + name + `="`)
	x.text(value)
	x.raw(`"`)
}

func writeRootRels(w io.Writer) error {
	x := &xmlWriter{w: w}
	x.raw(xmlHeader)
	x.raw(`<Relationships xmlns="` + nsRel + `">`)
	x.raw(`<Relationship Id="rId1" Type="` + relOfficeDocument + `" Target="word/document.xml"/>`)
	x.raw(`<Relationship Id="rId2" Type="` + relCoreProps + `" Target="docProps/core.xml"/>`)
	x.raw(`<Relationship Id="rId3" Type="` + relExtendedProps + `" Target="docProps/app.xml"/>`)
	x.raw(`</Relationships>`)
	return x.err
}

func (d *Document) writeContentTypes(w io.Writer) error {
	x := &xmlWriter{w: w}
	x.raw(xmlHeader)
	x.raw(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	x.raw(`<Default Extension="rels" ContentType="` + ctRels + `"/>`)
	x.raw(`<Default Extension="xml" ContentType="application/xml"/>`)
	seen := map[string]bool{}
	for _, m := range d.media {
		if seen[m.Ext] {
			continue
		}
		seen[m.Ext] = true
		x.raw(`<Default`)
		x.attr("Extension", m.Ext)
		x.attr("ContentType", m.ContentType)
		x.raw(`/>`)
	}
	x.raw(`<Override PartName="/` + PartDocument + `" ContentType="` + ctDocument + `"/>`)
	x.raw(`<Override PartName="/` + PartStyles + `" ContentType="` + ctStyles + `"/>`)
	if d.hasNumbering() {
		x.raw(`<Override PartName="/` + PartNumbering + `" ContentType="` + ctNumbering + `"/>`)
	}
	x.raw(`<Override PartName="/` + PartCore + `" ContentType="` + ctCore + `"/>`)
	x.raw(`<Override PartName="/` + PartApp + `" ContentType="` + ctApp + `"/>`)
	x.raw(`</Types>`)
	return x.err
}

func (d *Document) writeDocumentRels(w io.Writer) error {
	x := &xmlWriter{w: w}
	x.raw(xmlHeader)
	x.raw(`<Relationships xmlns="` + nsRel + `">`)
	x.raw(`<Relationship Id="rIdStyles" Type="` + relStyles + `" Target="styles.xml"/>`)
	if d.hasNumbering() {
		x.raw(`<Relationship Id="rIdNumbering" Type="` + relNumbering + `" Target="numbering.xml"/>`)
	}
	for _, m := range d.media {
		x.raw(`<Relationship`)
		x.attr("Id", m.RelID)
		x.raw(` Type="` + relImage + `"`)
		x.attr("Target", "media/"+m.Name)
		x.raw(`/>`)
	}
	x.raw(`</Relationships>`)
	return x.err
}

func (d *Document) writeCore(w io.Writer) error {
	created := d.Properties.Created
	if created.IsZero() {
		created = time.Now()
	}
	stamp := created.UTC().Format(time.RFC3339)

	x := &xmlWriter{w: w}
	x.raw(xmlHeader)
	x.raw(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	if d.Properties.Title != "" {
		x.raw(`<dc:title>`)
		x.text(d.Properties.Title)
		x.raw(`</dc:title>`)
	}
	if d.Properties.Author != "" {
		x.raw(`<dc:creator>`)
		x.text(d.Properties.Author)
		x.raw(`</dc:creator>`)
	}
	x.raw(`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>`)
	x.raw(`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>`)
	x.raw(`</cp:coreProperties>`)
	return x.err
}

func writeApp(w io.Writer) error {
	x := &xmlWriter{w: w}
	x.raw(xmlHeader)
	x.raw(`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">`)
	x.raw(`<Application>` + Application + `</Application>`)
	x.raw(`</Properties>`)
	return x.err
}

func (d *Document) writeDocument(w io.Writer) error {
	x := &xmlWriter{w: w}
	x.raw(xmlHeader)
	x.raw(`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `" xmlns:wp="` + nsWP +
		`" xmlns:a="` + nsA + `" xmlns:pic="` + nsPic + `">`)
	x.raw(`<w:body>`)

	for i, b := range d.Blocks {
		switch v := b.(type) {
		case *Paragraph:
			writeParagraph(x, v.Style, v.Align, v.SpaceAfter, v.Runs)
		case *Heading:
			writeParagraph(x, headingStyle(v.Level), "", 0, v.Runs)
		case *Table:
			d.writeTable(x, v)
			// Word merges adjacent tables and requires a paragraph before sectPr.
			if i == len(d.Blocks)-1 {
				x.raw(`<w:p/>`)
			} else if _, next := d.Blocks[i+1].(*Table); next {
				x.raw(`<w:p/>`)
			}
		case PageBreak:
			x.raw(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
		}
	}

	d.writeSection(x)
	x.raw(`</w:body></w:document>`)
	return x.err
}

func (d *Document) writeSection(x *xmlWriter) {
	p := d.Page
	width, height := p.Width, p.Height
	orient := ""
	if p.Landscape {
		width, height = max(width, height), min(width, height)
		orient = ` w:orient="landscape"`
	}
	m := strconv.Itoa(p.Margin)
	x.raw(`<w:sectPr>`)
	x.raw(`<w:pgSz w:w="` + strconv.Itoa(width) + `" w:h="` + strconv.Itoa(height) + `"` + orient + `/>`)
	x.raw(`<w:pgMar w:top="` + m + `" w:right="` + m + `" w:bottom="` + m + `" w:left="` + m +
		`" w:header="720" w:footer="720" w:gutter="0"/>`)
	x.raw(`</w:sectPr>`)
}

// textWidth returns the usable width between margins in twips.
func (d *Document) textWidth() int {
	width := d.Page.Width
	if d.Page.Landscape {
		width = max(d.Page.Width, d.Page.Height)
	}
	return max(width-2*d.Page.Margin, TwipsPerInch)
}

func (d *Document) writeTable(x *xmlWriter, t *Table) {
	colWidth := strconv.Itoa(d.textWidth() / t.Cols)

	x.raw(`<w:tbl><w:tblPr>`)
	if t.Style != "" {
		x.raw(`<w:tblStyle`)
		x.attr("w:val", StyleID(t.Style))
		x.raw(`/>`)
	}
	x.raw(`<w:tblW w:w="0" w:type="auto"/><w:tblLook w:val="04A0"/></w:tblPr>`)
	x.raw(`<w:tblGrid>`)
	for range t.Cols {
		x.raw(`<w:gridCol w:w="` + colWidth + `"/>`)
	}
	x.raw(`</w:tblGrid>`)

	for _, row := range t.Cells {
		x.raw(`<w:tr>`)
		for _, cell := range row {
			x.raw(`<w:tc><w:tcPr><w:tcW w:w="` + colWidth + `" w:type="dxa"/></w:tcPr>`)
			writeParagraph(x, "", "", 0, cell.Runs)
			x.raw(`</w:tc>`)
		}
		x.raw(`</w:tr>`)
	}
	x.raw(`</w:tbl>`)
}

func writeParagraph(x *xmlWriter, style, align string, spaceAfter int, runs []*Run) {
	x.raw(`<w:p>`)
	if style != "" || align != "" || spaceAfter > 0 {
		x.raw(`<w:pPr>`)
		if style != "" {
			x.raw(`<w:pStyle`)
			x.attr("w:val", StyleID(style))
			x.raw(`/>`)
		}
		if spaceAfter > 0 {
			x.raw(`<w:spacing w:after="` + strconv.Itoa(spaceAfter) + `"/>`)
		}
		if align != "" {
			x.raw(`<w:jc`)
			x.attr("w:val", align)
			x.raw(`/>`)
		}
		x.raw(`</w:pPr>`)
	}
	for _, r := range runs {
		writeRun(x, r)
	}
	x.raw(`</w:p>`)
}

func writeRun(x *xmlWriter, r *Run) {
	x.raw(`<w:r>`)
	if r.Bold || r.Italic || r.Color != "" {
		x.raw(`<w:rPr>`)
		if r.Bold {
			x.raw(`<w:b/>`)
		}
		if r.Italic {
			x.raw(`<w:i/>`)
		}
		if r.Color != "" {
			x.raw(`<w:color`)
			x.attr("w:val", strings.TrimPrefix(r.Color, "#"))
			x.raw(`/>`)
		}
		x.raw(`</w:rPr>`)
	}
	for _, c := range r.Content {
		switch v := c.(type) {
		case Text:
			x.raw(`<w:t xml:space="preserve">`)
			x.text(string(v))
			x.raw(`</w:t>`)
		case Break:
			x.raw(`<w:br/>`)
		case *Picture:
			writePicture(x, v)
		}
	}
	x.raw(`</w:r>`)
}

func writePicture(x *xmlWriter, p *Picture) {
	id := strconv.Itoa(p.ID)
	cx := strconv.FormatInt(int64(p.Width), 10)
	cy := strconv.FormatInt(int64(p.Height), 10)

	x.raw(`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`)
	x.raw(`<wp:extent cx="` + cx + `" cy="` + cy + `"/>`)
	x.raw(`<wp:docPr id="` + id + `" name="Picture ` + id + `"`)
	x.attr("descr", p.Alt)
	x.raw(`/>`)
	x.raw(`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`)
	x.raw(`<a:graphic><a:graphicData uri="` + nsPic + `"><pic:pic>`)
	x.raw(`<pic:nvPicPr><pic:cNvPr id="0"`)
	x.attr("name", p.Media.Name)
	x.raw(`/><pic:cNvPicPr/></pic:nvPicPr>`)
	x.raw(`<pic:blipFill><a:blip`)
	x.attr("r:embed", p.Media.RelID)
	x.raw(`/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`)
	x.raw(`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="` + cx + `" cy="` + cy + `"/></a:xfrm>`)
	x.raw(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`)
	x.raw(`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`)
}

// headingStyle maps a zero-based heading level to its style name.
func headingStyle(level int) string {
	if level <= 0 {
		return "Title"
	}
	return "Heading " + strconv.Itoa(level)
}

// StyleID converts a style display name ("List Bullet") to its id ("ListBullet").
func StyleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}
