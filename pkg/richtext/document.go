package richtext

import (
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the role of a paragraph.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindListItem
)

// Span is a piece of text with uniform formatting.
type Span struct {
	Text string
	Attrs
}

// Paragraph is a text block made of spans.
type Paragraph struct {
	Spans   []Span
	Kind    Kind
	Level   int  // Heading level (1-6) for headings
	Ordered bool // Numbered list item
}

// Table is a grid of cells.
type Table struct {
	Rows [][]Cell
}

// Cell holds the paragraphs of a single table cell.
type Cell struct {
	Paragraphs []*Paragraph
}

// Block is either a paragraph or a table.
type Block struct {
	Paragraph *Paragraph
	Table     *Table
}

// Document is a template body together with its identity.
type Document struct {
	ID     string
	Title  string
	Blocks []Block
}

// NewParagraph builds a plain paragraph from spans.
func NewParagraph(spans ...Span) *Paragraph {
	return &Paragraph{Spans: spans}
}

// Plain is a convenience constructor for an unformatted span.
func Plain(text string) Span {
	return Span{Text: text}
}

// Text returns the concatenated span text.
func (p *Paragraph) Text() string {
	if len(p.Spans) == 1 {
		return p.Spans[0].Text
	}
	var b strings.Builder
	for _, s := range p.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// AttrsAt returns the formatting of the character at the given byte offset.
func (p *Paragraph) AttrsAt(offset int) Attrs {
	pos := 0
	for _, s := range p.Spans {
		if offset < pos+len(s.Text) {
			return s.Attrs
		}
		pos += len(s.Text)
	}
	if n := len(p.Spans); n > 0 {
		return p.Spans[n-1].Attrs
	}
	return Attrs{}
}

// Markup renders the paragraph content as HTML without a block wrapper.
func (p *Paragraph) Markup() string {
	return Markup(MergeRuns(p))
}

func (p *Paragraph) clone() *Paragraph {
	c := *p
	c.Spans = slices.Clone(p.Spans)
	return &c
}

// Paragraphs returns every paragraph in document order, including those
// inside table cells.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.Blocks {
		switch {
		case b.Paragraph != nil:
			out = append(out, b.Paragraph)
		case b.Table != nil:
			for _, row := range b.Table.Rows {
				for _, cell := range row {
					out = append(out, cell.Paragraphs...)
				}
			}
		}
	}
	return out
}

// Text flattens the document to plain text, one paragraph per line.
func (d *Document) Text() string {
	paragraphs := d.Paragraphs()
	lines := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		lines[i] = p.Text()
	}
	return strings.Join(lines, "\n")
}

// RemoveParagraphs deletes every paragraph for which drop returns true.
// Table cells keep their position even when all of their paragraphs are
// removed. Returns the number of removed paragraphs.
func (d *Document) RemoveParagraphs(drop func(*Paragraph) bool) int {
	removed := 0
	blocks := d.Blocks[:0]
	for _, b := range d.Blocks {
		if b.Paragraph != nil && drop(b.Paragraph) {
			removed++
			continue
		}
		if b.Table != nil {
			for _, row := range b.Table.Rows {
				for i := range row {
					before := len(row[i].Paragraphs)
					row[i].Paragraphs = slices.DeleteFunc(row[i].Paragraphs, drop)
					removed += before - len(row[i].Paragraphs)
				}
			}
		}
		blocks = append(blocks, b)
	}
	d.Blocks = blocks
	return removed
}

// Clone returns a deep copy that can be edited independently.
func (d *Document) Clone() *Document {
	c := &Document{ID: d.ID, Title: d.Title, Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		switch {
		case b.Paragraph != nil:
			c.Blocks[i] = Block{Paragraph: b.Paragraph.clone()}
		case b.Table != nil:
			t := &Table{Rows: make([][]Cell, len(b.Table.Rows))}
			for r, row := range b.Table.Rows {
				t.Rows[r] = make([]Cell, len(row))
				for ci, cell := range row {
					ps := make([]*Paragraph, len(cell.Paragraphs))
					for pi, p := range cell.Paragraphs {
						ps[pi] = p.clone()
					}
					t.Rows[r][ci] = Cell{Paragraphs: ps}
				}
			}
			c.Blocks[i] = Block{Table: t}
		}
	}
	return c
}

// Markup renders the whole document to an HTML fragment. Consecutive list
// items share one list element. Paragraphs without text produce no output.
func (d *Document) Markup() string {
	var (
		b       strings.Builder
		openTag string
	)
	closeList := func() {
		if openTag != "" {
			b.WriteString("</" + openTag + ">")
			openTag = ""
		}
	}

	for _, blk := range d.Blocks {
		switch {
		case blk.Paragraph != nil:
			p := blk.Paragraph
			inner := p.Markup()
			if inner == "" {
				continue
			}
			if p.Kind != KindListItem {
				closeList()
			}
			switch p.Kind {
			case KindHeading:
				tag := "h" + strconv.Itoa(min(max(p.Level, 1), 6))
				b.WriteString("<" + tag + ">" + inner + "</" + tag + ">")
			case KindListItem:
				tag := "ul"
				if p.Ordered {
					tag = "ol"
				}
				if openTag != tag {
					closeList()
					b.WriteString("<" + tag + ">")
					openTag = tag
				}
				b.WriteString("<li>" + inner + "</li>")
			default:
				b.WriteString("<p>" + inner + "</p>")
			}
		case blk.Table != nil:
			closeList()
			writeTable(&b, blk.Table)
		}
	}
	closeList()
	return b.String()
}

func writeTable(b *strings.Builder, t *Table) {
	b.WriteString("<table>")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			parts := make([]string, 0, len(cell.Paragraphs))
			for _, p := range cell.Paragraphs {
				if m := p.Markup(); m != "" {
					parts = append(parts, m)
				}
			}
			b.WriteString("<td>" + strings.Join(parts, "<br>") + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
}
