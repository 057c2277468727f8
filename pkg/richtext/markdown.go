package richtext

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// FromMarkdown parses markdown source into a Document.
// Emphasis maps to italic, strong emphasis to bold, and links keep their
// destination. Block quotes are flattened into their paragraphs; code blocks
// become one plain paragraph per line.
func FromMarkdown(source []byte) *Document {
	root := markdown.Parser().Parse(text.NewReader(source))
	b := &docBuilder{source: source, doc: &Document{}}
	b.blocks(root)
	return b.doc
}

type docBuilder struct {
	doc    *Document
	source []byte
}

func (b *docBuilder) blocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n, false, false)
	}
}

func (b *docBuilder) block(n ast.Node, inList, ordered bool) {
	switch node := n.(type) {
	case *ast.Heading:
		p := b.inline(node)
		p.Kind, p.Level = KindHeading, node.Level
		b.add(p)
	case *ast.Paragraph, *ast.TextBlock:
		p := b.inline(node)
		if inList {
			p.Kind, p.Ordered = KindListItem, ordered
		}
		b.add(p)
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				b.block(c, true, node.IsOrdered())
			}
		}
	case *ast.Blockquote:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c, inList, ordered)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			line := string(seg.Value(b.source))
			b.add(NewParagraph(Plain(trimNewline(line))))
		}
	case *east.Table:
		b.doc.Blocks = append(b.doc.Blocks, Block{Table: b.table(node)})
	}
}

func (b *docBuilder) add(p *Paragraph) {
	b.doc.Blocks = append(b.doc.Blocks, Block{Paragraph: p})
}

func (b *docBuilder) table(t *east.Table) *Table {
	out := &Table{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []Cell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, Cell{Paragraphs: []*Paragraph{b.inline(cell)}})
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func (b *docBuilder) inline(n ast.Node) *Paragraph {
	p := &Paragraph{}
	b.walkInline(p, n, Attrs{})
	return p
}

func (b *docBuilder) walkInline(p *Paragraph, parent ast.Node, attrs Attrs) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			p.Spans = appendSpan(p.Spans, Span{Text: string(node.Segment.Value(b.source)), Attrs: attrs})
			if node.SoftLineBreak() || node.HardLineBreak() {
				p.Spans = appendSpan(p.Spans, Span{Text: " ", Attrs: attrs})
			}
		case *ast.String:
			p.Spans = appendSpan(p.Spans, Span{Text: string(node.Value), Attrs: attrs})
		case *ast.Emphasis:
			next := attrs
			if node.Level >= 2 {
				next.Bold = true
			} else {
				next.Italic = true
			}
			b.walkInline(p, node, next)
		case *ast.Link:
			next := attrs
			next.Link = string(node.Destination)
			b.walkInline(p, node, next)
		case *ast.AutoLink:
			next := attrs
			next.Link = string(node.URL(b.source))
			p.Spans = appendSpan(p.Spans, Span{Text: string(node.Label(b.source)), Attrs: next})
		case *ast.RawHTML, *ast.Image:
			// Not representable in a merge document.
		default:
			b.walkInline(p, node, attrs)
		}
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
