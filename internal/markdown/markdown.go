// Package markdown parses assistant replies into display blocks.
//
// Parsing is CommonMark plus the GitHub extensions (tables, strikethrough,
// autolinks, task lists). The result is a plain tree that a surface can lay
// out however it likes; nothing here knows about terminals.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Kind identifies a block type
type Kind int

const (
	KindHeading Kind = iota + 1
	KindParagraph
	KindCode
	KindList
	KindBlockquote
	KindRule
	KindTable
	KindHTML
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindCode:
		return "code"
	case KindList:
		return "list"
	case KindBlockquote:
		return "blockquote"
	case KindRule:
		return "rule"
	case KindTable:
		return "table"
	case KindHTML:
		return "html"
	}
	return "unknown"
}

// Style is a set of inline text styles
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Code
	Strike
)

// Has reports whether s includes all of flag
func (s Style) Has(flag Style) bool {
	return s&flag == flag
}

// Alignment is a table column alignment
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Link is a hyperlink target. NewContext is always set: links open outside
// the conversation (a new browser tab or window).
type Link struct {
	URL        string
	Title      string
	NewContext bool
}

// Span is a run of inline text with one style
type Span struct {
	Text  string
	Style Style
	Link  *Link
}

// Cell is a table cell
type Cell struct {
	Spans []Span
}

// Block is one display block. Which fields are set depends on Kind.
type Block struct {
	Kind Kind

	// Heading, Paragraph
	Level int
	Spans []Span

	// Code
	Language string
	Code     string

	// List
	Ordered bool
	Start   int
	Items   [][]Block

	// Blockquote
	Children []Block

	// Table
	Header []Cell
	Rows   [][]Cell
	Align  []Alignment

	// HTML, kept as raw text
	Text string
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Parse converts markdown source to blocks. It never fails: anything
// goldmark accepts produces some block sequence, and empty input produces none.
func Parse(src string) []Block {
	source := []byte(src)
	doc := md.Parser().Parse(text.NewReader(source))
	p := &parser{src: source}
	return p.blocks(doc)
}

// PlainText joins the text of spans, dropping styles and link targets
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

type parser struct {
	src []byte
}

func (p *parser) blocks(n ast.Node) []Block {
	var out []Block
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Heading:
			out = append(out, Block{Kind: KindHeading, Level: node.Level, Spans: p.inlines(node, 0, nil, nil)})
		case *ast.Paragraph, *ast.TextBlock:
			out = append(out, Block{Kind: KindParagraph, Spans: p.inlines(node, 0, nil, nil)})
		case *ast.FencedCodeBlock:
			out = append(out, Block{Kind: KindCode, Language: string(node.Language(p.src)), Code: p.lines(node)})
		case *ast.CodeBlock:
			out = append(out, Block{Kind: KindCode, Code: p.lines(node)})
		case *ast.List:
			b := Block{Kind: KindList, Ordered: node.IsOrdered(), Start: node.Start}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				b.Items = append(b.Items, p.blocks(item))
			}
			out = append(out, b)
		case *ast.Blockquote:
			out = append(out, Block{Kind: KindBlockquote, Children: p.blocks(node)})
		case *ast.ThematicBreak:
			out = append(out, Block{Kind: KindRule})
		case *ast.HTMLBlock:
			raw := p.lines(node)
			if node.HasClosure() {
				raw += string(node.ClosureLine.Value(p.src))
			}
			out = append(out, Block{Kind: KindHTML, Text: strings.TrimRight(raw, "\n")})
		case *east.Table:
			out = append(out, p.table(node))
		default:
			out = append(out, p.blocks(c)...)
		}
	}
	return out
}

func (p *parser) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(p.src))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (p *parser) table(t *east.Table) Block {
	b := Block{Kind: KindTable}
	for _, a := range t.Alignments {
		b.Align = append(b.Align, alignment(a))
	}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []Cell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, Cell{Spans: p.inlines(cell, 0, nil, nil)})
		}
		if _, ok := row.(*east.TableHeader); ok {
			b.Header = cells
			continue
		}
		b.Rows = append(b.Rows, cells)
	}
	return b
}

func alignment(a east.Alignment) Alignment {
	switch a {
	case east.AlignLeft:
		return AlignLeft
	case east.AlignCenter:
		return AlignCenter
	case east.AlignRight:
		return AlignRight
	}
	return AlignNone
}

// inlines flattens the inline children of n into spans, carrying the
// enclosing style and link down the tree
func (p *parser) inlines(n ast.Node, style Style, link *Link, out []Span) []Span {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			s := displayText(node.Segment.Value(p.src), node.IsRaw())
			switch {
			case node.HardLineBreak():
				out = appendSpan(out, Span{Text: strings.TrimRight(s, " ") + "\n", Style: style, Link: link})
			case node.SoftLineBreak():
				out = appendSpan(out, Span{Text: s + " ", Style: style, Link: link})
			default:
				out = appendSpan(out, Span{Text: s, Style: style, Link: link})
			}
		case *ast.String:
			out = appendSpan(out, Span{Text: string(node.Value), Style: style, Link: link})
		case *ast.CodeSpan:
			out = appendSpan(out, Span{Text: p.rawText(node), Style: style | Code, Link: link})
		case *ast.Emphasis:
			emph := Italic
			if node.Level >= 2 {
				emph = Bold
			}
			out = p.inlines(node, style|emph, link, out)
		case *east.Strikethrough:
			out = p.inlines(node, style|Strike, link, out)
		case *ast.Link:
			l := &Link{URL: string(node.Destination), Title: string(node.Title), NewContext: true}
			out = p.linkText(node, style, l, out)
		case *ast.Image:
			l := &Link{URL: string(node.Destination), Title: string(node.Title), NewContext: true}
			out = p.linkText(node, style, l, out)
		case *ast.AutoLink:
			l := &Link{URL: string(node.URL(p.src)), NewContext: true}
			out = appendSpan(out, Span{Text: string(node.Label(p.src)), Style: style, Link: l})
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(p.src))
			}
			out = appendSpan(out, Span{Text: b.String(), Style: style, Link: link})
		case *east.TaskCheckBox:
			box := "[ ] "
			if node.IsChecked {
				box = "[x] "
			}
			out = appendSpan(out, Span{Text: box, Style: style, Link: link})
		default:
			out = p.inlines(c, style, link, out)
		}
	}
	return out
}

// linkText emits the children of a link or image. An empty label falls
// back to the destination so the link stays visible.
func (p *parser) linkText(n ast.Node, style Style, l *Link, out []Span) []Span {
	before := len(out)
	out = p.inlines(n, style, l, out)
	if len(out) == before {
		out = appendSpan(out, Span{Text: l.URL, Style: style, Link: l})
	}
	return out
}

// displayText decodes backslash escapes and entity references the way
// goldmark's HTML writer does. Raw segments are returned as written.
func displayText(b []byte, raw bool) string {
	if raw {
		return string(b)
	}
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}

// rawText collects code span contents, which keep backslashes and entities
// verbatim
func (p *parser) rawText(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(p.src))
			continue
		}
		if s, ok := c.(*ast.String); ok {
			b.Write(s.Value)
		}
	}
	return b.String()
}

// appendSpan merges s into the previous span when both carry the same
// style and link
func appendSpan(out []Span, s Span) []Span {
	if s.Text == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Style == s.Style && out[n-1].Link == s.Link {
		out[n-1].Text += s.Text
		return out
	}
	return append(out, s)
}
