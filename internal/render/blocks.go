package render

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/openxai/openxai-chat/internal/markdown"
)

// NoCodeStyle disables syntax highlighting in Blocks
const NoCodeStyle = "none"

var (
	headingStyle    = lipgloss.NewStyle().Bold(true)
	h1Style         = headingStyle.Underline(true)
	inlineCodeStyle = lipgloss.NewStyle().Reverse(true)
	langLabelStyle  = lipgloss.NewStyle().Faint(true)
	ruleStyle       = lipgloss.NewStyle().Faint(true)
	quoteBarStyle   = lipgloss.NewStyle().Faint(true)
)

// Blocks renders parsed markdown for plain line output. Blocks are
// separated by a blank line. Links are written as "text <url>".
func Blocks(blocks []markdown.Block, opts Options) string {
	r := blockRenderer{opts: opts}
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, r.block(b, opts.Width))
	}
	return strings.Join(parts, "\n\n")
}

type blockRenderer struct {
	opts Options
}

func (r blockRenderer) block(b markdown.Block, width int) string {
	switch b.Kind {
	case markdown.KindHeading:
		text := strings.Repeat("#", b.Level) + " " + r.spans(b.Spans)
		if b.Level == 1 {
			return h1Style.Render(text)
		}
		return headingStyle.Render(text)

	case markdown.KindParagraph:
		return wrap(r.spans(b.Spans), width)

	case markdown.KindCode:
		return r.code(b)

	case markdown.KindList:
		return r.list(b, width)

	case markdown.KindBlockquote:
		inner := r.children(b.Children, width-2)
		return prefixLines(inner, quoteBarStyle.Render("│")+" ", quoteBarStyle.Render("│")+" ")

	case markdown.KindRule:
		n := width
		if n <= 0 || n > 80 {
			n = 80
		}
		return ruleStyle.Render(strings.Repeat("─", n))

	case markdown.KindTable:
		return r.table(b)

	case markdown.KindHTML:
		return b.Text
	}
	return ""
}

func (r blockRenderer) children(blocks []markdown.Block, width int) string {
	parts := make([]string, 0, len(blocks))
	for _, c := range blocks {
		parts = append(parts, r.block(c, width))
	}
	return strings.Join(parts, "\n")
}

func (r blockRenderer) list(b markdown.Block, width int) string {
	items := make([]string, 0, len(b.Items))
	for i, item := range b.Items {
		marker := "• "
		if b.Ordered {
			marker = fmt.Sprintf("%d. ", b.Start+i)
		}
		indent := strings.Repeat(" ", lipgloss.Width(marker))
		body := r.children(item, width-len(indent))
		items = append(items, prefixLines(body, marker, indent))
	}
	return strings.Join(items, "\n")
}

func (r blockRenderer) code(b markdown.Block) string {
	code := b.Code
	if r.opts.CodeStyle != NoCodeStyle {
		code = highlightCode(code, b.Language, r.opts.CodeStyle)
	}
	body := prefixLines(strings.TrimRight(code, "\n"), "  ", "  ")
	if b.Language == "" {
		return body
	}
	return langLabelStyle.Render(b.Language) + "\n" + body
}

func (r blockRenderer) table(b markdown.Block) string {
	cols := len(b.Header)
	for _, row := range b.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	headers := make([]string, cols)
	for i := range b.Header {
		headers[i] = r.spans(b.Header[i].Spans)
	}

	rows := make([][]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		cells := make([]string, cols)
		for i := range row {
			cells[i] = r.spans(row[i].Spans)
		}
		rows = append(rows, cells)
	}

	align := b.Align
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				s = s.Bold(true)
			}
			if col < len(align) {
				switch align[col] {
				case markdown.AlignCenter:
					s = s.Align(lipgloss.Center)
				case markdown.AlignRight:
					s = s.Align(lipgloss.Right)
				}
			}
			return s
		})

	return t.Render()
}

// spans renders inline text. The URL of a link follows the last span that
// belongs to it, unless the visible text already is the URL.
func (r blockRenderer) spans(spans []markdown.Span) string {
	var b strings.Builder
	var label strings.Builder
	for i, s := range spans {
		b.WriteString(spanStyle(s.Style).Render(s.Text))
		if s.Link == nil {
			continue
		}
		label.WriteString(s.Text)
		if i+1 < len(spans) && spans[i+1].Link == s.Link {
			continue
		}
		if label.String() != s.Link.URL {
			b.WriteString(" <" + s.Link.URL + ">")
		}
		label.Reset()
	}
	return b.String()
}

func spanStyle(st markdown.Style) lipgloss.Style {
	if st.Has(markdown.Code) {
		return inlineCodeStyle
	}
	s := lipgloss.NewStyle()
	if st.Has(markdown.Bold) {
		s = s.Bold(true)
	}
	if st.Has(markdown.Italic) {
		s = s.Italic(true)
	}
	if st.Has(markdown.Strike) {
		s = s.Strikethrough(true)
	}
	return s
}

// highlightCode colors code for a 256-color terminal. Unknown languages
// are guessed from the content; any failure returns the code unchanged.
func highlightCode(code, language, styleName string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// prefixLines puts first before the first line of s and rest before the others
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
