// Package render turns assistant markdown into terminal output.
//
// Two paths exist: Markdown uses glamour and is what the TUI shows, while
// Blocks lays out parsed markdown.Block values with lipgloss and chroma for
// plain line mode.
package render

// Options configures rendering
type Options struct {
	// Width is the wrap width; 0 disables wrapping
	Width int

	// Style is a glamour style name or a path to a JSON style file
	Style string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool

	// CodeStyle is the chroma style for code blocks in plain mode.
	// "none" turns highlighting off.
	CodeStyle string
}

// DefaultOptions returns the default configuration
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            ThemeDark,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
		CodeStyle:        "monokai",
	}
}

// WithWidth returns Options with the specified width
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified glamour style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithEmoji returns Options with emoji support enabled/disabled
func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}

// WithPreserveNewLines returns Options with newline preservation enabled/disabled
func (o Options) WithPreserveNewLines(enabled bool) Options {
	o.PreserveNewLines = enabled
	return o
}

// WithTableWrap returns Options with table wrap enabled/disabled
func (o Options) WithTableWrap(enabled bool) Options {
	o.TableWrap = enabled
	return o
}

// WithInlineTableLinks returns Options with inline table links enabled/disabled
func (o Options) WithInlineTableLinks(enabled bool) Options {
	o.InlineTableLinks = enabled
	return o
}

// WithCodeStyle returns Options with the specified chroma style
func (o Options) WithCodeStyle(style string) Options {
	o.CodeStyle = style
	return o
}
