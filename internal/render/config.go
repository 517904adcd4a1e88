package render

import (
	"os"

	"github.com/openxai/openxai-chat/internal/config"
)

// EnvStyle overrides the configured glamour style
const EnvStyle = "GLAMOUR_STYLE"

// LoadOptionsFromConfig builds render options from cfg. GLAMOUR_STYLE takes
// precedence over the configured style.
func LoadOptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	if md.CodeStyle != "" {
		opts.CodeStyle = md.CodeStyle
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv(EnvStyle); style != "" {
		opts.Style = style
	}

	return opts
}

// LoadOptionsFromConfigWithWidth is LoadOptionsFromConfig with a wrap width
func LoadOptionsFromConfigWithWidth(cfg config.Config, width int) Options {
	return LoadOptionsFromConfig(cfg).WithWidth(width)
}
