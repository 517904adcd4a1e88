package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// TUITheme is the color scheme of the chat interface
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.TerminalColor
	Surface    lipgloss.TerminalColor
	Border     lipgloss.TerminalColor

	Primary   lipgloss.TerminalColor // header, assistant label
	Secondary lipgloss.TerminalColor // user label, online status
	Accent    lipgloss.TerminalColor
	Warning   lipgloss.TerminalColor
	Error     lipgloss.TerminalColor

	Text     lipgloss.TerminalColor
	TextDim  lipgloss.TerminalColor
	TextMute lipgloss.TerminalColor
}

// DefaultTUITheme is used when the configured name is unknown
const DefaultTUITheme = "tokyonight"

var (
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night - Dark theme with blue accents",

		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#24283b"),
		Border:     lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Accent:    lipgloss.Color("#bb9af7"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:     lipgloss.Color("#c0caf5"),
		TextDim:  lipgloss.Color("#565f89"),
		TextMute: lipgloss.Color("#3b4261"),
	}

	CatppuccinMochaTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - Warm dark theme with pastel colors",

		Background: lipgloss.Color("#1e1e2e"),
		Surface:    lipgloss.Color("#313244"),
		Border:     lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"), // Blue
		Secondary: lipgloss.Color("#a6e3a1"), // Green
		Accent:    lipgloss.Color("#cba6f7"), // Mauve
		Warning:   lipgloss.Color("#f9e2af"), // Yellow
		Error:     lipgloss.Color("#f38ba8"), // Red

		Text:     lipgloss.Color("#cdd6f4"),
		TextDim:  lipgloss.Color("#6c7086"),
		TextMute: lipgloss.Color("#45475a"),
	}
)

var (
	chalkOnce  sync.Once
	chalkTheme TUITheme
)

// ChalkTheme returns the palette of the bubbletint "Chalk" tint
func ChalkTheme() TUITheme {
	chalkOnce.Do(func() {
		tint.NewDefaultRegistry()
		tint.SetTint(tint.TintChalk)

		chalkTheme = TUITheme{
			Name:        "chalk",
			Description: "Chalk - Muted palette from bubbletint",

			Background: tint.Bg(),
			Surface:    tint.BrightBlack(),
			Border:     tint.BrightBlack(),

			Primary:   tint.Purple(),
			Secondary: tint.White(),
			Accent:    tint.Purple(),
			Warning:   tint.Yellow(),
			Error:     tint.Red(),

			Text:     tint.Fg(),
			TextDim:  tint.BrightBlack(),
			TextMute: tint.BrightBlack(),
		}
	})
	return chalkTheme
}

// AvailableTUIThemes lists all TUI themes
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{
		TokyoNightTheme,
		CatppuccinMochaTheme,
		ChalkTheme(),
	}
}

// GetTUITheme returns the theme called name, or the default theme and false
func GetTUITheme(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TokyoNightTheme, false
}

// TUIThemeNames returns the theme names
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
