package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/openxai/openxai-chat/internal/config"
	"github.com/openxai/openxai-chat/internal/render"
)

var (
	configKeyStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	configTitleStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).MarginBottom(1)
)

func newConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration file path and the values in effect after
environment overrides (` + config.EnvEndpoint + `, ` + render.EnvStyle + `).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.ApplyEnv()

			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			fmt.Fprintln(deps.Stdout, configTitleStyle.Render("Configuration"))
			fmt.Fprintln(deps.Stdout, configTable(path, cfg))
			return nil
		},
	}

	cmd.AddCommand(newConfigInitCmd(deps))
	cmd.AddCommand(newConfigThemesCmd(deps))
	return cmd
}

func configTable(path string, cfg config.Config) string {
	timeout := "none"
	if cfg.RequestTimeout > 0 {
		timeout = cfg.Timeout().String()
	}
	style := render.LoadOptionsFromConfig(cfg).Style

	rows := [][]string{
		{"file", path},
		{"endpoint", cfg.Endpoint},
		{"request_timeout", timeout},
		{"error_display", cfg.ErrorWindow().String()},
		{"site_name", cfg.SiteName},
		{"site_description", cfg.SiteDescription},
		{"tui_theme", cfg.TUITheme},
		{"markdown.style", style},
		{"markdown.code_style", cfg.Markdown.CodeStyle},
		{"copy_to_clipboard", strconv.FormatBool(cfg.CopyToClipboard)},
		{"verbose", strconv.FormatBool(cfg.Verbose)},
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorTextDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 && row != table.HeaderRow {
				return configKeyStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("KEY", "VALUE").
		Rows(rows...)

	return t.Render()
}

func newConfigInitCmd(deps *Dependencies) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveConfig(config.DefaultConfig()); err != nil {
				return err
			}

			fmt.Fprintln(deps.Stdout, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Wrote "+path))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigThemesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List markdown styles and TUI themes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(deps.Stdout, configTitleStyle.Render("Markdown styles (markdown.style)"))
			for _, t := range render.AvailableThemes() {
				fmt.Fprintf(deps.Stdout, "  %-12s %s\n", t.Name, t.Description)
			}
			fmt.Fprintln(deps.Stdout)
			fmt.Fprintln(deps.Stdout, configTitleStyle.Render("TUI themes (tui_theme)"))
			for _, t := range render.AvailableTUIThemes() {
				fmt.Fprintf(deps.Stdout, "  %-12s %s\n", t.Name, t.Description)
			}
		},
	}
}
