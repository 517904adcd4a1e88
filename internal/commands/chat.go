package commands

import (
	"github.com/spf13/cobra"

	"github.com/openxai/openxai-chat/internal/chat"
	"github.com/openxai/openxai-chat/internal/render"
	"github.com/openxai/openxai-chat/internal/tui"
)

func newChatCmd(deps *Dependencies, opts *globalOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the configured endpoint.

Enter sends the message, alt+enter inserts a newline. Type exit or quit to
leave, /copy to copy the last reply. In the full-screen UI esc dismisses an
error banner and ctrl+y copies the last reply.

The full-screen UI needs a terminal; with --plain, or when input or output
is redirected, the session runs line by line instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(deps, opts)
			if err != nil {
				return err
			}
			defer sess.Close()

			cfg := sess.cfg
			view := chat.New(sess.client, nil,
				chat.WithLogger(sess.logger),
				chat.WithErrorWindow(cfg.ErrorWindow()),
			)
			sess.logger.Infof("session=%s started plain=%t", view.SessionID(), plain)

			if plain || !deps.IsTTY() {
				return runLineChat(cmd.Context(), deps, sess, view)
			}

			theme, ok := render.GetTUITheme(cfg.TUITheme)
			if !ok && cfg.TUITheme != "" {
				sess.logger.Infof("unknown tui theme %q, using %s", cfg.TUITheme, theme.Name)
			}

			return deps.TUI.Run(view, tui.Config{
				SiteName:        cfg.SiteName,
				SiteDescription: cfg.SiteDescription,
				Theme:           theme,
				Render:          render.LoadOptionsFromConfig(cfg),
				Logger:          sess.logger,
				Copy:            deps.Copy,
			})
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Line-by-line chat without the full-screen UI")
	return cmd
}
