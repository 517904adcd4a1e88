package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/openxai/openxai-chat/internal/chat"
	"github.com/openxai/openxai-chat/internal/markdown"
	"github.com/openxai/openxai-chat/internal/models"
	"github.com/openxai/openxai-chat/internal/render"
	"github.com/openxai/openxai-chat/internal/tui"
)

var (
	lineUserStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7")).Bold(true)
	lineAIStyle     = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	lineDimStyle    = lipgloss.NewStyle().Foreground(colorTextDim)
	lineErrorStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	lineNoticeStyle = lipgloss.NewStyle().Foreground(colorSuccess)
)

// lineSurface prints conversation changes as they happen. It remembers how
// much it has already written so each message appears once.
type lineSurface struct {
	mu      sync.Mutex
	out     io.Writer
	opts    render.Options
	printed int
	typing  bool
	lastErr string
}

func (s *lineSurface) Refresh(state chat.State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, msg := range state.Messages[min(s.printed, len(state.Messages)):] {
		s.writeMessage(msg)
	}
	s.printed = len(state.Messages)

	if state.Pending && !s.typing {
		fmt.Fprintln(s.out, lineDimStyle.Render("AI is typing..."))
	}
	s.typing = state.Pending

	if state.LastError != "" && state.LastError != s.lastErr {
		fmt.Fprintln(s.out, lineErrorStyle.Render("✗ "+state.LastError))
	}
	s.lastErr = state.LastError
}

func (s *lineSurface) ScrollToNewest() {}

func (s *lineSurface) writeMessage(msg models.Message) {
	stamp := lineDimStyle.Render("[" + msg.FormatTime() + "]")
	if msg.IsUser() {
		fmt.Fprintf(s.out, "%s %s %s\n", stamp, lineUserStyle.Render(msg.Avatar()+":"), msg.DisplayContent())
		return
	}
	fmt.Fprintf(s.out, "%s %s\n", stamp, lineAIStyle.Render(msg.Avatar()+":"))
	fmt.Fprintln(s.out, render.Blocks(markdown.Parse(msg.DisplayContent()), s.opts))
	fmt.Fprintln(s.out)
}

func (s *lineSurface) notice(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, text)
}

// runLineChat reads one message per line from deps.Stdin until EOF or an
// exit command. Each request completes before the next line is read.
func runLineChat(ctx context.Context, deps *Dependencies, sess *session, view *chat.View) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := sess.cfg
	width := 80
	if deps.IsTTY() {
		width = min(getTerminalWidth(), 100)
	}

	surf := &lineSurface{
		out:  deps.Stdout,
		opts: render.LoadOptionsFromConfigWithWidth(cfg, width),
	}
	view.SetSurface(surf)

	interactive := deps.IsTTY()
	if interactive {
		surf.notice(lineAIStyle.Render("Welcome to " + cfg.SiteName))
		surf.notice(lineDimStyle.Render(tui.WelcomeText))
		surf.notice(lineDimStyle.Render("Type exit to quit, /copy to copy the last reply."))
	}

	var timers []*time.Timer
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	scanner := bufio.NewScanner(deps.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			fmt.Fprint(deps.Stdout, lineUserStyle.Render("> "))
		}
		if !scanner.Scan() {
			break
		}

		line := scanner.Text()
		input := strings.TrimSpace(line)

		if tui.IsExitCommand(input) {
			return nil
		}
		if input == "/copy" {
			copyLastReply(deps, view, surf)
			continue
		}

		view.SetDraft(line)
		req, _ := view.HandleSubmitKey(chat.KeyEvent{Key: chat.KeySubmit})
		if req == nil {
			continue
		}

		exp, failed := view.Resolve(req(ctx))
		if failed {
			gen := exp.Generation
			timers = append(timers, time.AfterFunc(exp.After, func() {
				view.ExpireError(gen)
			}))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func copyLastReply(deps *Dependencies, view *chat.View, surf *lineSurface) {
	text, ok := view.LastReply()
	if !ok {
		surf.notice(lineDimStyle.Render("Nothing to copy yet"))
		return
	}
	if err := deps.Copy(text); err != nil {
		surf.notice(lineErrorStyle.Render(fmt.Sprintf("✗ Copy failed: %v", err)))
		return
	}
	surf.notice(lineNoticeStyle.Render("✓ Copied last reply"))
}
