package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/openxai/openxai-chat/internal/chat"
	"github.com/openxai/openxai-chat/internal/logging"
	"github.com/openxai/openxai-chat/internal/models"
	"github.com/openxai/openxai-chat/internal/render"
)

// PoweredBy is the header tagline
const PoweredBy = "Powered by OpenxAI Platform"

// WelcomeText is shown under the title of an empty conversation
const WelcomeText = "I'm your AI assistant, ready to help you with questions, tasks, and conversations. Start by typing a message below!"

// animationTickMsg advances the typing dots. Ticks from an earlier
// request's chain carry an old generation and are dropped.
type animationTickMsg struct {
	generation int
}

type (
	// replyMsg carries the outcome of a chat request back into Update
	replyMsg struct {
		reply chat.Reply
	}
	// errorExpiredMsg fires when an error's display window has passed
	errorExpiredMsg struct {
		generation uint64
	}
)

// Config holds the presentation settings of the TUI
type Config struct {
	SiteName        string
	SiteDescription string
	Theme           render.TUITheme
	Render          render.Options
	Logger          *logging.Logger

	// Copy writes to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(string) error
}

// surface receives notifications from the conversation view. It is shared
// by every copy of Model, so changes made inside view calls are visible to
// the Model returned from Update.
type surface struct {
	state  chat.State
	dirty  bool
	scroll bool
}

func (s *surface) Refresh(state chat.State) {
	s.state = state
	s.dirty = true
}

func (s *surface) ScrollToNewest() {
	s.scroll = true
}

// renderCache holds rendered assistant markdown by message ID
type renderCache struct {
	width   int
	entries map[uint64]string
}

// Model is the bubbletea model for a chat session
type Model struct {
	view    *chat.View
	surface *surface
	cache   *renderCache
	cfg     Config

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	state          chat.State
	ready          bool
	animationFrame int
	animationGen   int
	notice         string
	content        string

	width  int
	height int
}

// NewModel creates the TUI for view and registers it as the view's surface
func NewModel(view *chat.View, cfg Config) Model {
	if cfg.SiteName == "" {
		cfg.SiteName = "OpenxAI Chatbot"
	}
	if cfg.Copy == nil {
		cfg.Copy = clipboard.WriteAll
	}
	if cfg.Theme.Name != "" {
		ApplyTheme(cfg.Theme)
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	surf := &surface{state: view.State()}
	view.SetSurface(surf)

	return Model{
		view:     view,
		surface:  surf,
		cache:    &renderCache{entries: make(map[uint64]string)},
		cfg:      cfg,
		textarea: ta,
		spinner:  s,
		state:    surf.state,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

func animationTick(generation int) tea.Cmd {
	return tea.Tick(time.Millisecond*120, func(time.Time) tea.Msg {
		return animationTickMsg{generation: generation}
	})
}

// runRequest performs req on a bubbletea goroutine
func runRequest(req chat.Request) tea.Cmd {
	return func() tea.Msg {
		return replyMsg{reply: req(context.Background())}
	}
}

func expireAfter(exp chat.ErrorExpiry) tea.Cmd {
	return tea.Tick(exp.After, func(time.Time) tea.Msg {
		return errorExpiredMsg{generation: exp.Generation}
	})
}

// keyEvent maps a bubbletea key to the view's key model. Alt is the
// modifier: terminals do not report shift+enter.
func keyEvent(msg tea.KeyMsg) chat.KeyEvent {
	if msg.Type == tea.KeyEnter {
		return chat.KeyEvent{Key: chat.KeySubmit, Modifier: msg.Alt}
	}
	return chat.KeyEvent{Key: msg.String()}
}

// IsExitCommand reports whether input ends the chat
func IsExitCommand(input string) bool {
	switch input {
	case "exit", "quit", "/exit", "/quit":
		return true
	}
	return false
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3 // Header panel with border
		inputHeight := 4  // Input panel with border
		statusHeight := 1 // Status bar
		borders := 2      // Messages panel border

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - borders
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4
		if contentWidth < 20 {
			contentWidth = 20
		}

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 2)
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		m.notice = ""

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view.DismissError() {
				m.sync()
				return m, nil
			}
			return m, tea.Quit

		case "ctrl+y":
			m.copyLastReply()
			return m, nil
		}

		ev := keyEvent(msg)
		if ev.Key == chat.KeySubmit {
			return m.handleEnter(ev)
		}

		if m.state.Pending {
			// Input is disabled; only scrolling reaches the viewport
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.view.SetDraft(m.textarea.Value())

	case replyMsg:
		if exp, failed := m.view.Resolve(msg.reply); failed {
			cmds = append(cmds, expireAfter(exp))
		}

	case errorExpiredMsg:
		m.view.ExpireError(msg.generation)

	case spinner.TickMsg:
		if m.state.Pending {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.state.Pending && msg.generation == m.animationGen {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick(m.animationGen))
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

// handleEnter submits the draft, runs a slash command, or for alt+enter
// inserts a newline
func (m Model) handleEnter(ev chat.KeyEvent) (tea.Model, tea.Cmd) {
	if !ev.Modifier && !m.state.Pending {
		input := strings.TrimSpace(m.textarea.Value())
		if IsExitCommand(input) {
			return m, tea.Quit
		}
		if input == "/copy" {
			m.textarea.Reset()
			m.view.SetDraft("")
			m.copyLastReply()
			return m, nil
		}
	}

	m.view.SetDraft(m.textarea.Value())
	req, handled := m.view.HandleSubmitKey(ev)
	if !handled {
		if !m.state.Pending {
			m.textarea.InsertString("\n")
			m.view.SetDraft(m.textarea.Value())
		}
		return m, nil
	}

	m.sync()
	if req == nil {
		return m, nil
	}

	m.textarea.Reset()
	m.animationFrame = 0
	m.animationGen++
	return m, tea.Batch(
		runRequest(req),
		m.spinner.Tick,
		animationTick(m.animationGen),
	)
}

// sync pulls pending surface notifications into the model
func (m *Model) sync() {
	if m.surface.dirty {
		m.state = m.surface.state
		m.surface.dirty = false
		m.updateViewport()
	}
	if m.surface.scroll {
		m.surface.scroll = false
		m.viewport.GotoBottom()
	}
}

func (m *Model) copyLastReply() {
	reply, ok := m.view.LastReply()
	if !ok {
		m.notice = "Nothing to copy yet"
		return
	}
	if err := m.cfg.Copy(reply); err != nil {
		m.cfg.Logger.Errorf("clipboard: %v", err)
		m.notice = "Copy failed: " + err.Error()
		return
	}
	m.notice = "Copied last reply"
}

// View renders the model
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.viewport.Width

	var messagesContent string
	if m.state.Empty() && !m.state.Pending {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}

	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)

	var inputContent string
	if m.state.Pending {
		inputContent = lipgloss.JoinHorizontal(lipgloss.Left,
			m.spinner.View(),
			hintStyle.Render(" Waiting for reply... input is disabled"),
		)
	} else {
		inputContent = lipgloss.JoinVertical(lipgloss.Left,
			inputLabelStyle.Render("YOU"),
			m.textarea.View(),
		)
	}
	inputPanel := inputPanelStyle.Width(contentWidth).Render(inputContent)

	base := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(contentWidth),
		messagesPanel,
		inputPanel,
		m.renderStatusBar(contentWidth),
	)

	if m.state.LastError == "" {
		return base
	}

	return overlay.New(
		bannerModel{text: m.state.LastError, width: contentWidth - 8},
		staticViewModel{content: base},
		overlay.Center,
		overlay.Top,
		0,
		1,
	).View()
}

func (m Model) renderHeader(width int) string {
	status := onlineStyle.Render("● Online")
	if m.state.Pending {
		status = waitingStyle.Render("● Waiting")
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(m.cfg.SiteName),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(PoweredBy),
	)

	gap := width - 4 - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + status)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to "+m.cfg.SiteName),
		"",
		welcomeStyle.Width(width).Render(WelcomeText),
	)
	if m.cfg.SiteDescription != "" {
		content = lipgloss.JoinVertical(lipgloss.Center,
			content,
			"",
			hintStyle.Width(width).Align(lipgloss.Center).Render(m.cfg.SiteDescription),
		)
	}

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Ctrl+Y", "Copy"},
		{"Esc", "Dismiss/Quit"},
		{"↑↓", "Scroll"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	bar := strings.Join(items, "  │  ")
	if m.notice != "" {
		bar = noticeStyle.Render(m.notice) + "  │  " + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// renderTyping is the transient last entry shown while a reply is pending
func (m Model) renderTyping() string {
	dots := strings.Repeat("•", m.animationFrame%3+1)
	return assistantLabelStyle.Render("AI") + "\n" + typingStyle.Render("typing "+dots)
}

func (m Model) renderMessage(msg models.Message, bubbleWidth int) string {
	stamp := timeStyle.Render(" " + msg.FormatTime())

	if msg.IsUser() {
		label := userLabelStyle.Render(msg.Avatar()) + stamp
		bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.DisplayContent())
		return label + "\n" + bubble
	}

	label := assistantLabelStyle.Render(msg.Avatar()) + stamp
	bubble := assistantBubbleStyle.Width(bubbleWidth).Render(m.renderMarkdown(msg, bubbleWidth-4))
	return label + "\n" + bubble
}

// renderMarkdown renders an assistant message, caching by ID for the
// current width
func (m Model) renderMarkdown(msg models.Message, width int) string {
	if m.cache.width != width {
		m.cache.width = width
		m.cache.entries = make(map[uint64]string)
	}
	if out, ok := m.cache.entries[msg.ID]; ok {
		return out
	}

	out, err := render.Markdown(msg.DisplayContent(), m.cfg.Render.WithWidth(width))
	if err != nil {
		m.cfg.Logger.Errorf("markdown render failed for message %d: %v", msg.ID, err)
		out = msg.DisplayContent()
	}
	out = strings.Trim(out, "\n")
	m.cache.entries[msg.ID] = out
	return out
}

func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.state.Messages {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, bubbleWidth))
		content.WriteString("\n")
	}

	if m.state.Pending {
		if len(m.state.Messages) > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderTyping())
		content.WriteString("\n")
	}

	m.content = content.String()
	m.viewport.SetContent(m.content)
}

// bannerModel renders the error banner drawn over the chat
type bannerModel struct {
	text  string
	width int
}

func (b bannerModel) Init() tea.Cmd                       { return nil }
func (b bannerModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return b, nil }

func (b bannerModel) View() string {
	body := "⚠ " + b.text + bannerHintStyle.Render("   esc to dismiss")
	if b.width > 10 && lipgloss.Width(body) > b.width {
		return bannerStyle.Width(b.width).Render(body)
	}
	return bannerStyle.Render(body)
}

// staticViewModel renders fixed content as the overlay background
type staticViewModel struct {
	content string
}

func (s staticViewModel) Init() tea.Cmd                       { return nil }
func (s staticViewModel) Update(tea.Msg) (tea.Model, tea.Cmd) { return s, nil }
func (s staticViewModel) View() string                        { return s.content }

// Run starts the full-screen chat for view
func Run(view *chat.View, cfg Config) error {
	p := tea.NewProgram(
		NewModel(view, cfg),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
