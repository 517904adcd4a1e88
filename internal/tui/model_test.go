package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/openxai/openxai-chat/internal/chat"
	"github.com/openxai/openxai-chat/internal/render"
)

type fakeSender struct {
	reply string
	err   error
	calls []string
}

func (f *fakeSender) Send(ctx context.Context, message string) (string, error) {
	f.calls = append(f.calls, message)
	return f.reply, f.err
}

type clipboardRecorder struct {
	text string
	err  error
}

func (c *clipboardRecorder) write(s string) error {
	if c.err != nil {
		return c.err
	}
	c.text = s
	return nil
}

func newTestModel(t *testing.T, sender chat.Sender) (Model, *chat.View, *clipboardRecorder) {
	t.Helper()
	clip := &clipboardRecorder{}
	view := chat.New(sender, nil, chat.WithErrorWindow(5*time.Second))
	m := NewModel(view, Config{
		SiteName:        "OpenxAI Chatbot",
		SiteDescription: "Test deployment",
		Theme:           render.TokyoNightTheme,
		Render:          render.DefaultOptions().WithStyle(render.ThemeNoTTY),
		Copy:            clip.write,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, view, clip
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

// submit types s, presses enter and returns the model and the request command
func submit(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	m = typeText(t, m, s)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestView_BeforeReady(t *testing.T) {
	view := chat.New(&fakeSender{}, nil)
	m := NewModel(view, Config{})
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("expected initializing placeholder before the first resize")
	}
}

func TestView_Welcome(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeSender{})
	out := m.View()

	for _, want := range []string{"Welcome to OpenxAI Chatbot", "AI assistant", PoweredBy, "Online"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestUpdate_SubmitAppendsUserMessage(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{reply: "Hello"})

	m, cmd := submit(t, m, "  hi there ")
	if cmd == nil {
		t.Fatal("expected a command running the request")
	}

	msgs := view.Messages()
	if len(msgs) != 1 || msgs[0].Content != "hi there" || !msgs[0].IsUser() {
		t.Fatalf("messages = %+v", msgs)
	}
	if !m.state.Pending {
		t.Error("model should be pending after submit")
	}
	if m.textarea.Value() != "" {
		t.Errorf("textarea not cleared: %q", m.textarea.Value())
	}
	if !strings.Contains(m.content, "typing") {
		t.Error("typing indicator should be the last entry while pending")
	}
	if !strings.Contains(m.View(), "Waiting") {
		t.Error("header should show waiting status")
	}
}

func TestUpdate_EmptySubmitIgnored(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})

	m, cmd := submit(t, m, "   ")
	if cmd != nil {
		t.Error("whitespace input should not start a request")
	}
	if len(view.Messages()) != 0 || m.state.Pending {
		t.Error("whitespace input should not change state")
	}
}

func TestUpdate_ReplySuccess(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{reply: "Hello"})
	m, _ = submit(t, m, "hi")

	seq := view.Messages()[0].ID
	m = update(t, m, replyMsg{reply: chat.Reply{Seq: seq, Content: "Hello **there**"}})

	msgs := view.Messages()
	if len(msgs) != 2 || !msgs[1].IsAssistant() || msgs[1].Content != "Hello **there**" {
		t.Fatalf("messages = %+v", msgs)
	}
	if m.state.Pending {
		t.Error("pending should be cleared")
	}
	if strings.Contains(m.content, "typing") {
		t.Error("typing indicator should be gone")
	}
	for _, want := range []string{"YOU", "AI", "hi", "Hello"} {
		if !strings.Contains(m.content, want) {
			t.Errorf("viewport content missing %q", want)
		}
	}
}

func TestUpdate_RequestCommandDeliversReply(t *testing.T) {
	sender := &fakeSender{reply: "pong"}
	view := chat.New(sender, nil)
	req, ok := view.Submit("ping")
	if !ok {
		t.Fatal("submit rejected")
	}

	msg := runRequest(req)()
	rm, isReply := msg.(replyMsg)
	if !isReply {
		t.Fatalf("expected replyMsg, got %T", msg)
	}
	if rm.reply.Content != "pong" || rm.reply.Err != nil {
		t.Errorf("reply = %+v", rm.reply)
	}
	if len(sender.calls) != 1 || sender.calls[0] != "ping" {
		t.Errorf("sender calls = %v", sender.calls)
	}
}

func TestUpdate_ReplyFailureShowsBannerAndExpires(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})
	m, _ = submit(t, m, "hi")

	seq := view.Messages()[0].ID
	next, cmd := m.Update(replyMsg{reply: chat.Reply{Seq: seq, Err: errors.New("rate limited")}})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("expected an expiry timer")
	}
	if len(view.Messages()) != 1 {
		t.Error("a failure must not append a message")
	}
	if m.state.LastError != "rate limited" || m.state.Pending {
		t.Errorf("state = %+v", m.state)
	}
	if !strings.Contains(m.View(), "rate limited") {
		t.Error("banner should show the error")
	}

	// A stale generation leaves the error alone
	m = update(t, m, errorExpiredMsg{generation: 99})
	if m.state.LastError == "" {
		t.Error("stale expiry cleared the error")
	}

	m = update(t, m, errorExpiredMsg{generation: 1})
	if m.state.LastError != "" {
		t.Errorf("error not cleared: %q", m.state.LastError)
	}
	if strings.Contains(m.View(), "rate limited") {
		t.Error("banner should be gone")
	}
}

func TestUpdate_StaleReplyIgnored(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})
	m, _ = submit(t, m, "hi")

	m = update(t, m, replyMsg{reply: chat.Reply{Seq: 42, Content: "late"}})
	if len(view.Messages()) != 1 || !m.state.Pending {
		t.Error("reply for another request must be dropped")
	}
}

func TestUpdate_EnterWhilePending(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})
	m, _ = submit(t, m, "first")

	// Keystrokes are not forwarded while pending
	m = typeText(t, m, "second")
	if m.textarea.Value() != "" {
		t.Errorf("input should be disabled while pending, got %q", m.textarea.Value())
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd != nil {
		t.Error("enter while pending should be a no-op")
	}
	if len(view.Messages()) != 1 {
		t.Errorf("expected 1 message, got %d", len(view.Messages()))
	}
}

func TestUpdate_AltEnterInsertsNewline(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})
	m = typeText(t, m, "line one")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	m = next.(Model)
	if cmd != nil {
		t.Error("alt+enter should not submit")
	}
	m = typeText(t, m, "line two")

	if got := m.textarea.Value(); got != "line one\nline two" {
		t.Errorf("textarea = %q", got)
	}
	if view.Draft() != "line one\nline two" {
		t.Errorf("draft = %q", view.Draft())
	}
	if len(view.Messages()) != 0 {
		t.Error("nothing should be submitted")
	}
}

func TestUpdate_Esc(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})
	m, _ = submit(t, m, "hi")
	m = update(t, m, replyMsg{reply: chat.Reply{Seq: view.Messages()[0].ID, Err: errors.New("boom")}})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if isQuit(cmd) {
		t.Fatal("esc with a banner should dismiss, not quit")
	}
	if m.state.LastError != "" {
		t.Error("banner not dismissed")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !isQuit(cmd) {
		t.Error("esc without a banner should quit")
	}
}

func TestUpdate_Quit(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.Msg
	}{
		{"ctrl+c", []tea.Msg{tea.KeyMsg{Type: tea.KeyCtrlC}}},
		{"exit", []tea.Msg{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("exit")}, tea.KeyMsg{Type: tea.KeyEnter}}},
		{"/quit", []tea.Msg{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/quit")}, tea.KeyMsg{Type: tea.KeyEnter}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, view, _ := newTestModel(t, &fakeSender{})
			var cmd tea.Cmd
			for _, k := range tt.keys {
				var next tea.Model
				next, cmd = m.Update(k)
				m = next.(Model)
			}
			if !isQuit(cmd) {
				t.Error("expected quit")
			}
			if len(view.Messages()) != 0 {
				t.Error("exit commands are not sent")
			}
		})
	}
}

func TestUpdate_CopyLastReply(t *testing.T) {
	m, view, clip := newTestModel(t, &fakeSender{})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if clip.text != "" || !strings.Contains(m.notice, "Nothing") {
		t.Errorf("copy with no reply: clip=%q notice=%q", clip.text, m.notice)
	}

	m, _ = submit(t, m, "hi")
	m = update(t, m, replyMsg{reply: chat.Reply{Seq: view.Messages()[0].ID, Content: "answer"}})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	if clip.text != "answer" {
		t.Errorf("clipboard = %q, want answer", clip.text)
	}

	clip.text = ""
	m, cmd := submit(t, m, "/copy")
	if cmd != nil {
		t.Error("/copy is not sent")
	}
	if clip.text != "answer" {
		t.Errorf("/copy clipboard = %q", clip.text)
	}
	if len(view.Messages()) != 2 {
		t.Errorf("messages = %d, want 2", len(view.Messages()))
	}
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want chat.KeyEvent
	}{
		{tea.KeyMsg{Type: tea.KeyEnter}, chat.KeyEvent{Key: chat.KeySubmit}},
		{tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, chat.KeyEvent{Key: chat.KeySubmit, Modifier: true}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, chat.KeyEvent{Key: "a"}},
	}

	for _, tt := range tests {
		if got := keyEvent(tt.msg); got != tt.want {
			t.Errorf("keyEvent(%v) = %+v, want %+v", tt.msg, got, tt.want)
		}
	}
}

func TestUpdate_ControlSequencesNotRendered(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{})

	req, ok := view.Submit("\x1b[31mred\x1b[0m\x07 alert")
	if !ok || req == nil {
		t.Fatal("submit rejected")
	}
	seq := view.Messages()[0].ID
	m = update(t, m, replyMsg{reply: chat.Reply{Seq: seq, Content: "reply \x1b[2Jcleared"}})

	for _, seq := range []string{"\x1b[31m", "\x1b[2J", "\x07"} {
		if strings.Contains(m.content, seq) {
			t.Errorf("viewport content carries %q: %q", seq, m.content)
		}
	}
	for _, want := range []string{"red alert", "cleared"} {
		if !strings.Contains(m.content, want) {
			t.Errorf("viewport content missing %q", want)
		}
	}
	if view.Messages()[0].Content != "\x1b[31mred\x1b[0m\x07 alert" {
		t.Error("stored message must keep the original text")
	}
}

func TestUpdate_StaleAnimationTickDropped(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeSender{reply: "ok"})
	m, _ = submit(t, m, "first")

	gen := m.animationGen
	m = update(t, m, animationTickMsg{generation: gen})
	if m.animationFrame != 1 {
		t.Fatalf("animationFrame = %d, want 1", m.animationFrame)
	}

	next, cmd := m.Update(animationTickMsg{generation: gen - 1})
	m = next.(Model)
	if m.animationFrame != 1 {
		t.Errorf("stale tick advanced the animation to %d", m.animationFrame)
	}
	if cmd != nil {
		if _, ok := cmd().(animationTickMsg); ok {
			t.Error("stale tick must not schedule another tick")
		}
	}
}

func TestUpdate_ResubmitStartsNewAnimationGeneration(t *testing.T) {
	m, view, _ := newTestModel(t, &fakeSender{reply: "ok"})
	m, _ = submit(t, m, "first")
	first := m.animationGen

	seq := view.Messages()[0].ID
	m = update(t, m, replyMsg{reply: chat.Reply{Seq: seq, Content: "ok"}})
	m, _ = submit(t, m, "second")

	if m.animationGen == first {
		t.Fatal("resubmit should start a new animation generation")
	}
	m = update(t, m, animationTickMsg{generation: first})
	if m.animationFrame != 0 {
		t.Errorf("tick from the previous request advanced the animation to %d", m.animationFrame)
	}
	m = update(t, m, animationTickMsg{generation: m.animationGen})
	if m.animationFrame != 1 {
		t.Errorf("current tick should advance the animation, frame = %d", m.animationFrame)
	}
}
