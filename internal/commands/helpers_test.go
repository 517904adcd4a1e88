package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/openxai/openxai-chat/internal/api"
	"github.com/openxai/openxai-chat/internal/chat"
	"github.com/openxai/openxai-chat/internal/config"
	"github.com/openxai/openxai-chat/internal/logging"
	"github.com/openxai/openxai-chat/internal/tui"
)

// mockTUI records the arguments passed to Run
type mockTUI struct {
	called bool
	view   *chat.View
	cfg    tui.Config
	err    error
}

func (m *mockTUI) Run(view *chat.View, cfg tui.Config) error {
	m.called = true
	m.view = view
	m.cfg = cfg
	return m.err
}

type testEnv struct {
	deps   *Dependencies
	client *api.MockChatClient
	tui    *mockTUI
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	copied []string
	cfg    config.Config
	// clientCfg is the config NewClient was called with
	clientCfg config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvEndpoint, "")
	t.Setenv("GLAMOUR_STYLE", "")

	env := &testEnv{
		client: &api.MockChatClient{Reply: "pong", EndpointVal: config.DefaultEndpoint},
		tui:    &mockTUI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		cfg:    config.DefaultConfig(),
	}

	env.deps = &Dependencies{
		LoadConfig: func() (config.Config, error) { return env.cfg, nil },
		NewClient: func(cfg config.Config, _ *logging.Logger) (api.ChatClientInterface, error) {
			env.clientCfg = cfg
			return env.client, nil
		},
		OpenLogger:  func(config.Config) (*logging.Logger, error) { return nil, nil },
		TUI:         env.tui,
		Stdin:       strings.NewReader(""),
		Stdout:      env.stdout,
		Stderr:      env.stderr,
		StdinIsPipe: func() bool { return false },
		IsTTY:       func() bool { return false },
		Copy: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}
