package commands

import (
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/openxai/openxai-chat/internal/api"
	"github.com/openxai/openxai-chat/internal/chat"
	"github.com/openxai/openxai-chat/internal/config"
	"github.com/openxai/openxai-chat/internal/logging"
	"github.com/openxai/openxai-chat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	Run(view *chat.View, cfg tui.Config) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) Run(view *chat.View, cfg tui.Config) error {
	return tui.Run(view, cfg)
}

// Dependencies holds the external dependencies of the commands, so tests
// can swap the backend, the terminal and the clipboard.
type Dependencies struct {
	LoadConfig func() (config.Config, error)
	NewClient  func(cfg config.Config, logger *logging.Logger) (api.ChatClientInterface, error)
	OpenLogger func(cfg config.Config) (*logging.Logger, error)

	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsPipe reports whether input is piped rather than typed
	StdinIsPipe func() bool
	// IsTTY reports whether stdin and stdout are both terminals
	IsTTY func() bool

	Copy func(string) error
}

// NewDependencies creates a Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig: config.LoadConfig,
		NewClient:  newChatClient,
		OpenLogger: openLogger,
		TUI:        &DefaultTUI{},
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		StdinIsPipe: func() bool {
			stat, err := os.Stdin.Stat()
			return err == nil && (stat.Mode()&os.ModeCharDevice) == 0
		},
		IsTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		Copy: clipboard.WriteAll,
	}
}

func newChatClient(cfg config.Config, logger *logging.Logger) (api.ChatClientInterface, error) {
	client, err := api.NewClient(cfg.Endpoint,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// openLogger opens the dated debug log when verbose is on
func openLogger(cfg config.Config) (*logging.Logger, error) {
	if !cfg.Verbose {
		return nil, nil
	}
	dir, err := config.GetLogDir()
	if err != nil {
		return nil, err
	}
	logger, _, err := logging.Open(dir, time.Now())
	return logger, err
}
