// Package commands provides the CLI commands for openxai-chat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openxai/openxai-chat/internal/api"
	"github.com/openxai/openxai-chat/internal/config"
	"github.com/openxai/openxai-chat/internal/logging"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalOptions holds the persistent flags shared by all commands
type globalOptions struct {
	endpoint string
	timeout  int // seconds; -1 keeps the configured value
	verbose  bool
}

// NewRootCmd builds the command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	opts := &globalOptions{}
	var outputFile, inputFile string

	cmd := &cobra.Command{
		Use:   "openxai-chat [prompt]",
		Short: "Terminal chat client for an OpenxAI chat endpoint",
		Long: `openxai-chat talks to an OpenxAI chat backend from the terminal.

Examples:
  openxai-chat chat                     Start interactive chat
  openxai-chat chat --plain             Line-by-line chat without the full-screen UI
  openxai-chat "What is Go?"            Send a single message
  openxai-chat -f prompt.md             Read the message from a file
  cat prompt.md | openxai-chat          Read the message from stdin
  openxai-chat "Hello" -o reply.md      Save the reply to a file
  openxai-chat config                   Show configuration`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "openxai-chat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			var prompt string
			switch {
			case inputFile != "":
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				prompt = string(data)
			case len(args) > 0:
				prompt = args[0]
			case deps.StdinIsPipe():
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				prompt = string(data)
			default:
				return cmd.Help()
			}

			return runQuery(deps, opts, prompt, outputFile)
		},
	}

	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	cmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "Chat endpoint URL (overrides config and "+config.EnvEndpoint+")")
	cmd.PersistentFlags().IntVar(&opts.timeout, "timeout", -1, "Request timeout in seconds (0 = none)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Write a debug log and print request details")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Save reply to file")
	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(newChatCmd(deps, opts))
	cmd.AddCommand(newConfigCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// resolveConfig loads the config file and applies env and flag overrides
func resolveConfig(deps *Dependencies, opts *globalOptions) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyEnv()
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.timeout >= 0 {
		cfg.RequestTimeout = opts.timeout
	}
	if opts.verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session bundles what a command needs to talk to the backend
type session struct {
	cfg    config.Config
	logger *logging.Logger
	client api.ChatClientInterface
}

func openSession(deps *Dependencies, opts *globalOptions) (*session, error) {
	cfg, err := resolveConfig(deps, opts)
	if err != nil {
		return nil, err
	}

	logger, err := deps.OpenLogger(cfg)
	if err != nil {
		// Logging is best effort
		fmt.Fprintf(deps.Stderr, "Warning: debug log unavailable: %v\n", err)
		logger = nil
	}

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Infof("endpoint=%s timeout=%s", cfg.Endpoint, cfg.Timeout())
	return &session{cfg: cfg, logger: logger, client: client}, nil
}

func (s *session) Close() {
	s.client.Close()
	s.logger.Close()
}
