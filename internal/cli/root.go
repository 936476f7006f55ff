// Package cli wires the cobra command tree. A bare invocation starts the
// interactive TUI; subcommands cover scripting use.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"envault-cli/internal/api"
	"envault-cli/internal/config"
	"envault-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	ServerURL  string
	ConfigPath string
	LogFile    string
	Debug      bool

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "envault",
		Short:        "Terminal client for the EnVault environment-variable vault",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  envault

  # Scriptable commands
  envault projects
  envault download infra -o infra.env
  envault upload infra ./infra.env
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", envOr("ENVAULT_SERVER", ""), "EnVault server URL (overrides config)")
	cmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", envOr("ENVAULT_CONFIG", ""), "Path to config file (default ~/.config/envault/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("ENVAULT_LOG_FILE", ""), "Write debug logs to this file")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log at debug level")

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newDownloadCmd(app))
	cmd.AddCommand(newUploadCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newPassphraseCmd(app))
	cmd.AddCommand(newHealthCmd(app))

	return cmd
}

func runTUI(app *App) error {
	client, log, err := app.client()
	if err != nil {
		return err
	}
	return tui.Run(client, log)
}

// client builds the API client from config file + flag overrides.
func (a *App) client() (*api.Client, *slog.Logger, error) {
	cfg := config.NewDefault()
	if err := config.Load(a.ConfigPath, cfg); err != nil {
		return nil, nil, err
	}
	if a.ServerURL != "" {
		cfg.Server.URL = a.ServerURL
	}
	if a.LogFile != "" {
		cfg.Log.File = a.LogFile
	}
	if a.Debug {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	client, err := api.New(cfg.Server.URL,
		api.WithTimeout(cfg.Server.Timeout()),
		api.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return client, log, nil
}

// newLogger writes structured logs to the configured file. The TUI owns
// the terminal, so without a file the logs are discarded.
func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var w io.Writer
	if cfg.File == "" {
		return slog.New(slog.DiscardHandler), nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	w = f
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()})), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
