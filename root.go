package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/datalake-api/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// resolvedCfg holds the effective configuration loaded by PersistentPreRunE.
// resolvedCfgPath is the config file it came from, or "" when no file exists.
var (
	resolvedCfg     *config.Config
	resolvedCfgPath string
)

// logLevel is shared by every logger buildLogger creates, so a config
// reload can change the level of a running server.
var logLevel = new(slog.LevelVar)

// partialConfigCommands may run against a config that lacks credentials.
// Uses CommandPath() so a future "x show" does not match by accident.
var partialConfigCommands = map[string]bool{
	"datalake-api config":      true,
	"datalake-api config show": true,
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datalake-api",
		Short: "Read-only HTTP API over a OneDrive/SharePoint document library",
		Long: `Serves folder listings, download links, search and a metadata document
from one Microsoft Graph drive, authenticating as an application with
client credentials. The same queries are available as CLI commands.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newLsCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newURLCmd())
	cmd.AddCommand(newMetadataCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// cliOverrides collects the CLI layer of the override chain. --listen is
// only registered on serve, so it is looked up rather than bound globally.
func cliOverrides(cmd *cobra.Command) config.CLIOverrides {
	cli := config.CLIOverrides{ConfigPath: flagConfigPath}

	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		cli.Listen = f.Value.String()
	}

	return cli
}

// loadConfig resolves the effective configuration from the four-layer override
// chain and stores the result in resolvedCfg for use by subcommands.
func loadConfig(cmd *cobra.Command) error {
	env := config.ReadEnvOverrides()
	cli := cliOverrides(cmd)

	resolve := config.Resolve
	if partialConfigCommands[cmd.CommandPath()] {
		resolve = config.ResolvePartial
	}

	cfg, err := resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg
	resolvedCfgPath = existingPath(config.ResolveConfigPath(env, cli))
	logLevel.Set(levelFor(cfg))

	return nil
}

// existingPath returns path if a file exists there, otherwise "".
func existingPath(path string) string {
	if path == "" {
		return ""
	}

	if _, err := os.Stat(path); err != nil {
		return ""
	}

	return path
}

// levelFor computes the log level from config and CLI flags. The config
// level is the baseline; --verbose and --quiet override it because CLI
// flags always win.
func levelFor(cfg *config.Config) slog.Level {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.Logging.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return level
}

// buildLogger creates the process logger on stderr. Format "auto" picks
// text for a terminal and JSON otherwise.
func buildLogger() *slog.Logger {
	format := "auto"
	if resolvedCfg != nil {
		format = resolvedCfg.Logging.LogFormat
	}

	return newLogger(os.Stderr, format, isatty.IsTerminal(os.Stderr.Fd()))
}

func newLogger(w io.Writer, format string, terminal bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel}

	if format == "json" || (format == "auto" && !terminal) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// defaultHTTPClient returns the HTTP client shared by all Graph and token
// requests. network.request_timeout bounds each call.
func defaultHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Network.RequestTimeoutDuration()}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
