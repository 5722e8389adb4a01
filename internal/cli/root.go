// Package cli provides the specgest command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dgallion1/specgest/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type configKey struct{}

type loggerKey struct{}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "specgest",
		Short: "Extract directive tables from design documents",
		Long: `specgest reads Markdown, HTML and Word documents, finds paragraphs such as
"@Button" that are immediately followed by a table, and emits each table's
headers and rows. Tables for known directives are checked against their
header schema and mismatches are reported as warnings.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, err := newLogger(cmd.ErrOrStderr(), *cfg, false)
			if err != nil {
				return err
			}
			if cfg.File != "" {
				log.Debug("using config file", "path", cfg.File)
			}

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, log)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./specgest.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json)")

	rootCmd.AddCommand(NewParseCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewSchemasCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config loaded by the root command.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Port:           config.DefaultPort,
		WorkerCount:    config.DefaultWorkerCount,
		MaxQueueSize:   config.DefaultMaxQueueSize,
		MaxUploadBytes: config.DefaultMaxUploadBytes,
		JobTTL:         config.DefaultJobTTL,
		Output:         config.DefaultOutput,
		Concurrency:    config.DefaultConcurrency,
		LogLevel:       config.DefaultLogLevel,
	}
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// newLogger builds the slog logger for cfg. preferJSON picks the handler
// when log_format is unset.
func newLogger(w io.Writer, cfg config.Config, preferJSON bool) (*slog.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch cfg.LogFormat {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	if preferJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
