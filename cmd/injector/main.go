package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vango-dev/injector/internal/app"
	"github.com/vango-dev/injector/internal/config"
	"github.com/vango-dev/injector/internal/errors"
	"github.com/vango-dev/injector/pkg/assets"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
	logger     *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "injector",
		Short: "Resolve, bundle and inject front-end assets",
		Long: `injector turns logical module names into include markup.

A module maps to a directory (or a single file) under the web root.
In development every file gets its own tag; in build mode the files
are concatenated, compiled (LESS) and minified (JS) into one artifact
under the deploy directory, which is reused until it is cleaned.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = setupLogging(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: injector.yaml in the nearest parent directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		injectCmd(opts),
		buildCmd(opts),
		cleanCmd(opts),
		listCmd(opts),
		serveCmd(opts),
		publishCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

// setupLogging installs a charmbracelet/log handler as the slog default.
func setupLogging(w io.Writer, verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: verbose,
		ReportCaller:    verbose,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadConfig loads the configuration named by --config, or the nearest one.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.LoadFromWorkingDir()
}

// newInjector loads the configuration and builds an Injector from it.
func (o *globalOptions) newInjector(extra ...app.Option) (*config.Config, *assets.Injector, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts := append([]app.Option{app.WithLogger(o.logger)}, extra...)
	inj, err := app.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, inj, nil
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
