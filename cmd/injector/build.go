package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/injector/internal/build"
)

func buildCmd(opts *globalOptions) *cobra.Command {
	var (
		minify bool
		clean  bool
	)

	cmd := &cobra.Command{
		Use:   "build [modules...]",
		Short: "Build artifacts ahead of time",
		Long: `Build every configured module (or the named ones) into artifacts.

This command:
  • Rebuilds each module for every asset type that has files
  • Compiles LESS and minifies scripts when enabled
  • Writes manifest.json with each artifact's digest and size

Examples:
  injector build
  injector build app styles --minify
  injector build --clean`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, inj, err := opts.newInjector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			builder := build.New(cfg, inj, build.Options{
				Modules: args,
				Minify:  minify,
				OnProgress: func(step string) {
					info(out, "%s", step)
				},
				Logger: opts.logger,
			})

			if clean {
				info(out, "Cleaning deploy directory...")
				if _, err := builder.Clean(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := builder.Build(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			success(out, "Build complete in %s", result.Duration.Round(1000000))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %s/\n", cfg.DeployURLPath())
			for _, a := range result.Artifacts {
				fmt.Fprintf(out, "    ├── %-28s %-12s (%s)\n", a.File, a.Type, formatBytes(a.Size))
			}
			fmt.Fprintf(out, "    └── %s\n", build.ManifestFileName)
			for _, s := range result.Skipped {
				warn(out, "Skipped %s: artifact already built by another type", s)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&minify, "minify", false, "Minify script artifacts (default from injector.minify)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove existing artifacts before building")

	return cmd
}

func cleanCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all artifacts from the deploy directory",
		Long: `Remove all artifacts and the manifest from the deploy directory.

Artifacts are reused until they are removed, so run this after changing
sources when build mode is enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, inj, err := opts.newInjector()
			if err != nil {
				return err
			}
			n, err := build.New(cfg, inj, build.Options{Logger: opts.logger}).Clean()
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Removed %d artifacts from %s", n, cfg.DeployPath())
			return nil
		},
	}
}
