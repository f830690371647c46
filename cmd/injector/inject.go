package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/injector/pkg/assets"
)

func injectCmd(opts *globalOptions) *cobra.Command {
	var (
		typ     string
		build   bool
		minify  bool
		version int
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "inject <module>",
		Short: "Print the include markup for a module",
		Long: `Print the include markup for a module.

Without --build one tag is printed per file. With --build the module is
bundled into <deploy_dir>/<module>.build.<ext> (reused if it exists) and
a single tag referencing it is printed.

Examples:
  injector inject app
  injector inject styles --type=style --build --version=7
  injector inject theme --type=less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := assets.ParseAssetType(typ)
			if err != nil {
				return err
			}

			_, inj, err := opts.newInjector()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = inj.InjectTo(ctx, cmd.OutOrStdout(), args[0], assets.Request{
				Type:    t,
				Build:   build,
				Minify:  minify,
				Version: version,
				Force:   force,
			})
			return err
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "script", "Asset type: script (js), style (css) or styleSource (less)")
	cmd.Flags().BoolVarP(&build, "build", "b", false, "Bundle into a single artifact")
	cmd.Flags().BoolVarP(&minify, "minify", "m", false, "Minify script artifacts")
	cmd.Flags().IntVar(&version, "version", 0, "Append ?version=N to the artifact reference")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Rebuild the artifact even if it exists")

	return cmd
}
