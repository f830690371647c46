package main

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/injector/pkg/assets"
)

func listCmd(opts *globalOptions) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list [module]",
		Short: "List modules and their resolved files",
		Long: `List configured modules and the files each resolves to, in
injection order.

Examples:
  injector list
  injector list app --type=script`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, inj, err := opts.newInjector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			types := []assets.AssetType{assets.Script, assets.Style, assets.StyleSource}
			if typ != "" {
				t, err := assets.ParseAssetType(typ)
				if err != nil {
					return err
				}
				types = []assets.AssetType{t}
			}

			names := inj.Registry().Names()
			if len(args) == 1 {
				def, err := inj.Registry().Resolve(args[0])
				if err != nil {
					return err
				}
				names = []string{def.Name}
			}

			for _, name := range names {
				def, _ := inj.Registry().Resolve(name)
				fmt.Fprintf(out, "%s → %s\n", def.Name, def.RootPath)
				for _, t := range types {
					files, err := inj.Resources(name, t)
					if err != nil {
						warn(out, "%v", err)
						break
					}
					for _, f := range files {
						if !strings.EqualFold(path.Ext(f), "."+t.Ext()) {
							continue
						}
						fmt.Fprintf(out, "  [%s] %s\n", t, f)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "Only list files of this asset type")

	return cmd
}
