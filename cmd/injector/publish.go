package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/injector/internal/build"
	"github.com/vango-dev/injector/internal/publish"
)

func publishCmd(opts *globalOptions) *cobra.Command {
	var (
		bucket string
		prefix string
		region string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload built artifacts to S3",
		Long: `Upload every artifact in the deploy directory, and the manifest if
present, to an S3 bucket. Credentials come from the default AWS chain
(environment, shared config, instance role).

Examples:
  injector build && injector publish
  injector publish --bucket my-assets --prefix static/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, inj, err := opts.newInjector()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if cmd.Flags().Changed("prefix") {
				cfg.Publish.Prefix = prefix
			}
			if region != "" {
				cfg.Publish.Region = region
			}

			files, err := inj.Cache().Artifacts()
			if err != nil {
				return err
			}
			manifest := filepath.Join(inj.Cache().Dir(), build.ManifestFileName)
			if _, err := os.Stat(manifest); err == nil {
				files = append(files, manifest)
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				warn(out, "No artifacts in %s; run injector build first", inj.Cache().Dir())
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := publish.NewFromConfig(ctx, cfg.Publish.Region, publish.Options{
				Bucket:       cfg.Publish.Bucket,
				Prefix:       cfg.Publish.Prefix,
				CacheControl: cfg.Publish.CacheControl,
				Logger:       opts.logger,
			})
			if err != nil {
				return err
			}

			objects, err := p.Publish(ctx, files)
			for _, o := range objects {
				info(out, "s3://%s/%s (%s)", cfg.Publish.Bucket, o.Key, formatBytes(o.Size))
			}
			if err != nil {
				return err
			}
			success(out, "Published %d files", len(objects))
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default from publish.bucket)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Key prefix (default from publish.prefix)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from publish.region or the environment)")

	return cmd
}
