package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakerisk/lakerisk/internal/assessment"
)

// upload is one local file destined for an artifact key.
type upload struct {
	key  string
	path string
}

// parseUploads reads KEY=PATH arguments.
func parseUploads(args []string) ([]upload, error) {
	out := make([]upload, 0, len(args))
	for _, arg := range args {
		key, path, ok := strings.Cut(arg, "=")
		key = strings.Trim(strings.TrimSpace(key), "/")
		if !ok || key == "" || path == "" {
			return nil, fmt.Errorf("invalid upload %q: want KEY=PATH", arg)
		}
		out = append(out, upload{key: key, path: path})
	}
	return out, nil
}

func newPublishCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish KEY=PATH...",
		Short: "Upload model and dataset artifacts to the artifact store",
		Long: `Copies local files into the configured artifact location, e.g.

  lakerisk publish --artifacts s3://models/lakerisk \
    models/primary/model.json=./out/model.json \
    models/primary/preprocessor.json=./out/preprocessor.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, err := parseUploads(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := root.config()
			if err != nil {
				return err
			}
			src, err := assessment.OpenSource(ctx, cfg)
			if err != nil {
				return err
			}

			for _, u := range uploads {
				data, err := os.ReadFile(u.path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", u.path, err)
				}
				if err := src.Put(ctx, u.key, data); err != nil {
					return fmt.Errorf("publishing %s: %w", u.key, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%d bytes)\n", u.key, len(data))
			}
			return nil
		},
	}
	return cmd
}
