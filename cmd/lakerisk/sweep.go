package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/lakerisk/lakerisk/pkg/surface"
	"github.com/lakerisk/lakerisk/pkg/water"
)

func newSweepCmd(root *rootOpts) *cobra.Command {
	var (
		variant   string
		outputFmt string
		limit     int
		quiet     bool
		reading   water.Reading
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Score many species and list each one's highest-risk lake",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := surface.New(outputFmt)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := root.bootstrap(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			var bar *progressbar.ProgressBar
			progress := func(done, total int) {
				if quiet {
					return
				}
				if bar == nil {
					bar = newSweepBar(total)
				}
				if err := bar.Set(done); err != nil {
					slog.Warn("Failed to update progress bar", "error", err)
				}
			}

			rows, err := env.Service.Sweep(ctx, reading, variant, limit, progress)
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}
			return renderer.RenderSweep(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "Model variant (default: configured default)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().IntVar(&limit, "limit", 50, "Number of species to score (0 for all)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Hide the progress bar")
	addReadingFlags(cmd.Flags(), &reading)

	return cmd
}

func newSweepBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Scoring species...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
