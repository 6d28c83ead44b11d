package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lakerisk/lakerisk/pkg/surface"
	"github.com/lakerisk/lakerisk/pkg/water"
)

func newScoreCmd(root *rootOpts) *cobra.Command {
	var (
		species   string
		variant   string
		outputFmt string
		reading   water.Reading
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Rank every lake by colonization risk for one species",
		Long: `Scores the species against every monitored lake: the classifier's probability
discounted by how closely the lake resembles the given water-quality reading.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), root, scoreOpts{
				species:   species,
				variant:   variant,
				outputFmt: outputFmt,
				reading:   reading,
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "Scientific name of the species (required)")
	cmd.Flags().StringVar(&variant, "variant", "", "Model variant (default: configured default)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or geojson")
	addReadingFlags(cmd.Flags(), &reading)
	_ = cmd.MarkFlagRequired("species")

	return cmd
}

type scoreOpts struct {
	species   string
	variant   string
	outputFmt string
	reading   water.Reading
}

func runScore(ctx context.Context, root *rootOpts, opts scoreOpts, w io.Writer) error {
	renderer, err := surface.New(opts.outputFmt)
	if err != nil {
		return err
	}

	env, err := root.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.Service.ScoreRisk(ctx, opts.species, opts.reading, opts.variant)
	if err != nil {
		return fmt.Errorf("scoring: %w", err)
	}

	if err := renderer.Render(w, result); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
