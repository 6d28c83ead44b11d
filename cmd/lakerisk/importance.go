package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lakerisk/lakerisk/pkg/importance"
	"github.com/lakerisk/lakerisk/pkg/surface"
	"github.com/lakerisk/lakerisk/pkg/water"
)

func newImportanceCmd(root *rootOpts) *cobra.Command {
	var (
		species   string
		variant   string
		outputFmt string
		top       int
		reading   water.Reading
	)

	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Explain which water-quality parameters drive the model",
		Long: `Without --species, reports the model's global split gain grouped by parameter.
With --species, explains the model's output for that species under the given
reading. That analysis uses a synthetic lake baseline and is approximate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := root.bootstrap(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			var res *importance.Result
			if species == "" {
				res, err = env.Service.ImportanceAnalysis(ctx, variant)
			} else {
				res, err = env.Service.ConditionImportance(ctx, species, reading, variant)
			}
			if err != nil {
				return fmt.Errorf("importance analysis: %w", err)
			}
			return renderImportance(cmd.OutOrStdout(), outputFmt, top, res)
		},
	}

	cmd.Flags().StringVar(&species, "species", "", "Explain one species under the given reading")
	cmd.Flags().StringVar(&variant, "variant", "", "Model variant (default: configured default)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	cmd.Flags().IntVar(&top, "top", 10, "Number of individual features to list in text output")
	addReadingFlags(cmd.Flags(), &reading)

	return cmd
}

func renderImportance(w io.Writer, format string, top int, res *importance.Result) error {
	renderer, err := surface.New(format)
	if err != nil {
		return err
	}
	if tr, ok := renderer.(*surface.TerminalRenderer); ok {
		tr.TopFeatures = top
	}
	if err := renderer.RenderImportance(w, res); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}
