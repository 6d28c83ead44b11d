package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLakesCmd(root *rootOpts) *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "lakes",
		Short: "List the monitored lakes and their baselines",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := root.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			lakes := env.Service.LakeList()
			w := cmd.OutOrStdout()
			if outputFmt == "json" {
				return writeJSON(w, lakes)
			}
			fmt.Fprintf(w, "%-18s %-6s %6s %7s %6s %6s %7s %8s\n",
				"LAKE", "REGION", "PH", "SAL", "DO", "BOD", "TURB", "TEMP")
			for _, l := range lakes {
				b := l.Baseline
				fmt.Fprintf(w, "%-18s %-6s %6.2f %7.3f %6.2f %6.2f %7.2f %8.1f\n",
					l.Name, l.Region, b.PH, b.Salinity, b.DissolvedOxygen, b.BOD, b.Turbidity, b.Temperature)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")
	return cmd
}

func newSpeciesCmd(root *rootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "species [name]",
		Short: "List species, or show one species' traits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := root.bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range env.Service.SpeciesList() {
					fmt.Fprintln(w, name)
				}
				return nil
			}
			info, err := env.Service.SpeciesInfo(args[0])
			if err != nil {
				return err
			}
			return writeJSON(w, info)
		},
	}
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
