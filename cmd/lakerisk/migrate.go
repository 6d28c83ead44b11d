package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakerisk/lakerisk/internal/assessment"
	"github.com/lakerisk/lakerisk/internal/occurrence"
	"github.com/lakerisk/lakerisk/internal/platform"
)

func newMigrateCmd(root *rootOpts) *cobra.Command {
	var (
		dbURL      string
		importData bool
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the occurrence database schema",
		Long: `Applies the embedded schema migrations to the Postgres occurrence store.
With --import, also loads the occurrence rows of the species dataset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := root.config()
			if err != nil {
				return err
			}
			url := firstNonEmpty(dbURL, cfg.Database.URL)
			if url == "" {
				return fmt.Errorf("no database configured; set database.url or pass --database-url")
			}

			db, err := platform.OpenDB(ctx, url, cfg.Database.MaxOpenConns)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := platform.AutoMigrate(db.DB); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")

			if !importData {
				return nil
			}
			src, err := assessment.OpenSource(ctx, cfg)
			if err != nil {
				return err
			}
			ds, err := assessment.LoadDataset(ctx, src, cfg.Data.Species)
			if err != nil {
				return err
			}
			n, err := occurrence.NewRepository(db).Import(ctx, "dataset", ds.Occurrences)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new occurrence records (%d in dataset).\n", n, len(ds.Occurrences))
			return nil
		},
	}

	cmd.Flags().StringVar(&dbURL, "database-url", "", "Postgres URL (default: database.url from config)")
	cmd.Flags().BoolVar(&importData, "import", false, "Import occurrence records from the species dataset")

	return cmd
}
