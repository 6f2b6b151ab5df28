package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/majowuji/wuji/internal/importer"
)

func newImportCommand() *cobra.Command {
	var (
		userID int64
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Backfill training history from a CSV export",
		Long:  "Replays CSV rows (date, exercise, value, notes) through the record\nlifecycle in date order, rebuilding records as if each attempt had been\nlogged live.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			if dryRun {
				log.Info("dry run: nothing will be written")
			}

			imp := importer.New(db, loc, log, dryRun)
			stats, err := imp.ImportFile(context.Background(), userID, args[0])
			if err != nil {
				return err
			}

			fmt.Printf("imported %d rows, skipped %d\n", stats.RowsImported, stats.RowsSkipped)
			for _, r := range stats.Rejected {
				fmt.Printf("  rejected: %s\n", r)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 1, "user ID to import for")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	return cmd
}
