package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
	"github.com/hwhitmarsh/beacon-reconcile/internal/export"
)

func exportCmd() *cobra.Command {
	var output string
	var settledOnly bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export proposals and outcomes as CSV",
		RunE: func(_ *cobra.Command, _ []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			proposals := generateWithProgress(session)

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer func() { _ = f.Close() }()

			if settledOnly {
				err = export.WriteSettledCSV(f, proposals)
			} else {
				err = export.WriteCSV(f, proposals)
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("exported to " + output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "reconciliation.csv", "output CSV path")
	cmd.Flags().BoolVar(&settledOnly, "settled-only", false, "export only settled proposals")

	return cmd
}
