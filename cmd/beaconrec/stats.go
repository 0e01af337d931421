package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print session reconciliation statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			generateWithProgress(session)
			stats := session.Stats()

			fmt.Println(cli.FormatTitle("Reconciliation status"))
			fmt.Printf("  bank transactions:  %d\n", stats.BankTotal)
			fmt.Printf("    settled:          %d\n", stats.Settled)
			fmt.Printf("    pending review:   %d\n", stats.Pending)
			fmt.Printf("    rejected:         %d\n", stats.Rejected)
			fmt.Printf("    skipped:          %d\n", stats.Skipped)
			fmt.Printf("    no candidate:     %d\n", stats.NoMatch)
			fmt.Printf("  ledger entries:     %d\n", stats.LedgerTotal)
			fmt.Printf("    claimed:          %d\n", stats.ClaimedEntries)
			fmt.Printf("    unclaimed:        %d\n", stats.UnclaimedLedger)

			return nil
		},
	}
}
