package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
)

func matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match BANK_ID TRANS_NO [TRANS_NO...]",
		Short: "Manually match a bank transaction to ledger entries",
		Long: `Settle a bank transaction against specific ledger entries named by their
Beacon reference numbers, bypassing the scorer. The entry amounts must sum
exactly to the bank amount.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			generateWithProgress(session)

			p, err := session.CreateManualMatch(args[0], args[1:])
			if err != nil {
				return err
			}

			if err := saveSession(session); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("manual match %s recorded for %s", p.ID, args[0])))
			return nil
		},
	}
}
