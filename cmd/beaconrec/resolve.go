package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve BANK_ID COMMENT...",
		Short: "Mark a bank transaction as resolved without a ledger match",
		Long: `Settle a bank transaction that will never correspond to a ledger entry,
recording an explanation. The transaction is retired from candidate
generation without claiming any entries.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			generateWithProgress(session)

			comment := strings.Join(args[1:], " ")
			p, err := session.CreateManuallyResolved(args[0], comment)
			if err != nil {
				return err
			}

			if err := saveSession(session); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s resolved as %s: %s", args[0], p.ID, comment)))
			return nil
		},
	}
}
