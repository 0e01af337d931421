package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
)

func autoconfirmCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "autoconfirm",
		Short: "Confirm unambiguous proposals without review",
		Long: `Promote pending proposals whose confidence strictly exceeds the
auto-confirm threshold for their amount class. Common recurring amounts use
a higher bar than one-off amounts.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			generateWithProgress(session)

			promoted, err := session.AutoConfirm()
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("dry run: %d proposal(s) would be confirmed; state not saved", promoted)))
				return nil
			}

			if err := saveSession(session); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("confirmed %d proposal(s)", promoted)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be confirmed without saving")

	return cmd
}
