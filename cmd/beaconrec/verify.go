package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
)

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the confirmed set for inconsistencies",
		Long: `Verify the invariants of the confirmed matches: no ledger entry claimed
by more than one confirmed proposal, and every confirmed proposal balanced
to the penny. Exits non-zero when violations are found.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			bar := newProgressBar(len(session.Confirmed()), "Checking confirmed matches...")
			findings := session.CheckConsistency(func(current, total int, _ string) {
				_ = bar.Set(current)
			})
			_ = bar.Finish()

			if len(findings) == 0 {
				fmt.Println(cli.FormatSuccess("confirmed matches are consistent"))
				return nil
			}

			for _, f := range findings {
				fmt.Println(cli.FormatError(fmt.Sprintf("%s: %s", f.Proposal.ID, f.Reason)))
				for _, related := range f.Related {
					if related.ID == f.Proposal.ID {
						continue
					}
					fmt.Println(cli.SubtleStyle.Render("  related: " + related.ID))
				}
			}
			return fmt.Errorf("found %d consistency violation(s)", len(findings))
		},
	}
}
