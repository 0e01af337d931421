package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

func suggestCmd() *cobra.Command {
	var limit int
	var showAll bool

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Generate and print match proposals",
		Long: `Generate candidate pairings between the bank statement and the ledger
export, ranked by confidence. Settled transactions keep their existing
matches; everything else is rescored from scratch.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			proposals := generateWithProgress(session)

			directory, err := loadMemberDirectory()
			if err != nil {
				return err
			}
			displayName := func(s string) string { return s }
			if directory != nil {
				displayName = directory.DisplayName
			}

			fmt.Println(cli.FormatTitle("Match proposals"))
			printed := 0
			for _, p := range proposals {
				if !showAll && p.Status != model.StatusPending {
					continue
				}
				if limit > 0 && printed >= limit {
					break
				}
				fmt.Println(cli.RenderProposal(p, displayName))
				printed++
			}

			stats := session.Stats()
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf(
				"%d bank transactions: %d settled, %d pending review, %d with no candidate",
				stats.BankTotal, stats.Settled, stats.Pending, stats.NoMatch)))

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "print at most this many proposals (0 = all)")
	cmd.Flags().BoolVar(&showAll, "all", false, "include settled and rejected proposals")

	return cmd
}
