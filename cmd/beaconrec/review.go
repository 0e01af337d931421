package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/cli"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review pending proposals interactively",
		Long: `Walk through pending proposals one at a time. Confirming a proposal
claims its ledger entries and automatically rejects competing proposals;
decisions are saved when the review ends.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, cleanup, err := openSession()
			if err != nil {
				return err
			}
			defer cleanup()

			generateWithProgress(session)

			directory, err := loadMemberDirectory()
			if err != nil {
				return err
			}
			displayName := func(s string) string { return s }
			if directory != nil {
				displayName = directory.DisplayName
			}

			reader := cli.NewReader(os.Stdin)
			ctx := cmd.Context()

			fmt.Println(cli.FormatTitle("Review"))
			fmt.Println(cli.SubtleStyle.Render("[c]onfirm  [r]eject  [s]kip  [enter] leave pending  [q]uit"))

			reviewed := 0
		review:
			for _, p := range session.Proposals() {
				// Cascaded rejections can retire proposals mid-review.
				if p.Status != model.StatusPending || p.Kind == model.KindNoMatch {
					continue
				}

				fmt.Println(cli.RenderProposal(p, displayName))

				answer, err := reader.ReadLine(ctx)
				if err != nil {
					if errors.Is(err, cli.ErrInputCancelled) || errors.Is(err, io.EOF) {
						break review
					}
					return err
				}

				switch answer {
				case "c", "y":
					if err := session.Transition(p.ID, model.StatusConfirmed); err != nil {
						fmt.Println(cli.FormatError(err.Error()))
						continue
					}
					reviewed++
					fmt.Println(cli.FormatSuccess("confirmed " + p.ID))
				case "r", "n":
					if err := session.Transition(p.ID, model.StatusRejected); err != nil {
						fmt.Println(cli.FormatError(err.Error()))
						continue
					}
					reviewed++
					fmt.Println(cli.FormatWarning("rejected " + p.ID))
				case "s":
					if err := session.Transition(p.ID, model.StatusSkipped); err != nil {
						fmt.Println(cli.FormatError(err.Error()))
						continue
					}
					reviewed++
				case "q":
					break review
				default:
					// Leave pending.
				}
			}

			if err := saveSession(session); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("review finished: %d decision(s) recorded", reviewed)))
			return nil
		},
	}
}
