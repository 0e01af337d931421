// beaconstate is the standalone state-file doctor: it validates a persisted
// reconciliation session against the engine invariants and can rebuild a
// damaged file deterministically.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hwhitmarsh/beacon-reconcile/internal/common"
	"github.com/hwhitmarsh/beacon-reconcile/internal/state"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "beaconstate",
	Short: "Validate and repair reconciliation state files",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		return common.SetupLogger(level, "console")
	},
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(fixCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("beaconstate %s\n", version)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate STATE_FILE",
		Short: "Report invariant violations in a state file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]

			st, err := state.Load(path)
			if err != nil {
				return err
			}

			issues := state.Validate(st)
			fmt.Print(state.Report(path, issues))
			if len(issues) > 0 {
				return fmt.Errorf("state file has %d issue(s)", len(issues))
			}
			return nil
		},
	}
}

func fixCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fix STATE_FILE",
		Short: "Rebuild a damaged state file",
		Long: `Deterministically repair a state file: drop records with invalid
statuses, remove duplicates, renumber proposal identifiers, rebuild the
claimed-entry set from the confirmed matches, and clear the rejection sets.
The repaired file is written to --output; without it the input is replaced
after a .bak backup is taken.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]

			st, err := state.Load(path)
			if err != nil {
				return err
			}

			fixed, summary := state.Fix(st)

			target := output
			if target == "" {
				backup := path + ".bak"
				if err := os.Rename(path, backup); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to back up state file: %w", err)
				}
				slog.Info("original state backed up", "path", backup)
				target = path
			}

			if err := state.Save(target, fixed); err != nil {
				return err
			}

			fmt.Printf("Repaired state written to %s\n", target)
			fmt.Printf("  kept:                    %d\n", summary.Kept)
			fmt.Printf("  removed invalid status:  %d\n", summary.RemovedInvalidStatus)
			fmt.Printf("  removed duplicates:      %d\n", summary.RemovedDuplicates)
			fmt.Printf("  claimed entries rebuilt: %d\n", summary.ClaimedRebuilt)
			fmt.Printf("  rejections cleared:      %d\n", summary.RejectionsCleared)

			if issues := state.Validate(fixed); len(issues) > 0 {
				return fmt.Errorf("repaired state still has %d issue(s)", len(issues))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the repaired state here instead of replacing the input")

	return cmd
}
