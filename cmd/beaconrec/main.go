package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hwhitmarsh/beacon-reconcile/internal/common"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "beaconrec",
		Short: "🏦 Bank-to-Beacon ledger reconciliation",
		Long: `beaconrec matches bank statement transactions against Beacon ledger
entries, proposes likely pairings with confidence scores, and tracks the
treasurer's confirm/reject decisions across sessions.`,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/beaconrec/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("bank", "", "bank statement file (CSV or OFX)")
	rootCmd.PersistentFlags().String("ledger", "", "Beacon ledger export (CSV)")
	rootCmd.PersistentFlags().String("state", "reconciliation_state.json", "session state file")
	rootCmd.PersistentFlags().String("members", "", "membership export for payee display names (optional)")
	rootCmd.PersistentFlags().String("audit-db", "", "SQLite audit trail database (optional)")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("feeds.bank", rootCmd.PersistentFlags().Lookup("bank"))
	_ = viper.BindPFlag("feeds.ledger", rootCmd.PersistentFlags().Lookup("ledger"))
	_ = viper.BindPFlag("feeds.members", rootCmd.PersistentFlags().Lookup("members"))
	_ = viper.BindPFlag("session.state", rootCmd.PersistentFlags().Lookup("state"))
	_ = viper.BindPFlag("session.audit_db", rootCmd.PersistentFlags().Lookup("audit-db"))

	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(reviewCmd())
	rootCmd.AddCommand(autoconfirmCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received interrupt, shutting down")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/beaconrec", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BEACONREC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := common.SetupLogger(viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("beaconrec %s\n", version)
		},
	}
}
