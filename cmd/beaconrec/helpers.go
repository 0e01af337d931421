package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/hwhitmarsh/beacon-reconcile/internal/audit"
	"github.com/hwhitmarsh/beacon-reconcile/internal/engine"
	"github.com/hwhitmarsh/beacon-reconcile/internal/ingest"
	"github.com/hwhitmarsh/beacon-reconcile/internal/members"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
	"github.com/hwhitmarsh/beacon-reconcile/internal/score"
	"github.com/hwhitmarsh/beacon-reconcile/internal/state"
)

// scoringConfig builds the scoring configuration from defaults overridden by
// the config file's matching section.
func scoringConfig() (score.Config, error) {
	cfg := score.DefaultConfig()

	if amounts := viper.GetStringSlice("matching.common_amounts"); len(amounts) > 0 {
		cfg.CommonAmounts = nil
		for _, a := range amounts {
			d, err := decimal.NewFromString(a)
			if err != nil {
				return cfg, fmt.Errorf("invalid common amount %q: %w", a, err)
			}
			cfg.CommonAmounts = append(cfg.CommonAmounts, d)
		}
	}
	if viper.IsSet("matching.lag_tolerance_days") {
		cfg.LagToleranceDays = viper.GetInt("matching.lag_tolerance_days")
	}
	if viper.IsSet("matching.lead_tolerance_days") {
		cfg.LeadToleranceDays = viper.GetInt("matching.lead_tolerance_days")
	}
	if viper.IsSet("matching.max_ref_distance") {
		cfg.MaxRefDistance = viper.GetInt("matching.max_ref_distance")
	}
	if viper.IsSet("matching.min_confidence") {
		cfg.MinConfidence = viper.GetFloat64("matching.min_confidence")
	}
	if viper.IsSet("matching.auto_confirm_common") {
		cfg.AutoConfirmCommon = viper.GetFloat64("matching.auto_confirm_common")
	}
	if viper.IsSet("matching.auto_confirm_uncommon") {
		cfg.AutoConfirmUncommon = viper.GetFloat64("matching.auto_confirm_uncommon")
	}

	return cfg, nil
}

// loadBankFeed reads the bank statement, choosing the parser by file
// extension.
func loadBankFeed() ([]model.BankTransaction, error) {
	path := viper.GetString("feeds.bank")
	if path == "" {
		return nil, fmt.Errorf("no bank statement configured; pass --bank or set feeds.bank")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bank statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return ingest.ReadBankOFX(f)
	default:
		return ingest.ReadBankCSV(f)
	}
}

func loadLedgerFeed() ([]model.LedgerEntry, error) {
	path := viper.GetString("feeds.ledger")
	if path == "" {
		return nil, fmt.Errorf("no ledger export configured; pass --ledger or set feeds.ledger")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger export: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ingest.ReadLedgerCSV(f)
}

// loadMemberDirectory returns nil when no membership export is configured;
// display names then pass through unresolved.
func loadMemberDirectory() (*members.Directory, error) {
	path := viper.GetString("feeds.members")
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open membership export: %w", err)
	}
	defer func() { _ = f.Close() }()

	return members.ReadCSV(f)
}

// openSession loads feeds and state and builds a generated session. The
// returned cleanup closes the audit recorder and must run before exit.
func openSession() (*engine.Session, func(), error) {
	cfg, err := scoringConfig()
	if err != nil {
		return nil, nil, err
	}

	bank, err := loadBankFeed()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := loadLedgerFeed()
	if err != nil {
		return nil, nil, err
	}

	var rec audit.Recorder = audit.Nop{}
	if dbPath := viper.GetString("session.audit_db"); dbPath != "" {
		sqlRec, err := audit.NewSQLiteRecorder(dbPath)
		if err != nil {
			return nil, nil, err
		}
		rec = sqlRec
	}
	cleanup := func() {
		if err := rec.Close(); err != nil {
			slog.Warn("failed to close audit recorder", "error", err)
		}
	}

	session := engine.NewSession(cfg, bank, ledger, engine.WithAuditRecorder(rec))

	st, err := state.Load(statePath())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	session.Restore(st)

	return session, cleanup, nil
}

func statePath() string {
	return viper.GetString("session.state")
}

func saveSession(session *engine.Session) error {
	if err := state.Save(statePath(), session.Snapshot()); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}
	slog.Info("session state saved", "path", statePath())
	return nil
}

// newProgressBar builds the standard bar used for generation and checks.
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

// generateWithProgress runs candidate generation behind a progress bar.
func generateWithProgress(session *engine.Session) []*model.MatchProposal {
	bar := newProgressBar(len(session.Bank()), "Scoring candidates...")
	proposals := session.Generate(func(current, total int, _ string) {
		_ = bar.Set(current)
	})
	_ = bar.Finish()
	return proposals
}
