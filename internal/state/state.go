// Package state persists and repairs reconciliation session snapshots. The
// snapshot is a single structured record with four arrays: the claimed
// ledger-entry identifiers, the confirmed proposals, the rejected
// bank-transaction identifiers, and the rejected proposals.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hwhitmarsh/beacon-reconcile/internal/common"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
)

// State is the persisted snapshot of a reconciliation session.
type State struct {
	ClaimedLedgerIDs []string               `json:"matched_ledger_ids"`
	Confirmed        []*model.MatchProposal `json:"confirmed_matches"`
	RejectedBankIDs  []string               `json:"rejected_bank_ids"`
	Rejected         []*model.MatchProposal `json:"rejected_matches"`
}

// Empty returns a fresh snapshot with no decisions recorded.
func Empty() *State {
	return &State{
		ClaimedLedgerIDs: []string{},
		Confirmed:        []*model.MatchProposal{},
		RejectedBankIDs:  []string{},
		Rejected:         []*model.MatchProposal{},
	}
}

// Load reads a snapshot from disk. A missing file is not an error and
// returns an empty snapshot; a structurally invalid file is fatal to the
// load, wrapped in ErrStateCorrupted, and the caller decides whether to
// start from empty state or abort.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrStateCorrupted, path, err)
	}

	if st.ClaimedLedgerIDs == nil {
		st.ClaimedLedgerIDs = []string{}
	}
	if st.Confirmed == nil {
		st.Confirmed = []*model.MatchProposal{}
	}
	if st.RejectedBankIDs == nil {
		st.RejectedBankIDs = []string{}
	}
	if st.Rejected == nil {
		st.Rejected = []*model.MatchProposal{}
	}

	return &st, nil
}

// Save writes the snapshot atomically: a partially written state file would
// otherwise be indistinguishable from corruption on the next load.
func Save(path string, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
