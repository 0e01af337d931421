// Package engine drives a reconciliation session: it generates candidate
// pairings between bank transactions and ledger entries, manages the
// proposal lifecycle, auto-confirms unambiguous pairings, checks the
// confirmed set for inconsistencies, and applies operator overrides.
package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/hwhitmarsh/beacon-reconcile/internal/audit"
	"github.com/hwhitmarsh/beacon-reconcile/internal/common"
	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
	"github.com/hwhitmarsh/beacon-reconcile/internal/score"
	"github.com/hwhitmarsh/beacon-reconcile/internal/state"
)

// ProgressFunc reports long-running engine work: current item, total items,
// and a short label for the item being processed.
type ProgressFunc func(current, total int, label string)

// Session holds one reconciliation run: the two feeds, the current working
// set of proposals, and the cumulative decisions (claims, confirmations,
// rejections). Sessions are not safe for concurrent use.
type Session struct {
	cfg    score.Config
	logger *slog.Logger
	rec    audit.Recorder

	bank       []model.BankTransaction
	ledger     []*model.LedgerEntry
	ledgerByID map[string]*model.LedgerEntry

	proposals []*model.MatchProposal
	confirmed []*model.MatchProposal

	claimed      map[string]struct{}
	rejectedBank map[string]struct{}
	nextID       int
}

// Option configures a Session.
type Option func(*Session)

// WithAuditRecorder routes every status transition through the given
// recorder.
func WithAuditRecorder(rec audit.Recorder) Option {
	return func(s *Session) { s.rec = rec }
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a session over the two feeds with the given scoring
// configuration.
func NewSession(cfg score.Config, bank []model.BankTransaction, ledger []model.LedgerEntry, opts ...Option) *Session {
	s := &Session{
		cfg:          cfg,
		logger:       slog.Default(),
		rec:          audit.Nop{},
		bank:         bank,
		ledgerByID:   make(map[string]*model.LedgerEntry, len(ledger)),
		claimed:      make(map[string]struct{}),
		rejectedBank: make(map[string]struct{}),
		nextID:       1,
	}

	s.ledger = make([]*model.LedgerEntry, len(ledger))
	for i := range ledger {
		e := ledger[i]
		s.ledger[i] = &e
		s.ledgerByID[e.ID] = &e
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Restore applies a persisted snapshot to the session: claimed identifiers,
// confirmed proposals, and rejected bank transactions. It must be called
// before Generate.
func (s *Session) Restore(st *state.State) {
	for _, id := range st.ClaimedLedgerIDs {
		s.claim(id)
	}
	for _, id := range st.RejectedBankIDs {
		s.rejectedBank[id] = struct{}{}
	}

	for _, p := range st.Confirmed {
		s.confirmed = append(s.confirmed, p)
		s.bumpNextID(p.ID)
	}
	for _, p := range st.Rejected {
		s.bumpNextID(p.ID)
	}

	s.logger.Info("session restored",
		"confirmed", len(s.confirmed),
		"claimed_entries", len(s.claimed),
		"rejected_bank", len(s.rejectedBank))
}

// Snapshot captures the session decisions for persistence.
func (s *Session) Snapshot() *state.State {
	st := state.Empty()

	ids := make([]string, 0, len(s.claimed))
	for id := range s.claimed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	st.ClaimedLedgerIDs = ids

	st.Confirmed = append(st.Confirmed, s.confirmed...)

	bankIDs := make([]string, 0, len(s.rejectedBank))
	for id := range s.rejectedBank {
		bankIDs = append(bankIDs, id)
	}
	sort.Strings(bankIDs)
	st.RejectedBankIDs = bankIDs

	for _, p := range s.proposals {
		if p.Status == model.StatusRejected {
			st.Rejected = append(st.Rejected, p)
		}
	}

	return st
}

// Proposals returns the current working set in generation order.
func (s *Session) Proposals() []*model.MatchProposal {
	return s.proposals
}

// Confirmed returns the settled proposals in confirmation order.
func (s *Session) Confirmed() []*model.MatchProposal {
	return s.confirmed
}

// Bank returns the bank feed.
func (s *Session) Bank() []model.BankTransaction {
	return s.bank
}

// Ledger returns the ledger feed. Claimed flags on the returned entries
// track the session's claimed set.
func (s *Session) Ledger() []*model.LedgerEntry {
	return s.ledger
}

// Find returns the proposal with the given identifier.
func (s *Session) Find(id string) (*model.MatchProposal, error) {
	for _, p := range s.proposals {
		if p.ID == id {
			return p, nil
		}
	}
	// Restored confirmed proposals exist before the first Generate call.
	for _, p := range s.confirmed {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", common.ErrUnknownProposal, id)
}

// Transition moves a proposal to a new status, enforcing the lifecycle
// rules: confirming claims the entries and cascades rejections, rejecting
// records the bank transaction for persistence, and leaving a settled
// status releases the claims. Every hop routes through pending: a settled
// proposal can only step back to pending, and only a pending proposal can
// be confirmed. Undoing a confirmation does not resurrect proposals that
// were cascade-rejected by it; regeneration is the recovery path for
// those.
//
// Manual and resolved statuses are only entered through the override
// handlers, never through Transition.
func (s *Session) Transition(id string, to model.MatchStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidStatus, to)
	}
	if to == model.StatusManual || to == model.StatusResolved {
		return fmt.Errorf("%w: %q is set by the manual override handlers", common.ErrInvalidStatus, to)
	}

	p, err := s.Find(id)
	if err != nil {
		return err
	}
	if p.Status == to {
		return nil
	}

	from := p.Status

	if from.IsSettled() && to != model.StatusPending {
		return fmt.Errorf("%w: %s is %s, undo to pending first", common.ErrInvalidStatus, p.ID, from)
	}
	if to == model.StatusConfirmed && from != model.StatusPending {
		return fmt.Errorf("%w: cannot confirm %s from %s", common.ErrInvalidStatus, p.ID, from)
	}

	// Leaving a settled status releases its claims first.
	if from.IsSettled() {
		s.unsettle(p)
	}
	if from == model.StatusRejected {
		delete(s.rejectedBank, p.Bank.ID)
	}

	switch to {
	case model.StatusPending:
		p.Status = model.StatusPending
	case model.StatusSkipped:
		p.Status = model.StatusSkipped
	case model.StatusRejected:
		p.Status = model.StatusRejected
		s.rejectedBank[p.Bank.ID] = struct{}{}
	case model.StatusConfirmed:
		// settle validates before mutating, so a failed confirm leaves the
		// proposal pending.
		if err := s.settle(p, model.StatusConfirmed); err != nil {
			return err
		}
	}

	s.record(p, from, p.Status, "")
	return nil
}

// settle marks the proposal settled with the given status, claims its
// entries, and cascades rejections over competing pending proposals.
func (s *Session) settle(p *model.MatchProposal, to model.MatchStatus) error {
	for _, other := range s.confirmed {
		if other.ID != p.ID && other.Status.IsSettled() && other.Bank.ID == p.Bank.ID {
			return fmt.Errorf("%w: %s is settled by %s", common.ErrAlreadySettled, p.Bank.ID, other.ID)
		}
	}
	for _, eid := range p.EntryIDs() {
		if _, taken := s.claimed[eid]; taken {
			return fmt.Errorf("%w: %s", common.ErrEntryClaimed, eid)
		}
	}

	p.Status = to
	s.confirmed = append(s.confirmed, p)
	for i := range p.Entries {
		p.Entries[i].Claimed = true
		s.claim(p.Entries[i].ID)
	}

	s.cascade(p)
	return nil
}

// cascade rejects pending proposals invalidated by a settlement: any other
// proposal for the same bank transaction, and any proposal referencing a
// now-claimed entry. Rejections caused by entry claims belong to other bank
// transactions and are recorded in the rejected-bank set so they survive
// regeneration; same-transaction siblings are not recorded, because the
// settlement itself retires that transaction.
func (s *Session) cascade(settled *model.MatchProposal) {
	for _, p := range s.proposals {
		if p.ID == settled.ID || p.Status != model.StatusPending {
			continue
		}

		if p.Bank.ID == settled.Bank.ID {
			p.Status = model.StatusRejected
			s.record(p, model.StatusPending, model.StatusRejected, "cascade: bank transaction settled by "+settled.ID)
			continue
		}

		conflicted := false
		for _, eid := range p.EntryIDs() {
			if _, taken := s.claimed[eid]; taken {
				conflicted = true
				break
			}
		}
		if conflicted {
			p.Status = model.StatusRejected
			s.rejectedBank[p.Bank.ID] = struct{}{}
			s.record(p, model.StatusPending, model.StatusRejected, "cascade: entry claimed by "+settled.ID)
		}
	}
}

// unsettle reverses a settlement: removes the proposal from the confirmed
// collection and releases its entry claims.
func (s *Session) unsettle(p *model.MatchProposal) {
	for i, c := range s.confirmed {
		if c.ID == p.ID {
			s.confirmed = append(s.confirmed[:i], s.confirmed[i+1:]...)
			break
		}
	}
	for i := range p.Entries {
		p.Entries[i].Claimed = false
		s.unclaim(p.Entries[i].ID)
	}
}

func (s *Session) claim(entryID string) {
	s.claimed[entryID] = struct{}{}
	if e, ok := s.ledgerByID[entryID]; ok {
		e.Claimed = true
	}
}

func (s *Session) unclaim(entryID string) {
	delete(s.claimed, entryID)
	if e, ok := s.ledgerByID[entryID]; ok {
		e.Claimed = false
	}
}

func (s *Session) record(p *model.MatchProposal, from, to model.MatchStatus, note string) {
	err := s.rec.Record(audit.Event{
		ProposalID: p.ID,
		BankID:     p.Bank.ID,
		From:       string(from),
		To:         string(to),
		Note:       note,
	})
	if err != nil {
		s.logger.Warn("failed to record audit event", "proposal", p.ID, "error", err)
	}
}

// newID allocates the next sequential proposal identifier.
func (s *Session) newID() string {
	id := fmt.Sprintf("MATCH_%04d", s.nextID)
	s.nextID++
	return id
}

// bumpNextID advances the identifier counter past an existing identifier so
// restored and fresh proposals never collide.
func (s *Session) bumpNextID(id string) {
	var n int
	if _, err := fmt.Sscanf(id, "MATCH_%04d", &n); err != nil {
		return
	}
	if n >= s.nextID {
		s.nextID = n + 1
	}
}

// Stats summarises the session for reporting.
type Stats struct {
	BankTotal       int
	LedgerTotal     int
	Settled         int
	ClaimedEntries  int
	Pending         int
	Rejected        int
	Skipped         int
	NoMatch         int
	UnsettledBank   int
	UnclaimedLedger int
}

// Stats computes current session counts. Proposal counts are per bank
// transaction, taking the best proposal status for transactions with
// several candidates.
func (s *Session) Stats() Stats {
	st := Stats{
		BankTotal:      len(s.bank),
		LedgerTotal:    len(s.ledger),
		ClaimedEntries: len(s.claimed),
	}

	settledBank := make(map[string]struct{})
	for _, p := range s.confirmed {
		if p.Status.IsSettled() {
			settledBank[p.Bank.ID] = struct{}{}
		}
	}
	st.Settled = len(settledBank)

	byBank := make(map[string][]*model.MatchProposal)
	for _, p := range s.proposals {
		byBank[p.Bank.ID] = append(byBank[p.Bank.ID], p)
	}
	for bankID, props := range byBank {
		if _, ok := settledBank[bankID]; ok {
			continue
		}

		hasPending, hasSkipped, hasReal := false, false, false
		for _, p := range props {
			if p.Kind != model.KindNoMatch {
				hasReal = true
			}
			switch p.Status {
			case model.StatusPending:
				hasPending = true
			case model.StatusSkipped:
				hasSkipped = true
			}
		}

		switch {
		case !hasReal:
			st.NoMatch++
		case hasPending:
			st.Pending++
		case hasSkipped:
			st.Skipped++
		default:
			st.Rejected++
		}
	}

	st.UnsettledBank = st.BankTotal - st.Settled
	st.UnclaimedLedger = st.LedgerTotal - st.ClaimedEntries

	return st
}
