package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hwhitmarsh/beacon-reconcile/internal/model"
	"github.com/hwhitmarsh/beacon-reconcile/internal/score"
)

// Generate rebuilds the working set of proposals from the current feeds and
// decisions. Settled bank transactions keep their existing settled proposal
// by identity; everything else is regenerated from scratch, with previously
// rejected bank transactions re-applying their rejection to the fresh
// proposals. Bank transactions with no candidate above the confidence floor
// get a no-match placeholder so reviewers see every transaction accounted
// for.
//
// The output is deterministic for identical feeds and decisions.
func (s *Session) Generate(progress ProgressFunc) []*model.MatchProposal {
	settledByBank := make(map[string]*model.MatchProposal)
	for _, p := range s.confirmed {
		if p.Status.IsSettled() {
			settledByBank[p.Bank.ID] = p
		}
	}

	pool := s.unclaimedPool()
	index := buildAmountIndex(pool)

	proposals := make([]*model.MatchProposal, 0, len(s.bank))
	for i, bank := range s.bank {
		if progress != nil {
			progress(i+1, len(s.bank), bank.Description)
		}

		if settled, ok := settledByBank[bank.ID]; ok {
			proposals = append(proposals, settled)
			continue
		}

		candidates := s.oneToOneCandidates(bank, pool)
		candidates = append(candidates, s.oneToTwoCandidates(bank, index)...)
		candidates = keepAboveFloor(candidates, s.cfg.MinConfidence)
		sortCandidates(candidates)

		_, rejected := s.rejectedBank[bank.ID]

		if len(candidates) == 0 {
			candidates = append(candidates, &model.MatchProposal{
				Bank:    bank,
				Entries: []model.LedgerEntry{},
				Kind:    model.KindNoMatch,
				Status:  model.StatusPending,
			})
		}

		for _, c := range candidates {
			c.ID = s.newID()
			if rejected {
				c.Status = model.StatusRejected
			}
			proposals = append(proposals, c)
		}
	}

	s.proposals = proposals
	s.logger.Info("candidate generation complete",
		"bank_transactions", len(s.bank),
		"proposals", len(proposals),
		"carried_settled", len(settledByBank))

	return proposals
}

// unclaimedPool returns the ledger entries available for matching, in feed
// order.
func (s *Session) unclaimedPool() []*model.LedgerEntry {
	pool := make([]*model.LedgerEntry, 0, len(s.ledger))
	for _, e := range s.ledger {
		if _, taken := s.claimed[e.ID]; !taken {
			pool = append(pool, e)
		}
	}
	return pool
}

// amountIndex buckets unclaimed entries by exact amount so pair search can
// look up complements instead of scanning all entry pairs.
type amountIndex struct {
	buckets map[string][]*model.LedgerEntry
	keys    []string
}

func buildAmountIndex(pool []*model.LedgerEntry) amountIndex {
	idx := amountIndex{buckets: make(map[string][]*model.LedgerEntry)}
	for _, e := range pool {
		key := e.Amount.String()
		if _, ok := idx.buckets[key]; !ok {
			idx.keys = append(idx.keys, key)
		}
		idx.buckets[key] = append(idx.buckets[key], e)
	}
	sort.Strings(idx.keys)
	return idx
}

// oneToOneCandidates scores every unclaimed entry whose amount equals the
// bank amount exactly. Candidates are built cheapest-check-first: amount
// equality, then date, then name.
func (s *Session) oneToOneCandidates(bank model.BankTransaction, pool []*model.LedgerEntry) []*model.MatchProposal {
	var out []*model.MatchProposal
	for _, e := range pool {
		if !e.Amount.Equal(bank.Amount) {
			continue
		}

		dateScore := s.cfg.DateScore(bank.Date, e.Date)
		if dateScore == 0 {
			continue
		}

		nameScore := score.NameScore(bank.Description, e.Payee)
		// A zero name score on a common amount means the only real signal
		// is a low-information amount; not worth a reviewer's time.
		if nameScore == 0 && s.cfg.IsCommon(e.Amount) {
			continue
		}

		amountScore := s.cfg.AmountScore(e.Amount)
		out = append(out, &model.MatchProposal{
			Bank:       bank,
			Entries:    []model.LedgerEntry{*e},
			Kind:       model.KindOneToOne,
			Status:     model.StatusPending,
			Confidence: s.cfg.Confidence(amountScore, dateScore, nameScore, bank.Amount),
			Scores:     model.Scores{Amount: amountScore, Date: dateScore, Name: nameScore},
		})
	}
	return out
}

// oneToTwoCandidates finds entry pairs whose amounts sum exactly to the bank
// amount. Each unordered pair is visited once: bucket keys are walked in
// sorted order and a bucket is only paired with its complement when the
// complement does not sort before it.
func (s *Session) oneToTwoCandidates(bank model.BankTransaction, idx amountIndex) []*model.MatchProposal {
	var out []*model.MatchProposal

	for _, key := range idx.keys {
		a1, err := decimal.NewFromString(key)
		if err != nil {
			continue
		}
		// Amounts are signed; refunds reconcile like receipts. Only zero
		// halves are skipped, so a full-amount entry never pairs with a
		// self-cancelling zero entry.
		a2 := bank.Amount.Sub(a1)
		if a1.IsZero() || a2.IsZero() {
			continue
		}

		complement := a2.String()
		if complement < key {
			continue
		}

		first := idx.buckets[key]
		second, ok := idx.buckets[complement]
		if !ok {
			continue
		}

		if key == complement {
			for i := 0; i < len(first); i++ {
				for j := i + 1; j < len(first); j++ {
					if p := s.scorePair(bank, first[i], first[j]); p != nil {
						out = append(out, p)
					}
				}
			}
			continue
		}

		for _, e1 := range first {
			for _, e2 := range second {
				if p := s.scorePair(bank, e1, e2); p != nil {
					out = append(out, p)
				}
			}
		}
	}

	return out
}

// scorePair scores one candidate entry pair, or returns nil when the pair is
// pruned. Reference-number distance is checked before any scoring: entries
// posted together carry nearby reference numbers, so distant pairs that
// happen to sum correctly are discarded as coincidence.
func (s *Session) scorePair(bank model.BankTransaction, e1, e2 *model.LedgerEntry) *model.MatchProposal {
	if !refsNearby(e1.RefNo, e2.RefNo, s.cfg.MaxRefDistance) {
		return nil
	}

	d1 := s.cfg.DateScore(bank.Date, e1.Date)
	d2 := s.cfg.DateScore(bank.Date, e2.Date)
	if d1 == 0 || d2 == 0 {
		return nil
	}
	dateScore := (d1 + d2) / 2

	n1 := score.NameScore(bank.Description, e1.Payee)
	n2 := score.NameScore(bank.Description, e2.Payee)
	nameScore := (n1 + n2) / 2
	if nameScore == 0 && s.cfg.IsCommon(e1.Amount) && s.cfg.IsCommon(e2.Amount) {
		return nil
	}

	amountScore := s.cfg.PairAmountScore(e1.Amount, e2.Amount)
	confidence := s.cfg.Confidence(amountScore, dateScore, nameScore, bank.Amount) * s.cfg.PairDiscount

	return &model.MatchProposal{
		Bank:       bank,
		Entries:    []model.LedgerEntry{*e1, *e2},
		Kind:       model.KindOneToTwo,
		Status:     model.StatusPending,
		Confidence: confidence,
		Scores:     model.Scores{Amount: amountScore, Date: dateScore, Name: nameScore},
	}
}

// refsNearby reports whether two ledger reference numbers are within the
// allowed numeric distance. Unparsable references pass the check; absence of
// evidence is not treated as evidence of distance.
func refsNearby(ref1, ref2 string, maxDistance int) bool {
	n1, err1 := strconv.Atoi(strings.TrimSpace(ref1))
	n2, err2 := strconv.Atoi(strings.TrimSpace(ref2))
	if err1 != nil || err2 != nil {
		return true
	}

	d := n1 - n2
	if d < 0 {
		d = -d
	}
	return d <= maxDistance
}

func keepAboveFloor(candidates []*model.MatchProposal, floor float64) []*model.MatchProposal {
	kept := candidates[:0]
	for _, c := range candidates {
		if c.Confidence >= floor {
			kept = append(kept, c)
		}
	}
	return kept
}

// sortCandidates orders a transaction's candidates best first, breaking
// confidence ties by entry identifiers so output is stable across runs.
func sortCandidates(candidates []*model.MatchProposal) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return strings.Join(candidates[i].EntryIDs(), ",") < strings.Join(candidates[j].EntryIDs(), ",")
	})
}
