package engine

import "github.com/hwhitmarsh/beacon-reconcile/internal/model"

// AutoConfirm promotes pending proposals whose confidence strictly exceeds
// the threshold for their bank amount. Promotions go through the normal
// transition path, so each one cascades rejections; a promotion can
// therefore retire later candidates before they are considered, and the
// outcome depends on working-set order, which generation keeps
// deterministic.
//
// No-match placeholders are never promoted.
func (s *Session) AutoConfirm() (int, error) {
	promoted := 0
	for _, p := range s.proposals {
		if p.Status != model.StatusPending || len(p.Entries) == 0 {
			continue
		}
		if p.Confidence <= s.cfg.AutoConfirmThreshold(p.Bank.Amount) {
			continue
		}

		if err := s.Transition(p.ID, model.StatusConfirmed); err != nil {
			return promoted, err
		}
		promoted++
		s.logger.Debug("auto-confirmed proposal",
			"proposal", p.ID,
			"bank", p.Bank.ID,
			"confidence", p.Confidence)
	}

	s.logger.Info("auto-confirm pass complete", "promoted", promoted)
	return promoted, nil
}
