// Package score implements the multi-factor confidence model used to rank
// candidate pairings between bank transactions and ledger entries: an amount
// score, an asymmetric date-proximity score, a surname-similarity score, and
// their weighted combination.
package score

import (
	"time"

	"github.com/shopspring/decimal"
)

// Confidence weights. Common amounts carry little information on their own,
// so weight shifts from amount onto date and name.
const (
	weightAmountCommon = 0.10
	weightDateCommon   = 0.45
	weightNameCommon   = 0.45

	weightAmount = 0.30
	weightDate   = 0.35
	weightName   = 0.35
)

// AmountScore scores a single-entry amount match. Exact equality is a
// candidacy precondition elsewhere; this only grades how informative the
// match is.
func (c Config) AmountScore(amount decimal.Decimal) float64 {
	if c.IsCommon(amount) {
		return 0.3
	}
	return 1.0
}

// PairAmountScore scores a two-entry amount match by how many of the
// individual amounts are common.
func (c Config) PairAmountScore(a1, a2 decimal.Decimal) float64 {
	switch {
	case c.IsCommon(a1) && c.IsCommon(a2):
		return 0.3
	case c.IsCommon(a1) || c.IsCommon(a2):
		return 0.6
	default:
		return 1.0
	}
}

// DateScore scores the proximity of a ledger entry date to a bank
// transaction date. The function is asymmetric: ledger entries are normally
// posted after the transaction clears, so a lag decays linearly out to the
// lag tolerance, while a lead (ledger before bank) gets full credit only
// within the short lead tolerance and nothing beyond it.
//
// A zero return is a hard rejection, not just a weak score.
func (c Config) DateScore(bankDate, ledgerDate time.Time) float64 {
	days := daysBetween(bankDate, ledgerDate)

	if days < 0 {
		if -days <= c.LeadToleranceDays {
			return 1.0
		}
		return 0
	}

	if days > c.LagToleranceDays {
		return 0
	}

	return 1.0 - float64(days)/float64(c.LagToleranceDays+1)
}

// Confidence combines the three component scores into one value in [0,1].
// Weight selection follows the bank amount: common amounts lean on date and
// name.
func (c Config) Confidence(amount, date, name float64, bankAmount decimal.Decimal) float64 {
	var confidence float64
	if c.IsCommon(bankAmount) {
		confidence = weightAmountCommon*amount + weightDateCommon*date + weightNameCommon*name
	} else {
		confidence = weightAmount*amount + weightDate*date + weightName*name
	}

	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// daysBetween returns whole days from a to b, negative when b precedes a.
// Feed dates are date-only values, so hour arithmetic is exact.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
