package score

import "github.com/shopspring/decimal"

// Config holds the tunable parts of the scoring model. Zero values are not
// useful; start from DefaultConfig and override from configuration.
type Config struct {
	// CommonAmounts are frequent, low-information amounts (recurring
	// membership dues). An exact amount match against one of these is a weak
	// signal, so confidence leans on date and name instead.
	CommonAmounts []decimal.Decimal

	// LagToleranceDays caps how long after the bank date a ledger entry may
	// be posted and still match. The default absorbs periodic backlog
	// catch-up by the treasurer.
	LagToleranceDays int

	// LeadToleranceDays caps the unusual case of a ledger entry dated before
	// the bank transaction. Held much tighter than the lag tolerance.
	LeadToleranceDays int

	// MaxRefDistance is the largest numeric distance allowed between the two
	// ledger reference numbers of a one-to-two pairing. Entries posted
	// together carry nearby reference numbers; distant pairs that happen to
	// sum correctly are coincidence.
	MaxRefDistance int

	// MinConfidence is the floor below which candidates are not worth
	// showing to a reviewer.
	MinConfidence float64

	// PairDiscount is applied to one-to-two confidence for the extra
	// combinatorial risk of coincidental agreement.
	PairDiscount float64

	// AutoConfirmCommon and AutoConfirmUncommon are the strictly-exceeded
	// thresholds for promoting a pending proposal without review. Common
	// amounts get the higher bar.
	AutoConfirmCommon   float64
	AutoConfirmUncommon float64
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CommonAmounts: []decimal.Decimal{
			decimal.RequireFromString("13.00"),
			decimal.RequireFromString("9.50"),
		},
		LagToleranceDays:    63,
		LeadToleranceDays:   2,
		MaxRefDistance:      50,
		MinConfidence:       0.2,
		PairDiscount:        0.9,
		AutoConfirmCommon:   0.90,
		AutoConfirmUncommon: 0.75,
	}
}

// IsCommon reports whether the amount is in the configured common set.
// Comparison is exact decimal equality.
func (c Config) IsCommon(amount decimal.Decimal) bool {
	for _, common := range c.CommonAmounts {
		if amount.Equal(common) {
			return true
		}
	}
	return false
}

// AutoConfirmThreshold returns the auto-confirm bar applicable to the given
// bank amount.
func (c Config) AutoConfirmThreshold(amount decimal.Decimal) float64 {
	if c.IsCommon(amount) {
		return c.AutoConfirmCommon
	}
	return c.AutoConfirmUncommon
}
