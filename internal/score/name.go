package score

import (
	"regexp"
	"strings"
)

// Name comparison outcomes, in order of preference. Short surnames must match
// exactly: a one-character difference in a short name denotes a different
// person, so partial credit is only available to longer tokens.
const (
	nameExact     = 1.0
	namePrefix    = 0.9
	nameSubstring = 0.7
	nameFuzzy     = 0.6

	// NameNeutral is returned when no usable name token exists on either
	// side. Absence of data is not evidence of mismatch.
	NameNeutral = 0.3

	minPartialLen = 5
	minFuzzyLen   = 6

	// fuzzyThreshold gates edit-distance similarity before it is admitted at
	// the capped nameFuzzy score.
	fuzzyThreshold = 0.86
)

var (
	refNumberPattern = regexp.MustCompile(`\S*\d\S*`)
	nonLetterPattern = regexp.MustCompile(`[^A-Z]+`)
)

// Tokens that appear in bank descriptions and payee text but are never
// surnames.
var nameStopWords = map[string]struct{}{
	"AND": {}, "THE": {}, "MR": {}, "MRS": {}, "MS": {}, "MISS": {}, "DR": {},
	"PAYMENT": {}, "PAYMENTS": {}, "TRANSFER": {}, "STANDING": {}, "ORDER": {},
	"REF": {}, "REFERENCE": {}, "FASTER": {}, "BGC": {}, "FPI": {}, "SO": {},
	"DD": {}, "TFR": {}, "CHQ": {},
	"CHEQUE": {}, "CREDIT": {}, "DEBIT": {}, "CARD": {}, "BANK": {}, "GIRO": {},
	"MEMBERSHIP": {}, "SUBS": {}, "SUBSCRIPTION": {}, "RENEWAL": {}, "ONLINE": {},
}

// NameScore compares surname-like tokens extracted from a bank description
// and a ledger payee. Either side may list names in forename-surname or
// surname-forename order, carry truncated surnames, combine joint account
// holders with initials, or embed reference numbers; extraction tolerates all
// of these and comparison takes the best pairwise token score.
func NameScore(bankDescription, ledgerPayee string) float64 {
	bankTokens := surnameTokens(bankDescription)
	payeeTokens := surnameTokens(ledgerPayee)

	if len(bankTokens) == 0 || len(payeeTokens) == 0 {
		return NameNeutral
	}

	best := 0.0
	for _, b := range bankTokens {
		for _, p := range payeeTokens {
			if s := tokenScore(b, p); s > best {
				best = s
			}
		}
	}
	return best
}

// SurnameTokens exposes token extraction for callers that need to resolve
// the same tokens the scorer compares, such as member display lookups.
func SurnameTokens(text string) []string {
	return surnameTokens(text)
}

// surnameTokens extracts candidate surname tokens from free text. Reference
// numbers are stripped before tokenisation, joint-holder separators are
// treated as spaces, and single initials plus known non-name words are
// dropped.
func surnameTokens(text string) []string {
	upper := strings.ToUpper(text)
	upper = refNumberPattern.ReplaceAllString(upper, " ")
	upper = strings.NewReplacer("&", " ", "/", " ", "-", " ").Replace(upper)

	var tokens []string
	for _, tok := range nonLetterPattern.Split(upper, -1) {
		if len(tok) < 2 {
			continue
		}
		if _, stop := nameStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// tokenScore compares two candidate surnames.
func tokenScore(a, b string) float64 {
	if a == b {
		return nameExact
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if len(shorter) >= minPartialLen {
		// Banks truncate long surnames, so a prefix relationship is nearly
		// as strong as equality.
		if strings.HasPrefix(longer, shorter) {
			return namePrefix
		}
		if strings.Contains(longer, shorter) {
			return nameSubstring
		}
	}

	if len(a) >= minFuzzyLen && len(b) >= minFuzzyLen {
		if similarity(a, b) >= fuzzyThreshold {
			return nameFuzzy
		}
	}

	return 0
}

// similarity is normalised edit-distance similarity in [0,1].
func similarity(a, b string) float64 {
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance over bytes; surname tokens are A-Z only
// by the time they get here.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
