package domain

import (
	"math"
	"strings"
	"time"
)

// ResolveMultiplier maps a damage exponent code to its power-of-ten scale
// factor. The boolean is false when the code implies no resolvable scale:
// blank, "NA", "0", the annotation characters "?", "-", "+", and anything
// unrecognized. Absent is distinct from a multiplier of zero — a record can
// legitimately report zero damage, but a missing scale means the dollar
// value is unknowable.
func ResolveMultiplier(code string) (float64, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	switch code {
	case "H":
		return 1e2, true
	case "K":
		return 1e3, true
	case "M":
		return 1e6, true
	case "B":
		return 1e9, true
	}
	if len(code) == 1 && code[0] >= '1' && code[0] <= '9' {
		return math.Pow10(int(code[0] - '0')), true
	}
	return 0, false
}

// The 2006-01-01 Napa County flood carries a verified data-entry error: a
// property damage of 115 with exponent "B" (115 billion dollars, more than
// every other flood in the dataset combined). NWS errata place the true
// figure at 115 million. The correction is keyed on date, rounded amount,
// county, and original code so no unrelated record can match.
var outlierDate = time.Date(2006, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	outlierAmount   = 115
	outlierCounty   = "NAPA"
	outlierExponent = "B"
	correctedCode   = "M"
)

// correctKnownOutliers rewrites the exponent code of records matching a
// verified data-entry error. It runs before multiplier resolution and leaves
// every other record untouched.
func correctKnownOutliers(r RawRecord) RawRecord {
	if !sameDay(r.BeginDate, outlierDate) {
		return r
	}
	if math.Round(r.PropertyDamage) != outlierAmount {
		return r
	}
	if !strings.EqualFold(strings.TrimSpace(r.PropertyExponent), outlierExponent) {
		return r
	}
	if !strings.EqualFold(strings.TrimSpace(r.County), outlierCounty) {
		return r
	}
	r.PropertyExponent = correctedCode
	return r
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// damageUSD scales a raw damage amount by its resolved multiplier. Returns
// nil when the exponent code has no resolvable multiplier, regardless of the
// amount.
func damageUSD(amount float64, code string) *float64 {
	mult, ok := ResolveMultiplier(code)
	if !ok {
		return nil
	}
	usd := amount * mult
	return &usd
}
