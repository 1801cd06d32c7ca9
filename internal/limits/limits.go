// Package limits implements the monthly spend gate applied before order
// placement. The backend re-checks the same rule authoritatively; this gate
// only decides whether placement may proceed or must take the escalation
// path, without a network call.
package limits

import (
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow/internal/shared"
)

// SpendProfile captures a company user's spend controls for the current
// calendar month.
type SpendProfile struct {
	// MonthlyLimit is nil when no limit is configured, which means
	// placement is unconstrained. Distinct from Unlimited, an explicit
	// override that wins regardless of the configured limit.
	MonthlyLimit *decimal.Decimal
	Spent        decimal.Decimal
	Unlimited    bool
}

// FromProfile extracts the spend profile from a cached session profile.
func FromProfile(p *shared.Profile) SpendProfile {
	if p == nil {
		return SpendProfile{}
	}
	return SpendProfile{
		MonthlyLimit: p.MonthlyLimit,
		Spent:        p.SpentThisMonth,
		Unlimited:    p.HasUnlimitedAccess,
	}
}

// Remaining returns the remaining spend for the month and whether the
// profile is constrained at all. Unlimited access and a missing limit both
// report unconstrained; Remaining is zero in that case and must be ignored.
func (p SpendProfile) Remaining() (decimal.Decimal, bool) {
	if p.Unlimited || p.MonthlyLimit == nil {
		return decimal.Zero, false
	}
	return p.MonthlyLimit.Sub(p.Spent), true
}

// Allows reports whether an order of the given total may be placed
// directly. Precedence: the unlimited override short-circuits everything,
// then a nil limit, then the arithmetic check.
func (p SpendProfile) Allows(total decimal.Decimal) bool {
	remaining, constrained := p.Remaining()
	if !constrained {
		return true
	}
	return total.LessThanOrEqual(remaining)
}
