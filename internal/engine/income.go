package engine

import (
	"math"

	"bilancio/internal/core"
)

// TakeHome is the annual income decomposition. Fields are unrounded;
// RoundDisplay and RoundPersist are the only rounding applied, and only at
// the edges.
type TakeHome struct {
	AnnualContribution401k float64
	AnnualEmployerMatch    float64
	TotalAnnualTax         float64
	AnnualTakeHome         float64
	MonthlyTakeHome        float64
	PeriodTakeHome         float64
}

// ComputeTakeHome derives annual, monthly and per-pay-period take-home pay
// from the profile and the current tax rates.
//
// Take-home may go negative when taxes plus contributions exceed salary;
// that is a valid computed result and is not clamped. A zero salary yields
// all zeroes.
func ComputeTakeHome(p core.IncomeProfile, rates []core.TaxRate) TakeHome {
	salary := core.Sanitize(p.YearlySalary)
	contribution := salary * core.Sanitize(p.RetirementContributionPct) / 100
	match := salary * core.Sanitize(p.EmployerMatchPct) / 100
	tax := TotalTax(salary, rates)

	annual := salary - tax - contribution
	return TakeHome{
		AnnualContribution401k: contribution,
		AnnualEmployerMatch:    match,
		TotalAnnualTax:         tax,
		AnnualTakeHome:         annual,
		MonthlyTakeHome:        annual / 12,
		PeriodTakeHome:         annual / p.PayFrequency.Divisor(),
	}
}

// RoundDisplay rounds to 2 decimal places for presentation.
func RoundDisplay(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundPersist rounds to 4 decimal places. Monthly take-home persisted for
// downstream recomputation keeps the extra precision so repeated
// round-trips don't drift.
func RoundPersist(v float64) float64 {
	return math.Round(v*10000) / 10000
}
