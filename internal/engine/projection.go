package engine

import (
	"errors"
	"math"

	"bilancio/internal/core"
)

// ErrInvalidMonths rejects negative projection horizons. The engine never
// projects backward; a negative horizon is a caller bug, not data to
// normalize away.
var ErrInvalidMonths = errors.New("months must be non-negative")

// Projection decomposes a projected balance into what was put in and what
// interest did. For loans MonthsPaid counts the payments actually made,
// which stops short of the horizon when the loan pays off early.
type Projection struct {
	FutureValue        float64
	TotalContributions float64
	TotalInterest      float64
	MonthsPaid         int
}

// Project simulates the account forward by the given number of months.
// Investments grow by the closed-form compound-interest recurrence; loans
// amortize iteratively so the balance floors at zero and stops accruing
// once paid off. Non-projectable classes return their present value
// untouched.
func Project(a core.Account, months int) (Projection, error) {
	if months < 0 {
		return Projection{}, ErrInvalidMonths
	}
	pv := core.Sanitize(a.PresentValue)
	rate := core.Sanitize(a.AnnualInterestRatePct) / 100 / 12
	contribution := core.Sanitize(a.MonthlyContribution)

	if !a.Class.Projectable() {
		return Projection{FutureValue: pv}, nil
	}
	if a.Class == core.Loan {
		return projectLoan(pv, rate, contribution, months), nil
	}
	return projectInvestment(pv, rate, contribution, months), nil
}

func projectInvestment(pv, monthlyRate, contribution float64, months int) Projection {
	var fv float64
	if monthlyRate == 0 {
		fv = pv + contribution*float64(months)
	} else {
		growth := math.Pow(1+monthlyRate, float64(months))
		fv = pv*growth + contribution*((growth-1)/monthlyRate)
	}
	contributed := contribution * float64(months)
	return Projection{
		FutureValue:        fv,
		TotalContributions: contributed,
		TotalInterest:      fv - pv - contributed,
		MonthsPaid:         months,
	}
}

// projectLoan iterates month by month: accrue, then pay. The balance floors
// at zero and stops accruing once paid off, and the payoff month's payment
// is capped at the accrued balance, so the decomposition reflects payments
// actually made rather than payment*months.
func projectLoan(pv, monthlyRate, payment float64, months int) Projection {
	balance := pv
	var paid float64
	var monthsPaid int
	for m := 0; m < months; m++ {
		if balance <= 0 {
			break
		}
		accrued := balance * (1 + monthlyRate)
		if payment >= accrued && payment > 0 {
			paid += accrued
			balance = 0
			monthsPaid++
			break
		}
		balance = accrued - payment
		if payment > 0 {
			paid += payment
			monthsPaid++
		}
	}
	fv := math.Max(0, balance)
	return Projection{
		FutureValue:        fv,
		TotalContributions: paid,
		TotalInterest:      paid - (pv - fv),
		MonthsPaid:         monthsPaid,
	}
}

// MilestoneMonths maps a display horizon to the representative months the
// dashboard charts. The table lives here once; call sites must not copy it.
func MilestoneMonths(horizon int) []int {
	if horizon < 0 {
		return nil
	}
	var base []int
	switch {
	case horizon <= 12:
		base = []int{1, 3, 6, 12}
	case horizon <= 36:
		base = []int{6, 12, 24, 36}
	case horizon <= 60:
		base = []int{12, 24, 36, 60}
	case horizon <= 120:
		base = []int{12, 36, 60, 120}
	case horizon <= 180:
		base = []int{12, 60, 120, 180}
	default:
		base = []int{12, 60, 120, 180, 240}
	}

	months := make([]int, 0, len(base)+1)
	seen := false
	for _, m := range base {
		if m > horizon {
			continue
		}
		if m == horizon {
			seen = true
		}
		months = append(months, m)
	}
	if !seen {
		// Retained entries are all strictly below the horizon, so
		// appending keeps the list ascending.
		months = append(months, horizon)
	}
	return months
}
