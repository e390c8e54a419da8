package engine

import "bilancio/internal/core"

// NetWorthPoint is one step of a projected net-worth series.
type NetWorthPoint struct {
	Months int
	Value  float64
}

// NetWorth sums present values signed by account class: assets add,
// liabilities subtract.
func NetWorth(accounts []core.Account) float64 {
	var total float64
	for _, a := range accounts {
		pv := core.Sanitize(a.PresentValue)
		if a.Class.IsLiability() {
			total -= pv
		} else {
			total += pv
		}
	}
	return total
}

// ProjectedNetWorth sums projected future values across projectable
// accounts only. Checking, savings, credit and other balances have no
// recurrence, so beyond the present they contribute zero to the series.
func ProjectedNetWorth(accounts []core.Account, months int) (float64, error) {
	if months < 0 {
		return 0, ErrInvalidMonths
	}
	var total float64
	for _, a := range accounts {
		if !a.Class.Projectable() {
			continue
		}
		p, err := Project(a, months)
		if err != nil {
			return 0, err
		}
		if a.Class.IsLiability() {
			total -= p.FutureValue
		} else {
			total += p.FutureValue
		}
	}
	return total, nil
}

// NetWorthSeries evaluates ProjectedNetWorth at each requested month count,
// typically the MilestoneMonths of a display horizon.
func NetWorthSeries(accounts []core.Account, monthsList []int) ([]NetWorthPoint, error) {
	points := make([]NetWorthPoint, 0, len(monthsList))
	for _, m := range monthsList {
		v, err := ProjectedNetWorth(accounts, m)
		if err != nil {
			return nil, err
		}
		points = append(points, NetWorthPoint{Months: m, Value: v})
	}
	return points, nil
}
