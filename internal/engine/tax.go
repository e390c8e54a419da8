// Package engine implements the pure calculation core: tax liability,
// take-home pay, budget aggregation, balance projection and net worth.
//
// Every function takes a fresh snapshot of its inputs and returns derived
// numbers. Nothing here touches storage, holds state between calls, or
// mutates an argument; callers own freshness and may run calls in any order.
package engine

import "bilancio/internal/core"

// TotalTax sums the liability of every rate against the salary. An empty
// rate list yields zero; zero-percent rates contribute zero but stay
// enumerable for display.
func TotalTax(salary float64, rates []core.TaxRate) float64 {
	salary = core.Sanitize(salary)
	var total float64
	for _, r := range rates {
		total += salary * core.Sanitize(r.Percent) / 100
	}
	return total
}

// RateAmount returns the annual amount a single rate takes from the salary.
func RateAmount(salary float64, r core.TaxRate) float64 {
	return core.Sanitize(salary) * core.Sanitize(r.Percent) / 100
}
