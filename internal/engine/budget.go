package engine

import (
	"time"

	"bilancio/internal/core"
)

// ItemState is the three-way budget classification for an item. The
// presentation layer renders each state differently, so over/at/under must
// stay distinct.
type ItemState int

const (
	StatusUnder ItemState = iota
	StatusAt
	StatusOver
)

func (s ItemState) String() string {
	switch s {
	case StatusOver:
		return "over"
	case StatusAt:
		return "at"
	default:
		return "under"
	}
}

// CategorySummary totals a category's items against a period's purchases.
type CategorySummary struct {
	Budgeted  float64
	Spent     float64
	Remaining float64
}

// BudgetSummary totals the whole budget against a period's purchases and
// the monthly income.
type BudgetSummary struct {
	TotalBudgeted       float64
	TotalSpent          float64
	RemainingBudget     float64
	RemainingAfterSpend float64
}

// MonthWindow returns the half-open interval [first of month, first of next
// month) in UTC. Aggregations over a calendar month use this window so a
// purchase at midnight on the first belongs to exactly one month.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// SpentForItem sums the cost of non-deleted purchases linked to the item
// with timestamps in [start, end).
func SpentForItem(itemID string, purchases []core.Purchase, start, end time.Time) float64 {
	var spent float64
	for _, p := range purchases {
		if p.Deleted || p.BudgetItemID != itemID {
			continue
		}
		if inWindow(p.Timestamp, start, end) {
			spent += core.Sanitize(p.Cost)
		}
	}
	return spent
}

// CategoryTotals sums budgets and spend across the category's active items.
// A category with no items returns all zeroes.
func CategoryTotals(cat core.BudgetCategory, items []core.BudgetItem, purchases []core.Purchase, start, end time.Time) CategorySummary {
	var s CategorySummary
	for _, it := range items {
		if it.CategoryID != cat.ID || !it.Active {
			continue
		}
		s.Budgeted += core.Sanitize(it.BudgetAmount)
		s.Spent += SpentForItem(it.ID, purchases, start, end)
	}
	s.Remaining = s.Budgeted - s.Spent
	return s
}

// GrandTotals computes the whole-budget summary for the period. TotalSpent
// counts every non-deleted purchase in the window, including uncategorized
// ones, so the grand total never undercounts what left the account.
func GrandTotals(items []core.BudgetItem, purchases []core.Purchase, income float64, start, end time.Time) BudgetSummary {
	income = core.Sanitize(income)
	var s BudgetSummary
	for _, it := range items {
		if it.Active {
			s.TotalBudgeted += core.Sanitize(it.BudgetAmount)
		}
	}
	for _, p := range purchases {
		if p.Deleted || !inWindow(p.Timestamp, start, end) {
			continue
		}
		s.TotalSpent += core.Sanitize(p.Cost)
	}
	s.RemainingBudget = income - s.TotalBudgeted
	s.RemainingAfterSpend = income - s.TotalSpent
	return s
}

// ItemStatus classifies spend against budget: strictly over, exactly at a
// positive budget, otherwise under.
func ItemStatus(spent, budget float64) ItemState {
	spent = core.Sanitize(spent)
	budget = core.Sanitize(budget)
	switch {
	case spent > budget:
		return StatusOver
	case spent == budget && budget > 0:
		return StatusAt
	default:
		return StatusUnder
	}
}

func inWindow(ts time.Time, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}
