package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testBudget() (core.BudgetCategory, []core.BudgetItem, []core.Purchase) {
	cat := core.BudgetCategory{ID: "cat-food", Name: "Food"}
	items := []core.BudgetItem{
		{ID: "it-groceries", Name: "Groceries", BudgetAmount: 400, CategoryID: "cat-food", Active: true},
		{ID: "it-dining", Name: "Dining", BudgetAmount: 150, CategoryID: "cat-food", Active: true},
		{ID: "it-gas", Name: "Gas", BudgetAmount: 120, CategoryID: "cat-transport", Active: true},
	}
	purchases := []core.Purchase{
		{ID: "p1", ItemName: "weekly shop", Cost: 92.40, Timestamp: day(2026, time.March, 3), BudgetItemID: "it-groceries"},
		{ID: "p2", ItemName: "weekly shop", Cost: 105.10, Timestamp: day(2026, time.March, 17), BudgetItemID: "it-groceries"},
		{ID: "p3", ItemName: "pizza", Cost: 38.00, Timestamp: day(2026, time.March, 8), BudgetItemID: "it-dining"},
		{ID: "p4", ItemName: "fuel", Cost: 45.00, Timestamp: day(2026, time.March, 12), BudgetItemID: "it-gas"},
		{ID: "p5", ItemName: "cash withdrawal", Cost: 60.00, Timestamp: day(2026, time.March, 20)}, // uncategorized
		{ID: "p6", ItemName: "old shop", Cost: 80.00, Timestamp: day(2026, time.February, 25), BudgetItemID: "it-groceries"},
		{ID: "p7", ItemName: "deleted shop", Cost: 999.00, Timestamp: day(2026, time.March, 5), BudgetItemID: "it-groceries", Deleted: true},
	}
	return cat, items, purchases
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(2026, time.March)
	assert.Equal(t, day(2026, time.March, 1), start)
	assert.Equal(t, day(2026, time.April, 1), end)

	// December wraps into the next year.
	start, end = MonthWindow(2025, time.December)
	assert.Equal(t, day(2025, time.December, 1), start)
	assert.Equal(t, day(2026, time.January, 1), end)
}

func TestSpentForItem(t *testing.T) {
	_, _, purchases := testBudget()
	start, end := MonthWindow(2026, time.March)

	assert.InDelta(t, 197.50, SpentForItem("it-groceries", purchases, start, end), 1e-9)
	assert.InDelta(t, 38.00, SpentForItem("it-dining", purchases, start, end), 1e-9)
	assert.Zero(t, SpentForItem("it-unknown", purchases, start, end))
}

func TestSpentForItemWindowBoundaries(t *testing.T) {
	start, end := MonthWindow(2026, time.March)
	purchases := []core.Purchase{
		{ID: "a", ItemName: "at start", Cost: 10, Timestamp: start, BudgetItemID: "it"},
		{ID: "b", ItemName: "at end", Cost: 20, Timestamp: end, BudgetItemID: "it"},
		{ID: "c", ItemName: "just before end", Cost: 30, Timestamp: end.Add(-time.Second), BudgetItemID: "it"},
	}
	// [start, end): the start instant counts, the end instant does not.
	assert.InDelta(t, 40, SpentForItem("it", purchases, start, end), 1e-9)
}

func TestSpentForItemSoftDelete(t *testing.T) {
	start, end := MonthWindow(2026, time.March)
	p := core.Purchase{ID: "p", ItemName: "shop", Cost: 50, Timestamp: day(2026, time.March, 10), BudgetItemID: "it", Deleted: true}

	assert.Zero(t, SpentForItem("it", []core.Purchase{p}, start, end))

	// Restoring flips the flag on the same record; the ID never changes.
	p.Deleted = false
	assert.InDelta(t, 50, SpentForItem("it", []core.Purchase{p}, start, end), 1e-9)
}

func TestCategoryTotals(t *testing.T) {
	cat, items, purchases := testBudget()
	start, end := MonthWindow(2026, time.March)

	s := CategoryTotals(cat, items, purchases, start, end)
	assert.InDelta(t, 550, s.Budgeted, 1e-9)
	assert.InDelta(t, 235.50, s.Spent, 1e-9)
	assert.InDelta(t, 314.50, s.Remaining, 1e-9)

	// Category totals equal the sum of SpentForItem over its items.
	want := SpentForItem("it-groceries", purchases, start, end) +
		SpentForItem("it-dining", purchases, start, end)
	assert.InDelta(t, want, s.Spent, 1e-9)
}

func TestCategoryTotalsNoItems(t *testing.T) {
	start, end := MonthWindow(2026, time.March)
	s := CategoryTotals(core.BudgetCategory{ID: "empty"}, nil, nil, start, end)
	assert.Zero(t, s.Budgeted)
	assert.Zero(t, s.Spent)
	assert.Zero(t, s.Remaining)
}

func TestCategoryTotalsSkipsInactiveItems(t *testing.T) {
	start, end := MonthWindow(2026, time.March)
	cat := core.BudgetCategory{ID: "c"}
	items := []core.BudgetItem{
		{ID: "live", BudgetAmount: 100, CategoryID: "c", Active: true},
		{ID: "retired", BudgetAmount: 999, CategoryID: "c", Active: false},
	}
	s := CategoryTotals(cat, items, nil, start, end)
	assert.InDelta(t, 100, s.Budgeted, 1e-9)
}

func TestGrandTotals(t *testing.T) {
	_, items, purchases := testBudget()
	start, end := MonthWindow(2026, time.March)

	s := GrandTotals(items, purchases, 3767.50, start, end)
	assert.InDelta(t, 670, s.TotalBudgeted, 1e-9)
	// Uncategorized p5 counts in the grand total.
	assert.InDelta(t, 340.50, s.TotalSpent, 1e-9)
	assert.InDelta(t, 3767.50-670, s.RemainingBudget, 1e-9)
	assert.InDelta(t, 3767.50-340.50, s.RemainingAfterSpend, 1e-9)
}

func TestItemStatus(t *testing.T) {
	cases := []struct {
		name          string
		spent, budget float64
		want          ItemState
	}{
		{"under", 50, 100, StatusUnder},
		{"over by a cent", 100.01, 100, StatusOver},
		{"exactly at", 100, 100, StatusAt},
		{"zero budget zero spend", 0, 0, StatusUnder},
		{"zero budget with spend", 5, 0, StatusOver},
		{"negative budget", 0, -10, StatusOver},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ItemStatus(tc.spent, tc.budget))
		})
	}
}

func TestAggregationIsPure(t *testing.T) {
	cat, items, purchases := testBudget()
	start, end := MonthWindow(2026, time.March)

	before := make([]core.Purchase, len(purchases))
	copy(before, purchases)

	first := CategoryTotals(cat, items, purchases, start, end)
	second := CategoryTotals(cat, items, purchases, start, end)
	require.Equal(t, first, second)
	assert.Equal(t, before, purchases)
}
