package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func TestMemoryStoreIncomeProfile(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p, err := s.GetIncomeProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, core.Monthly, p.PayFrequency)
	require.Zero(t, p.YearlySalary)

	p.YearlySalary = 60000
	p.RetirementContributionPct = 5
	p.PayFrequency = core.BiWeekly
	require.NoError(t, s.UpdateIncomeProfile(ctx, p))

	got, err := s.GetIncomeProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestMemoryStoreTaxRatesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateTaxRate(ctx, core.TaxRate{ID: "a", Name: "Federal", Percent: 12}))
	require.NoError(t, s.CreateTaxRate(ctx, core.TaxRate{ID: "b", Name: "FICA", Percent: 7.65}))

	rates, err := s.ListTaxRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	require.Equal(t, "Federal", rates[0].Name)
	require.Equal(t, "FICA", rates[1].Name)

	require.NoError(t, s.DeleteTaxRate(ctx, "a"))
	rates, err = s.ListTaxRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	require.Equal(t, "b", rates[0].ID)

	err = s.DeleteTaxRate(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreItemLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateCategory(ctx, core.BudgetCategory{ID: "c1", Name: "Food"}))
	item := core.BudgetItem{ID: "i1", Name: "Groceries", BudgetAmount: 400, CategoryID: "c1", Active: true}
	require.NoError(t, s.CreateItem(ctx, item))

	n, err := s.CountItemsForCategory(ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, s.DeactivateItem(ctx, "i1"))

	active, err := s.ListItems(ctx, false)
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := s.ListItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.False(t, all[0].Active)

	require.NoError(t, s.DeleteItem(ctx, "i1"))
	_, err = s.GetItem(ctx, "i1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePurchaseWindowAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	jan := time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreatePurchase(ctx, core.Purchase{ID: "p1", ItemName: "Coffee", Cost: 4.50, Timestamp: jan}))
	require.NoError(t, s.CreatePurchase(ctx, core.Purchase{ID: "p2", ItemName: "Rent", Cost: 1200, Timestamp: feb}))

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	got, err := s.ListPurchases(ctx, start, end, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "p1", got[0].ID)

	require.NoError(t, s.SetPurchaseDeleted(ctx, "p1", true))
	got, err = s.ListPurchases(ctx, start, end, false)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = s.ListPurchases(ctx, start, end, true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].Deleted)

	require.NoError(t, s.SetPurchaseDeleted(ctx, "p1", false))
	got, err = s.ListPurchases(ctx, start, end, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestMemoryStoreAccounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := core.Account{ID: "a1", Name: "Brokerage", Class: core.Investment, PresentValue: 10000, AnnualInterestRatePct: 7, MonthlyContribution: 250}
	require.NoError(t, s.CreateAccount(ctx, a))

	a.PresentValue = 11000
	require.NoError(t, s.UpdateAccount(ctx, a))

	got, err := s.GetAccount(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 11000.0, got.PresentValue)

	require.NoError(t, s.DeleteAccount(ctx, "a1"))
	err = s.UpdateAccount(ctx, a)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMonthSummaryUpsert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.GetMonthSummary(ctx, 2026, time.March)
	require.True(t, errors.Is(err, ErrNotFound))

	sum := MonthSummary{Year: 2026, Month: time.March, TotalBudgetedCents: 150000, TotalSpentCents: 90000}
	require.NoError(t, s.UpsertMonthSummary(ctx, sum))

	sum.TotalSpentCents = 120000
	require.NoError(t, s.UpsertMonthSummary(ctx, sum))

	got, err := s.GetMonthSummary(ctx, 2026, time.March)
	require.NoError(t, err)
	require.Equal(t, int64(120000), got.TotalSpentCents)
	require.False(t, got.UpdatedAt.IsZero())
}

func TestMemoryStoreSnapshotsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.InsertNetWorthSnapshot(ctx, NetWorthSnapshot{
			TakenAt:       base.AddDate(0, i, 0),
			NetWorthCents: int64(1000 * (i + 1)),
		}))
	}

	snaps, err := s.ListNetWorthSnapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	require.Equal(t, int64(3000), snaps[0].NetWorthCents)
	require.Equal(t, int64(2000), snaps[1].NetWorthCents)
}
