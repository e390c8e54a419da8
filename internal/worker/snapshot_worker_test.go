package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 20, 15, 0, 0, 0, time.UTC)
}

func newTestWorker(t *testing.T) (*SnapshotWorker, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	w := NewSnapshotWorker(store)
	w.now = fixedNow
	return w, store
}

func TestRecomputeMonth(t *testing.T) {
	ctx := context.Background()
	w, store := newTestWorker(t)

	require.NoError(t, store.UpdateIncomeProfile(ctx, core.IncomeProfile{
		YearlySalary:              60000,
		RetirementContributionPct: 5,
		PayFrequency:              core.Monthly,
	}))
	require.NoError(t, store.CreateTaxRate(ctx, core.TaxRate{ID: "t1", Name: "Flat", Percent: 19.65}))
	require.NoError(t, store.CreateItem(ctx, core.BudgetItem{
		ID: "i1", Name: "Groceries", BudgetAmount: 400, CategoryID: "c1", Active: true,
	}))
	require.NoError(t, store.CreatePurchase(ctx, core.Purchase{
		ID: "p1", ItemName: "Supermarket", Cost: 150,
		Timestamp: time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), BudgetItemID: "i1",
	}))
	require.NoError(t, store.CreatePurchase(ctx, core.Purchase{
		ID: "p2", ItemName: "April", Cost: 999,
		Timestamp: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), BudgetItemID: "i1",
	}))

	require.NoError(t, w.RecomputeMonth(ctx, 2026, time.March))

	sum, err := store.GetMonthSummary(ctx, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), sum.TotalBudgetedCents)
	assert.Equal(t, int64(15000), sum.TotalSpentCents)
	// 60000*(1-0.1965-0.05)/12 = 3767.50 monthly take-home
	assert.Equal(t, int64(376750-40000), sum.RemainingBudgetCents)
	assert.Equal(t, int64(376750-15000), sum.RemainingAfterSpendCents)
}

func TestHandleChangeMessageRoutesByEntity(t *testing.T) {
	ctx := context.Background()
	w, store := newTestWorker(t)

	require.NoError(t, store.CreateAccount(ctx, core.Account{
		ID: "a1", Name: "Checking", Class: core.Checking, PresentValue: 5000,
	}))

	msg := amqp.NewChangeMessage("account", "a1", amqp.ActionUpdated)
	require.NoError(t, w.HandleChangeMessage(ctx, msg))

	snaps, err := store.ListNetWorthSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(500000), snaps[0].NetWorthCents)
	assert.Equal(t, fixedNow(), snaps[0].TakenAt)

	purchase := amqp.NewChangeMessage("purchase", "p1", amqp.ActionCreated).
		WithMonth(2026, time.January)
	require.NoError(t, w.HandleChangeMessage(ctx, purchase))

	_, err = store.GetMonthSummary(ctx, 2026, time.January)
	require.NoError(t, err)
}

func TestHandleChangeMessageDefaultsToCurrentMonth(t *testing.T) {
	ctx := context.Background()
	w, store := newTestWorker(t)

	msg := amqp.NewChangeMessage("tax_rate", "t1", amqp.ActionUpdated)
	require.NoError(t, w.HandleChangeMessage(ctx, msg))

	_, err := store.GetMonthSummary(ctx, 2026, time.March)
	require.NoError(t, err)

	// Purchase messages without a month also land on the current month.
	noMonth := amqp.NewChangeMessage("purchase", "p9", amqp.ActionDeleted)
	require.NoError(t, w.HandleChangeMessage(ctx, noMonth))
}

func TestSnapshotSubtractsLiabilities(t *testing.T) {
	ctx := context.Background()
	w, store := newTestWorker(t)

	require.NoError(t, store.CreateAccount(ctx, core.Account{
		ID: "a1", Name: "Savings", Class: core.Savings, PresentValue: 10000,
	}))
	require.NoError(t, store.CreateAccount(ctx, core.Account{
		ID: "a2", Name: "Car loan", Class: core.Loan, PresentValue: 4000,
	}))

	require.NoError(t, w.TakeSnapshot(ctx))

	snaps, err := store.ListNetWorthSnapshots(ctx, 1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, int64(600000), snaps[0].NetWorthCents)
}
