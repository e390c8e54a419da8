// Package worker recomputes derived rows when source rows change.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/storage"
)

// SnapshotWorker keeps month_summaries and networth_snapshots current. It
// never trusts message payloads beyond identifiers: current rows are
// re-fetched from storage before every recomputation.
type SnapshotWorker struct {
	store storage.Store
	now   func() time.Time
}

func NewSnapshotWorker(store storage.Store) *SnapshotWorker {
	return &SnapshotWorker{
		store: store,
		now:   time.Now,
	}
}

// HandleChangeMessage processes one row change notification.
func (w *SnapshotWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"entity", msg.Entity,
		"id", msg.ID,
		"action", msg.Action)

	switch msg.Entity {
	case "account":
		return w.TakeSnapshot(ctx)
	case "purchase":
		year, month := msg.Year, time.Month(msg.Month)
		if year == 0 {
			now := w.now().UTC()
			year, month = now.Year(), now.Month()
		}
		return w.RecomputeMonth(ctx, year, month)
	default:
		// Profile, tax, category and item changes shift the budget of the
		// current month.
		now := w.now().UTC()
		return w.RecomputeMonth(ctx, now.Year(), now.Month())
	}
}

// RecomputeMonth rebuilds the month_summaries row for one calendar month
// from current rows.
func (w *SnapshotWorker) RecomputeMonth(ctx context.Context, year int, month time.Month) error {
	start, end := engine.MonthWindow(year, month)

	items, err := w.store.ListItems(ctx, true)
	if err != nil {
		return fmt.Errorf("list budget items: %w", err)
	}
	purchases, err := w.store.ListPurchases(ctx, start, end, false)
	if err != nil {
		return fmt.Errorf("list purchases: %w", err)
	}
	profile, err := w.store.GetIncomeProfile(ctx)
	if err != nil {
		return fmt.Errorf("get income profile: %w", err)
	}
	rates, err := w.store.ListTaxRates(ctx)
	if err != nil {
		return fmt.Errorf("list tax rates: %w", err)
	}

	income := engine.ComputeTakeHome(profile, rates).MonthlyTakeHome
	totals := engine.GrandTotals(items, purchases, income, start, end)

	summary := storage.MonthSummary{
		Year:                     year,
		Month:                    month,
		TotalBudgetedCents:       core.DollarsToCents(totals.TotalBudgeted),
		TotalSpentCents:          core.DollarsToCents(totals.TotalSpent),
		RemainingBudgetCents:     core.DollarsToCents(totals.RemainingBudget),
		RemainingAfterSpendCents: core.DollarsToCents(totals.RemainingAfterSpend),
	}
	if err := w.store.UpsertMonthSummary(ctx, summary); err != nil {
		return fmt.Errorf("upsert month summary: %w", err)
	}

	slog.InfoContext(ctx, "Month summary recomputed",
		"year", year,
		"month", int(month),
		"total_spent_cents", summary.TotalSpentCents)
	return nil
}

// TakeSnapshot records current net worth.
func (w *SnapshotWorker) TakeSnapshot(ctx context.Context) error {
	accounts, err := w.store.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	snapshot := storage.NetWorthSnapshot{
		TakenAt:       w.now().UTC(),
		NetWorthCents: core.DollarsToCents(engine.NetWorth(accounts)),
	}
	if err := w.store.InsertNetWorthSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("insert networth snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Net worth snapshot taken",
		"net_worth_cents", snapshot.NetWorthCents,
		"accounts", len(accounts))
	return nil
}

// RunTicker takes a snapshot and refreshes the current month on every tick
// until the context is cancelled. The first pass runs immediately.
func (w *SnapshotWorker) RunTicker(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		w.tick(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	if err := w.TakeSnapshot(ctx); err != nil {
		slog.ErrorContext(ctx, "Periodic snapshot failed", "error", err)
	}
	now := w.now().UTC()
	if err := w.RecomputeMonth(ctx, now.Year(), now.Month()); err != nil {
		slog.ErrorContext(ctx, "Periodic month recompute failed", "error", err)
	}
}
