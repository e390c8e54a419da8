// Package storage persists the budgeting rows and the worker's derived
// snapshots. Two implementations exist: SQLite for real deployments and an
// in-memory store for tests and the memory backend.
package storage

import (
	"context"
	"errors"
	"time"

	"bilancio/internal/core"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// MonthSummary is the worker-maintained rollup of one calendar month.
type MonthSummary struct {
	Year                     int
	Month                    time.Month
	TotalBudgetedCents       int64
	TotalSpentCents          int64
	RemainingBudgetCents     int64
	RemainingAfterSpendCents int64
	UpdatedAt                time.Time
}

// NetWorthSnapshot is a point-in-time net worth record.
type NetWorthSnapshot struct {
	ID            int64
	TakenAt       time.Time
	NetWorthCents int64
}

// Store defines the persistence operations used by the services and the
// snapshot worker.
type Store interface {
	// Income profile: one row, update-only.
	GetIncomeProfile(ctx context.Context) (core.IncomeProfile, error)
	UpdateIncomeProfile(ctx context.Context, p core.IncomeProfile) error

	// Tax rates
	CreateTaxRate(ctx context.Context, r core.TaxRate) error
	UpdateTaxRate(ctx context.Context, r core.TaxRate) error
	DeleteTaxRate(ctx context.Context, id string) error
	ListTaxRates(ctx context.Context) ([]core.TaxRate, error)

	// Budget categories
	CreateCategory(ctx context.Context, c core.BudgetCategory) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]core.BudgetCategory, error)
	CountItemsForCategory(ctx context.Context, categoryID string) (int, error)

	// Budget items
	CreateItem(ctx context.Context, i core.BudgetItem) error
	UpdateItem(ctx context.Context, i core.BudgetItem) error
	GetItem(ctx context.Context, id string) (core.BudgetItem, error)
	DeleteItem(ctx context.Context, id string) error
	DeactivateItem(ctx context.Context, id string) error
	ListItems(ctx context.Context, includeInactive bool) ([]core.BudgetItem, error)

	// Purchases: soft-delete only.
	CreatePurchase(ctx context.Context, p core.Purchase) error
	GetPurchase(ctx context.Context, id string) (core.Purchase, error)
	SetPurchaseDeleted(ctx context.Context, id string, deleted bool) error
	// ListPurchases returns purchases with timestamps in [start, end).
	// Zero start and end mean no window. Soft-deleted rows are included
	// only when includeDeleted is set.
	ListPurchases(ctx context.Context, start, end time.Time, includeDeleted bool) ([]core.Purchase, error)
	CountPurchasesForItem(ctx context.Context, itemID string) (int, error)

	// Accounts
	CreateAccount(ctx context.Context, a core.Account) error
	UpdateAccount(ctx context.Context, a core.Account) error
	GetAccount(ctx context.Context, id string) (core.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context) ([]core.Account, error)

	// Derived snapshots maintained by the worker.
	UpsertMonthSummary(ctx context.Context, s MonthSummary) error
	GetMonthSummary(ctx context.Context, year int, month time.Month) (MonthSummary, error)
	InsertNetWorthSnapshot(ctx context.Context, s NetWorthSnapshot) error
	ListNetWorthSnapshots(ctx context.Context, limit int) ([]NetWorthSnapshot, error)

	Close() error
}
