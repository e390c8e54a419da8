package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) GetIncomeProfile(ctx context.Context) (core.IncomeProfile, error) {
	var (
		p           core.IncomeProfile
		salaryCents int64
		freq        string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT yearly_salary_cents, retirement_contribution_pct, employer_match_pct, pay_frequency
		 FROM income_profile WHERE id = 1`,
	).Scan(&salaryCents, &p.RetirementContributionPct, &p.EmployerMatchPct, &freq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.IncomeProfile{}, ErrNotFound
		}
		return core.IncomeProfile{}, fmt.Errorf("get income profile: %w", err)
	}
	p.YearlySalary = core.CentsToDollars(salaryCents)
	p.PayFrequency = core.PayFrequency(freq)
	return p, nil
}

func (r *SQLiteRepository) UpdateIncomeProfile(ctx context.Context, p core.IncomeProfile) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE income_profile
		 SET yearly_salary_cents = ?, retirement_contribution_pct = ?, employer_match_pct = ?,
		     pay_frequency = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = 1`,
		core.DollarsToCents(p.YearlySalary), p.RetirementContributionPct, p.EmployerMatchPct, string(p.PayFrequency))
	if err != nil {
		return fmt.Errorf("update income profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateTaxRate(ctx context.Context, t core.TaxRate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tax_rates (id, name, percent) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.Percent)
	if err != nil {
		return fmt.Errorf("create tax rate: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTaxRate(ctx context.Context, t core.TaxRate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tax_rates SET name = ?, percent = ? WHERE id = ?`,
		t.Name, t.Percent, t.ID)
	if err != nil {
		return fmt.Errorf("update tax rate: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTaxRate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tax_rates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tax rate: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListTaxRates(ctx context.Context) ([]core.TaxRate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, percent FROM tax_rates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	defer rows.Close()

	var rates []core.TaxRate
	for rows.Next() {
		var t core.TaxRate
		if err := rows.Scan(&t.ID, &t.Name, &t.Percent); err != nil {
			return nil, fmt.Errorf("scan tax rate: %w", err)
		}
		rates = append(rates, t)
	}
	return rates, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.BudgetCategory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_categories (id, name) VALUES (?, ?)`, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name FROM budget_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.BudgetCategory
	for rows.Next() {
		var c core.BudgetCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) CountItemsForCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM budget_items WHERE category_id = ?`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items for category: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateItem(ctx context.Context, i core.BudgetItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_items (id, name, budget_amount_cents, category_id, active)
		 VALUES (?, ?, ?, ?, ?)`,
		i.ID, i.Name, core.DollarsToCents(i.BudgetAmount), i.CategoryID, boolToInt(i.Active))
	if err != nil {
		return fmt.Errorf("create budget item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateItem(ctx context.Context, i core.BudgetItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_items SET name = ?, budget_amount_cents = ?, category_id = ?, active = ?
		 WHERE id = ?`,
		i.Name, core.DollarsToCents(i.BudgetAmount), i.CategoryID, boolToInt(i.Active), i.ID)
	if err != nil {
		return fmt.Errorf("update budget item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetItem(ctx context.Context, id string) (core.BudgetItem, error) {
	var (
		i           core.BudgetItem
		amountCents int64
		active      int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, budget_amount_cents, category_id, active FROM budget_items WHERE id = ?`, id,
	).Scan(&i.ID, &i.Name, &amountCents, &i.CategoryID, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.BudgetItem{}, ErrNotFound
		}
		return core.BudgetItem{}, fmt.Errorf("get budget item: %w", err)
	}
	i.BudgetAmount = core.CentsToDollars(amountCents)
	i.Active = active != 0
	return i, nil
}

func (r *SQLiteRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeactivateItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_items SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate budget item: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListItems(ctx context.Context, includeInactive bool) ([]core.BudgetItem, error) {
	query := `SELECT id, name, budget_amount_cents, category_id, active FROM budget_items`
	if !includeInactive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	defer rows.Close()

	var items []core.BudgetItem
	for rows.Next() {
		var (
			i           core.BudgetItem
			amountCents int64
			active      int
		)
		if err := rows.Scan(&i.ID, &i.Name, &amountCents, &i.CategoryID, &active); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		i.BudgetAmount = core.CentsToDollars(amountCents)
		i.Active = active != 0
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) CreatePurchase(ctx context.Context, p core.Purchase) error {
	var itemID any
	if p.BudgetItemID != "" {
		itemID = p.BudgetItemID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO purchases (id, item_name, cost_cents, purchased_at, budget_item_id, deleted)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ItemName, core.DollarsToCents(p.Cost), p.Timestamp.UTC(), itemID, boolToInt(p.Deleted))
	if err != nil {
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetPurchase(ctx context.Context, id string) (core.Purchase, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, item_name, cost_cents, purchased_at, budget_item_id, deleted
		 FROM purchases WHERE id = ?`, id)
	p, err := scanPurchase(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Purchase{}, ErrNotFound
		}
		return core.Purchase{}, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SetPurchaseDeleted(ctx context.Context, id string, deleted bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE purchases SET deleted = ? WHERE id = ?`, boolToInt(deleted), id)
	if err != nil {
		return fmt.Errorf("set purchase deleted: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListPurchases(ctx context.Context, start, end time.Time, includeDeleted bool) ([]core.Purchase, error) {
	query := `SELECT id, item_name, cost_cents, purchased_at, budget_item_id, deleted FROM purchases WHERE 1=1`
	var args []any
	if !start.IsZero() {
		query += ` AND purchased_at >= ?`
		args = append(args, start.UTC())
	}
	if !end.IsZero() {
		query += ` AND purchased_at < ?`
		args = append(args, end.UTC())
	}
	if !includeDeleted {
		query += ` AND deleted = 0`
	}
	query += ` ORDER BY purchased_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []core.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}

func (r *SQLiteRepository) CountPurchasesForItem(ctx context.Context, itemID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM purchases WHERE budget_item_id = ?`, itemID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count purchases for item: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, name, class, present_value_cents, annual_interest_rate_pct, monthly_contribution_cents)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Class), core.DollarsToCents(a.PresentValue),
		a.AnnualInterestRatePct, core.DollarsToCents(a.MonthlyContribution))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, class = ?, present_value_cents = ?,
		     annual_interest_rate_pct = ?, monthly_contribution_cents = ?
		 WHERE id = ?`,
		a.Name, string(a.Class), core.DollarsToCents(a.PresentValue),
		a.AnnualInterestRatePct, core.DollarsToCents(a.MonthlyContribution), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	var (
		a            core.Account
		class        string
		pvCents      int64
		contribCents int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, class, present_value_cents, annual_interest_rate_pct, monthly_contribution_cents
		 FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &class, &pvCents, &a.AnnualInterestRatePct, &contribCents)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, ErrNotFound
		}
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	a.Class = core.AccountClass(class)
	a.PresentValue = core.CentsToDollars(pvCents)
	a.MonthlyContribution = core.CentsToDollars(contribCents)
	return a, nil
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, class, present_value_cents, annual_interest_rate_pct, monthly_contribution_cents
		 FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var (
			a            core.Account
			class        string
			pvCents      int64
			contribCents int64
		)
		if err := rows.Scan(&a.ID, &a.Name, &class, &pvCents, &a.AnnualInterestRatePct, &contribCents); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Class = core.AccountClass(class)
		a.PresentValue = core.CentsToDollars(pvCents)
		a.MonthlyContribution = core.CentsToDollars(contribCents)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpsertMonthSummary(ctx context.Context, s MonthSummary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO month_summaries
		     (year, month, total_budgeted_cents, total_spent_cents, remaining_budget_cents, remaining_after_spend_cents, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (year, month) DO UPDATE SET
		     total_budgeted_cents = excluded.total_budgeted_cents,
		     total_spent_cents = excluded.total_spent_cents,
		     remaining_budget_cents = excluded.remaining_budget_cents,
		     remaining_after_spend_cents = excluded.remaining_after_spend_cents,
		     updated_at = CURRENT_TIMESTAMP`,
		s.Year, int(s.Month), s.TotalBudgetedCents, s.TotalSpentCents,
		s.RemainingBudgetCents, s.RemainingAfterSpendCents)
	if err != nil {
		return fmt.Errorf("upsert month summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetMonthSummary(ctx context.Context, year int, month time.Month) (MonthSummary, error) {
	var (
		s MonthSummary
		m int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT year, month, total_budgeted_cents, total_spent_cents, remaining_budget_cents, remaining_after_spend_cents, updated_at
		 FROM month_summaries WHERE year = ? AND month = ?`, year, int(month),
	).Scan(&s.Year, &m, &s.TotalBudgetedCents, &s.TotalSpentCents,
		&s.RemainingBudgetCents, &s.RemainingAfterSpendCents, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return MonthSummary{}, ErrNotFound
		}
		return MonthSummary{}, fmt.Errorf("get month summary: %w", err)
	}
	s.Month = time.Month(m)
	return s, nil
}

func (r *SQLiteRepository) InsertNetWorthSnapshot(ctx context.Context, s NetWorthSnapshot) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO networth_snapshots (taken_at, net_worth_cents) VALUES (?, ?)`,
		s.TakenAt.UTC(), s.NetWorthCents)
	if err != nil {
		return fmt.Errorf("insert networth snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListNetWorthSnapshots(ctx context.Context, limit int) ([]NetWorthSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, taken_at, net_worth_cents FROM networth_snapshots
		 ORDER BY taken_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list networth snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []NetWorthSnapshot
	for rows.Next() {
		var s NetWorthSnapshot
		if err := rows.Scan(&s.ID, &s.TakenAt, &s.NetWorthCents); err != nil {
			return nil, fmt.Errorf("scan networth snapshot: %w", err)
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

func scanPurchase(scan func(dest ...any) error) (core.Purchase, error) {
	var (
		p         core.Purchase
		costCents int64
		itemID    sql.NullString
		deleted   int
	)
	if err := scan(&p.ID, &p.ItemName, &costCents, &p.Timestamp, &itemID, &deleted); err != nil {
		return core.Purchase{}, err
	}
	p.Cost = core.CentsToDollars(costCents)
	p.BudgetItemID = itemID.String
	p.Deleted = deleted != 0
	p.Timestamp = p.Timestamp.UTC()
	return p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
