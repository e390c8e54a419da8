package services

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/storage"
)

// ItemSummary pairs a budget item with its spend for the period.
type ItemSummary struct {
	Item   core.BudgetItem
	Spent  float64
	Status engine.ItemState
}

// CategoryBreakdown is one category's totals plus its items.
type CategoryBreakdown struct {
	Category core.BudgetCategory
	Totals   engine.CategorySummary
	Items    []ItemSummary
}

// MonthReport is the full budget picture for one calendar month.
type MonthReport struct {
	Year            int
	Month           time.Month
	MonthlyTakeHome float64
	Totals          engine.BudgetSummary
	Categories      []CategoryBreakdown
	Uncategorized   []ItemSummary
}

// IncomeReport decomposes yearly salary into taxes and take-home pay.
type IncomeReport struct {
	Profile  core.IncomeProfile
	TakeHome engine.TakeHome
	Taxes    []TaxLine
}

// TaxLine is one tax rate applied to the current salary.
type TaxLine struct {
	Rate   core.TaxRate
	Amount float64
}

// NetWorthReport is the current position plus historical snapshots.
type NetWorthReport struct {
	Current     float64
	Assets      float64
	Liabilities float64
	Accounts    []core.Account
	History     []storage.NetWorthSnapshot
}

// AccountProjectionReport is one account's future value over a horizon.
type AccountProjectionReport struct {
	Account    core.Account
	Horizon    int
	Final      engine.Projection
	Milestones []MilestonePoint
}

// MilestonePoint is a projected value at one milestone month.
type MilestonePoint struct {
	Months     int
	Projection engine.Projection
}

// SummaryService is the read side: it loads current rows and runs the
// calculation engine over them. Nothing here mutates state.
type SummaryService struct {
	store storage.Store
}

func NewSummaryService(store storage.Store) *SummaryService {
	return &SummaryService{store: store}
}

// MonthReport aggregates one calendar month. Purchases are re-read from the
// store so the report always reflects current rows.
func (s *SummaryService) MonthReport(ctx context.Context, year int, month time.Month) (MonthReport, error) {
	start, end := engine.MonthWindow(year, month)

	items, err := s.store.ListItems(ctx, true)
	if err != nil {
		return MonthReport{}, fmt.Errorf("list budget items: %w", err)
	}
	purchases, err := s.store.ListPurchases(ctx, start, end, false)
	if err != nil {
		return MonthReport{}, fmt.Errorf("list purchases: %w", err)
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return MonthReport{}, fmt.Errorf("list categories: %w", err)
	}

	income, err := s.monthlyTakeHome(ctx)
	if err != nil {
		return MonthReport{}, err
	}

	report := MonthReport{
		Year:            year,
		Month:           month,
		MonthlyTakeHome: engine.RoundPersist(income),
		Totals:          engine.GrandTotals(items, purchases, income, start, end),
	}

	known := make(map[string]bool, len(cats))
	for _, cat := range cats {
		known[cat.ID] = true
		breakdown := CategoryBreakdown{
			Category: cat,
			Totals:   engine.CategoryTotals(cat, items, purchases, start, end),
		}
		for _, it := range items {
			if it.CategoryID != cat.ID || !it.Active {
				continue
			}
			breakdown.Items = append(breakdown.Items, itemSummary(it, purchases, start, end))
		}
		report.Categories = append(report.Categories, breakdown)
	}

	// Items whose category row is gone still count toward the totals.
	for _, it := range items {
		if it.Active && !known[it.CategoryID] {
			report.Uncategorized = append(report.Uncategorized, itemSummary(it, purchases, start, end))
		}
	}

	return report, nil
}

// Income recomputes the take-home decomposition from the current profile and
// tax rates.
func (s *SummaryService) Income(ctx context.Context) (IncomeReport, error) {
	profile, err := s.store.GetIncomeProfile(ctx)
	if err != nil {
		return IncomeReport{}, fmt.Errorf("get income profile: %w", err)
	}
	rates, err := s.store.ListTaxRates(ctx)
	if err != nil {
		return IncomeReport{}, fmt.Errorf("list tax rates: %w", err)
	}

	report := IncomeReport{
		Profile:  profile,
		TakeHome: engine.ComputeTakeHome(profile, rates),
	}
	for _, r := range rates {
		report.Taxes = append(report.Taxes, TaxLine{
			Rate:   r,
			Amount: engine.RateAmount(profile.YearlySalary, r),
		})
	}
	return report, nil
}

// NetWorth sums current account values, liabilities negative.
func (s *SummaryService) NetWorth(ctx context.Context, historyLimit int) (NetWorthReport, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return NetWorthReport{}, fmt.Errorf("list accounts: %w", err)
	}

	report := NetWorthReport{
		Current:  engine.NetWorth(accounts),
		Accounts: accounts,
	}
	for _, a := range accounts {
		v := core.Sanitize(a.PresentValue)
		if a.Class.IsLiability() {
			report.Liabilities += v
		} else {
			report.Assets += v
		}
	}

	if historyLimit > 0 {
		history, err := s.store.ListNetWorthSnapshots(ctx, historyLimit)
		if err != nil {
			return NetWorthReport{}, fmt.Errorf("list networth snapshots: %w", err)
		}
		report.History = history
	}

	return report, nil
}

// NetWorthProjection projects aggregate net worth at the milestone months of
// the horizon.
func (s *SummaryService) NetWorthProjection(ctx context.Context, horizon int) ([]engine.NetWorthPoint, error) {
	if horizon < 0 {
		return nil, engine.ErrInvalidMonths
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return engine.NetWorthSeries(accounts, engine.MilestoneMonths(horizon))
}

// AccountProjection projects one account at the horizon and at each
// milestone month.
func (s *SummaryService) AccountProjection(ctx context.Context, id string, horizon int) (AccountProjectionReport, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return AccountProjectionReport{}, fmt.Errorf("get account: %w", err)
	}

	final, err := engine.Project(account, horizon)
	if err != nil {
		return AccountProjectionReport{}, err
	}

	report := AccountProjectionReport{
		Account: account,
		Horizon: horizon,
		Final:   final,
	}
	for _, m := range engine.MilestoneMonths(horizon) {
		p, err := engine.Project(account, m)
		if err != nil {
			return AccountProjectionReport{}, err
		}
		report.Milestones = append(report.Milestones, MilestonePoint{Months: m, Projection: p})
	}
	return report, nil
}

func (s *SummaryService) monthlyTakeHome(ctx context.Context) (float64, error) {
	profile, err := s.store.GetIncomeProfile(ctx)
	if err != nil {
		return 0, fmt.Errorf("get income profile: %w", err)
	}
	rates, err := s.store.ListTaxRates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tax rates: %w", err)
	}
	return engine.ComputeTakeHome(profile, rates).MonthlyTakeHome, nil
}

func itemSummary(it core.BudgetItem, purchases []core.Purchase, start, end time.Time) ItemSummary {
	spent := engine.SpentForItem(it.ID, purchases, start, end)
	return ItemSummary{
		Item:   it,
		Spent:  spent,
		Status: engine.ItemStatus(spent, it.BudgetAmount),
	}
}
