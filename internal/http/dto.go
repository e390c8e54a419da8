package http

import (
	"encoding/json"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/services"
)

// Wire representations. Money crosses the API as float64 dollars rounded for
// display; the engine keeps full precision internally.

// amount marshals as a plain number but additionally accepts quoted decimal
// strings with a dot or comma separator on input.
type amount float64

func (a *amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		cents, err := core.ParseAmountToCents(s, true)
		if err != nil {
			return err
		}
		*a = amount(core.CentsToDollars(cents))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = amount(f)
	return nil
}

type profileDTO struct {
	YearlySalary              amount  `json:"yearly_salary"`
	RetirementContributionPct float64 `json:"retirement_contribution_pct"`
	EmployerMatchPct          float64 `json:"employer_match_pct"`
	PayFrequency              string  `json:"pay_frequency"`
}

func toProfileDTO(p core.IncomeProfile) profileDTO {
	return profileDTO{
		YearlySalary:              amount(p.YearlySalary),
		RetirementContributionPct: p.RetirementContributionPct,
		EmployerMatchPct:          p.EmployerMatchPct,
		PayFrequency:              string(p.PayFrequency),
	}
}

func (d profileDTO) toCore() core.IncomeProfile {
	return core.IncomeProfile{
		YearlySalary:              float64(d.YearlySalary),
		RetirementContributionPct: d.RetirementContributionPct,
		EmployerMatchPct:          d.EmployerMatchPct,
		PayFrequency:              core.PayFrequency(d.PayFrequency),
	}
}

type taxRateDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

func toTaxRateDTO(t core.TaxRate) taxRateDTO {
	return taxRateDTO{ID: t.ID, Name: t.Name, Percent: t.Percent}
}

func (d taxRateDTO) toCore() core.TaxRate {
	return core.TaxRate{ID: d.ID, Name: d.Name, Percent: d.Percent}
}

type categoryDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type itemDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	BudgetAmount amount `json:"budget_amount"`
	CategoryID   string `json:"category_id"`
	Active       bool   `json:"active"`
}

func toItemDTO(i core.BudgetItem) itemDTO {
	return itemDTO{
		ID:           i.ID,
		Name:         i.Name,
		BudgetAmount: amount(i.BudgetAmount),
		CategoryID:   i.CategoryID,
		Active:       i.Active,
	}
}

func (d itemDTO) toCore() core.BudgetItem {
	return core.BudgetItem{
		ID:           d.ID,
		Name:         d.Name,
		BudgetAmount: float64(d.BudgetAmount),
		CategoryID:   d.CategoryID,
		Active:       d.Active,
	}
}

type purchaseDTO struct {
	ID           string    `json:"id"`
	ItemName     string    `json:"item_name"`
	Cost         float64   `json:"cost"`
	Timestamp    time.Time `json:"timestamp"`
	BudgetItemID string    `json:"budget_item_id,omitempty"`
	Deleted      bool      `json:"deleted,omitempty"`
}

func toPurchaseDTO(p core.Purchase) purchaseDTO {
	return purchaseDTO{
		ID:           p.ID,
		ItemName:     p.ItemName,
		Cost:         p.Cost,
		Timestamp:    p.Timestamp,
		BudgetItemID: p.BudgetItemID,
		Deleted:      p.Deleted,
	}
}

type accountDTO struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Class                 string  `json:"class"`
	PresentValue          amount  `json:"present_value"`
	AnnualInterestRatePct float64 `json:"annual_interest_rate_pct"`
	MonthlyContribution   amount  `json:"monthly_contribution"`
}

func toAccountDTO(a core.Account) accountDTO {
	return accountDTO{
		ID:                    a.ID,
		Name:                  a.Name,
		Class:                 string(a.Class),
		PresentValue:          amount(a.PresentValue),
		AnnualInterestRatePct: a.AnnualInterestRatePct,
		MonthlyContribution:   amount(a.MonthlyContribution),
	}
}

func (d accountDTO) toCore() core.Account {
	return core.Account{
		ID:                    d.ID,
		Name:                  d.Name,
		Class:                 core.AccountClass(d.Class),
		PresentValue:          float64(d.PresentValue),
		AnnualInterestRatePct: d.AnnualInterestRatePct,
		MonthlyContribution:   float64(d.MonthlyContribution),
	}
}

type itemSummaryDTO struct {
	Item   itemDTO `json:"item"`
	Spent  float64 `json:"spent"`
	Status string  `json:"status"`
}

type categoryBreakdownDTO struct {
	Category  categoryDTO      `json:"category"`
	Budgeted  float64          `json:"budgeted"`
	Spent     float64          `json:"spent"`
	Remaining float64          `json:"remaining"`
	Items     []itemSummaryDTO `json:"items"`
}

type monthReportDTO struct {
	Year                int                    `json:"year"`
	Month               int                    `json:"month"`
	MonthlyTakeHome     float64                `json:"monthly_take_home"`
	TotalBudgeted       float64                `json:"total_budgeted"`
	TotalSpent          float64                `json:"total_spent"`
	RemainingBudget     float64                `json:"remaining_budget"`
	RemainingAfterSpend float64                `json:"remaining_after_spend"`
	Categories          []categoryBreakdownDTO `json:"categories"`
	Uncategorized       []itemSummaryDTO       `json:"uncategorized,omitempty"`
}

func toMonthReportDTO(r services.MonthReport) monthReportDTO {
	dto := monthReportDTO{
		Year:                r.Year,
		Month:               int(r.Month),
		MonthlyTakeHome:     engine.RoundDisplay(r.MonthlyTakeHome),
		TotalBudgeted:       engine.RoundDisplay(r.Totals.TotalBudgeted),
		TotalSpent:          engine.RoundDisplay(r.Totals.TotalSpent),
		RemainingBudget:     engine.RoundDisplay(r.Totals.RemainingBudget),
		RemainingAfterSpend: engine.RoundDisplay(r.Totals.RemainingAfterSpend),
	}
	for _, c := range r.Categories {
		breakdown := categoryBreakdownDTO{
			Category:  categoryDTO{ID: c.Category.ID, Name: c.Category.Name},
			Budgeted:  engine.RoundDisplay(c.Totals.Budgeted),
			Spent:     engine.RoundDisplay(c.Totals.Spent),
			Remaining: engine.RoundDisplay(c.Totals.Remaining),
		}
		for _, it := range c.Items {
			breakdown.Items = append(breakdown.Items, toItemSummaryDTO(it))
		}
		dto.Categories = append(dto.Categories, breakdown)
	}
	for _, it := range r.Uncategorized {
		dto.Uncategorized = append(dto.Uncategorized, toItemSummaryDTO(it))
	}
	return dto
}

func toItemSummaryDTO(s services.ItemSummary) itemSummaryDTO {
	return itemSummaryDTO{
		Item:   toItemDTO(s.Item),
		Spent:  engine.RoundDisplay(s.Spent),
		Status: s.Status.String(),
	}
}

type taxLineDTO struct {
	Rate   taxRateDTO `json:"rate"`
	Amount float64    `json:"amount"`
}

type incomeReportDTO struct {
	Profile                profileDTO   `json:"profile"`
	AnnualContribution401k float64      `json:"annual_contribution_401k"`
	AnnualEmployerMatch    float64      `json:"annual_employer_match"`
	TotalAnnualTax         float64      `json:"total_annual_tax"`
	AnnualTakeHome         float64      `json:"annual_take_home"`
	MonthlyTakeHome        float64      `json:"monthly_take_home"`
	PeriodTakeHome         float64      `json:"period_take_home"`
	Taxes                  []taxLineDTO `json:"taxes"`
}

func toIncomeReportDTO(r services.IncomeReport) incomeReportDTO {
	dto := incomeReportDTO{
		Profile:                toProfileDTO(r.Profile),
		AnnualContribution401k: engine.RoundDisplay(r.TakeHome.AnnualContribution401k),
		AnnualEmployerMatch:    engine.RoundDisplay(r.TakeHome.AnnualEmployerMatch),
		TotalAnnualTax:         engine.RoundDisplay(r.TakeHome.TotalAnnualTax),
		AnnualTakeHome:         engine.RoundDisplay(r.TakeHome.AnnualTakeHome),
		MonthlyTakeHome:        engine.RoundDisplay(r.TakeHome.MonthlyTakeHome),
		PeriodTakeHome:         engine.RoundDisplay(r.TakeHome.PeriodTakeHome),
	}
	for _, line := range r.Taxes {
		dto.Taxes = append(dto.Taxes, taxLineDTO{
			Rate:   toTaxRateDTO(line.Rate),
			Amount: engine.RoundDisplay(line.Amount),
		})
	}
	return dto
}

type snapshotDTO struct {
	TakenAt  time.Time `json:"taken_at"`
	NetWorth float64   `json:"net_worth"`
}

type netWorthReportDTO struct {
	Current     float64       `json:"current"`
	Assets      float64       `json:"assets"`
	Liabilities float64       `json:"liabilities"`
	Accounts    []accountDTO  `json:"accounts"`
	History     []snapshotDTO `json:"history,omitempty"`
}

func toNetWorthReportDTO(r services.NetWorthReport) netWorthReportDTO {
	dto := netWorthReportDTO{
		Current:     engine.RoundDisplay(r.Current),
		Assets:      engine.RoundDisplay(r.Assets),
		Liabilities: engine.RoundDisplay(r.Liabilities),
	}
	for _, a := range r.Accounts {
		dto.Accounts = append(dto.Accounts, toAccountDTO(a))
	}
	for _, s := range r.History {
		dto.History = append(dto.History, snapshotDTO{
			TakenAt:  s.TakenAt,
			NetWorth: core.CentsToDollars(s.NetWorthCents),
		})
	}
	return dto
}

type netWorthPointDTO struct {
	Months int     `json:"months"`
	Value  float64 `json:"value"`
}

type projectionDTO struct {
	FutureValue        float64 `json:"future_value"`
	TotalContributions float64 `json:"total_contributions"`
	TotalInterest      float64 `json:"total_interest"`
	MonthsPaid         int     `json:"months_paid,omitempty"`
}

func toProjectionDTO(p engine.Projection) projectionDTO {
	return projectionDTO{
		FutureValue:        engine.RoundDisplay(p.FutureValue),
		TotalContributions: engine.RoundDisplay(p.TotalContributions),
		TotalInterest:      engine.RoundDisplay(p.TotalInterest),
		MonthsPaid:         p.MonthsPaid,
	}
}

type milestoneDTO struct {
	Months     int           `json:"months"`
	Projection projectionDTO `json:"projection"`
}

type accountProjectionDTO struct {
	Account    accountDTO     `json:"account"`
	Horizon    int            `json:"horizon_months"`
	Final      projectionDTO  `json:"final"`
	Milestones []milestoneDTO `json:"milestones"`
}

func toAccountProjectionDTO(r services.AccountProjectionReport) accountProjectionDTO {
	dto := accountProjectionDTO{
		Account: toAccountDTO(r.Account),
		Horizon: r.Horizon,
		Final:   toProjectionDTO(r.Final),
	}
	for _, m := range r.Milestones {
		dto.Milestones = append(dto.Milestones, milestoneDTO{
			Months:     m.Months,
			Projection: toProjectionDTO(m.Projection),
		})
	}
	return dto
}
