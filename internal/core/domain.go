package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Weekly      PayFrequency = "weekly"
	BiWeekly    PayFrequency = "biweekly"
	SemiMonthly PayFrequency = "semimonthly"
	Monthly     PayFrequency = "monthly"
)

const (
	Checking   AccountClass = "checking"
	Savings    AccountClass = "savings"
	Credit     AccountClass = "credit"
	Investment AccountClass = "investment"
	Loan       AccountClass = "loan"
	Other      AccountClass = "other"
)

type (
	PayFrequency string

	AccountClass string

	// IncomeProfile is the single per-user income record. Percentages are
	// whole-number percent: 5 means 5%.
	IncomeProfile struct {
		YearlySalary              float64
		RetirementContributionPct float64
		EmployerMatchPct          float64
		PayFrequency              PayFrequency
	}

	// TaxRate is one named rate applied to gross salary. Duplicate names
	// are allowed.
	TaxRate struct {
		ID      string
		Name    string
		Percent float64
	}

	// BudgetCategory groups budget items for presentation.
	BudgetCategory struct {
		ID   string
		Name string
	}

	// BudgetItem carries a monthly budget amount. Items with purchase
	// history are never hard-deleted, only deactivated.
	BudgetItem struct {
		ID           string
		Name         string
		BudgetAmount float64
		CategoryID   string
		Active       bool
	}

	// Purchase is a dated spend record. BudgetItemID == "" means
	// uncategorized: excluded from per-category sums but counted in
	// grand totals.
	Purchase struct {
		ID           string
		ItemName     string
		Cost         float64
		Timestamp    time.Time
		BudgetItemID string
		Deleted      bool
	}

	// Account is a point-in-time balance. Credit and loan balances are
	// stored as positive magnitudes of money owed.
	Account struct {
		ID                    string
		Name                  string
		Class                 AccountClass
		PresentValue          float64
		AnnualInterestRatePct float64
		MonthlyContribution   float64
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrNegativeAmount  = errors.New("negative amount")
	ErrInvalidClass    = errors.New("invalid account class")
	ErrZeroTimestamp   = errors.New("timestamp cannot be zero")
	ErrMissingCategory = errors.New("missing category reference")
)

// Divisor returns the number of pay periods per year. Unknown frequencies
// fall back to monthly.
func (f PayFrequency) Divisor() float64 {
	switch f {
	case Weekly:
		return 52
	case BiWeekly:
		return 26
	case SemiMonthly:
		return 24
	default:
		return 12
	}
}

func (f PayFrequency) Valid() bool {
	switch f {
	case Weekly, BiWeekly, SemiMonthly, Monthly:
		return true
	}
	return false
}

// IsLiability reports whether balances of this class are owed rather than
// owned. Liabilities subtract from net worth.
func (c AccountClass) IsLiability() bool {
	return c == Credit || c == Loan
}

// Projectable reports whether the class participates in forward projection.
// Only investments and loans carry a recurrence; everything else is a
// point-in-time balance.
func (c AccountClass) Projectable() bool {
	return c == Investment || c == Loan
}

func (c AccountClass) Valid() bool {
	switch c {
	case Checking, Savings, Credit, Investment, Loan, Other:
		return true
	}
	return false
}

func (t TaxRate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.Percent < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (c BudgetCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (i BudgetItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if i.CategoryID == "" {
		return ErrMissingCategory
	}
	return nil
}

func (p Purchase) Validate() error {
	if strings.TrimSpace(p.ItemName) == "" {
		return ErrEmptyName
	}
	if len(p.ItemName) > 200 {
		return errors.New("item name too long (max 200 characters)")
	}
	if p.Cost < 0 {
		return ErrNegativeAmount
	}
	if p.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Class.Valid() {
		return ErrInvalidClass
	}
	return nil
}
