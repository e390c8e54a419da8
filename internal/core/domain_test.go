package core

import (
	"testing"
	"time"
)

func TestPayFrequencyDivisor(t *testing.T) {
	cases := []struct {
		f    PayFrequency
		want float64
	}{
		{Weekly, 52},
		{BiWeekly, 26},
		{SemiMonthly, 24},
		{Monthly, 12},
		{PayFrequency("fortnightly"), 12}, // unknown falls back to monthly
		{PayFrequency(""), 12},
	}
	for _, tc := range cases {
		if got := tc.f.Divisor(); got != tc.want {
			t.Fatalf("%q divisor = %v, want %v", tc.f, got, tc.want)
		}
	}
}

func TestAccountClass(t *testing.T) {
	liabilities := map[AccountClass]bool{Credit: true, Loan: true}
	projectable := map[AccountClass]bool{Investment: true, Loan: true}

	for _, c := range []AccountClass{Checking, Savings, Credit, Investment, Loan, Other} {
		if !c.Valid() {
			t.Fatalf("%q should be valid", c)
		}
		if c.IsLiability() != liabilities[c] {
			t.Fatalf("%q liability = %v", c, c.IsLiability())
		}
		if c.Projectable() != projectable[c] {
			t.Fatalf("%q projectable = %v", c, c.Projectable())
		}
	}
	if AccountClass("mortgage").Valid() {
		t.Fatal("unknown class should be invalid")
	}
}

func TestPurchaseValidate(t *testing.T) {
	good := Purchase{ItemName: "coffee", Cost: 4.50, Timestamp: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Purchase{
		{ItemName: "", Cost: 1, Timestamp: good.Timestamp},
		{ItemName: "a", Cost: -1, Timestamp: good.Timestamp},
		{ItemName: "a", Cost: 1},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	// Uncategorized purchases are valid; the link is optional.
	good.BudgetItemID = ""
	if err := good.Validate(); err != nil {
		t.Fatalf("uncategorized purchase should validate, got %v", err)
	}
}

func TestBudgetItemValidate(t *testing.T) {
	if err := (BudgetItem{Name: "Groceries", CategoryID: "c1"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (BudgetItem{Name: "", CategoryID: "c1"}).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := (BudgetItem{Name: "Groceries"}).Validate(); err == nil {
		t.Fatal("expected error for missing category")
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Car loan", Class: Loan}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: "", Class: Loan}).Validate(); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := (Account{Name: "x", Class: AccountClass("bond")}).Validate(); err == nil {
		t.Fatal("expected error for invalid class")
	}
}

func TestTaxRateValidate(t *testing.T) {
	if err := (TaxRate{Name: "Federal", Percent: 12}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (TaxRate{Name: "Federal", Percent: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative percent")
	}
	// Zero-percent rates are legal and enumerable.
	if err := (TaxRate{Name: "State", Percent: 0}).Validate(); err != nil {
		t.Fatalf("zero percent should validate, got %v", err)
	}
}
