package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/core"
)

func TestProjectNegativeMonths(t *testing.T) {
	_, err := Project(core.Account{Class: core.Investment}, -1)
	require.ErrorIs(t, err, ErrInvalidMonths)

	_, err = ProjectedNetWorth(nil, -6)
	require.ErrorIs(t, err, ErrInvalidMonths)
}

func TestProjectInvestmentZeroRate(t *testing.T) {
	acct := core.Account{Class: core.Investment, PresentValue: 1000, MonthlyContribution: 50}
	p, err := Project(acct, 24)
	require.NoError(t, err)

	// Exactly PV + contribution*months, no tolerance needed.
	assert.Equal(t, 1000+50.0*24, p.FutureValue)
	assert.Equal(t, 50.0*24, p.TotalContributions)
	assert.Zero(t, p.TotalInterest)
}

func TestProjectInvestmentZeroContribution(t *testing.T) {
	acct := core.Account{Class: core.Investment, PresentValue: 10000, AnnualInterestRatePct: 12}
	p, err := Project(acct, 36)
	require.NoError(t, err)

	want := 10000 * math.Pow(1.01, 36)
	assert.InDelta(t, want, p.FutureValue, 1e-6)
	assert.Zero(t, p.TotalContributions)
	assert.InDelta(t, want-10000, p.TotalInterest, 1e-6)
}

func TestProjectInvestmentScenario(t *testing.T) {
	// Regression fixture: 10000 at 6% with 200/month for a year.
	acct := core.Account{
		Class:                 core.Investment,
		PresentValue:          10000,
		AnnualInterestRatePct: 6,
		MonthlyContribution:   200,
	}
	p, err := Project(acct, 12)
	require.NoError(t, err)

	growth := math.Pow(1.005, 12)
	want := 10000*growth + 200*((growth-1)/0.005)
	assert.InDelta(t, want, p.FutureValue, 1e-9)
	assert.InDelta(t, 13083.8906, p.FutureValue, 5e-4)
	assert.InDelta(t, 2400, p.TotalContributions, 1e-9)
	assert.InDelta(t, p.FutureValue-10000-2400, p.TotalInterest, 1e-9)
}

func TestProjectInvestmentZeroMonths(t *testing.T) {
	acct := core.Account{Class: core.Investment, PresentValue: 500, AnnualInterestRatePct: 7, MonthlyContribution: 100}
	p, err := Project(acct, 0)
	require.NoError(t, err)
	assert.InDelta(t, 500, p.FutureValue, 1e-9)
	assert.Zero(t, p.TotalContributions)
	assert.Zero(t, p.TotalInterest)
}

func TestProjectLoanAmortizes(t *testing.T) {
	acct := core.Account{
		Class:                 core.Loan,
		PresentValue:          5000,
		AnnualInterestRatePct: 18,
		MonthlyContribution:   500,
	}
	p, err := Project(acct, 3)
	require.NoError(t, err)

	// 5000 -> 4575 -> 4143.625 -> 3705.779375
	assert.InDelta(t, 3705.779375, p.FutureValue, 1e-9)
	assert.InDelta(t, 1500, p.TotalContributions, 1e-9)
	assert.Equal(t, 3, p.MonthsPaid)
	assert.InDelta(t, 1500-(5000-p.FutureValue), p.TotalInterest, 1e-9)
}

func TestProjectLoanEarlyPayoff(t *testing.T) {
	// Pays off during month 11: the balance never goes negative, the
	// final payment is the accrued balance, and contributions reflect
	// actual payments rather than 500*11.
	acct := core.Account{
		Class:                 core.Loan,
		PresentValue:          5000,
		AnnualInterestRatePct: 18,
		MonthlyContribution:   500,
	}
	p, err := Project(acct, 11)
	require.NoError(t, err)

	assert.Zero(t, p.FutureValue)
	assert.Less(t, p.TotalContributions, 500.0*11)
	assert.Greater(t, p.TotalContributions, 5000.0)
	assert.Equal(t, 11, p.MonthsPaid)
	// Once paid off all payments beyond principal are interest.
	assert.InDelta(t, p.TotalContributions-5000, p.TotalInterest, 1e-9)
}

func TestProjectLoanPayoffStopsAccruing(t *testing.T) {
	acct := core.Account{
		Class:                 core.Loan,
		PresentValue:          1000,
		AnnualInterestRatePct: 12,
		MonthlyContribution:   600,
	}
	at3, err := Project(acct, 3)
	require.NoError(t, err)
	at120, err := Project(acct, 120)
	require.NoError(t, err)

	// After payoff nothing changes no matter how far out the horizon runs.
	assert.Equal(t, at3, at120)
	assert.Zero(t, at120.FutureValue)
	assert.Equal(t, 2, at120.MonthsPaid)
}

func TestProjectLoanZeroPayment(t *testing.T) {
	acct := core.Account{Class: core.Loan, PresentValue: 1000, AnnualInterestRatePct: 12}
	p, err := Project(acct, 12)
	require.NoError(t, err)

	assert.InDelta(t, 1000*math.Pow(1.01, 12), p.FutureValue, 1e-9)
	assert.Zero(t, p.TotalContributions)
	assert.Zero(t, p.MonthsPaid)
}

func TestProjectNonProjectableClasses(t *testing.T) {
	for _, class := range []core.AccountClass{core.Checking, core.Savings, core.Credit, core.Other} {
		acct := core.Account{Class: class, PresentValue: 1234.56, AnnualInterestRatePct: 5, MonthlyContribution: 100}
		p, err := Project(acct, 60)
		require.NoError(t, err)
		assert.Equal(t, 1234.56, p.FutureValue, "class=%s", class)
		assert.Zero(t, p.TotalContributions, "class=%s", class)
	}
}

func TestProjectSanitizesInputs(t *testing.T) {
	acct := core.Account{Class: core.Investment, PresentValue: math.NaN(), AnnualInterestRatePct: math.Inf(1), MonthlyContribution: 100}
	p, err := Project(acct, 12)
	require.NoError(t, err)
	assert.InDelta(t, 1200, p.FutureValue, 1e-9)
}

func TestMilestoneMonths(t *testing.T) {
	cases := []struct {
		horizon int
		want    []int
	}{
		{12, []int{1, 3, 6, 12}},
		{10, []int{1, 3, 6, 10}},
		{36, []int{6, 12, 24, 36}},
		{24, []int{6, 12, 24}},
		{60, []int{12, 24, 36, 60}},
		{48, []int{12, 24, 36, 48}},
		{120, []int{12, 36, 60, 120}},
		{90, []int{12, 36, 60, 90}},
		{180, []int{12, 60, 120, 180}},
		{150, []int{12, 60, 120, 150}},
		{240, []int{12, 60, 120, 180, 240}},
		{300, []int{12, 60, 120, 180, 240, 300}},
		{1, []int{1}},
		{0, []int{0}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MilestoneMonths(tc.horizon), "horizon=%d", tc.horizon)
	}
	assert.Nil(t, MilestoneMonths(-5))
}
