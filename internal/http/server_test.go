package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bilancio/internal/services"
	"bilancio/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	s := NewServer("127.0.0.1:0",
		services.NewBudgetService(store, nil),
		services.NewSummaryService(store),
		Options{SummaryCacheSize: 10, SummaryCacheTTL: time.Minute, DefaultHorizon: 120})
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })
	return s
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = do(t, s, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/profile",
		`{"yearly_salary":60000,"retirement_contribution_pct":5,"employer_match_pct":3,"pay_frequency":"biweekly"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got profileDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 60000.0, float64(got.YearlySalary))
	assert.Equal(t, "biweekly", got.PayFrequency)
}

func TestAmountAcceptsDecimalStrings(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/categories", `{"name":"Food"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat categoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = do(t, s, http.MethodPost, "/api/items",
		`{"name":"Groceries","budget_amount":"400,50","category_id":"`+cat.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var item itemDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.Equal(t, 400.5, float64(item.BudgetAmount))
}

func TestProfileRejectsNegativeSalary(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/api/profile", `{"yearly_salary":-10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaxRateCRUD(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/taxes", `{"name":"Federal","percent":12}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created taxRateDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = do(t, s, http.MethodPut, "/api/taxes/"+created.ID, `{"name":"Federal","percent":13}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/taxes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rates []taxRateDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	require.Len(t, rates, 1)
	assert.Equal(t, 13.0, rates[0].Percent)

	rec = do(t, s, http.MethodDelete, "/api/taxes/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/taxes/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryConflictOnDelete(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/categories", `{"name":"Food"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat categoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = do(t, s, http.MethodPost, "/api/items",
		`{"name":"Groceries","budget_amount":400,"category_id":"`+cat.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/categories/"+cat.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPurchaseLifecycleAndSummary(t *testing.T) {
	s := newTestServer(t)

	// Seed profile and one flat tax so the summary has income.
	rec := do(t, s, http.MethodPut, "/api/profile",
		`{"yearly_salary":60000,"retirement_contribution_pct":5,"pay_frequency":"monthly"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/taxes", `{"name":"Flat","percent":19.65}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/categories", `{"name":"Food"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var cat categoryDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))

	rec = do(t, s, http.MethodPost, "/api/items",
		`{"name":"Groceries","budget_amount":400,"category_id":"`+cat.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var item itemDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))

	rec = do(t, s, http.MethodPost, "/api/purchases",
		`{"item_name":"Supermarket","cost":450,"timestamp":"2026-03-05","budget_item_id":"`+item.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var purchase purchaseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &purchase))

	rec = do(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report monthReportDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3767.5, report.MonthlyTakeHome)
	assert.Equal(t, 450.0, report.TotalSpent)
	require.Len(t, report.Categories, 1)
	require.Len(t, report.Categories[0].Items, 1)
	assert.Equal(t, "over", report.Categories[0].Items[0].Status)

	// Soft delete drops the spend from a fresh report.
	rec = do(t, s, http.MethodDelete, "/api/purchases/"+purchase.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0.0, report.TotalSpent)

	rec = do(t, s, http.MethodPost, "/api/purchases/"+purchase.ID+"/restore", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 450.0, report.TotalSpent)
}

func TestSummaryRejectsBadMonth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/summary?year=2026&month=13", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNetWorthAndProjection(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/accounts",
		`{"name":"Brokerage","class":"investment","present_value":10000,"annual_interest_rate_pct":6,"monthly_contribution":250}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var account accountDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))

	rec = do(t, s, http.MethodPost, "/api/accounts",
		`{"name":"Visa","class":"credit","present_value":1500}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/networth", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var networth netWorthReportDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &networth))
	assert.Equal(t, 8500.0, networth.Current)
	assert.Equal(t, 10000.0, networth.Assets)
	assert.Equal(t, 1500.0, networth.Liabilities)

	rec = do(t, s, http.MethodGet, "/api/networth/projection?months=24", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var points []netWorthPointDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	require.Len(t, points, 3)
	assert.Equal(t, 6, points[0].Months)
	assert.Equal(t, 24, points[2].Months)

	rec = do(t, s, http.MethodGet, "/api/accounts/"+account.ID+"/projection?months=12", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var projection accountProjectionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projection))
	assert.Equal(t, 12, projection.Horizon)
	assert.Greater(t, projection.Final.FutureValue, 10000.0)
	require.Len(t, projection.Milestones, 4)

	rec = do(t, s, http.MethodGet, "/api/accounts/missing/projection", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/networth/projection?months=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownFieldRejected(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/categories", `{"name":"Food","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutationInvalidatesMonthCache(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/summary?year=2026&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, s.monthCache.Size())

	rec = do(t, s, http.MethodPost, "/api/taxes", `{"name":"Flat","percent":10}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 0, s.monthCache.Size())
}
