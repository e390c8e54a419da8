package http

import (
	"log/slog"
	"net/http"

	"bilancio/internal/engine"
)

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	report, err := s.summary.Income(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeReportDTO(report))
}

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	params, err := parseMonthParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := monthCacheKey(params.Year, params.Month)
	if report, ok := s.monthCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Month report served from cache", "key", key)
		writeJSON(w, http.StatusOK, toMonthReportDTO(report))
		return
	}

	report, err := s.summary.MonthReport(r.Context(), params.Year, params.Month)
	if err != nil {
		writeError(w, err)
		return
	}
	s.monthCache.Set(key, report)
	writeJSON(w, http.StatusOK, toMonthReportDTO(report))
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	historyLimit, err := parseLimit(r, 0)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	key := networthCacheKey(historyLimit)
	if report, ok := s.networthCache.Get(key); ok {
		writeJSON(w, http.StatusOK, toNetWorthReportDTO(report))
		return
	}

	report, err := s.summary.NetWorth(r.Context(), historyLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	s.networthCache.Set(key, report)
	writeJSON(w, http.StatusOK, toNetWorthReportDTO(report))
}

func (s *Server) handleNetWorthProjection(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r, s.defaultHorizon)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	points, err := s.summary.NetWorthProjection(r.Context(), months)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]netWorthPointDTO, 0, len(points))
	for _, p := range points {
		out = append(out, netWorthPointDTO{Months: p.Months, Value: engine.RoundDisplay(p.Value)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAccountProjection(w http.ResponseWriter, r *http.Request) {
	months, err := parseMonths(r, s.defaultHorizon)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	report, err := s.summary.AccountProjection(r.Context(), r.PathValue("id"), months)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountProjectionDTO(report))
}
