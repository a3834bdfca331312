package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/report"
)

// monthParam parses the required month=YYYY-MM query parameter.
func monthParam(w http.ResponseWriter, r *http.Request) (report.YearMonth, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "missing month parameter")
		return report.YearMonth{}, false
	}
	ym, err := report.ParseYearMonth(raw)
	if err != nil {
		writeServiceError(w, r, err)
		return report.YearMonth{}, false
	}
	return ym, true
}

// monthsParam parses the optional months window, clamped to [1, 24].
func monthsParam(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("months"))
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	if n > 24 {
		return 24
	}
	return n
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	ym, ok := monthParam(w, r)
	if !ok {
		return
	}

	var filter report.MonthFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid category filter")
			return
		}
		filter.Category = id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("fixed")); raw != "" {
		fixed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid fixed filter")
			return
		}
		filter.Fixed = &fixed
	}

	summary, err := s.reports.MonthlySummary(r.Context(), ym, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toMonthSummaryDTO(summary))
}

func (s *Server) handleByCategoryReport(w http.ResponseWriter, r *http.Request) {
	ym, ok := monthParam(w, r)
	if !ok {
		return
	}

	typ := core.CategoryType(strings.TrimSpace(r.URL.Query().Get("type")))
	if typ == "" {
		typ = core.CategoryExpense
	}

	var (
		slices []report.CategorySlice
		err    error
	)
	switch typ {
	case core.CategoryExpense:
		slices, err = s.reports.ExpensesByCategory(r.Context(), ym)
	case core.CategoryIncome:
		slices, err = s.reports.IncomesByCategory(r.Context(), ym)
	default:
		writeError(w, r, http.StatusBadRequest, "invalid type parameter")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCategorySliceDTOs(slices))
}

func (s *Server) handleComparisonReport(w http.ResponseWriter, r *http.Request) {
	comparisons, err := s.reports.Trends(r.Context(), monthsParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toComparisonDTOs(comparisons))
}

func (s *Server) handleEvolutionReport(w http.ResponseWriter, r *http.Request) {
	points, err := s.reports.Evolution(r.Context(), monthsParam(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toBalancePointDTOs(points))
}

func (s *Server) handleDashboardReport(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.reports.Dashboard(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDashboardDTO(dashboard))
}

func (s *Server) handleRecentReport(w http.ResponseWriter, r *http.Request) {
	expenses, incomes, err := s.reports.RecentTransactions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recentDTO{
		Expenses: toExpenseDTOs(expenses),
		Incomes:  toIncomeDTOs(incomes),
	})
}
