package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/report"
)

type expenseRequest struct {
	Title        string `json:"title"`
	Amount       string `json:"amount"`
	CategoryID   string `json:"category_id"`
	DueDate      string `json:"due_date"`
	Installments int    `json:"installments"`
	IsFixed      bool   `json:"is_fixed"`
	Status       string `json:"status"`
	PaidAt       string `json:"paid_at"`
	Description  string `json:"description"`
}

type payRequest struct {
	PaidAt string `json:"paid_at"`
}

// expenseFromRequest resolves the category and parses amount and date.
func (s *Server) expenseFromRequest(w http.ResponseWriter, r *http.Request, req expenseRequest) (core.Expense, bool) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return core.Expense{}, false
	}
	dueDate, err := report.ParseLocalDate(req.DueDate)
	if err != nil {
		writeServiceError(w, r, err)
		return core.Expense{}, false
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid category_id")
		return core.Expense{}, false
	}
	category, err := s.categories.GetCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return core.Expense{}, false
	}
	var paidAt *time.Time
	if req.PaidAt != "" {
		parsed, err := report.ParseLocalDate(req.PaidAt)
		if err != nil {
			writeServiceError(w, r, err)
			return core.Expense{}, false
		}
		paidAt = &parsed
	}

	return core.Expense{
		Title:        req.Title,
		Amount:       amount,
		Category:     category,
		DueDate:      dueDate,
		Installments: req.Installments,
		IsFixed:      req.IsFixed,
		Status:       core.TransactionStatus(req.Status),
		PaidAt:       paidAt,
		Description:  req.Description,
	}, true
}

// paidAtFromRequest reads the optional paid_at body date, defaulting to
// today.
func paidAtFromRequest(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	var req payRequest
	if r.Body != nil && r.ContentLength > 0 {
		if !decodeBody(w, r, &req) {
			return time.Time{}, false
		}
	}
	if req.PaidAt == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.Local), true
	}
	paidAt, err := report.ParseLocalDate(req.PaidAt)
	if err != nil {
		writeServiceError(w, r, err)
		return time.Time{}, false
	}
	return paidAt, true
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toExpenseDTOs(expenses))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, ok := s.expenseFromRequest(w, r, req)
	if !ok {
		return
	}

	saved, err := s.expenses.CreateExpense(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, r, http.StatusCreated, toExpenseDTO(saved))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toExpenseDTO(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, ok := s.expenseFromRequest(w, r, req)
	if !ok {
		return
	}
	e.ID = id

	if err := s.expenses.UpdateExpense(r.Context(), e); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, r, http.StatusOK, toExpenseDTO(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.expenses.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePayExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	paidAt, ok := paidAtFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.expenses.MarkExpensePaid(r.Context(), id, paidAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toExpenseDTO(e))
}

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	statuses, err := s.expenses.InstallmentStatuses(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toInstallmentDTOs(e, statuses))
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid installment number")
		return
	}
	paidAt, ok := paidAtFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.expenses.MarkInstallmentPaid(r.Context(), id, n, paidAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	statuses, err := s.expenses.InstallmentStatuses(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		Expense      expenseDTO       `json:"expense"`
		Installments []installmentDTO `json:"installments"`
	}{toExpenseDTO(e), toInstallmentDTOs(e, statuses)})
}
