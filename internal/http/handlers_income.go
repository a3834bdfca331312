package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"contas/internal/core"
	"contas/internal/report"
)

type incomeRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	CategoryID  string `json:"category_id"`
	ReceiveDate string `json:"receive_date"`
	Status      string `json:"status"`
	ReceivedAt  string `json:"received_at"`
	Description string `json:"description"`
}

func (s *Server) incomeFromRequest(w http.ResponseWriter, r *http.Request, req incomeRequest) (core.Income, bool) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return core.Income{}, false
	}
	receiveDate, err := report.ParseLocalDate(req.ReceiveDate)
	if err != nil {
		writeServiceError(w, r, err)
		return core.Income{}, false
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid category_id")
		return core.Income{}, false
	}
	category, err := s.categories.GetCategory(r.Context(), categoryID)
	if err != nil {
		writeServiceError(w, r, err)
		return core.Income{}, false
	}
	var receivedAt *time.Time
	if req.ReceivedAt != "" {
		parsed, err := report.ParseLocalDate(req.ReceivedAt)
		if err != nil {
			writeServiceError(w, r, err)
			return core.Income{}, false
		}
		receivedAt = &parsed
	}

	return core.Income{
		Title:       req.Title,
		Amount:      amount,
		Category:    category,
		ReceiveDate: receiveDate,
		Status:      core.TransactionStatus(req.Status),
		ReceivedAt:  receivedAt,
		Description: req.Description,
	}, true
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.incomes.ListIncomes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toIncomeDTOs(incomes))
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := s.incomeFromRequest(w, r, req)
	if !ok {
		return
	}

	saved, err := s.incomes.CreateIncome(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, r, http.StatusCreated, toIncomeDTO(saved))
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, err := s.incomes.GetIncome(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toIncomeDTO(in))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req incomeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := s.incomeFromRequest(w, r, req)
	if !ok {
		return
	}
	in.ID = id

	if err := s.incomes.UpdateIncome(r.Context(), in); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, r, http.StatusOK, toIncomeDTO(in))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.incomes.DeleteIncome(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReceiveIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	receivedAt, ok := paidAtFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.incomes.MarkIncomeReceived(r.Context(), id, receivedAt); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	in, err := s.incomes.GetIncome(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toIncomeDTO(in))
}
