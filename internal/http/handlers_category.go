package http

import (
	"net/http"

	"contas/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ := core.CategoryType(r.URL.Query().Get("type"))
	cats, err := s.categories.ListCategories(r.Context(), typ)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryDTO(c))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := s.categories.CreateCategory(r.Context(), core.Category{
		Name:  req.Name,
		Color: req.Color,
		Type:  core.CategoryType(req.Type),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, r, http.StatusCreated, toCategoryDTO(saved))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c := core.Category{
		ID:    id,
		Name:  req.Name,
		Color: req.Color,
		Type:  core.CategoryType(req.Type),
	}
	if err := s.categories.UpdateCategory(r.Context(), c); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	writeJSON(w, r, http.StatusOK, toCategoryDTO(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.categories.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
