package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/util"
)

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	sections, total, err := s.store.ListSections(r.Context(), includeInactive)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, model.SectionList{Items: sections, Total: total})
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	sec, err := s.store.GetSection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sec)
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var in model.SectionCreate
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if in.Slug == "" {
		in.Slug = util.Slugify(in.Title)
	}
	if err := validateSectionCreate(&in); err != nil {
		s.respondError(w, r, err)
		return
	}

	sec := &model.Section{
		Slug:         in.Slug,
		Title:        in.Title,
		Description:  in.Description,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.store.CreateSection(r.Context(), sec); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	respondJSON(w, http.StatusCreated, sec)
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var in model.SectionUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validateSectionUpdate(&in); err != nil {
		s.respondError(w, r, err)
		return
	}
	sec, err := s.store.UpdateSection(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	respondJSON(w, http.StatusOK, sec)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSection(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
