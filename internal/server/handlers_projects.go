package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"

	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/store"
)

// queryBool parses a boolean query parameter, falling back to def.
func queryBool(r *http.Request, key string, def bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// paging reads skip (>= 0) and limit (1..100).
func paging(r *http.Request) (skip, limit int, err error) {
	q := r.URL.Query()
	limit = store.DefaultLimit
	if v := q.Get("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil || skip < 0 {
			return 0, 0, errDetail(http.StatusUnprocessableEntity, "skip must be a non-negative integer")
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > store.MaxLimit {
			return 0, 0, errDetail(http.StatusUnprocessableEntity, "limit must be between 1 and 100")
		}
	}
	return skip, limit, nil
}

// Drafts are only listed for authenticated callers.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	q := store.ProjectQuery{
		SectionID:     r.URL.Query().Get("section_id"),
		PublishedOnly: queryBool(r, "published_only", true),
		FeaturedOnly:  queryBool(r, "featured_only", false),
		Skip:          skip,
		Limit:         limit,
	}
	if !q.PublishedOnly {
		if _, err := s.authenticate(r); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	items, total, err := s.store.ListProjects(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, model.ProjectList{Items: items, Total: total})
}

func (s *Server) handleListProjectsBySection(w http.ResponseWriter, r *http.Request) {
	publishedOnly := queryBool(r, "published_only", true)
	if !publishedOnly {
		if _, err := s.authenticate(r); err != nil {
			s.respondError(w, r, err)
			return
		}
	}
	items, err := s.store.ListProjectsBySectionSlug(r.Context(), chi.URLParam(r, "slug"), publishedOnly)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, model.ProjectList{Items: items, Total: int64(len(items))})
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if !p.IsPublished {
		if _, err := s.authenticate(r); err != nil {
			respondDetail(w, http.StatusNotFound, "Project not found")
			return
		}
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectCreate
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validateProjectCreate(&in); err != nil {
		s.respondError(w, r, err)
		return
	}

	p := &model.Project{
		SectionID:    in.SectionID,
		Slug:         in.Slug,
		Title:        in.Title,
		Subtitle:     in.Subtitle,
		Description:  in.Description,
		Content:      in.Content,
		ExtraData:    in.ExtraData,
		ThumbnailURL: in.ThumbnailURL,
		Tags:         datatypes.JSONSlice[string](in.Tags),
		DisplayOrder: in.DisplayOrder,
		IsPublished:  in.IsPublished,
		IsFeatured:   in.IsFeatured,
	}
	if model.Deref(p.ThumbnailURL) == "" {
		p.ThumbnailURL = nil
	}
	if err := s.store.CreateProject(r.Context(), p); err != nil {
		s.respondError(w, r, err)
		return
	}
	created, err := s.store.GetProject(r.Context(), p.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectUpdate
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := validateProjectUpdate(&in); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.store.UpdateProject(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleSetPublished(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.store.SetPublished(r.Context(), chi.URLParam(r, "id"), published)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.contentChanged(r.Context())
		respondJSON(w, http.StatusOK, p)
	}
}

func (s *Server) handleReorderProjects(w http.ResponseWriter, r *http.Request) {
	var in model.ReorderRequest
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.store.ReorderProjects(r.Context(), in.ProjectIDs); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.contentChanged(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
