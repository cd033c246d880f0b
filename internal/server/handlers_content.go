package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aTrapDeer/utworld/internal/cache"
	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/store"
)

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	content, err := cache.GetOrLoad(r.Context(), s.cache, "content:all", s.store.PublishedContent)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, content)
}

func (s *Server) handleSectionContent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	sc, err := cache.GetOrLoad(r.Context(), s.cache, "content:"+slug, func(ctx context.Context) (*model.SectionContent, error) {
		return s.store.PublishedSection(ctx, slug)
	})
	if errors.Is(err, store.ErrNotFound) {
		respondDetail(w, http.StatusNotFound, sectionNotFound(slug))
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sc)
}

func sectionNotFound(slug string) string {
	switch slug {
	case "tech":
		return "Tech section not found"
	case "dj":
		return "DJ section not found"
	}
	return "Section not found"
}
