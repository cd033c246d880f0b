// Package server implements the /api/v1 REST API: authentication, section,
// project and asset management, and the cached public content aggregate.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/aTrapDeer/utworld/internal/auth"
	"github.com/aTrapDeer/utworld/internal/cache"
	"github.com/aTrapDeer/utworld/internal/media"
	"github.com/aTrapDeer/utworld/internal/store"
)

// Version is reported by the health endpoints.
const Version = "1.0.0"

// Options wires the server's collaborators. Cache, Revalidator and Logger
// are optional.
type Options struct {
	Store          *store.Store
	Issuer         *auth.Issuer
	Media          *media.Storage
	MediaPrefix    string
	Cache          cache.Cache
	Revalidator    *Revalidator
	Logger         *slog.Logger
	AllowedOrigins []string
}

// Server serves the API.
type Server struct {
	store       *store.Store
	issuer      *auth.Issuer
	media       *media.Storage
	mediaPrefix string
	cache       cache.Cache
	revalidator *Revalidator
	logger      *slog.Logger
	origins     []string
}

// New builds a Server.
func New(opts Options) *Server {
	s := &Server{
		store:       opts.Store,
		issuer:      opts.Issuer,
		media:       opts.Media,
		mediaPrefix: "/" + strings.Trim(opts.MediaPrefix, "/"),
		cache:       opts.Cache,
		revalidator: opts.Revalidator,
		logger:      opts.Logger,
		origins:     opts.AllowedOrigins,
	}
	if s.mediaPrefix == "/" {
		s.mediaPrefix = "/media"
	}
	if s.cache == nil {
		s.cache = cache.NewMemory(5*time.Minute, 10*time.Minute)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	return s
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	if s.media != nil {
		r.Handle(s.mediaPrefix+"/*", http.StripPrefix(s.mediaPrefix+"/", s.media.Handler()))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.With(s.requireAuth).Get("/me", s.handleMe)
		})

		r.Route("/sections", func(r chi.Router) {
			r.Get("/", s.handleListSections)
			r.Get("/{id}", s.handleGetSection)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateSection)
				r.Put("/{id}", s.handleUpdateSection)
				r.Delete("/{id}", s.handleDeleteSection)
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.handleListProjects)
			r.Get("/by-section/{slug}", s.handleListProjectsBySection)
			r.Get("/{id}", s.handleGetProject)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateProject)
				r.Post("/reorder", s.handleReorderProjects)
				r.Put("/{id}", s.handleUpdateProject)
				r.Delete("/{id}", s.handleDeleteProject)
				r.Post("/{id}/publish", s.handleSetPublished(true))
				r.Post("/{id}/unpublish", s.handleSetPublished(false))
			})
		})

		r.Route("/assets", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListAssets)
			r.Get("/{id}", s.handleGetAsset)
			r.Post("/upload", s.handleUploadAsset)
			r.Post("/upload-multiple", s.handleUploadMultiple)
			r.Put("/{id}", s.handleUpdateAsset)
			r.Delete("/{id}", s.handleDeleteAsset)
		})

		r.Route("/content", func(r chi.Router) {
			r.Get("/", s.handleContent)
			r.Get("/{slug}", s.handleSectionContent)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: s.origins[0] != "*",
	})
	return c.Handler(r)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    "UTWorld Admin API",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "version": Version})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": Version})
}

// contentChanged drops cached public content and notifies the frontend.
func (s *Server) contentChanged(ctx context.Context) {
	if err := s.cache.Clear(ctx); err != nil {
		s.logger.Warn("clearing content cache", "error", err)
	}
	if s.revalidator != nil {
		go s.revalidator.Notify(context.WithoutCancel(ctx))
	}
}
