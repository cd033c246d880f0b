// Package site serves the public portfolio's data plane: persona view
// models, the persona preference and the proxy functions.
package site

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/feeds"
	"github.com/aTrapDeer/utworld/internal/persona"
	"github.com/aTrapDeer/utworld/internal/provider"
)

// FunctionsPrefix is where the proxy functions are mounted.
const FunctionsPrefix = "/.netlify/functions"

// cookieMaxAge keeps the persona preference for a year.
const cookieMaxAge = 365 * 24 * 60 * 60

// Source supplies the view models. *provider.Provider satisfies it.
type Source interface {
	DJData() *content.DJData
	ProfessionalData() *content.ProfessionalData
	ProjectsData() *content.ProjectsData
	LastResult() provider.Result
	UsingAPI() bool
	Loading() bool
	RefreshContent(ctx context.Context) provider.Result
}

type Options struct {
	Source         Source
	Functions      *feeds.Functions
	AssetBaseURL   string
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Server struct {
	source    Source
	functions *feeds.Functions
	assetBase string
	origins   []string
	logger    *slog.Logger
}

func New(opts Options) *Server {
	s := &Server{
		source:    opts.Source,
		functions: opts.Functions,
		assetBase: opts.AssetBaseURL,
		origins:   opts.AllowedOrigins,
		logger:    opts.Logger,
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

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: s.origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler)
		r.Get("/api/site", s.handlePage)
		r.Get("/api/site/{mode}/{section}", s.handleSection)
		r.Get("/api/mode", s.handleGetMode)
		r.Post("/api/mode", s.handleSetMode)
		r.Post("/api/refresh", s.handleRefresh)
		r.Get("/api/asset-url", s.handleAssetURL)
	})

	if s.functions != nil {
		r.Mount(FunctionsPrefix, s.functions.Routes())
	}
	return r
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// Meta describes where the served content came from. Fetch errors are
// logged, never exposed.
type Meta struct {
	Status   provider.Status `json:"status"`
	UsingAPI bool            `json:"using_api"`
	Loading  bool            `json:"loading"`
}

func (s *Server) meta() Meta {
	return Meta{
		Status:   s.source.LastResult().Status,
		UsingAPI: s.source.UsingAPI(),
		Loading:  s.source.Loading(),
	}
}

func (s *Server) snapshot() snapshot {
	return snapshot{
		dj:       s.source.DJData(),
		pro:      s.source.ProfessionalData(),
		projects: s.source.ProjectsData(),
	}
}

// cookiePreference stores the persona in the portfolio-mode cookie.
type cookiePreference struct {
	w http.ResponseWriter
	r *http.Request
}

func (c cookiePreference) Load() string {
	ck, err := c.r.Cookie(persona.PreferenceKey)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (c cookiePreference) Save(m persona.Mode) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     persona.PreferenceKey,
		Value:    string(m),
		Path:     "/",
		MaxAge:   cookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})
}

// hashParam reads the hash query parameter, with or without its '#'.
func hashParam(r *http.Request) string {
	h := r.URL.Query().Get("hash")
	if h != "" && !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	return h
}

func (s *Server) personaSwitch(w http.ResponseWriter, r *http.Request) *persona.Switch {
	return persona.NewSwitch(hashParam(r), cookiePreference{w: w, r: r})
}

// Page is the full view model for one persona.
type Page struct {
	Mode     persona.Mode   `json:"mode"`
	Hash     string         `json:"hash"`
	Meta     Meta           `json:"meta"`
	Order    []string       `json:"order"`
	Sections map[string]any `json:"sections"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "healthy", "content": s.meta()})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sw := s.personaSwitch(w, r)
	mode := sw.Mode()
	snap := s.snapshot()

	page := Page{
		Mode:     mode,
		Hash:     sw.Hash(),
		Meta:     s.meta(),
		Order:    []string{},
		Sections: map[string]any{},
	}
	for _, b := range pages[mode] {
		v, _ := render(b, snap, mode, s.logger)
		page.Order = append(page.Order, b.name)
		page.Sections[b.name] = v
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	mode := persona.Mode(chi.URLParam(r, "mode"))
	if !mode.Valid() {
		respondError(w, http.StatusNotFound, "Unknown mode")
		return
	}
	b, ok := findSection(mode, chi.URLParam(r, "section"))
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown section")
		return
	}
	v, ok := render(b, s.snapshot(), mode, s.logger)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, v)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"mode": mode, "section": b.name, "meta": s.meta(), "data": v})
}

type modeResponse struct {
	Mode persona.Mode `json:"mode"`
	Hash string       `json:"hash"`
}

func (s *Server) handleGetMode(w http.ResponseWriter, r *http.Request) {
	sw := s.personaSwitch(w, r)
	respondJSON(w, http.StatusOK, modeResponse{Mode: sw.Mode(), Hash: sw.Hash()})
}

// handleSetMode sets ?mode= when given and toggles otherwise.
func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	sw := s.personaSwitch(w, r)
	if v := r.URL.Query().Get("mode"); v != "" {
		m := persona.Mode(v)
		if !m.Valid() {
			respondError(w, http.StatusBadRequest, "mode must be professional or dj")
			return
		}
		sw.Set(m)
	} else {
		sw.Toggle()
	}
	respondJSON(w, http.StatusOK, modeResponse{Mode: sw.Mode(), Hash: sw.Hash()})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	s.source.RefreshContent(ctx)
	respondJSON(w, http.StatusOK, s.meta())
}

func (s *Server) handleAssetURL(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		respondError(w, http.StatusBadRequest, "path parameter required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": content.AssetURL(s.assetBase, p)})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
