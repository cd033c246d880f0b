// Package sections caches the slug to section mapping the admin needs to
// attach new projects to the right section.
package sections

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aTrapDeer/utworld/internal/model"
)

const (
	Tech = "tech"
	DJ   = "dj"
)

// Lister is satisfied by *apiclient.Client.
type Lister interface {
	GetSections(ctx context.Context) (*model.SectionList, error)
}

// Registry holds the sections loaded from the API. It is safe for
// concurrent use.
type Registry struct {
	lister Lister
	logger *slog.Logger

	mu       sync.RWMutex
	sections map[string]model.Section
	loading  bool
	err      string
}

// NewRegistry returns a registry that has not loaded yet. Loading reports
// true until the first Load finishes.
func NewRegistry(lister Lister, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		lister:   lister,
		logger:   logger,
		sections: map[string]model.Section{},
		loading:  true,
	}
}

// Load fetches all sections. On failure the error is recorded and the
// current map is kept.
func (r *Registry) Load(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	list, err := r.lister.GetSections(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	if err != nil {
		r.logger.Error("Failed to load sections", "error", err)
		r.err = err.Error()
		return err
	}
	m := make(map[string]model.Section, len(list.Items))
	for _, s := range list.Items {
		m[s.Slug] = s
	}
	r.sections = m
	r.err = ""
	return nil
}

// Reload is Load; call it after creating or renaming a section.
func (r *Registry) Reload(ctx context.Context) error { return r.Load(ctx) }

func (r *Registry) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Error returns the last load error message, or "".
func (r *Registry) Error() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Sections returns a copy of the slug to section map.
func (r *Registry) Sections() map[string]model.Section {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]model.Section, len(r.sections))
	for k, v := range r.sections {
		out[k] = v
	}
	return out
}

// SectionID returns the id for slug, or "" when unknown.
func (r *Registry) SectionID(slug string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sections[slug].ID
}

func (r *Registry) TechSectionID() string { return r.SectionID(Tech) }
func (r *Registry) DJSectionID() string   { return r.SectionID(DJ) }

// RequireSectionID is SectionID for create actions: it errors while the id
// is unresolved.
func (r *Registry) RequireSectionID(slug string) (string, error) {
	if id := r.SectionID(slug); id != "" {
		return id, nil
	}
	switch slug {
	case DJ:
		return "", errors.New("DJ section not found. Please refresh the page.")
	case Tech:
		return "", errors.New("Tech section not found. Please refresh the page.")
	}
	return "", fmt.Errorf("Section %q not found. Please refresh the page.", slug)
}
