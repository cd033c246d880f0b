// Package provider decides between live API content and the bundled
// fixtures and holds the current persona view models.
package provider

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/model"
)

// Fetcher is satisfied by *apiclient.Client.
type Fetcher interface {
	FetchAllContent(ctx context.Context) (model.Content, error)
}

// Status says where the held content came from after a load.
type Status string

const (
	// StatusOK means the last load used live API content.
	StatusOK Status = "ok"
	// StatusDegraded means the fetch failed and earlier content is kept.
	StatusDegraded Status = "degraded"
	// StatusStatic means the API is disabled and fixtures are served.
	StatusStatic Status = "static"
)

// Result describes one Load.
type Result struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Provider holds the persona view models. It is safe for concurrent use.
type Provider struct {
	useAPI  bool
	fetcher Fetcher
	logger  *slog.Logger

	mu           sync.RWMutex
	dj           *content.DJData
	professional *content.ProfessionalData
	projects     *content.ProjectsData
	loading      bool
	err          string
	usingAPI     bool
	last         Result
}

// New returns a provider seeded with fixtures. With useAPI false the
// fetcher is never called.
func New(useAPI bool, fetcher Fetcher, fixtures Fixtures, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		useAPI:       useAPI && fetcher != nil,
		fetcher:      fetcher,
		logger:       logger,
		dj:           fixtures.DJ,
		professional: fixtures.Professional,
		projects:     fixtures.Projects,
		loading:      useAPI && fetcher != nil,
		last:         Result{Status: StatusStatic},
	}
}

// Load fetches all content once and swaps in every transform that
// succeeds. A failed fetch keeps the current data and records the error.
func (p *Provider) Load(ctx context.Context) Result {
	if !p.useAPI {
		res := Result{Status: StatusStatic}
		p.mu.Lock()
		p.loading = false
		p.last = res
		p.mu.Unlock()
		return res
	}

	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()

	all, err := p.fetcher.FetchAllContent(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.logger.Warn("Failed to fetch from API, using static data", "error", err)
		p.err = err.Error()
		p.usingAPI = false
		p.last = Result{Status: StatusDegraded, Reason: err.Error()}
		return p.last
	}

	if dj := content.TransformDJContent(all["dj"]); dj != nil {
		p.dj = dj
	}
	if tech := all["tech"]; tech != nil {
		if pro := content.TransformProfessionalContent(tech); pro != nil {
			p.professional = pro
		}
		if projects := content.TransformProjectsContent(tech); projects != nil {
			p.projects = projects
		}
	}
	p.usingAPI = true
	p.err = ""
	p.last = Result{Status: StatusOK}
	return p.last
}

// RefreshContent re-runs the full load.
func (p *Provider) RefreshContent(ctx context.Context) Result { return p.Load(ctx) }

func (p *Provider) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Error is the last fetch error, or "".
func (p *Provider) Error() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

func (p *Provider) UsingAPI() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.usingAPI
}

// LastResult is the Result of the most recent Load.
func (p *Provider) LastResult() Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last
}

func (p *Provider) DJData() *content.DJData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dj
}

func (p *Provider) ProfessionalData() *content.ProfessionalData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.professional
}

func (p *Provider) ProjectsData() *content.ProjectsData {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.projects
}
