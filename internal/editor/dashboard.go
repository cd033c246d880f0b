package editor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/sections"
)

// RecentGigCount is how many gigs Stats lists.
const RecentGigCount = 5

// Stats is the admin overview.
type Stats struct {
	TechProjects  int             `json:"tech_projects"`
	DJGigs        int             `json:"dj_gigs"`
	Assets        int             `json:"assets"`
	PublishedGigs int             `json:"published_gigs"`
	RecentGigs    []model.Project `json:"recent_gigs"`
}

// Dashboard computes Stats.
type Dashboard struct{ api API }

func NewDashboard(api API) *Dashboard { return &Dashboard{api: api} }

// Stats fetches both sections and the asset list concurrently. The first
// failure cancels the other requests and is returned.
func (d *Dashboard) Stats(ctx context.Context) (*Stats, error) {
	var (
		tech, dj *model.ProjectList
		assets   *model.AssetList
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tech, err = d.api.GetProjectsBySectionSlug(gctx, sections.Tech, false)
		return err
	})
	g.Go(func() (err error) {
		dj, err = d.api.GetProjectsBySectionSlug(gctx, sections.DJ, false)
		return err
	})
	g.Go(func() (err error) {
		assets, err = d.api.GetAssets(gctx, "", "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Stats{Assets: int(assets.Total)}
	for _, p := range tech.Items {
		if FeaturedProject.matches(p) {
			s.TechProjects++
		}
	}
	var gigs []model.Project
	for _, p := range dj.Items {
		if p.Type() != model.TypeGig {
			continue
		}
		gigs = append(gigs, p)
		if p.IsPublished {
			s.PublishedGigs++
		}
	}
	s.DJGigs = len(gigs)
	recent := FilterGigs(gigs, GigFilter{Order: OrderNewest})
	if len(recent) > RecentGigCount {
		recent = recent[:RecentGigCount]
	}
	s.RecentGigs = recent
	return s, nil
}
