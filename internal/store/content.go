package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/aTrapDeer/utworld/internal/model"
)

func (s *Store) publishedProjects(ctx context.Context, sectionIDs []string) (map[string][]model.PublicProject, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("section_id IN ? AND is_published = ?", sectionIDs, true).
		Order("display_order ASC, created_at ASC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string][]model.PublicProject, len(sectionIDs))
	for _, p := range projects {
		out[p.SectionID] = append(out[p.SectionID], p.Public())
	}
	return out, nil
}

func sectionContent(sec model.Section, projects []model.PublicProject) *model.SectionContent {
	if projects == nil {
		projects = []model.PublicProject{}
	}
	return &model.SectionContent{
		ID:          sec.ID,
		Slug:        sec.Slug,
		Title:       sec.Title,
		Description: sec.Description,
		Projects:    projects,
	}
}

// PublishedContent assembles the public aggregate: every active section
// keyed by slug with its published projects in display order.
func (s *Store) PublishedContent(ctx context.Context) (model.Content, error) {
	sections, _, err := s.ListSections(ctx, false)
	if err != nil {
		return nil, err
	}
	out := model.Content{}
	if len(sections) == 0 {
		return out, nil
	}
	ids := make([]string, len(sections))
	for i, sec := range sections {
		ids[i] = sec.ID
	}
	bySection, err := s.publishedProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, sec := range sections {
		out[sec.Slug] = sectionContent(sec, bySection[sec.ID])
	}
	return out, nil
}

// PublishedSection is PublishedContent for one active section.
func (s *Store) PublishedSection(ctx context.Context, slug string) (*model.SectionContent, error) {
	sec, err := s.GetSectionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !sec.IsActive {
		return nil, notFound("Section not found")
	}
	bySection, err := s.publishedProjects(ctx, []string{sec.ID})
	if err != nil {
		return nil, err
	}
	return sectionContent(*sec, bySection[sec.ID]), nil
}
