package store

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aTrapDeer/utworld/internal/model"
)

// Listing bounds for projects and assets.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ProjectQuery filters ListProjects.
type ProjectQuery struct {
	SectionID     string
	PublishedOnly bool
	FeaturedOnly  bool
	Skip          int
	Limit         int
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ListProjects returns matching projects ordered by display_order, then
// creation time. Total counts all matches before paging.
func (s *Store) ListProjects(ctx context.Context, q ProjectQuery) ([]model.Project, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.Project{})
	if q.SectionID != "" {
		db = db.Where("section_id = ?", q.SectionID)
	}
	if q.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if q.FeaturedOnly {
		db = db.Where("is_featured = ?", true)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	projects := []model.Project{}
	err := db.Order("display_order ASC, created_at ASC").
		Offset(max(q.Skip, 0)).Limit(clampLimit(q.Limit)).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ListProjectsBySectionSlug lists every project of the named section.
func (s *Store) ListProjectsBySectionSlug(ctx context.Context, slug string, publishedOnly bool) ([]model.Project, error) {
	sec, err := s.GetSectionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx).Where("section_id = ?", sec.ID)
	if publishedOnly {
		db = db.Where("is_published = ?", true)
	}
	projects := []model.Project{}
	if err := db.Order("display_order ASC, created_at ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject loads a project and its assets.
func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	err := s.db.WithContext(ctx).
		Preload("Assets", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "Project not found")
	}
	return &p, nil
}

func (s *Store) projectSlugTaken(ctx context.Context, sectionID, slug, exceptID string) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("section_id = ? AND slug = ?", sectionID, slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

const projectConflict = "Project with this slug already exists in this section"

// CreateProject inserts a project into an existing section.
func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	if _, err := s.GetSection(ctx, p.SectionID); err != nil {
		return err
	}
	taken, err := s.projectSlugTaken(ctx, p.SectionID, p.Slug, "")
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Message: projectConflict}
	}
	if p.IsPublished && p.PublishedAt == nil {
		now := time.Now().UTC()
		p.PublishedAt = &now
	}
	return translate(s.db.WithContext(ctx).Create(p).Error, projectConflict)
}

// UpdateProject applies the non-nil fields of in. Publishing stamps
// published_at the first time.
func (s *Store) UpdateProject(ctx context.Context, id string, in model.ProjectUpdate) (*model.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	sectionID, slug := p.SectionID, p.Slug
	updates := map[string]any{}
	if in.SectionID != nil && *in.SectionID != p.SectionID {
		if _, err := s.GetSection(ctx, *in.SectionID); err != nil {
			return nil, err
		}
		sectionID = *in.SectionID
		updates["section_id"] = sectionID
	}
	if in.Slug != nil && *in.Slug != p.Slug {
		slug = *in.Slug
		updates["slug"] = slug
	}
	if sectionID != p.SectionID || slug != p.Slug {
		taken, err := s.projectSlugTaken(ctx, sectionID, slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Message: projectConflict, ResourceID: id}
		}
	}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Subtitle.Present {
		updates["subtitle"] = in.Subtitle.Value
	}
	if in.Description.Present {
		updates["description"] = in.Description.Value
	}
	if in.Content != nil {
		updates["content"] = in.Content
	}
	if in.ExtraData != nil {
		updates["extra_data"] = in.ExtraData
	}
	if in.ThumbnailURL.Present {
		if model.Deref(in.ThumbnailURL.Value) == "" {
			updates["thumbnail_url"] = nil
		} else {
			updates["thumbnail_url"] = *in.ThumbnailURL.Value
		}
	}
	if in.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](in.Tags)
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.IsFeatured != nil {
		updates["is_featured"] = *in.IsFeatured
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
		if *in.IsPublished && p.PublishedAt == nil {
			updates["published_at"] = time.Now().UTC()
		}
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, translate(err, projectConflict)
		}
	}
	return s.GetProject(ctx, id)
}

// SetPublished flips is_published.
func (s *Store) SetPublished(ctx context.Context, id string, published bool) (*model.Project, error) {
	return s.UpdateProject(ctx, id, model.ProjectUpdate{IsPublished: &published})
}

// DeleteProject removes a project and detaches its assets.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Project{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("Project not found")
		}
		return tx.Model(&model.Asset{}).Where("project_id = ?", id).Update("project_id", nil).Error
	})
}

// ReorderProjects sets display_order to each id's position in ids. Unknown
// ids are skipped.
func (s *Store) ReorderProjects(ctx context.Context, ids []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&model.Project{}).Where("id = ?", id).Update("display_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
