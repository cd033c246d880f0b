package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/aTrapDeer/utworld/internal/model"
)

// ListSections returns sections ordered by display_order. Inactive sections
// are skipped unless includeInactive is set.
func (s *Store) ListSections(ctx context.Context, includeInactive bool) ([]model.Section, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Section{})
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	sections := []model.Section{}
	if err := q.Order("display_order ASC, created_at ASC").Find(&sections).Error; err != nil {
		return nil, 0, err
	}
	return sections, total, nil
}

// GetSection loads a section by id.
func (s *Store) GetSection(ctx context.Context, id string) (*model.Section, error) {
	var sec model.Section
	if err := s.db.WithContext(ctx).First(&sec, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Section not found")
	}
	return &sec, nil
}

// GetSectionBySlug loads a section by slug.
func (s *Store) GetSectionBySlug(ctx context.Context, slug string) (*model.Section, error) {
	var sec model.Section
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&sec).Error; err != nil {
		return nil, translate(err, "Section not found")
	}
	return &sec, nil
}

func (s *Store) sectionSlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var count int64
	q := s.db.WithContext(ctx).Model(&model.Section{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// CreateSection inserts a section. A taken slug is a ConflictError.
func (s *Store) CreateSection(ctx context.Context, sec *model.Section) error {
	taken, err := s.sectionSlugTaken(ctx, sec.Slug, "")
	if err != nil {
		return err
	}
	if taken {
		return &ConflictError{Message: "Section with this slug already exists"}
	}
	return translate(s.db.WithContext(ctx).Create(sec).Error, "Section with this slug already exists")
}

// UpdateSection applies the non-nil fields of in.
func (s *Store) UpdateSection(ctx context.Context, id string, in model.SectionUpdate) (*model.Section, error) {
	sec, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Slug != nil && *in.Slug != sec.Slug {
		taken, err := s.sectionSlugTaken(ctx, *in.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConflictError{Message: "Section with this slug already exists", ResourceID: id}
		}
		updates["slug"] = *in.Slug
	}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description.Present {
		updates["description"] = in.Description.Value
	}
	if in.DisplayOrder != nil {
		updates["display_order"] = *in.DisplayOrder
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&model.Section{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, translate(err, "Section with this slug already exists")
		}
	}
	return s.GetSection(ctx, id)
}

// DeleteSection removes a section and its projects. Assets attached to those
// projects are detached, not deleted.
func (s *Store) DeleteSection(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sec model.Section
		if err := tx.First(&sec, "id = ?", id).Error; err != nil {
			return translate(err, "Section not found")
		}
		projectIDs := tx.Model(&model.Project{}).Select("id").Where("section_id = ?", id)
		if err := tx.Model(&model.Asset{}).Where("project_id IN (?)", projectIDs).
			Update("project_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", id).Delete(&model.Project{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sec).Error
	})
}
