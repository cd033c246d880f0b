package store

import (
	"context"

	"github.com/aTrapDeer/utworld/internal/model"
)

// AssetQuery filters ListAssets.
type AssetQuery struct {
	ProjectID string
	FileType  string
	Skip      int
	Limit     int
}

// ListAssets returns matching assets, newest first.
func (s *Store) ListAssets(ctx context.Context, q AssetQuery) ([]model.Asset, int64, error) {
	db := s.db.WithContext(ctx).Model(&model.Asset{})
	if q.ProjectID != "" {
		db = db.Where("project_id = ?", q.ProjectID)
	}
	if q.FileType != "" {
		db = db.Where("file_type = ?", q.FileType)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	assets := []model.Asset{}
	err := db.Order("created_at DESC").
		Offset(max(q.Skip, 0)).Limit(clampLimit(q.Limit)).
		Find(&assets).Error
	if err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

// GetAsset loads an asset by id.
func (s *Store) GetAsset(ctx context.Context, id string) (*model.Asset, error) {
	var a model.Asset
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, "Asset not found")
	}
	return &a, nil
}

// CreateAsset records an uploaded file. A project_id must name a project.
func (s *Store) CreateAsset(ctx context.Context, a *model.Asset) error {
	if a.ProjectID != nil {
		if _, err := s.GetProject(ctx, *a.ProjectID); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Create(a).Error
}

// UpdateAsset applies the non-nil fields of in. An empty project_id detaches
// the asset.
func (s *Store) UpdateAsset(ctx context.Context, id string, in model.AssetUpdate) (*model.Asset, error) {
	if _, err := s.GetAsset(ctx, id); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.ProjectID != nil {
		if *in.ProjectID == "" {
			updates["project_id"] = nil
		} else {
			if _, err := s.GetProject(ctx, *in.ProjectID); err != nil {
				return nil, err
			}
			updates["project_id"] = *in.ProjectID
		}
	}
	if in.AltText != nil {
		updates["alt_text"] = *in.AltText
	}
	if in.Caption != nil {
		updates["caption"] = *in.Caption
	}
	if in.ExtraData != nil {
		updates["extra_data"] = in.ExtraData
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&model.Asset{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetAsset(ctx, id)
}

// DeleteAsset removes the asset row and returns it so the caller can remove
// the stored file. References held in project content are left alone.
func (s *Store) DeleteAsset(ctx context.Context, id string) (*model.Asset, error) {
	a, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}
