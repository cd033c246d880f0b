package model

import (
	"time"

	"gorm.io/datatypes"
)

// Project types carried in extra_data.type.
const (
	TypeGig             = "gig"
	TypeEducation       = "education"
	TypeExperience      = "experience"
	TypeFeaturedProject = "featured_project"
	TypeFeaturedLegacy  = "featured"
	TypeGithubProject   = "github_project"
)

// ContentDoc decodes the project's content column.
func (p Project) ContentDoc() Doc { return ParseDoc(p.Content) }

// ExtraDoc decodes the project's extra_data column.
func (p Project) ExtraDoc() Doc { return ParseDoc(p.ExtraData) }

// Type returns extra_data.type, or "".
func (p Project) Type() string { return p.ExtraDoc().String("type") }

// TagList returns the tags as a plain slice, never nil.
func (p Project) TagList() []string {
	if p.Tags == nil {
		return []string{}
	}
	return append([]string{}, p.Tags...)
}

// SectionList is the envelope returned by GET /sections.
type SectionList struct {
	Items []Section `json:"items"`
	Total int64     `json:"total"`
}

// ProjectList is the envelope returned by GET /projects.
type ProjectList struct {
	Items []Project `json:"items"`
	Total int64     `json:"total"`
}

// AssetList is the envelope returned by GET /assets.
type AssetList struct {
	Items []Asset `json:"items"`
	Total int64   `json:"total"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// SectionCreate is the body of POST /sections.
type SectionCreate struct {
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	DisplayOrder int     `json:"display_order"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// SectionUpdate is the partial body of PUT /sections/{id}.
type SectionUpdate struct {
	Slug         *string        `json:"slug,omitempty"`
	Title        *string        `json:"title,omitempty"`
	Description  OptionalString `json:"description,omitzero"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	IsActive     *bool          `json:"is_active,omitempty"`
}

// ProjectCreate is the body of POST /projects.
type ProjectCreate struct {
	SectionID    string         `json:"section_id"`
	Slug         string         `json:"slug"`
	Title        string         `json:"title"`
	Subtitle     *string        `json:"subtitle,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Content      datatypes.JSON `json:"content,omitempty"`
	ExtraData    datatypes.JSON `json:"extra_data,omitempty"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	Tags         []string       `json:"tags,omitempty"`
	DisplayOrder int            `json:"display_order"`
	IsPublished  bool           `json:"is_published"`
	IsFeatured   bool           `json:"is_featured"`
}

// ProjectUpdate is the partial body of PUT /projects/{id}. Nil and absent
// fields are left untouched.
type ProjectUpdate struct {
	SectionID    *string        `json:"section_id,omitempty"`
	Slug         *string        `json:"slug,omitempty"`
	Title        *string        `json:"title,omitempty"`
	Subtitle     OptionalString `json:"subtitle,omitzero"`
	Description  OptionalString `json:"description,omitzero"`
	Content      datatypes.JSON `json:"content,omitzero"`
	ExtraData    datatypes.JSON `json:"extra_data,omitzero"`
	ThumbnailURL OptionalString `json:"thumbnail_url,omitzero"`
	Tags         []string       `json:"tags,omitzero"`
	DisplayOrder *int           `json:"display_order,omitempty"`
	IsPublished  *bool          `json:"is_published,omitempty"`
	IsFeatured   *bool          `json:"is_featured,omitempty"`
}

// ReorderRequest is the body of POST /projects/reorder.
type ReorderRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

// AssetUpdate is the partial body of PUT /assets/{id}.
type AssetUpdate struct {
	ProjectID *string        `json:"project_id,omitempty"`
	AltText   *string        `json:"alt_text,omitempty"`
	Caption   *string        `json:"caption,omitempty"`
	ExtraData datatypes.JSON `json:"extra_data,omitempty"`
}

// SectionContent is one section of the public aggregate served by
// GET /content.
type SectionContent struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug,omitempty"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Projects    []PublicProject `json:"projects"`
}

// Content is the public aggregate keyed by section slug.
type Content map[string]*SectionContent

// PublicProject is the unauthenticated projection of a published Project.
type PublicProject struct {
	ID           string         `json:"id"`
	Slug         string         `json:"slug"`
	Title        string         `json:"title"`
	Subtitle     *string        `json:"subtitle"`
	Description  *string        `json:"description"`
	Content      datatypes.JSON `json:"content"`
	ThumbnailURL *string        `json:"thumbnail_url"`
	IsFeatured   bool           `json:"is_featured"`
	Tags         []string       `json:"tags"`
	ExtraData    datatypes.JSON `json:"extra_data"`
	DisplayOrder int            `json:"display_order"`
	PublishedAt  *time.Time     `json:"published_at"`
	Assets       []PublicAsset  `json:"assets"`
}

// PublicAsset is the unauthenticated projection of an Asset.
type PublicAsset struct {
	ID            string  `json:"id"`
	Filename      string  `json:"filename"`
	FileType      string  `json:"file_type"`
	CloudfrontURL string  `json:"cloudfront_url"`
	ThumbnailURL  *string `json:"thumbnail_url"`
	Width         *int    `json:"width"`
	Height        *int    `json:"height"`
	Duration      *int    `json:"duration"`
	AltText       *string `json:"alt_text"`
	Caption       *string `json:"caption"`
}

// Public projects a stored project for the public content endpoint.
func (p Project) Public() PublicProject {
	assets := make([]PublicAsset, 0, len(p.Assets))
	for _, a := range p.Assets {
		assets = append(assets, PublicAsset{
			ID:            a.ID,
			Filename:      a.Filename,
			FileType:      a.FileType,
			CloudfrontURL: a.CloudfrontURL,
			ThumbnailURL:  a.ThumbnailURL,
			Width:         a.Width,
			Height:        a.Height,
			Duration:      a.Duration,
			AltText:       a.AltText,
			Caption:       a.Caption,
		})
	}
	return PublicProject{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Subtitle:     p.Subtitle,
		Description:  p.Description,
		Content:      p.Content,
		ThumbnailURL: p.ThumbnailURL,
		IsFeatured:   p.IsFeatured,
		Tags:         p.TagList(),
		ExtraData:    p.ExtraData,
		DisplayOrder: p.DisplayOrder,
		PublishedAt:  p.PublishedAt,
		Assets:       assets,
	}
}

// Project converts the public projection back into a Project so the same
// transforms can run on either source.
func (pp PublicProject) Project() Project {
	return Project{
		ID:           pp.ID,
		Slug:         pp.Slug,
		Title:        pp.Title,
		Subtitle:     pp.Subtitle,
		Description:  pp.Description,
		Content:      pp.Content,
		ExtraData:    pp.ExtraData,
		ThumbnailURL: pp.ThumbnailURL,
		Tags:         pp.Tags,
		DisplayOrder: pp.DisplayOrder,
		IsPublished:  true,
		IsFeatured:   pp.IsFeatured,
		PublishedAt:  pp.PublishedAt,
	}
}

// ProjectList returns the section's projects as Project values.
func (sc *SectionContent) ProjectList() []Project {
	if sc == nil {
		return nil
	}
	out := make([]Project, 0, len(sc.Projects))
	for _, pp := range sc.Projects {
		out = append(out, pp.Project())
	}
	return out
}
