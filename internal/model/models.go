// Package model holds the database models and wire types shared by the API
// server and its clients.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Asset file types.
const (
	FileTypeImage    = "image"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeDocument = "document"
)

// Section is a top-level content bucket, e.g. "tech" or "dj".
type Section struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Slug         string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Description  *string   `gorm:"type:text" json:"description"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Projects []Project `gorm:"foreignKey:SectionID" json:"-"`
}

// Project is the universal content unit: a hero block, a bio, a single gig,
// a job entry and so on. The shape of Content depends on the slug.
type Project struct {
	ID           string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	SectionID    string                      `gorm:"type:varchar(36);not null;index;uniqueIndex:uq_project_section_slug,priority:1" json:"section_id"`
	Slug         string                      `gorm:"size:100;not null;uniqueIndex:uq_project_section_slug,priority:2" json:"slug"`
	Title        string                      `gorm:"size:200;not null" json:"title"`
	Subtitle     *string                     `gorm:"size:300" json:"subtitle"`
	Description  *string                     `gorm:"type:text" json:"description"`
	Content      datatypes.JSON              `json:"content"`
	ExtraData    datatypes.JSON              `json:"extra_data"`
	ThumbnailURL *string                     `gorm:"size:500" json:"thumbnail_url"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	DisplayOrder int                         `gorm:"not null;default:0" json:"display_order"`
	IsPublished  bool                        `gorm:"not null;default:false;index" json:"is_published"`
	IsFeatured   bool                        `gorm:"not null;default:false" json:"is_featured"`
	PublishedAt  *time.Time                  `json:"published_at"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`

	Assets []Asset `gorm:"foreignKey:ProjectID" json:"assets,omitempty"`
}

// Asset is an uploaded media file served from the asset base URL.
type Asset struct {
	ID               string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	ProjectID        *string        `gorm:"type:varchar(36);index" json:"project_id"`
	Filename         string         `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string         `gorm:"size:255;not null" json:"original_filename"`
	FileType         string         `gorm:"size:50;not null;index" json:"file_type"`
	MimeType         string         `gorm:"size:100;not null" json:"mime_type"`
	FileSize         int64          `gorm:"not null" json:"file_size"`
	StorageKey       string         `gorm:"size:500;not null" json:"storage_key"`
	CloudfrontURL    string         `gorm:"size:500;not null" json:"cloudfront_url"`
	ThumbnailURL     *string        `gorm:"size:500" json:"thumbnail_url"`
	Width            *int           `json:"width"`
	Height           *int           `json:"height"`
	Duration         *int           `json:"duration"`
	AltText          *string        `gorm:"size:255" json:"alt_text"`
	Caption          *string        `gorm:"type:text" json:"caption"`
	ExtraData        datatypes.JSON `json:"extra_data,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// User is an admin account.
type User struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Name         *string    `gorm:"size:100" json:"name"`
	Role         string     `gorm:"size:50;not null;default:admin" json:"role"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func (s *Section) BeforeCreate(*gorm.DB) error { newID(&s.ID); return nil }
func (p *Project) BeforeCreate(*gorm.DB) error { newID(&p.ID); return nil }
func (a *Asset) BeforeCreate(*gorm.DB) error { newID(&a.ID); return nil }
func (u *User) BeforeCreate(*gorm.DB) error { newID(&u.ID); return nil }

// All lists the models managed by migrations.
func All() []any {
	return []any{&User{}, &Section{}, &Project{}, &Asset{}}
}
