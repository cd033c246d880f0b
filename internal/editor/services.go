package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aTrapDeer/utworld/internal/apiclient"
	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/sections"
)

// API is the part of *apiclient.Client the editors use.
type API interface {
	GetProjectsBySectionSlug(ctx context.Context, slug string, publishedOnly bool) (*model.ProjectList, error)
	FindProjectBySlugPattern(ctx context.Context, sectionSlug string, pattern apiclient.SlugMatcher) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectCreate) (*model.Project, error)
	UpdateProject(ctx context.Context, id string, in model.ProjectUpdate) (*model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	PublishProject(ctx context.Context, id string) (*model.Project, error)
	UnpublishProject(ctx context.Context, id string) (*model.Project, error)
	GetAssets(ctx context.Context, projectID, fileType string) (*model.AssetList, error)
}

// SectionIDs resolves section slugs to ids. *sections.Registry satisfies it.
type SectionIDs interface {
	RequireSectionID(slug string) (string, error)
}

var (
	ErrBlockNotFound = errors.New("block not found")
	ErrUnknownBlock  = errors.New("unknown block")
)

// Gigs manages gig records in the dj section.
type Gigs struct {
	api      API
	sections SectionIDs
	now      func() time.Time
}

func NewGigs(api API, ids SectionIDs) *Gigs {
	return &Gigs{api: api, sections: ids, now: time.Now}
}

// List returns every gig, drafts included, with duplicates collapsed.
func (g *Gigs) List(ctx context.Context) ([]model.Project, error) {
	list, err := g.api.GetProjectsBySectionSlug(ctx, sections.DJ, false)
	if err != nil {
		return nil, err
	}
	return DedupGigs(GigsOf(list.Items)), nil
}

func (g *Gigs) Get(ctx context.Context, id string) (GigForm, error) {
	p, err := g.api.GetProject(ctx, id)
	if err != nil {
		return GigForm{}, err
	}
	return GigFromProject(*p), nil
}

func (g *Gigs) Create(ctx context.Context, f GigForm) (*model.Project, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	sectionID, err := g.sections.RequireSectionID(sections.DJ)
	if err != nil {
		return nil, err
	}
	return g.api.CreateProject(ctx, f.Project(sectionID, true, g.now()))
}

func (g *Gigs) Update(ctx context.Context, id string, f GigForm) (*model.Project, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	sectionID, err := g.sections.RequireSectionID(sections.DJ)
	if err != nil {
		return nil, err
	}
	return g.api.UpdateProject(ctx, id, f.Update(sectionID))
}

func (g *Gigs) Delete(ctx context.Context, id string) error {
	return g.api.DeleteProject(ctx, id)
}

// TogglePublish flips the published flag of p.
func (g *Gigs) TogglePublish(ctx context.Context, p model.Project) (*model.Project, error) {
	return togglePublish(ctx, g.api, p)
}

func togglePublish(ctx context.Context, api API, p model.Project) (*model.Project, error) {
	if p.IsPublished {
		return api.UnpublishProject(ctx, p.ID)
	}
	return api.PublishProject(ctx, p.ID)
}

func findBlock(ctx context.Context, api API, sectionSlug, slug string) (*model.Project, error) {
	p, err := api.FindProjectBySlugPattern(ctx, sectionSlug, apiclient.ExactSlug(slug))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%s/%s: %w", sectionSlug, slug, ErrBlockNotFound)
	}
	return p, nil
}

func saveContent(ctx context.Context, api API, sectionSlug, slug string, doc model.Doc) (*model.Project, error) {
	p, err := findBlock(ctx, api, sectionSlug, slug)
	if err != nil {
		return nil, err
	}
	return api.UpdateProject(ctx, p.ID, model.ProjectUpdate{Content: doc.JSON()})
}

// PressKitEditor loads and saves the dj press-kit block.
type PressKitEditor struct{ api API }

func NewPressKitEditor(api API) *PressKitEditor { return &PressKitEditor{api: api} }

func (e *PressKitEditor) Load(ctx context.Context) (PressKit, error) {
	p, err := findBlock(ctx, e.api, sections.DJ, content.SlugPressKit)
	if err != nil {
		return PressKit{}, err
	}
	return LoadPressKit(*p), nil
}

func (e *PressKitEditor) Save(ctx context.Context, pk PressKit) (*model.Project, error) {
	return saveContent(ctx, e.api, sections.DJ, content.SlugPressKit, pk.Content())
}

// SetsEditor loads and saves the dj sets block.
type SetsEditor struct{ api API }

func NewSetsEditor(api API) *SetsEditor { return &SetsEditor{api: api} }

func (e *SetsEditor) Load(ctx context.Context) (Sets, error) {
	p, err := findBlock(ctx, e.api, sections.DJ, content.SlugSets)
	if err != nil {
		return Sets{}, err
	}
	return LoadSets(*p), nil
}

func (e *SetsEditor) Save(ctx context.Context, s Sets) (*model.Project, error) {
	return saveContent(ctx, e.api, sections.DJ, content.SlugSets, s.Content())
}

// singletonSlugs lists the fixed-slug blocks editable per section.
var singletonSlugs = map[string][]string{
	sections.Tech: {
		content.SlugHero, content.SlugAbout, content.SlugSkills, content.SlugHighlights,
		content.SlugCertifications, content.SlugContact, content.SlugGithubProjects,
	},
	sections.DJ: {content.SlugHero, content.SlugArtist, content.SlugContact},
}

// SingletonSlugs returns the editable block slugs of a section.
func SingletonSlugs(sectionSlug string) []string {
	return append([]string{}, singletonSlugs[sectionSlug]...)
}

// Block is a singleton's editable fields.
type Block struct {
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Content      model.Doc `json:"content"`
}

// BlockFromProject maps a stored singleton onto Block.
func BlockFromProject(p model.Project) Block {
	return Block{
		Title:        p.Title,
		Subtitle:     model.Deref(p.Subtitle),
		Description:  model.Deref(p.Description),
		ThumbnailURL: model.Deref(p.ThumbnailURL),
		Content:      p.ContentDoc(),
	}
}

// Update builds the payload for b. Empty title and thumbnail leave the stored
// values alone.
func (b Block) Update() model.ProjectUpdate {
	u := model.ProjectUpdate{
		Subtitle:    model.Set(b.Subtitle),
		Description: model.Set(b.Description),
	}
	if b.Title != "" {
		u.Title = model.Ptr(b.Title)
	}
	if b.ThumbnailURL != "" {
		u.ThumbnailURL = model.Set(b.ThumbnailURL)
	}
	if b.Content != nil {
		u.Content = b.Content.JSON()
	}
	return u
}

// Singletons edits the fixed-slug blocks: hero, about, skills and so on.
type Singletons struct{ api API }

func NewSingletons(api API) *Singletons { return &Singletons{api: api} }

func checkSingleton(sectionSlug, slug string) error {
	for _, s := range singletonSlugs[sectionSlug] {
		if s == slug {
			return nil
		}
	}
	return fmt.Errorf("%s/%s: %w", sectionSlug, slug, ErrUnknownBlock)
}

func (s *Singletons) Load(ctx context.Context, sectionSlug, slug string) (Block, error) {
	if err := checkSingleton(sectionSlug, slug); err != nil {
		return Block{}, err
	}
	p, err := findBlock(ctx, s.api, sectionSlug, slug)
	if err != nil {
		return Block{}, err
	}
	return BlockFromProject(*p), nil
}

func (s *Singletons) Save(ctx context.Context, sectionSlug, slug string, b Block) (*model.Project, error) {
	if err := checkSingleton(sectionSlug, slug); err != nil {
		return nil, err
	}
	p, err := findBlock(ctx, s.api, sectionSlug, slug)
	if err != nil {
		return nil, err
	}
	return s.api.UpdateProject(ctx, p.ID, b.Update())
}

// Kind is a repeatable entry type in the tech section.
type Kind struct {
	Type       string
	SlugPrefix string
	Title      string
	Subtitle   string
	Offset     int
	Content    func() model.Doc
	Published  bool
}

var (
	Education = Kind{
		Type:       model.TypeEducation,
		SlugPrefix: "education-",
		Title:      "New Institution",
		Subtitle:   "Degree",
		Offset:     20,
		Published:  true,
		Content: func() model.Doc {
			return model.Doc{
				"location": "", "dates": "", "status": "Completed",
				"modules": []any{}, "projects": []any{}, "leadership": []any{},
			}
		},
	}
	Experience = Kind{
		Type:       model.TypeExperience,
		SlugPrefix: "experience-",
		Title:      "Company Name",
		Subtitle:   "Role",
		Offset:     30,
		Published:  true,
		Content: func() model.Doc {
			return model.Doc{
				"location": "", "dates": "", "duration": "",
				"responsibilities": []any{}, "achievements": []any{},
			}
		},
	}
	FeaturedProject = Kind{
		Type:       model.TypeFeaturedProject,
		SlugPrefix: "project-",
		Offset:     0,
		Content: func() model.Doc {
			return model.Doc{"github": "", "demo": "", "features": []any{}}
		},
	}
)

// KindByName maps a CLI-facing name to a Kind.
func KindByName(name string) (Kind, bool) {
	switch strings.ToLower(name) {
	case "education":
		return Education, true
	case "experience":
		return Experience, true
	case "featured", "project", "projects", "featured_project":
		return FeaturedProject, true
	}
	return Kind{}, false
}

func (k Kind) matches(p model.Project) bool {
	t := p.Type()
	if k.Type == model.TypeFeaturedProject {
		return t == model.TypeFeaturedProject || t == model.TypeFeaturedLegacy
	}
	return t == k.Type
}

var ErrProjectTitleRequired = errors.New("Project title is required")

// FeaturedForm is the editable view of a featured project.
type FeaturedForm struct {
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
	Github      string   `json:"github"`
	Demo        string   `json:"demo"`
	Features    []string `json:"features"`
	IsPublished bool     `json:"is_published"`
}

func FeaturedFromProject(p model.Project) FeaturedForm {
	c := p.ContentDoc()
	return FeaturedForm{
		Title:       p.Title,
		Subtitle:    model.Deref(p.Subtitle),
		Description: model.Deref(p.Description),
		Image:       model.Deref(p.ThumbnailURL),
		Tags:        p.TagList(),
		Github:      c.String("github"),
		Demo:        c.String("demo"),
		Features:    c.Strings("features"),
		IsPublished: p.IsPublished,
	}
}

func (f FeaturedForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrProjectTitleRequired
	}
	return nil
}

func (f FeaturedForm) contentDoc() model.Doc {
	features := f.Features
	if features == nil {
		features = []string{}
	}
	return model.Doc{"github": f.Github, "demo": f.Demo, "features": features}
}

// Collections manages the repeatable tech entries: education, experience
// and featured projects.
type Collections struct {
	api      API
	sections SectionIDs
	now      func() time.Time
}

func NewCollections(api API, ids SectionIDs) *Collections {
	return &Collections{api: api, sections: ids, now: time.Now}
}

// List returns the entries of kind k ordered by display_order.
func (c *Collections) List(ctx context.Context, k Kind) ([]model.Project, error) {
	list, err := c.api.GetProjectsBySectionSlug(ctx, sections.Tech, false)
	if err != nil {
		return nil, err
	}
	out := []model.Project{}
	for _, p := range list.Items {
		if k.matches(p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

// Add creates a placeholder entry of kind k at the end of the list.
func (c *Collections) Add(ctx context.Context, k Kind) (*model.Project, error) {
	sectionID, err := c.sections.RequireSectionID(sections.Tech)
	if err != nil {
		return nil, err
	}
	existing, err := c.List(ctx, k)
	if err != nil {
		return nil, err
	}
	return c.api.CreateProject(ctx, model.ProjectCreate{
		SectionID:    sectionID,
		Slug:         GenerateSlug(k.SlugPrefix, c.now()),
		Title:        k.Title,
		Subtitle:     model.Ptr(k.Subtitle),
		Description:  model.Ptr(""),
		Content:      k.Content().JSON(),
		ExtraData:    model.Doc{"type": k.Type}.JSON(),
		DisplayOrder: len(existing) + k.Offset,
		IsPublished:  k.Published,
	})
}

// Save writes an entry's text fields and content.
func (c *Collections) Save(ctx context.Context, id string, b Block) (*model.Project, error) {
	u := b.Update()
	u.ThumbnailURL = model.OptionalString{}
	return c.api.UpdateProject(ctx, id, u)
}

func (c *Collections) Delete(ctx context.Context, id string) error {
	return c.api.DeleteProject(ctx, id)
}

// SaveFeatured creates a featured project when id is empty and updates it
// otherwise.
func (c *Collections) SaveFeatured(ctx context.Context, id string, f FeaturedForm) (*model.Project, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	sectionID, err := c.sections.RequireSectionID(sections.Tech)
	if err != nil {
		return nil, err
	}
	var thumb *string
	if f.Image != "" {
		thumb = model.Ptr(f.Image)
	}
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}
	extra := model.Doc{"type": model.TypeFeaturedProject}.JSON()
	if id == "" {
		return c.api.CreateProject(ctx, model.ProjectCreate{
			SectionID:    sectionID,
			Slug:         GenerateSlug(FeaturedProject.SlugPrefix, c.now()),
			Title:        f.Title,
			Subtitle:     model.Ptr(f.Subtitle),
			Description:  model.Ptr(f.Description),
			Content:      f.contentDoc().JSON(),
			ExtraData:    extra,
			ThumbnailURL: thumb,
			Tags:         tags,
			IsPublished:  f.IsPublished,
		})
	}
	return c.api.UpdateProject(ctx, id, model.ProjectUpdate{
		SectionID:    model.Ptr(sectionID),
		Title:        model.Ptr(f.Title),
		Subtitle:     model.Set(f.Subtitle),
		Description:  model.Set(f.Description),
		Content:      f.contentDoc().JSON(),
		ExtraData:    extra,
		ThumbnailURL: model.SetPtr(thumb),
		Tags:         tags,
		IsPublished:  model.Ptr(f.IsPublished),
	})
}

// TogglePublish flips the published flag of p.
func (c *Collections) TogglePublish(ctx context.Context, p model.Project) (*model.Project, error) {
	return togglePublish(ctx, c.api, p)
}
