package content

import (
	"sort"
	"strings"
	"time"

	"github.com/aTrapDeer/utworld/internal/model"
)

// Fixed slugs of singleton blocks.
const (
	SlugHero           = "hero"
	SlugAbout          = "about"
	SlugArtist         = "artist"
	SlugSkills         = "skills"
	SlugHighlights     = "highlights"
	SlugCertifications = "certifications"
	SlugContact        = "contact"
	SlugPressKit       = "press-kit"
	SlugSets           = "sets"
	SlugGithubProjects = "github-projects"
)

// GigSlugPrefix marks gig records.
const GigSlugPrefix = "gig-"

// listOr returns d[key] when it is an array, else an empty list.
func listOr(d model.Doc, key string) []any {
	return append([]any{}, d.List(key)...)
}

// mapOr returns d[key] when it is an object, else an empty map.
func mapOr(d model.Doc, key string) map[string]any {
	return map[string]any(d.MapOrEmpty(key))
}

// findSlug returns the first project with slug, or nil.
func findSlug(projects []model.PublicProject, slug string) *model.PublicProject {
	for i := range projects {
		if projects[i].Slug == slug {
			return &projects[i]
		}
	}
	return nil
}

func ofType(projects []model.PublicProject, types ...string) []model.PublicProject {
	out := []model.PublicProject{}
	for _, p := range projects {
		t := model.ParseDoc(p.ExtraData).String("type")
		for _, want := range types {
			if t == want {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func byDisplayOrder(projects []model.PublicProject) []model.PublicProject {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].DisplayOrder < projects[j].DisplayOrder
	})
	return projects
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
}

// ParseDate parses the date formats gigs have been stored with. ok is false
// when none matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GigTime is the gig date in d. Missing or unparseable dates sort as the
// Unix epoch.
func GigTime(d model.Doc) time.Time {
	if t, ok := ParseDate(d.String("date")); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}

// SortGigsNewestFirst orders projects by content.date, newest first.
func SortGigsNewestFirst(projects []model.PublicProject) {
	sort.SliceStable(projects, func(i, j int) bool {
		return GigTime(model.ParseDoc(projects[i].Content)).After(GigTime(model.ParseDoc(projects[j].Content)))
	})
}

func gigView(p model.PublicProject) Gig {
	c := model.ParseDoc(p.Content)
	x := model.ParseDoc(p.ExtraData)
	genre := c.Strings("genre")
	inGenre := make(map[string]bool, len(genre))
	for _, g := range genre {
		inGenre[g] = true
	}
	tags := []string{}
	for _, t := range p.Tags {
		if !inGenre[t] {
			tags = append(tags, t)
		}
	}
	return Gig{
		ID:          p.Slug,
		Event:       p.Title,
		Collective:  x.StringPtr("collective"),
		Date:        c.StringPtr("date"),
		Location:    x.StringPtr("location"),
		Time:        c.StringPtr("time"),
		Genre:       genre,
		Tags:        tags,
		Description: p.Description,
		Image:       stripPtr(p.ThumbnailURL, ""),
		Clips:       listOr(c, "clips"),
	}
}

// firstString returns the first key of d holding a string.
func firstString(d model.Doc, keys ...string) *string {
	for _, k := range keys {
		if s := d.StringPtr(k); s != nil {
			return s
		}
	}
	return nil
}

// TransformDJContent builds the DJ view model from the "dj" section. It
// returns nil when the section or its project list is missing.
func TransformDJContent(section *model.SectionContent) *DJData {
	if section == nil || section.Projects == nil {
		return nil
	}
	projects := section.Projects
	out := &DJData{Gigs: []Gig{}}

	if p := findSlug(projects, SlugHero); p != nil {
		c := model.ParseDoc(p.Content)
		out.Hero = &DJHero{
			Name:        p.Title,
			Badge:       p.Subtitle,
			Headline:    p.Description,
			Subheadline: c.StringPtr("subheadline"),
			Genres:      c.Value("genres"),
			HeroImage:   stripPtr(p.ThumbnailURL, ""),
			CTAs:        listOr(c, "ctas"),
		}
	}
	if p := findSlug(projects, SlugArtist); p != nil {
		c := model.ParseDoc(p.Content)
		out.Artist = &Artist{
			Title:       p.Subtitle,
			Bio:         p.Description,
			ArtistImage: stripPtr(p.ThumbnailURL, ""),
			Highlights:  listOr(c, "highlights"),
		}
	}

	gigs := []model.PublicProject{}
	for _, p := range projects {
		if strings.HasPrefix(p.Slug, GigSlugPrefix) {
			gigs = append(gigs, p)
		}
	}
	SortGigsNewestFirst(gigs)
	for _, p := range gigs {
		out.Gigs = append(out.Gigs, gigView(p))
	}

	if p := findSlug(projects, SlugSets); p != nil {
		out.Sets = &SetsView{
			Title:       p.Title,
			Description: p.Description,
			Platforms:   listOr(model.ParseDoc(p.Content), "platforms"),
		}
	}
	if p := findSlug(projects, SlugPressKit); p != nil {
		c := model.ParseDoc(p.Content)
		downloads := listOr(c, "downloads")
		if len(downloads) == 0 {
			downloads = listOr(c, "downloadableAssets")
		}
		out.PressKit = &PressKitView{
			Title:          p.Title,
			Description:    p.Description,
			BioShort:       firstString(c, "bio_short", "shortBio"),
			BioLong:        firstString(c, "bio_long", "bio"),
			TechnicalRider: firstString(c, "technical_rider", "technicalRider"),
			Downloads:      downloads,
			Gallery:        ParseGallery(c.Value("gallery")).Normalize(),
		}
	}
	if p := findSlug(projects, SlugContact); p != nil {
		c := model.ParseDoc(p.Content)
		out.Contact = &DJContact{
			Email:              c.StringPtr("email"),
			BookingTitle:       p.Subtitle,
			BookingDescription: p.Description,
			Social:             mapOr(c, "social"),
		}
	}
	return out
}

// TransformProfessionalContent builds the tech view model from the "tech"
// section, or nil when the section or its project list is missing.
func TransformProfessionalContent(section *model.SectionContent) *ProfessionalData {
	if section == nil || section.Projects == nil {
		return nil
	}
	projects := section.Projects
	out := &ProfessionalData{
		Highlights:     []any{},
		Education:      []Education{},
		Experience:     []Experience{},
		Skills:         Skills{Categories: []any{}},
		Certifications: []any{},
		Contact:        map[string]any{},
	}

	if p := findSlug(projects, SlugHero); p != nil {
		c := model.ParseDoc(p.Content)
		out.Hero = &ProHero{
			Name:     p.Title,
			Title:    p.Subtitle,
			Headline: p.Description,
			Subtext:  c.StringPtr("subtext"),
			Headshot: stripPtr(p.ThumbnailURL, ""),
			CTAs:     listOr(c, "ctas"),
		}
	}
	if p := findSlug(projects, SlugHighlights); p != nil {
		out.Highlights = listOr(model.ParseDoc(p.Content), "items")
	}
	if p := findSlug(projects, SlugAbout); p != nil {
		c := model.ParseDoc(p.Content)
		paragraphs := []string{}
		if c.Has("paragraphs") {
			paragraphs = c.Strings("paragraphs")
		} else if p.Description != nil {
			paragraphs = []string{*p.Description}
		}
		out.About = &About{Title: p.Title, Paragraphs: paragraphs}
	}
	for _, p := range byDisplayOrder(ofType(projects, model.TypeEducation)) {
		c := model.ParseDoc(p.Content)
		out.Education = append(out.Education, Education{
			Institution: p.Title,
			Degree:      p.Subtitle,
			Location:    c.StringPtr("location"),
			Dates:       c.StringPtr("dates"),
			Status:      c.StringPtr("status"),
			Description: p.Description,
			Modules:     listOr(c, "modules"),
			Projects:    listOr(c, "projects"),
			Thesis:      c.Value("thesis"),
			Leadership:  listOr(c, "leadership"),
		})
	}
	for _, p := range byDisplayOrder(ofType(projects, model.TypeExperience)) {
		c := model.ParseDoc(p.Content)
		out.Experience = append(out.Experience, Experience{
			Company:          p.Title,
			Role:             p.Subtitle,
			Location:         c.StringPtr("location"),
			Dates:            c.StringPtr("dates"),
			Duration:         c.StringPtr("duration"),
			Responsibilities: listOr(c, "responsibilities"),
			Achievements:     listOr(c, "achievements"),
		})
	}
	if p := findSlug(projects, SlugSkills); p != nil {
		out.Skills.Categories = listOr(model.ParseDoc(p.Content), "categories")
	}
	if p := findSlug(projects, SlugCertifications); p != nil {
		out.Certifications = listOr(model.ParseDoc(p.Content), "items")
	}
	if p := findSlug(projects, SlugContact); p != nil {
		if c := model.ParseDoc(p.Content); len(c) > 0 {
			out.Contact = map[string]any(c)
		}
	}
	return out
}

// TransformProjectsContent builds the project showcase from the "tech"
// section, or nil when the section or its project list is missing. Both
// featured_project and the older "featured" type count as featured.
func TransformProjectsContent(section *model.SectionContent) *ProjectsData {
	if section == nil || section.Projects == nil {
		return nil
	}
	out := &ProjectsData{
		Featured:       []FeaturedProject{},
		GithubProjects: map[string][]GithubProject{},
	}
	for _, p := range byDisplayOrder(ofType(section.Projects, model.TypeFeaturedProject, model.TypeFeaturedLegacy)) {
		c := model.ParseDoc(p.Content)
		x := model.ParseDoc(p.ExtraData)
		category := x.StringPtr("category")
		if category == nil || *category == "" {
			category = p.Subtitle
		}
		out.Featured = append(out.Featured, FeaturedProject{
			Title:       p.Title,
			Category:    category,
			Timeline:    c.StringPtr("timeline"),
			Description: p.Description,
			Problem:     c.StringPtr("problem"),
			Approach:    c.StringPtr("approach"),
			Stack:       listOr(c, "stack"),
			Outcomes:    listOr(c, "outcomes"),
			Links:       mapOr(c, "links"),
			DemoImage:   p.ThumbnailURL,
		})
	}
	for _, p := range ofType(section.Projects, model.TypeGithubProject) {
		c := model.ParseDoc(p.Content)
		cat := model.ParseDoc(p.ExtraData).String("category")
		if cat == "" {
			cat = "other"
		}
		out.GithubProjects[cat] = append(out.GithubProjects[cat], GithubProject{
			Name:        p.Title,
			Description: p.Description,
			Stack:       listOr(c, "stack"),
			Repo:        c.StringPtr("repo"),
			Demo:        c.StringPtr("demo"),
		})
	}
	return out
}
