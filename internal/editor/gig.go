// Package editor turns admin form input into API payloads and back, and
// wraps the API client with the per-screen workflows of the admin console.
package editor

import (
	"errors"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/model"
)

var ErrEventRequired = errors.New("Event name is required")

// GigForm is the editable view of a gig record.
type GigForm struct {
	Event       string   `json:"event"`
	Collective  string   `json:"collective"`
	Location    string   `json:"location"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Genre       []string `json:"genre"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Clips       []any    `json:"clips"`
	IsPublished bool     `json:"is_published"`
}

// GigFromProject maps a stored project onto the form.
func GigFromProject(p model.Project) GigForm {
	c := p.ContentDoc()
	x := p.ExtraDoc()
	return GigForm{
		Event:       p.Title,
		Collective:  x.String("collective"),
		Location:    x.String("location"),
		Date:        c.String("date"),
		Time:        c.String("time"),
		Genre:       c.Strings("genre"),
		Tags:        p.TagList(),
		Description: model.Deref(p.Description),
		Image:       model.Deref(p.ThumbnailURL),
		Clips:       c.List("clips"),
		IsPublished: p.IsPublished,
	}
}

func (f GigForm) Validate() error {
	if strings.TrimSpace(f.Event) == "" {
		return ErrEventRequired
	}
	return nil
}

// Subtitle joins collective and location the way the site displays them.
func (f GigForm) Subtitle() string {
	return f.Collective + " · " + f.Location
}

func (f GigForm) contentJSON() model.Doc {
	genre := f.Genre
	if genre == nil {
		genre = []string{}
	}
	clips := f.Clips
	if clips == nil {
		clips = []any{}
	}
	return model.Doc{"date": f.Date, "time": f.Time, "genre": genre, "clips": clips}
}

func (f GigForm) extraJSON() model.Doc {
	return model.Doc{"type": model.TypeGig, "collective": f.Collective, "location": f.Location}
}

func (f GigForm) thumbnail() *string {
	if f.Image == "" {
		return nil
	}
	return model.Ptr(f.Image)
}

func (f GigForm) tags() []string {
	if f.Tags == nil {
		return []string{}
	}
	return f.Tags
}

// Project builds the create payload. The slug is generated from now only
// when isNew; callers updating an existing gig use Update instead.
func (f GigForm) Project(sectionID string, isNew bool, now time.Time) model.ProjectCreate {
	pc := model.ProjectCreate{
		SectionID:    sectionID,
		Title:        f.Event,
		Subtitle:     model.Ptr(f.Subtitle()),
		Description:  model.Ptr(f.Description),
		Content:      f.contentJSON().JSON(),
		ExtraData:    f.extraJSON().JSON(),
		ThumbnailURL: f.thumbnail(),
		Tags:         f.tags(),
		IsPublished:  f.IsPublished,
	}
	if isNew {
		pc.Slug = GenerateSlug(content.GigSlugPrefix, now)
	}
	return pc
}

// Update builds the payload for an existing gig. The slug is left alone.
func (f GigForm) Update(sectionID string) model.ProjectUpdate {
	return model.ProjectUpdate{
		SectionID:    model.Ptr(sectionID),
		Title:        model.Ptr(f.Event),
		Subtitle:     model.Set(f.Subtitle()),
		Description:  model.Set(f.Description),
		Content:      f.contentJSON().JSON(),
		ExtraData:    f.extraJSON().JSON(),
		ThumbnailURL: model.SetPtr(f.thumbnail()),
		Tags:         f.tags(),
		IsPublished:  model.Ptr(f.IsPublished),
	}
}

// GenerateSlug returns prefix followed by now in unix milliseconds.
func GenerateSlug(prefix string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsGig reports whether p is a gig record.
func IsGig(p model.Project) bool {
	return p.Type() == model.TypeGig || strings.HasPrefix(p.Slug, content.GigSlugPrefix)
}

// GigsOf filters list down to gig records, keeping order.
func GigsOf(list []model.Project) []model.Project {
	out := make([]model.Project, 0, len(list))
	for _, p := range list {
		if IsGig(p) {
			out = append(out, p)
		}
	}
	return out
}

func gigKey(p model.Project) string {
	return p.Title + "__" + p.ContentDoc().String("date")
}

func clipCount(p model.Project) int {
	return len(p.ContentDoc().List("clips"))
}

// DedupGigs collapses records sharing title and date. The first-seen
// position is kept; a later duplicate replaces it only when it carries
// strictly more clips.
func DedupGigs(list []model.Project) []model.Project {
	seen := make(map[string]int, len(list))
	out := make([]model.Project, 0, len(list))
	for _, p := range list {
		key := gigKey(p)
		if i, ok := seen[key]; ok {
			if clipCount(p) > clipCount(out[i]) {
				out[i] = p
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, p)
	}
	return out
}

// Sort orders for FilterGigs.
const (
	OrderNewest = "desc"
	OrderOldest = "asc"
)

// GigFilter narrows a gig list. Empty fields match everything.
type GigFilter struct {
	Collective string
	Genre      string
	Order      string
}

// FilterGigs applies f and sorts by date, newest first unless Order is
// OrderOldest. Gigs without a usable date sort as the epoch.
func FilterGigs(list []model.Project, f GigFilter) []model.Project {
	out := make([]model.Project, 0, len(list))
	for _, p := range list {
		if f.Collective != "" && p.ExtraDoc().String("collective") != f.Collective {
			continue
		}
		if f.Genre != "" && !slices.Contains(p.ContentDoc().Strings("genre"), f.Genre) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := content.GigTime(out[i].ContentDoc()), content.GigTime(out[j].ContentDoc())
		if f.Order == OrderOldest {
			return a.Before(b)
		}
		return a.After(b)
	})
	return out
}

// Collectives lists the distinct non-empty collectives in first-seen order.
func Collectives(list []model.Project) []string {
	var vals []string
	for _, p := range list {
		vals = append(vals, p.ExtraDoc().String("collective"))
	}
	return distinct(vals)
}

// Genres lists the distinct genres across all gigs in first-seen order.
func Genres(list []model.Project) []string {
	var vals []string
	for _, p := range list {
		vals = append(vals, p.ContentDoc().Strings("genre")...)
	}
	return distinct(vals)
}

func distinct(vals []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, v := range vals {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
