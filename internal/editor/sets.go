package editor

import (
	"strings"

	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/model"
)

// SetEntry is one featured DJ set.
type SetEntry struct {
	Title     string `json:"title"`
	Platform  string `json:"platform"`
	URL       string `json:"url"`
	Duration  string `json:"duration"`
	Date      string `json:"date"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Sets is the editable sets block: one link per platform plus a flat list
// of featured sets.
type Sets struct {
	SoundCloudURL   string     `json:"soundcloudUrl"`
	YouTubePlaylist string     `json:"youtubePlaylist"`
	FeaturedSets    []SetEntry `json:"featuredSets"`
}

func setEntry(d model.Doc) SetEntry {
	return SetEntry{
		Title:     d.String("title"),
		Platform:  d.String("platform"),
		URL:       d.String("url"),
		Duration:  d.String("duration"),
		Date:      d.String("date"),
		Thumbnail: d.String("thumbnail"),
	}
}

func platformNamed(platforms []model.Doc, name string) model.Doc {
	for _, p := range platforms {
		if p.String("name") == name {
			return p
		}
	}
	return model.Doc{}
}

// LoadSets reads the flat fields when present and falls back to the
// platforms array the site renders from.
func LoadSets(p model.Project) Sets {
	c := p.ContentDoc()
	platforms := c.Docs("platforms")
	sc := platformNamed(platforms, content.PlatformSoundCloud.Label())
	yt := platformNamed(platforms, content.PlatformYouTube.Label())

	s := Sets{
		SoundCloudURL:   first(c, "soundcloudUrl"),
		YouTubePlaylist: first(c, "youtubePlaylist"),
		FeaturedSets:    []SetEntry{},
	}
	if s.SoundCloudURL == "" {
		s.SoundCloudURL = sc.String("url")
	}
	if s.YouTubePlaylist == "" {
		s.YouTubePlaylist = yt.String("url")
	}

	if featured := c.Docs("featuredSets"); len(featured) > 0 {
		for _, d := range featured {
			s.FeaturedSets = append(s.FeaturedSets, setEntry(d))
		}
		return s
	}
	for _, pl := range platforms {
		platform := content.PlatformSoundCloud
		if strings.EqualFold(pl.String("name"), content.PlatformYouTube.Label()) {
			platform = content.PlatformYouTube
		}
		for _, d := range pl.Docs("sets") {
			e := setEntry(d)
			e.Platform = string(platform)
			e.Thumbnail = ""
			s.FeaturedSets = append(s.FeaturedSets, e)
		}
	}
	return s
}

func platformSets(entries []SetEntry, p content.Platform) []any {
	out := []any{}
	for _, e := range entries {
		if e.Platform != string(p) {
			continue
		}
		out = append(out, map[string]any{
			"title":     e.Title,
			"url":       e.URL,
			"date":      e.Date,
			"duration":  e.Duration,
			"thumbnail": e.Thumbnail,
		})
	}
	return out
}

// Content returns the document to store: the platforms array the site reads
// plus the flat fields this editor reads back. Sets on platforms other than
// SoundCloud and YouTube only appear in featuredSets.
func (s Sets) Content() model.Doc {
	featured := s.FeaturedSets
	if featured == nil {
		featured = []SetEntry{}
	}
	platforms := []any{}
	for _, pe := range []struct {
		platform content.Platform
		url      string
	}{
		{content.PlatformSoundCloud, s.SoundCloudURL},
		{content.PlatformYouTube, s.YouTubePlaylist},
	} {
		sets := platformSets(featured, pe.platform)
		if pe.url == "" && len(sets) == 0 {
			continue
		}
		platforms = append(platforms, map[string]any{
			"name": pe.platform.Label(),
			"url":  pe.url,
			"logo": pe.platform.Logo(),
			"sets": sets,
		})
	}
	return model.Doc{
		"platforms":       platforms,
		"soundcloudUrl":   s.SoundCloudURL,
		"youtubePlaylist": s.YouTubePlaylist,
		"featuredSets":    featured,
	}
}
