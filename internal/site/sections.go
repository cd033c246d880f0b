package site

import (
	"fmt"
	"log/slog"

	"github.com/aTrapDeer/utworld/internal/content"
	"github.com/aTrapDeer/utworld/internal/persona"
)

// snapshot is the content a page is rendered from.
type snapshot struct {
	dj       *content.DJData
	pro      *content.ProfessionalData
	projects *content.ProjectsData
}

type sectionBuilder struct {
	name  string
	build func(snapshot) any
}

// Page sections per persona, in render order. A block that has not been
// saved yet renders as null. A builder may panic on malformed content;
// render contains it.
var pages = map[persona.Mode][]sectionBuilder{
	persona.DJ: {
		{"hero", func(s snapshot) any { return s.dj.Hero }},
		{"artist", func(s snapshot) any { return s.dj.Artist }},
		{"gigs", func(s snapshot) any { return nonNil(s.dj.Gigs) }},
		{"sets", func(s snapshot) any { return s.dj.Sets }},
		{"pressKit", func(s snapshot) any { return s.dj.PressKit }},
		{"contact", func(s snapshot) any { return s.dj.Contact }},
	},
	persona.Professional: {
		{"hero", func(s snapshot) any { return s.pro.Hero }},
		{"highlights", func(s snapshot) any { return nonNil(s.pro.Highlights) }},
		{"about", func(s snapshot) any { return s.pro.About }},
		{"projects", func(s snapshot) any { return nonNil(s.projects.Featured) }},
		{"githubProjects", func(s snapshot) any { return s.projects.GithubProjects }},
		{"experience", func(s snapshot) any { return nonNil(s.pro.Experience) }},
		{"education", func(s snapshot) any { return nonNil(s.pro.Education) }},
		{"skills", func(s snapshot) any { return s.pro.Skills }},
		{"certifications", func(s snapshot) any { return nonNil(s.pro.Certifications) }},
		{"contact", func(s snapshot) any { return s.pro.Contact }},
	},
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// sectionError replaces a section whose builder failed.
type sectionError struct {
	Error string `json:"error"`
	Retry string `json:"retry"`
}

// render runs one builder behind a recover boundary. A panic is logged and
// turned into a sectionError pointing at the section's own URL.
func render(b sectionBuilder, s snapshot, mode persona.Mode, logger *slog.Logger) (v any, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("section render failed", "mode", mode, "section", b.name, "panic", fmt.Sprint(rec))
			v = sectionError{Error: "Something went wrong", Retry: sectionURL(mode, b.name)}
			ok = false
		}
	}()
	return b.build(s), true
}

func sectionURL(mode persona.Mode, name string) string {
	return "/api/site/" + string(mode) + "/" + name
}

func findSection(mode persona.Mode, name string) (sectionBuilder, bool) {
	for _, b := range pages[mode] {
		if b.name == name {
			return b, true
		}
	}
	return sectionBuilder{}, false
}
