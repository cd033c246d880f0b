package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/utworld/internal/model"
)

func pp(slug, title string, content, extra string) model.PublicProject {
	p := model.PublicProject{Slug: slug, Title: title, Tags: []string{}}
	if content != "" {
		p.Content = []byte(content)
	}
	if extra != "" {
		p.ExtraData = []byte(extra)
	}
	return p
}

func TestParseGallery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want StructuredGallery
	}{
		{"legacy array", `["a","b"]`, StructuredGallery{Images: []string{"a", "b"}}},
		{"structured", `{"title":"Press","subtitle":"2024","images":["a","b"]}`, StructuredGallery{Title: "Press", Subtitle: "2024", Images: []string{"a", "b"}}},
		{"legacy objects", `[{"url":"a","caption":"x"},{"url":"b"}]`, StructuredGallery{Images: []string{"a", "b"}}},
		{"null", `null`, StructuredGallery{Images: []string{}}},
		{"number", `42`, StructuredGallery{Images: []string{}}},
		{"structured without images", `{"title":"T"}`, StructuredGallery{Title: "T", Images: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw any
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &raw))
			assert.Equal(t, tt.want, ParseGallery(raw).Normalize())

			var sg StructuredGallery
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &sg))
			assert.Equal(t, tt.want, sg)
		})
	}
}

func TestParseGallery_Kinds(t *testing.T) {
	assert.Equal(t, GalleryLegacy, ParseGallery([]any{"a"}).Kind)
	assert.Equal(t, GalleryStructured, ParseGallery(map[string]any{}).Kind)
	assert.Equal(t, GalleryEmpty, ParseGallery("a").Kind)
}

func TestTransformDJContent(t *testing.T) {
	hero := pp("hero", "UT", `{"subheadline":"Techno","genres":["techno"]}`, "")
	hero.Subtitle = model.Ptr("Resident")
	hero.ThumbnailURL = model.Ptr(LegacyCDNPrefix + "/images/hero.jpg")

	older := pp("gig-1", "Basement", `{"date":"2023-01-10","genre":["techno"],"clips":[{"url":"c1"}]}`, `{"type":"gig","collective":"Dark","location":"NYC"}`)
	older.Tags = []string{"techno", "late"}
	newer := pp("gig-2", "Rooftop", `{"date":"2024-06-01"}`, `{"type":"gig"}`)
	undated := pp("gig-3", "Secret", `{}`, "")

	press := pp("press-kit", "Press", `{"bio_short":"short","shortBio":"ignored","downloads":"oops","gallery":["a.jpg","b.jpg"]}`, "")

	section := &model.SectionContent{Slug: "dj", Projects: []model.PublicProject{hero, older, undated, newer, press}}
	dj := TransformDJContent(section)
	require.NotNil(t, dj)

	require.NotNil(t, dj.Hero)
	assert.Equal(t, "UT", dj.Hero.Name)
	assert.Equal(t, "Resident", model.Deref(dj.Hero.Badge))
	assert.Equal(t, "/images/hero.jpg", model.Deref(dj.Hero.HeroImage))
	assert.Equal(t, []any{}, dj.Hero.CTAs)

	require.Len(t, dj.Gigs, 3)
	assert.Equal(t, []string{"gig-2", "gig-1", "gig-3"}, []string{dj.Gigs[0].ID, dj.Gigs[1].ID, dj.Gigs[2].ID})
	g := dj.Gigs[1]
	assert.Equal(t, "Basement", g.Event)
	assert.Equal(t, "Dark", model.Deref(g.Collective))
	assert.Equal(t, "NYC", model.Deref(g.Location))
	assert.Equal(t, []string{"techno"}, g.Genre)
	assert.Equal(t, []string{"late"}, g.Tags)
	assert.Len(t, g.Clips, 1)
	assert.Equal(t, []string{}, dj.Gigs[0].Genre)
	assert.Equal(t, []any{}, dj.Gigs[0].Clips)

	require.NotNil(t, dj.PressKit)
	assert.Equal(t, "short", model.Deref(dj.PressKit.BioShort))
	assert.Equal(t, []any{}, dj.PressKit.Downloads)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, dj.PressKit.Gallery.Images)

	assert.Nil(t, dj.Artist)
	assert.Nil(t, dj.Sets)
	assert.Nil(t, dj.Contact)
}

func TestTransform_NilInput(t *testing.T) {
	assert.Nil(t, TransformDJContent(nil))
	assert.Nil(t, TransformProfessionalContent(&model.SectionContent{}))
	assert.Nil(t, TransformProjectsContent(nil))

	empty := &model.SectionContent{Projects: []model.PublicProject{}}
	dj := TransformDJContent(empty)
	require.NotNil(t, dj)
	assert.Equal(t, []Gig{}, dj.Gigs)
}

func TestTransformProfessionalContent(t *testing.T) {
	about := pp("about", "About me", "", "")
	about.Description = model.Ptr("I build things.")
	edu2 := pp("education-2", "MIT", `{"modules":"wrong"}`, `{"type":"education"}`)
	edu2.DisplayOrder = 21
	edu1 := pp("education-1", "Stanford", `{"dates":"2015-2019"}`, `{"type":"education"}`)
	edu1.DisplayOrder = 20
	exp := pp("experience-1", "Acme", `{"responsibilities":["ship"]}`, `{"type":"experience"}`)
	highlights := pp("highlights", "Highlights", `{"items":[{"icon":"zap"}]}`, "")
	contact := pp("contact", "Contact", `{"email":"me@example.com"}`, "")

	pro := TransformProfessionalContent(&model.SectionContent{Projects: []model.PublicProject{about, edu2, edu1, exp, highlights, contact}})
	require.NotNil(t, pro)

	assert.Nil(t, pro.Hero)
	require.NotNil(t, pro.About)
	assert.Equal(t, []string{"I build things."}, pro.About.Paragraphs)
	require.Len(t, pro.Education, 2)
	assert.Equal(t, "Stanford", pro.Education[0].Institution)
	assert.Equal(t, "2015-2019", model.Deref(pro.Education[0].Dates))
	assert.Equal(t, []any{}, pro.Education[1].Modules)
	require.Len(t, pro.Experience, 1)
	assert.Equal(t, []any{"ship"}, pro.Experience[0].Responsibilities)
	assert.Equal(t, []any{}, pro.Experience[0].Achievements)
	assert.Len(t, pro.Highlights, 1)
	assert.NotNil(t, pro.Skills.Categories)
	assert.Empty(t, pro.Skills.Categories)
	assert.Equal(t, []any{}, pro.Certifications)
	assert.Equal(t, "me@example.com", pro.Contact["email"])
}

func TestTransformProjectsContent(t *testing.T) {
	a := pp("project-2", "Second", `{"stack":["go"]}`, `{"type":"featured_project","category":"Infra"}`)
	a.DisplayOrder = 2
	b := pp("project-1", "First", "", `{"type":"featured"}`)
	b.DisplayOrder = 1
	b.Subtitle = model.Ptr("Web")
	gh1 := pp("gh-1", "cli", `{"repo":"https://github.com/x/cli"}`, `{"type":"github_project","category":"tools"}`)
	gh2 := pp("gh-2", "misc", "", `{"type":"github_project"}`)

	out := TransformProjectsContent(&model.SectionContent{Projects: []model.PublicProject{a, b, gh1, gh2}})
	require.NotNil(t, out)
	require.Len(t, out.Featured, 2)
	assert.Equal(t, "First", out.Featured[0].Title)
	assert.Equal(t, "Web", model.Deref(out.Featured[0].Category))
	assert.Equal(t, "Infra", model.Deref(out.Featured[1].Category))
	assert.Equal(t, map[string]any{}, out.Featured[0].Links)
	assert.Equal(t, []any{}, out.Featured[0].Outcomes)

	require.Len(t, out.GithubProjects["tools"], 1)
	assert.Equal(t, "https://github.com/x/cli", model.Deref(out.GithubProjects["tools"][0].Repo))
	require.Len(t, out.GithubProjects["other"], 1)
}

func TestAssetHelpers(t *testing.T) {
	assert.Equal(t, "/images/a.jpg", StripCDNPrefix(LegacyCDNPrefix+"/images/a.jpg", ""))
	assert.Equal(t, "/x.jpg", StripCDNPrefix("https://cdn.example.com/x.jpg", "https://cdn.example.com"))

	base := "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/images/a.jpg", ResolveAssetURL(base, "/images/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/images/a.jpg", ResolveAssetURL(base, "images/a.jpg"))
	assert.Equal(t, "https://other.com/a.jpg", ResolveAssetURL(base, "https://other.com/a.jpg"))
	assert.Equal(t, "data:image/png;base64,xx", ResolveAssetURL(base, "data:image/png;base64,xx"))
	assert.Equal(t, "images/a.jpg", ResolveAssetURL("", "images/a.jpg"))

	assert.Equal(t, "/images/a.jpg", NormalizeAssetPath("assets/images/a.jpg"))
	assert.Equal(t, "/images/a.jpg", NormalizeAssetPath("/assets/images/a.jpg"))
	assert.Equal(t, "//cdn.example.com/a.jpg", NormalizeAssetPath("//cdn.example.com/a.jpg"))
	assert.Equal(t, "/images/a.jpg", NormalizeAssetPath(`\assets\images\a.jpg`))
	assert.Equal(t, "images/a.jpg", NormalizeAssetPath(" images//a.jpg "))
	assert.Equal(t, "https://cdn.example.com/images/a.jpg", AssetURL(base, "/assets/images/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/images/a.jpg", AssetURL(base, "images/a.jpg"))
}

func TestEnums(t *testing.T) {
	assert.Equal(t, IconZap, ResolveIcon("zap"))
	assert.Equal(t, IconAward, ResolveIcon("rocket"))

	p, ok := PlatformFromName("YouTube")
	assert.True(t, ok)
	assert.Equal(t, PlatformYouTube, p)
	assert.Equal(t, "/images/logo-youtube.svg", p.Logo())
	_, ok = PlatformFromName("Bandcamp")
	assert.False(t, ok)

	assert.Equal(t, SocialTwitter, ResolveSocial("twitter"))
	assert.Equal(t, "Twitter/X", SocialTwitter.Label())
	assert.Equal(t, SocialInstagram, ResolveSocial("myspace"))
}

func TestGigTime(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, epoch, GigTime(model.ParseDoc(nil)))
	assert.Equal(t, epoch, GigTime(model.ParseDoc([]byte(`{"date":"someday"}`))))

	got := GigTime(model.ParseDoc([]byte(`{"date":"2025-02-01"}`)))
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.February, got.Month())
	assert.Equal(t, 1, got.Day())
}
