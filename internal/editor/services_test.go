package editor_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/utworld/internal/apiclient"
	"github.com/aTrapDeer/utworld/internal/auth"
	"github.com/aTrapDeer/utworld/internal/editor"
	"github.com/aTrapDeer/utworld/internal/logging"
	"github.com/aTrapDeer/utworld/internal/media"
	"github.com/aTrapDeer/utworld/internal/model"
	"github.com/aTrapDeer/utworld/internal/sections"
	"github.com/aTrapDeer/utworld/internal/server"
	"github.com/aTrapDeer/utworld/internal/store"
)

type env struct {
	client   *apiclient.Client
	registry *sections.Registry
	tech, dj *model.Section
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "editor.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(ctx))
	_, err = st.EnsureAdmin(ctx, "admin@example.com", "editor-pass")
	require.NoError(t, err)

	srv := server.New(server.Options{
		Store:  st,
		Issuer: auth.NewIssuer("editor-test-secret", time.Minute, time.Hour),
		Media:  media.NewStorage(filepath.Join(dir, "uploads"), "http://localhost/media", 0),
		Logger: logging.Discard(),
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	c := apiclient.New(ts.URL+"/api/v1", apiclient.WithLogger(logging.Discard()))
	_, err = c.Login(ctx, "admin@example.com", "editor-pass")
	require.NoError(t, err)

	tech, err := c.CreateSection(ctx, model.SectionCreate{Slug: sections.Tech, Title: "Tech"})
	require.NoError(t, err)
	dj, err := c.CreateSection(ctx, model.SectionCreate{Slug: sections.DJ, Title: "DJ"})
	require.NoError(t, err)

	reg := sections.NewRegistry(c, logging.Discard())
	require.NoError(t, reg.Load(ctx))
	return &env{client: c, registry: reg, tech: tech, dj: dj}
}

func (e *env) block(t *testing.T, section *model.Section, slug string, doc model.Doc) *model.Project {
	t.Helper()
	p, err := e.client.CreateProject(context.Background(), model.ProjectCreate{
		SectionID:   section.ID,
		Slug:        slug,
		Title:       slug,
		Content:     doc.JSON(),
		IsPublished: true,
	})
	require.NoError(t, err)
	return p
}

func TestGigs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gigs := editor.NewGigs(e.client, e.registry)

	_, err := gigs.Create(ctx, editor.GigForm{})
	assert.ErrorIs(t, err, editor.ErrEventRequired)

	form := editor.GigForm{Event: "Warehouse", Collective: "Crew", Location: "Denver", Date: "2025-02-01", Clips: []any{"a"}}
	created, err := gigs.Create(ctx, form)
	require.NoError(t, err)
	assert.Regexp(t, `^gig-\d+$`, created.Slug)
	assert.False(t, created.IsPublished)
	assert.Equal(t, e.dj.ID, created.SectionID)

	// A legacy duplicate with more clips wins the slot.
	dup, err := e.client.CreateProject(ctx, model.ProjectCreate{
		SectionID: e.dj.ID,
		Slug:      "warehouse-legacy",
		Title:     "Warehouse",
		Content:   model.Doc{"date": "2025-02-01", "clips": []any{"a", "b"}}.JSON(),
		ExtraData: model.Doc{"type": "gig"}.JSON(),
	})
	require.NoError(t, err)
	e.block(t, e.dj, "hero", model.Doc{})

	list, err := gigs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dup.ID, list[0].ID)

	form.Location = "Boulder"
	updated, err := gigs.Update(ctx, created.ID, form)
	require.NoError(t, err)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, "Crew · Boulder", model.Deref(updated.Subtitle))

	got, err := gigs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Boulder", got.Location)

	toggled, err := gigs.TogglePublish(ctx, *updated)
	require.NoError(t, err)
	assert.True(t, toggled.IsPublished)
	toggled, err = gigs.TogglePublish(ctx, *toggled)
	require.NoError(t, err)
	assert.False(t, toggled.IsPublished)

	require.NoError(t, gigs.Delete(ctx, created.ID))
	_, err = gigs.Get(ctx, created.ID)
	assert.Equal(t, 404, apiclient.StatusOf(err))
}

func TestGigs_SectionMissing(t *testing.T) {
	e := newEnv(t)
	empty := sections.NewRegistry(e.client, logging.Discard())
	gigs := editor.NewGigs(e.client, empty)

	_, err := gigs.Create(context.Background(), editor.GigForm{Event: "x"})
	assert.EqualError(t, err, "DJ section not found. Please refresh the page.")
}

func TestPressKitAndSetsEditors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	pkEditor := editor.NewPressKitEditor(e.client)
	_, err := pkEditor.Load(ctx)
	assert.ErrorIs(t, err, editor.ErrBlockNotFound)

	e.block(t, e.dj, "press-kit", model.Doc{"bio_long": "Long", "gallery": []any{"/a.jpg"}})
	pk, err := pkEditor.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Long", pk.Bio)

	pk.Gallery.Title = "Press"
	_, err = pkEditor.Save(ctx, pk)
	require.NoError(t, err)
	again, err := pkEditor.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, pk, again)

	e.block(t, e.dj, "sets", model.Doc{})
	setsEditor := editor.NewSetsEditor(e.client)
	s := editor.Sets{
		SoundCloudURL: "https://soundcloud.com/x",
		FeaturedSets:  []editor.SetEntry{{Title: "A", Platform: "soundcloud", URL: "u"}},
	}
	saved, err := setsEditor.Save(ctx, s)
	require.NoError(t, err)
	assert.Len(t, saved.ContentDoc().Docs("platforms"), 1)
	loaded, err := setsEditor.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestSingletons(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sg := editor.NewSingletons(e.client)

	_, err := sg.Load(ctx, sections.Tech, "press-kit")
	assert.ErrorIs(t, err, editor.ErrUnknownBlock)
	_, err = sg.Load(ctx, sections.Tech, "skills")
	assert.ErrorIs(t, err, editor.ErrBlockNotFound)

	e.block(t, e.tech, "skills", model.Doc{"categories": []any{}})
	b, err := sg.Load(ctx, sections.Tech, "skills")
	require.NoError(t, err)
	assert.Equal(t, "skills", b.Title)

	b.Content = model.Doc{"categories": []any{map[string]any{"name": "Go", "skills": []any{"chi"}}}}
	b.Subtitle = "Stack"
	p, err := sg.Save(ctx, sections.Tech, "skills", b)
	require.NoError(t, err)
	assert.Equal(t, "Stack", model.Deref(p.Subtitle))
	assert.Len(t, p.ContentDoc().Docs("categories"), 1)

	assert.Contains(t, editor.SingletonSlugs(sections.DJ), "artist")
}

func TestCollections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	col := editor.NewCollections(e.client, e.registry)

	first, err := col.Add(ctx, editor.Education)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	second, err := col.Add(ctx, editor.Education)
	require.NoError(t, err)
	assert.Equal(t, 20, first.DisplayOrder)
	assert.Equal(t, 21, second.DisplayOrder)
	assert.True(t, first.IsPublished)
	assert.Equal(t, "Completed", first.ContentDoc().String("status"))
	assert.Regexp(t, `^education-\d+$`, first.Slug)

	exp, err := col.Add(ctx, editor.Experience)
	require.NoError(t, err)
	assert.Equal(t, 30, exp.DisplayOrder)

	list, err := col.List(ctx, editor.Education)
	require.NoError(t, err)
	require.Len(t, list, 2)

	b := editor.BlockFromProject(list[0])
	b.Title = "State University"
	saved, err := col.Save(ctx, list[0].ID, b)
	require.NoError(t, err)
	assert.Equal(t, "State University", saved.Title)

	_, err = col.SaveFeatured(ctx, "", editor.FeaturedForm{})
	assert.ErrorIs(t, err, editor.ErrProjectTitleRequired)

	fp, err := col.SaveFeatured(ctx, "", editor.FeaturedForm{Title: "Site", Github: "https://github.com/x/y", Features: []string{"fast"}})
	require.NoError(t, err)
	assert.Equal(t, model.TypeFeaturedProject, fp.Type())
	assert.Nil(t, fp.ThumbnailURL)

	_, err = e.client.CreateProject(ctx, model.ProjectCreate{
		SectionID: e.tech.ID, Slug: "old-featured", Title: "Old", ExtraData: model.Doc{"type": "featured"}.JSON(),
	})
	require.NoError(t, err)
	featured, err := col.List(ctx, editor.FeaturedProject)
	require.NoError(t, err)
	assert.Len(t, featured, 2)

	form := editor.FeaturedFromProject(*fp)
	form.Image = "/images/site.png"
	fp, err = col.SaveFeatured(ctx, fp.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "/images/site.png", model.Deref(fp.ThumbnailURL))

	require.NoError(t, col.Delete(ctx, exp.ID))
}

func TestDashboardStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	gigs := editor.NewGigs(e.client, e.registry)
	col := editor.NewCollections(e.client, e.registry)

	for i := 1; i <= 7; i++ {
		_, err := gigs.Create(ctx, editor.GigForm{
			Event:       fmt.Sprintf("Night %d", i),
			Date:        fmt.Sprintf("2025-01-%02d", i),
			IsPublished: i%2 == 0,
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}
	_, err := col.SaveFeatured(ctx, "", editor.FeaturedForm{Title: "One"})
	require.NoError(t, err)

	stats, err := editor.NewDashboard(e.client).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TechProjects)
	assert.Equal(t, 7, stats.DJGigs)
	assert.Equal(t, 3, stats.PublishedGigs)
	assert.Equal(t, 0, stats.Assets)
	require.Len(t, stats.RecentGigs, editor.RecentGigCount)
	assert.Equal(t, "Night 7", stats.RecentGigs[0].Title)
	assert.Equal(t, "Night 3", stats.RecentGigs[4].Title)
}

type failingAPI struct {
	editor.API
	err error
}

func (f failingAPI) GetProjectsBySectionSlug(ctx context.Context, slug string, _ bool) (*model.ProjectList, error) {
	if slug == sections.DJ {
		return nil, f.err
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f failingAPI) GetAssets(ctx context.Context, _, _ string) (*model.AssetList, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDashboardStats_FirstErrorCancelsOthers(t *testing.T) {
	boom := errors.New("boom")
	_, err := editor.NewDashboard(failingAPI{err: boom}).Stats(context.Background())
	assert.ErrorIs(t, err, boom)
}
