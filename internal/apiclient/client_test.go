package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/utworld/internal/model"
)

// refreshServer answers /protected with 401 until a refreshed token is
// presented. refreshOK controls whether /auth/refresh succeeds.
type refreshServer struct {
	refreshOK     bool
	protectedHits atomic.Int32
	refreshHits   atomic.Int32
}

func (rs *refreshServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/refresh":
		rs.refreshHits.Add(1)
		var body model.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if !rs.refreshOK || body.RefreshToken != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid or expired refresh token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"access-2","refresh_token":"refresh-2","token_type":"bearer"}`))
	case "/protected":
		rs.protectedHits.Add(1)
		if r.Header.Get("Authorization") != "Bearer access-2" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	default:
		http.NotFound(w, r)
	}
}

func TestDo_RefreshesOnceAndResends(t *testing.T) {
	rs := &refreshServer{refreshOK: true}
	srv := httptest.NewServer(rs)
	defer srv.Close()

	store := &MemoryTokenStore{}
	session := NewSession(store)
	require.NoError(t, session.SetTokens("access-1", "refresh-1"))
	c := New(srv.URL, WithSession(session))

	resp, err := c.Do(context.Background(), http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.EqualValues(t, 2, rs.protectedHits.Load())
	assert.EqualValues(t, 1, rs.refreshHits.Load())

	persisted, _ := store.Load()
	assert.Equal(t, Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, persisted)
}

func TestDo_FailedRefreshClearsAndReturnsOriginal(t *testing.T) {
	rs := &refreshServer{refreshOK: false}
	srv := httptest.NewServer(rs)
	defer srv.Close()

	store := &MemoryTokenStore{}
	session := NewSession(store)
	require.NoError(t, session.SetTokens("access-1", "refresh-1"))
	c := New(srv.URL, WithSession(session))

	resp, err := c.Do(context.Background(), http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "Could not validate credentials")
	assert.EqualValues(t, 1, rs.protectedHits.Load())
	assert.EqualValues(t, 1, rs.refreshHits.Load())
	assert.False(t, session.Authenticated())

	persisted, _ := store.Load()
	assert.Equal(t, Tokens{}, persisted)
}

func TestDo_NoRefreshWithoutRefreshToken(t *testing.T) {
	rs := &refreshServer{refreshOK: true}
	srv := httptest.NewServer(rs)
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.Do(context.Background(), http.MethodGet, "/protected", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 0, rs.refreshHits.Load())
}

func TestDo_SecondUnauthorizedIsReturned(t *testing.T) {
	var refreshes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshes.Add(1)
			_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	session := NewSession(nil)
	require.NoError(t, session.SetTokens("x", "y"))
	c := New(srv.URL, WithSession(session))

	resp, err := c.Do(context.Background(), http.MethodGet, "/anything", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.EqualValues(t, 1, refreshes.Load())
}

func TestDo_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Do(context.Background(), http.MethodGet, "/slow", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"a","refresh_token":"r","token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "me@example.com", "nope")
	require.Error(t, err)
	assert.Equal(t, "Login failed", err.Error())
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))

	pair, err := c.Login(context.Background(), "me@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a", pair.AccessToken)
	assert.True(t, c.Session().Authenticated())

	require.NoError(t, c.Logout())
	assert.False(t, c.Session().Authenticated())
}

func TestErrors_DetailOrFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/projects":
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"Project with this slug already exists in this section"}`))
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"boom"}`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.CreateProject(ctx, model.ProjectCreate{Title: "x"})
	assert.EqualError(t, err, "Project with this slug already exists in this section")
	assert.Equal(t, http.StatusConflict, StatusOf(err))

	_, err = c.UpdateProject(ctx, "id", model.ProjectUpdate{})
	assert.EqualError(t, err, "Failed to update project")

	_, err = c.GetSections(ctx)
	assert.EqualError(t, err, "Failed to fetch sections")

	err = c.DeleteAsset(ctx, "id")
	assert.EqualError(t, err, "Failed to delete asset")

	_, err = c.FetchAllContent(ctx)
	assert.EqualError(t, err, "Failed to fetch content: 500")
}

func TestGetProjects_Query(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.GetProjects(context.Background(), "sec-1", false)
	require.NoError(t, err)
	assert.Equal(t, "published_only=false&section_id=sec-1", got)

	_, err = c.GetProjects(context.Background(), "", true)
	require.NoError(t, err)
	assert.Equal(t, "published_only=true", got)
}

func TestSectionSlugHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sections":
			_, _ = w.Write([]byte(`{"items":[{"id":"dj-id","slug":"dj","title":"DJ"}],"total":1}`))
		case "/projects":
			assert.Equal(t, "dj-id", r.URL.Query().Get("section_id"))
			_, _ = w.Write([]byte(`{"items":[
				{"id":"1","slug":"hero","extra_data":{}},
				{"id":"2","slug":"gig-1700000000000","extra_data":{"type":"gig"}},
				{"id":"3","slug":"gig-1700000000001","extra_data":{"type":"gig"}}
			],"total":3}`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL)
	ctx := context.Background()

	_, err := c.GetProjectsBySectionSlug(ctx, "tech", false)
	assert.EqualError(t, err, `Section "tech" not found`)

	gigs, err := c.GetProjectsByType(ctx, "dj", model.TypeGig)
	require.NoError(t, err)
	assert.Len(t, gigs, 2)

	hero, err := c.GetProjectBySlug(ctx, "dj", "hero")
	require.NoError(t, err)
	require.NotNil(t, hero)
	assert.Equal(t, "1", hero.ID)

	missing, err := c.GetProjectBySlug(ctx, "dj", "contact")
	require.NoError(t, err)
	assert.Nil(t, missing)

	gig, err := c.FindProjectBySlugPattern(ctx, "dj", regexp.MustCompile(`^gig-\d+$`))
	require.NoError(t, err)
	require.NotNil(t, gig)
	assert.Equal(t, "2", gig.ID)
}

func TestUploadAsset_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		_, fh, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		assert.Equal(t, "flyer.png", fh.Filename)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		assert.Equal(t, "p-1", r.FormValue("project_id"))
		assert.Equal(t, "", r.FormValue("caption"))
		_, _ = w.Write([]byte(`{"id":"a-1","file_type":"image","cloudfront_url":"http://cdn/x.png"}`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	a, err := c.UploadAsset(context.Background(), Upload{Name: "flyer.png", Data: strings.NewReader("png")}, "p-1", "Flyer", "")
	require.NoError(t, err)
	assert.Equal(t, "a-1", a.ID)
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")
	fs := FileTokenStore{Path: path}

	empty, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{}, empty)

	session := NewSession(fs)
	require.NoError(t, session.SetTokens("a", "r"))

	hydrated := NewSession(fs)
	require.NoError(t, hydrated.Hydrate())
	assert.Equal(t, "a", hydrated.AccessToken())
	assert.Equal(t, "r", hydrated.RefreshToken())

	require.NoError(t, hydrated.Clear())
	require.NoError(t, hydrated.Clear())
	again, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, Tokens{}, again)
}
