package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	cfg, err := LoadServer()
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, int64(100), cfg.MaxUploadMB)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.UseRedisCache())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "/media", cfg.MediaPrefix())
}

func TestServer_MediaPrefix(t *testing.T) {
	assert.Equal(t, "/files", Server{AssetBaseURL: "https://cdn.example.com/files/"}.MediaPrefix())
	assert.Equal(t, "/media", Server{AssetBaseURL: "https://cdn.example.com"}.MediaPrefix())
}

func TestLoadServer_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadServer()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "short")
	_, err = LoadServer()
	require.Error(t, err)
}

func TestServer_AllowedOrigins(t *testing.T) {
	cfg := Server{FrontendURL: "https://example.com", FrontendURL2: " "}
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins())
}

func TestLoadSite(t *testing.T) {
	t.Setenv("REACT_APP_USE_API", "true")
	t.Setenv("REACT_APP_API_URL", "https://api.example.com/api/v1")
	t.Setenv("YOUTUBE_API_KEY", "yt")

	cfg, err := LoadSite()
	require.NoError(t, err)
	assert.True(t, cfg.UseAPI)
	assert.Equal(t, "https://api.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, "yt", cfg.YouTubeAPIKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadClient_DefaultURL(t *testing.T) {
	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIURL)
}

func TestProfile_RoundTripAndApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "admin.yaml")

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Empty(t, p.APIURL)

	require.NoError(t, SaveProfile(path, &Profile{APIURL: "https://api.example.com/api/v1", Email: "me@example.com"}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	p, err = LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", p.Email)

	c := &Client{APIURL: "http://localhost:8000/api/v1"}
	p.Apply(c, false, dir)
	assert.Equal(t, "https://api.example.com/api/v1", c.APIURL)
	assert.Equal(t, filepath.Join(dir, "tokens.json"), c.TokenFile)

	c = &Client{APIURL: "http://env/api/v1"}
	p.Apply(c, true, dir)
	assert.Equal(t, "http://env/api/v1", c.APIURL)
}

func TestLoadProfile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unclosed"), 0o600))
	_, err := LoadProfile(path)
	require.Error(t, err)
}
