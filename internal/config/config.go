// Package config loads typed configuration for the three binaries from the
// environment, after an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotenv loads .env from the working directory when present.
func LoadDotenv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found")
	}
}

// Server configures the REST API.
type Server struct {
	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     int    `env:"PORT" envDefault:"8000"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DatabaseURL is a sqlite path or a postgres:// DSN.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/utworld.db"`

	JWTSecret  string        `env:"JWT_SECRET,required"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	UploadsDir   string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	AssetBaseURL string `env:"ASSET_BASE_URL" envDefault:"http://localhost:8000/media"`
	MaxUploadMB  int64  `env:"MAX_UPLOAD_MB" envDefault:"100"`

	RedisURL    string        `env:"REDIS_URL"`
	CachePrefix string        `env:"CACHE_PREFIX" envDefault:"utworld:"`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	FrontendURL  string `env:"FRONTEND_URL"`
	FrontendURL2 string `env:"FRONTEND_URL2"`

	RevalidationURL    string `env:"REVALIDATION_URL"`
	RevalidationSecret string `env:"REVALIDATION_SECRET"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// MinJWTSecretLength is the shortest accepted signing secret.
const MinJWTSecretLength = 16

// Addr returns host:port.
func (c Server) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment reports whether APP_ENV is development.
func (c Server) IsDevelopment() bool {
	return c.Env == "development"
}

// UseRedisCache reports whether a Redis URL is configured.
func (c Server) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MediaPrefix is the path under which the API serves stored files: the
// path of AssetBaseURL, or /media.
func (c Server) MediaPrefix() string {
	u, err := url.Parse(c.AssetBaseURL)
	if err != nil || strings.Trim(u.Path, "/") == "" {
		return "/media"
	}
	return "/" + strings.Trim(u.Path, "/")
}

// AllowedOrigins returns the configured frontend origins, or "*" when none
// are set.
func (c Server) AllowedOrigins() []string {
	var out []string
	for _, o := range []string{c.FrontendURL, c.FrontendURL2} {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// LoadServer parses the API server configuration.
func LoadServer() (*Server, error) {
	cfg := &Server{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes long, got %d", MinJWTSecretLength, len(cfg.JWTSecret))
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, errors.New("MAX_UPLOAD_MB must be positive")
	}
	return cfg, nil
}

// Site configures the public data-plane server and its proxy functions.
type Site struct {
	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     int    `env:"PORT" envDefault:"3000"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	APIURL       string        `env:"REACT_APP_API_URL" envDefault:"http://localhost:8000/api/v1"`
	UseAPI       bool          `env:"REACT_APP_USE_API" envDefault:"false"`
	AssetBaseURL string        `env:"REACT_APP_ASSET_BASE_URL"`
	Timeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	SoundCloudClientID   string `env:"SOUNDCLOUD_CLIENT_ID"`
	SoundCloudUserID     string `env:"SOUNDCLOUD_USER_ID"`
	YouTubeAPIKey        string `env:"YOUTUBE_API_KEY"`
	YouTubeChannelHandle string `env:"YOUTUBE_CHANNEL_HANDLE"`
	YouTubeChannelID     string `env:"YOUTUBE_CHANNEL_ID"`

	RateLimitRPS   float64 `env:"FUNCTIONS_RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"FUNCTIONS_RATE_LIMIT_BURST" envDefault:"20"`
}

// Addr returns host:port.
func (c Site) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadSite parses the site server configuration.
func LoadSite() (*Site, error) {
	cfg := &Site{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Client configures the admin CLI's connection to the API.
type Client struct {
	APIURL    string        `env:"REACT_APP_API_URL" envDefault:"http://localhost:8000/api/v1"`
	Timeout   time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	TokenFile string        `env:"UTWORLD_TOKEN_FILE"`
}

// LoadClient parses the client configuration.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
