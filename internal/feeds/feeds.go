// Package feeds implements the serverless proxy functions the public site
// calls for third-party media: a feed proxy for RSS, plus SoundCloud and
// YouTube API relays that keep credentials on the server.
package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// DefaultTimeout bounds each upstream request.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of an upstream response is read.
const maxBody = 10 << 20

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// cors adds the open CORS headers every function response carries and
// answers OPTIONS with 204.
func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// upstream performs GETs against third-party APIs.
type upstream struct {
	client  *http.Client
	timeout time.Duration
}

func newUpstream(client *http.Client, timeout time.Duration) upstream {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return upstream{client: client, timeout: timeout}
}

// get returns the body of a 2xx response. Redirects follow the client's
// CheckRedirect policy.
func (u upstream) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return body, nil
}

var errInvalidJSON = errors.New("Invalid JSON response")

func (u upstream) getJSON(ctx context.Context, url string, out any) error {
	body, err := u.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errInvalidJSON
	}
	return nil
}

// Options configures Functions.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger

	SoundCloudClientID string
	SoundCloudUserID   string
	SoundCloudBaseURL  string

	YouTubeAPIKey        string
	YouTubeChannelHandle string
	YouTubeChannelID     string
	YouTubeBaseURL       string

	// AllowedHosts overrides the feed proxy allow-list.
	AllowedHosts []string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Functions bundles the three proxy handlers.
type Functions struct {
	FeedProxy  *FeedProxy
	SoundCloud *SoundCloud
	YouTube    *YouTube
	limiter    *RateLimiter
}

func New(opts Options) *Functions {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	up := newUpstream(opts.HTTPClient, opts.Timeout)
	hosts := opts.AllowedHosts
	if len(hosts) == 0 {
		hosts = DefaultAllowedHosts
	}
	proxy := &FeedProxy{hosts: hosts, logger: logger}
	// the proxy gets its own client so the redirect policy stays off the
	// shared one
	proxyClient := *up.client
	proxyClient.CheckRedirect = proxy.checkRedirect
	proxy.up = upstream{client: &proxyClient, timeout: up.timeout}
	return &Functions{
		FeedProxy: proxy,
		SoundCloud: &SoundCloud{
			up:       up,
			logger:   logger,
			clientID: opts.SoundCloudClientID,
			userID:   opts.SoundCloudUserID,
			baseURL:  orDefault(opts.SoundCloudBaseURL, SoundCloudAPI),
		},
		YouTube: &YouTube{
			up:        up,
			logger:    logger,
			apiKey:    opts.YouTubeAPIKey,
			handle:    orDefault(opts.YouTubeChannelHandle, DefaultChannelHandle),
			channelID: opts.YouTubeChannelID,
			baseURL:   orDefault(opts.YouTubeBaseURL, YouTubeAPI),
		},
		limiter: NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, logger),
	}
}

// Routes mounts the functions at /feed-proxy, /soundcloud and /youtube.
func (f *Functions) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(f.limiter.Middleware)
	r.HandleFunc("/feed-proxy", cors(f.FeedProxy.ServeHTTP))
	r.HandleFunc("/soundcloud", cors(f.SoundCloud.ServeHTTP))
	r.HandleFunc("/youtube", cors(f.YouTube.ServeHTTP))
	return r
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
