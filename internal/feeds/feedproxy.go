package feeds

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// DefaultAllowedHosts are the feed hosts the proxy will fetch from.
var DefaultAllowedHosts = []string{
	"feeds.soundcloud.com",
	"www.youtube.com",
	"youtube.com",
}

var (
	errRedirectHost     = errors.New("redirect target host not allowed")
	errTooManyRedirects = errors.New("stopped after 1 redirect")
)

// FeedProxy fetches an allow-listed RSS feed on behalf of the browser.
type FeedProxy struct {
	up     upstream
	hosts  []string
	logger *slog.Logger
}

func (p *FeedProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "url parameter required"})
		return
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid URL"})
		return
	}
	if !slices.Contains(p.hosts, u.Hostname()) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Host not allowed"})
		return
	}

	body, err := p.up.get(r.Context(), raw)
	if err != nil {
		p.logger.Warn("feed fetch failed", "url", raw, "error", err)
		if errors.Is(err, errRedirectHost) {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "Host not allowed", Details: errRedirectHost.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to fetch feed", Details: err.Error()})
		return
	}

	contentType := "text/plain"
	if strings.Contains(raw, "youtube.com") || strings.Contains(raw, "soundcloud.com") {
		contentType = "application/xml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// checkRedirect allows a single redirect, and only to an allow-listed host.
func (p *FeedProxy) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 2 {
		return errTooManyRedirects
	}
	if !slices.Contains(p.hosts, req.URL.Hostname()) {
		return errRedirectHost
	}
	return nil
}
