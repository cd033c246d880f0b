package feeds

import (
	"log/slog"
	"net/http"
	"net/url"
)

// SoundCloudAPI is the upstream base URL.
const SoundCloudAPI = "https://api-v2.soundcloud.com"

// SoundCloud relays user stats and recent tracks.
type SoundCloud struct {
	up       upstream
	logger   *slog.Logger
	clientID string
	userID   string
	baseURL  string
}

type soundCloudUser struct {
	FollowersCount       *int64 `json:"followers_count,omitempty"`
	TrackCount           *int64 `json:"track_count,omitempty"`
	PublicFavoritesCount *int64 `json:"public_favorites_count,omitempty"`
}

type soundCloudTrack struct {
	Title         string  `json:"title"`
	PermalinkURL  string  `json:"permalink_url"`
	CreatedAt     string  `json:"created_at"`
	Duration      int64   `json:"duration"`
	ArtworkURL    *string `json:"artwork_url"`
	PlaybackCount *int64  `json:"playback_count"`
	LikesCount    *int64  `json:"likes_count"`
	RepostsCount  *int64  `json:"reposts_count"`
}

func (s *SoundCloud) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.clientID == "" || s.userID == "" {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "SoundCloud credentials not configured"})
		return
	}

	q := r.URL.Query()
	user := s.baseURL + "/users/" + url.PathEscape(s.userID)
	switch q.Get("action") {
	case "user":
		var u soundCloudUser
		if err := s.up.getJSON(r.Context(), user+"?"+url.Values{"client_id": {s.clientID}}.Encode(), &u); err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)

	case "tracks":
		limit := q.Get("limit")
		if limit == "" {
			limit = "25"
		}
		params := url.Values{"client_id": {s.clientID}, "limit": {limit}}
		var data struct {
			Collection []soundCloudTrack `json:"collection"`
		}
		if err := s.up.getJSON(r.Context(), user+"/tracks?"+params.Encode(), &data); err != nil {
			s.fail(w, err)
			return
		}
		tracks := data.Collection
		if tracks == nil {
			tracks = []soundCloudTrack{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})

	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid action. Use ?action=user or ?action=tracks"})
	}
}

func (s *SoundCloud) fail(w http.ResponseWriter, err error) {
	s.logger.Warn("soundcloud request failed", "error", err)
	writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to fetch from SoundCloud", Details: err.Error()})
}
