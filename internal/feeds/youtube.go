package feeds

import (
	"log/slog"
	"net/http"
	"net/url"
)

const (
	// YouTubeAPI is the upstream Data API base URL.
	YouTubeAPI = "https://www.googleapis.com/youtube/v3"
	// DefaultChannelHandle is looked up when no channel id is configured.
	DefaultChannelHandle = "utmixes"
)

// YouTube relays channel statistics, playlist items and video stats.
type YouTube struct {
	up        upstream
	logger    *slog.Logger
	apiKey    string
	handle    string
	channelID string
	baseURL   string
}

type channelStatistics struct {
	SubscriberCount       string `json:"subscriberCount,omitempty"`
	ViewCount             string `json:"viewCount,omitempty"`
	VideoCount            string `json:"videoCount,omitempty"`
	HiddenSubscriberCount *bool  `json:"hiddenSubscriberCount,omitempty"`
}

type channelResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
		Statistics channelStatistics `json:"statistics"`
	} `json:"items"`
}

type playlistResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// PlaylistItem is one video of a playlist.
type PlaylistItem struct {
	VideoID     string `json:"videoId,omitempty"`
	Title       string `json:"title,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// VideoStats are the public counters of one video.
type VideoStats struct {
	ViewCount    string `json:"viewCount,omitempty"`
	LikeCount    string `json:"likeCount,omitempty"`
	CommentCount string `json:"commentCount,omitempty"`
}

type videosResponse struct {
	Items []struct {
		ID         string     `json:"id"`
		Statistics VideoStats `json:"statistics"`
	} `json:"items"`
}

func (y *YouTube) endpoint(path string, params url.Values) string {
	params.Set("key", y.apiKey)
	return y.baseURL + path + "?" + params.Encode()
}

func (y *YouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if y.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "YouTube API key not configured"})
		return
	}

	q := r.URL.Query()
	switch q.Get("action") {
	case "channel":
		params := url.Values{"part": {"contentDetails,statistics"}}
		if y.channelID != "" {
			params.Set("id", y.channelID)
		} else {
			params.Set("forHandle", y.handle)
		}
		var data channelResponse
		if err := y.up.getJSON(r.Context(), y.endpoint("/channels", params), &data); err != nil {
			y.fail(w, err)
			return
		}
		if len(data.Items) == 0 {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "Channel not found"})
			return
		}
		ch := data.Items[0]
		writeJSON(w, http.StatusOK, map[string]any{
			"uploadsPlaylistId": ch.ContentDetails.RelatedPlaylists.Uploads,
			"statistics":        ch.Statistics,
		})

	case "playlist":
		playlistID := q.Get("playlistId")
		if playlistID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "playlistId parameter required"})
			return
		}
		maxResults := q.Get("maxResults")
		if maxResults == "" {
			maxResults = "12"
		}
		params := url.Values{
			"part":       {"snippet,contentDetails"},
			"maxResults": {maxResults},
			"playlistId": {playlistID},
		}
		var data playlistResponse
		if err := y.up.getJSON(r.Context(), y.endpoint("/playlistItems", params), &data); err != nil {
			y.fail(w, err)
			return
		}
		items := make([]PlaylistItem, 0, len(data.Items))
		for _, it := range data.Items {
			published := it.ContentDetails.VideoPublishedAt
			if published == "" {
				published = it.Snippet.PublishedAt
			}
			items = append(items, PlaylistItem{
				VideoID:     it.ContentDetails.VideoID,
				Title:       it.Snippet.Title,
				PublishedAt: published,
				Thumbnail:   it.Snippet.Thumbnails.Medium.URL,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case "videos":
		ids := q.Get("ids")
		if ids == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "ids parameter required (comma-separated video IDs)"})
			return
		}
		params := url.Values{"part": {"statistics"}, "id": {ids}}
		var data videosResponse
		if err := y.up.getJSON(r.Context(), y.endpoint("/videos", params), &data); err != nil {
			y.fail(w, err)
			return
		}
		stats := make(map[string]VideoStats, len(data.Items))
		for _, it := range data.Items {
			stats[it.ID] = it.Statistics
		}
		writeJSON(w, http.StatusOK, map[string]any{"stats": stats})

	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid action. Use ?action=channel, ?action=playlist, or ?action=videos"})
	}
}

func (y *YouTube) fail(w http.ResponseWriter, err error) {
	y.logger.Warn("youtube request failed", "error", err)
	writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to fetch from YouTube", Details: err.Error()})
}
