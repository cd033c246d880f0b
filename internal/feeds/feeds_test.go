package feeds

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/utworld/internal/logging"
)

func newFunctions(t *testing.T, upstream http.Handler, mutate func(*Options)) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)

	opts := Options{
		Logger:             logging.Discard(),
		SoundCloudClientID: "cid",
		SoundCloudUserID:   "42",
		SoundCloudBaseURL:  up.URL,
		YouTubeAPIKey:      "key",
		YouTubeBaseURL:     up.URL,
		AllowedHosts:       []string{"127.0.0.1"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	ts := httptest.NewServer(New(opts).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, rawURL string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func TestFeedProxy(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<rss/>"))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/feed.xml", http.StatusFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	up := httptest.NewServer(mux)
	defer up.Close()

	ts := httptest.NewServer(New(Options{Logger: logging.Discard(), AllowedHosts: []string{"127.0.0.1"}}).Routes())
	defer ts.Close()
	proxy := func(target string) string {
		return ts.URL + "/feed-proxy?" + url.Values{"url": {target}}.Encode()
	}

	resp, body := get(t, ts.URL+"/feed-proxy")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "url parameter required", body["error"])
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, body = get(t, proxy("not a url"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid URL", body["error"])

	resp, body = get(t, proxy("https://evil.example.com/feed"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Host not allowed", body["error"])

	resp, err := http.Get(proxy(up.URL + "/moved"))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Equal(t, "<rss/>", string(raw))

	resp, body = get(t, proxy(up.URL+"/broken"))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to fetch feed", body["error"])
	assert.Equal(t, "HTTP 503", body["details"])
}

func TestFeedProxy_DefaultHosts(t *testing.T) {
	ts := httptest.NewServer(New(Options{Logger: logging.Discard()}).Routes())
	defer ts.Close()
	resp, _ := get(t, ts.URL+"/feed-proxy?url="+url.QueryEscape("http://127.0.0.1/feed"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFeedProxy_RedirectPolicy(t *testing.T) {
	var internalHits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internalHits.Add(1)
		_, _ = w.Write([]byte("internal secret"))
	}))
	defer internal.Close()
	_, port, err := net.SplitHostPort(internal.Listener.Addr().String())
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<rss/>"))
	})
	mux.HandleFunc("/escape", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://localhost:"+port+"/admin", http.StatusFound)
	})
	mux.HandleFunc("/hop1", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop2", http.StatusFound)
	})
	mux.HandleFunc("/hop2", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/feed.xml", http.StatusFound)
	})
	up := httptest.NewServer(mux)
	defer up.Close()

	ts := httptest.NewServer(New(Options{Logger: logging.Discard(), AllowedHosts: []string{"127.0.0.1"}}).Routes())
	defer ts.Close()
	proxy := func(target string) string {
		return ts.URL + "/feed-proxy?" + url.Values{"url": {target}}.Encode()
	}

	resp, body := get(t, proxy(up.URL+"/escape"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Host not allowed", body["error"])
	assert.Zero(t, internalHits.Load())

	resp, body = get(t, proxy(up.URL+"/hop1"))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to fetch feed", body["error"])
	assert.Contains(t, body["details"], "stopped after 1 redirect")
}

func TestFeedProxy_SharedClientUntouched(t *testing.T) {
	shared := &http.Client{}
	f := New(Options{Logger: logging.Discard(), HTTPClient: shared})
	assert.Nil(t, shared.CheckRedirect)
	assert.NotSame(t, shared, f.FeedProxy.up.client)
	assert.Same(t, shared, f.SoundCloud.up.client)
}

func TestOptionsPreflight(t *testing.T) {
	ts := newFunctions(t, http.NotFoundHandler(), nil)
	for _, fn := range []string{"feed-proxy", "soundcloud", "youtube"} {
		req, err := http.NewRequest(http.MethodOptions, ts.URL+"/"+fn, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, fn)
		assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"), fn)
	}
}

func TestSoundCloud(t *testing.T) {
	var gotQuery url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/users/42", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"followers_count":10,"track_count":3,"public_favorites_count":1,"username":"ut"}`))
	})
	mux.HandleFunc("/users/42/tracks", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"collection":[{"title":"Mix","permalink_url":"https://soundcloud.com/ut/mix","duration":3600000,"artwork_url":null,"playback_count":99}]}`))
	})
	ts := newFunctions(t, mux, nil)

	resp, body := get(t, ts.URL+"/soundcloud?action=user")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cid", gotQuery.Get("client_id"))
	assert.EqualValues(t, 10, body["followers_count"])
	assert.NotContains(t, body, "username")

	resp, body = get(t, ts.URL+"/soundcloud?action=tracks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "25", gotQuery.Get("limit"))
	tracks := body["tracks"].([]any)
	require.Len(t, tracks, 1)
	track := tracks[0].(map[string]any)
	assert.Equal(t, "Mix", track["title"])
	assert.EqualValues(t, 99, track["playback_count"])

	_, _ = get(t, ts.URL+"/soundcloud?action=tracks&limit=5")
	assert.Equal(t, "5", gotQuery.Get("limit"))

	resp, body = get(t, ts.URL+"/soundcloud?action=nope")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Invalid action")
}

func TestSoundCloud_Errors(t *testing.T) {
	ts := newFunctions(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}), nil)
	resp, body := get(t, ts.URL+"/soundcloud?action=user")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Failed to fetch from SoundCloud", body["error"])
	assert.Equal(t, "Invalid JSON response", body["details"])

	unconfigured := newFunctions(t, http.NotFoundHandler(), func(o *Options) { o.SoundCloudUserID = "" })
	resp, body = get(t, unconfigured.URL+"/soundcloud?action=user")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "SoundCloud credentials not configured", body["error"])
}

func TestYouTube(t *testing.T) {
	var gotQuery url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("/channels", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"items":[{"contentDetails":{"relatedPlaylists":{"uploads":"UU123"}},"statistics":{"subscriberCount":"500","viewCount":"9000","videoCount":"12","hiddenSubscriberCount":false}}]}`))
	})
	mux.HandleFunc("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"items":[
			{"snippet":{"title":"Set 1","publishedAt":"2024-01-01T00:00:00Z","thumbnails":{"medium":{"url":"https://i.ytimg.com/1.jpg"}}},"contentDetails":{"videoId":"v1","videoPublishedAt":"2023-12-31T00:00:00Z"}},
			{"snippet":{"title":"Set 2","publishedAt":"2024-02-01T00:00:00Z"},"contentDetails":{"videoId":"v2"}}
		]}`))
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"items":[{"id":"v1","statistics":{"viewCount":"10","likeCount":"2","commentCount":"0"}}]}`))
	})
	ts := newFunctions(t, mux, nil)

	resp, body := get(t, ts.URL+"/youtube?action=channel")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "utmixes", gotQuery.Get("forHandle"))
	assert.Equal(t, "key", gotQuery.Get("key"))
	assert.Equal(t, "UU123", body["uploadsPlaylistId"])
	stats := body["statistics"].(map[string]any)
	assert.Equal(t, "500", stats["subscriberCount"])
	assert.Equal(t, false, stats["hiddenSubscriberCount"])

	resp, body = get(t, ts.URL+"/youtube?action=playlist")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "playlistId parameter required", body["error"])

	resp, body = get(t, ts.URL+"/youtube?action=playlist&playlistId=UU123")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "12", gotQuery.Get("maxResults"))
	items := body["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "2023-12-31T00:00:00Z", first["publishedAt"], "video publish date wins")
	assert.Equal(t, "https://i.ytimg.com/1.jpg", first["thumbnail"])
	assert.Equal(t, "2024-02-01T00:00:00Z", items[1].(map[string]any)["publishedAt"])

	resp, body = get(t, ts.URL+"/youtube?action=videos")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = get(t, ts.URL+"/youtube?action=videos&ids=v1,v2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "v1,v2", gotQuery.Get("id"))
	v1 := body["stats"].(map[string]any)["v1"].(map[string]any)
	assert.Equal(t, "10", v1["viewCount"])
}

func TestYouTube_ChannelByIDAndNotFound(t *testing.T) {
	var gotQuery url.Values
	ts := newFunctions(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"items":[]}`))
	}), func(o *Options) { o.YouTubeChannelID = "UC42" })

	resp, body := get(t, ts.URL+"/youtube?action=channel")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Channel not found", body["error"])
	assert.Equal(t, "UC42", gotQuery.Get("id"))
	assert.Empty(t, gotQuery.Get("forHandle"))

	noKey := newFunctions(t, http.NotFoundHandler(), func(o *Options) { o.YouTubeAPIKey = "" })
	resp, body = get(t, noKey.URL+"/youtube?action=channel")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "YouTube API key not configured", body["error"])
}

func TestRateLimit(t *testing.T) {
	ts := newFunctions(t, http.NotFoundHandler(), func(o *Options) {
		o.RateLimitRPS = 0.001
		o.RateLimitBurst = 2
	})
	for i := 0; i < 2; i++ {
		resp, _ := get(t, ts.URL+"/soundcloud?action=nope")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
	resp, body := get(t, ts.URL+"/soundcloud?action=nope")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests", body["error"])

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/soundcloud?action=nope", nil)
	require.NoError(t, err)
	req.Header.Set("X-Forwarded-For", "10.0.0.9, 10.0.0.1")
	other, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	other.Body.Close()
	assert.Equal(t, http.StatusBadRequest, other.StatusCode, "limits are per client IP")
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(r))
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(r))
	r.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(r))
}
