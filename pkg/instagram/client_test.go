package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmenu/pkg/config"
	errs "igmenu/pkg/errors"
	"igmenu/pkg/logger"
	"igmenu/pkg/metadata"
	"igmenu/pkg/storage"
)

// testEnv is a client wired to an httptest server and an in-memory data tree
type testEnv struct {
	client *Client
	server *httptest.Server
	mux    *http.ServeMux
	store  *storage.Manager
	log    *logger.TestLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := storage.NewManager(afero.NewMemMapFs(), "/data")
	log := logger.NewTestLogger()

	cfg := config.DefaultConfig()
	client, err := NewClient(&cfg.Instagram, store, log)
	require.NoError(t, err)
	require.NoError(t, client.SetBaseURL(server.URL))
	client.now = func() time.Time { return time.Unix(1700000000, 0) }

	return &testEnv{
		client: client,
		server: server,
		mux:    mux,
		store:  store,
		log:    log,
	}
}

// serveMedia registers a media file under /media/<name>
func (e *testEnv) serveMedia(name, body string) string {
	e.mux.HandleFunc("/media/"+name, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, body)
	})
	return e.server.URL + "/media/" + name
}

func (e *testEnv) readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(e.store.Fs(), path)
	require.NoError(t, err)
	return string(data)
}

func TestNewClientSetsHeaders(t *testing.T) {
	env := newTestEnv(t)

	var got http.Header
	env.mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		io.WriteString(w, `{}`)
	})

	var out struct{}
	require.NoError(t, env.client.getJSON(context.Background(), env.server.URL+"/ping", &out))

	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.Instagram.UserAgent, got.Get("User-Agent"))
	assert.Equal(t, cfg.Instagram.AppID, got.Get("X-IG-App-ID"))
	assert.Equal(t, env.server.URL+"/", got.Get("Referer"))
	assert.NotEmpty(t, env.client.cookie("ig_did"))
}

func TestCheckResponseStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType errs.ErrorType
	}{
		{"not found", http.StatusNotFound, ``, errs.ErrorTypeNotFound},
		{"unauthorized", http.StatusUnauthorized, `{}`, errs.ErrorTypeLoginRequired},
		{"login required message", http.StatusOK, `{"message":"login_required","status":"fail"}`, errs.ErrorTypeLoginRequired},
		{"server error", http.StatusBadGateway, `oops`, errs.ErrorTypeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mux.HandleFunc("/x", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			var out map[string]interface{}
			err := env.client.getJSON(context.Background(), env.server.URL+"/x", &out)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, errs.TypeOf(err))
		})
	}
}

func TestGetJSONParsingError(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>login</html>")
	})

	var out map[string]interface{}
	err := env.client.getJSON(context.Background(), env.server.URL+"/html", &out)
	assert.Equal(t, errs.ErrorTypeParsing, errs.TypeOf(err))
	assert.True(t, env.log.HasMessage("failed to parse JSON response"))
}

func TestRequestHonoursCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]interface{}
	err := env.client.getJSON(ctx, env.server.URL+"/slow", &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc(ProfileEndpoint, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("username") {
		case "alice":
			io.WriteString(w, `{"status":"ok","data":{"user":{
				"id":"42","username":"alice","full_name":"Alice","is_private":true,
				"edge_followed_by":{"count":10},"edge_follow":{"count":3},
				"edge_owner_to_timeline_media":{"count":7}}}}`)
		case "hidden":
			io.WriteString(w, `{"status":"ok","requires_to_login":true,"data":{"user":null}}`)
		case "empty":
			io.WriteString(w, `{"status":"ok","data":{"user":null}}`)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	profile, err := env.client.Profile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &Profile{
		ID:            "42",
		Username:      "alice",
		FullName:      "Alice",
		IsPrivate:     true,
		MediaCount:    7,
		FollowerCount: 10,
		FolloweeCount: 3,
	}, profile)

	_, err = env.client.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)

	_, err = env.client.Profile(ctx, "empty")
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)

	_, err = env.client.Profile(ctx, "hidden")
	assert.ErrorIs(t, err, errs.ErrLoginRequired)

	_, err = env.client.Profile(ctx, "not a name")
	assert.ErrorIs(t, err, errs.ErrProfileNotFound)
}

func TestHasPublicStory(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc(GraphQLEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, StoryFlagQueryHash, r.URL.Query().Get("query_hash"))
		if r.URL.Query().Get("variables") == "" {
			t.Error("missing variables")
		}
		io.WriteString(w, `{"status":"ok","data":{"user":{"has_public_story":true}}}`)
	})

	has, err := env.client.HasPublicStory(context.Background(), &Profile{ID: "42", Username: "alice"})
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPostsPaginates(t *testing.T) {
	env := newTestEnv(t)

	pages := 0
	env.mux.HandleFunc(GraphQLEndpoint, func(w http.ResponseWriter, r *http.Request) {
		pages++
		vars := r.URL.Query().Get("variables")
		if pages == 1 {
			assert.NotContains(t, vars, "after")
			io.WriteString(w, `{"status":"ok","data":{"user":{"edge_owner_to_timeline_media":{
				"count":3,"page_info":{"has_next_page":true,"end_cursor":"c1"},
				"edges":[{"node":{"id":"1","shortcode":"A"}},{"node":{"id":"2","shortcode":"B"}}]}}}}`)
			return
		}
		assert.Contains(t, vars, `"after":"c1"`)
		io.WriteString(w, `{"status":"ok","data":{"user":{"edge_owner_to_timeline_media":{
			"count":3,"page_info":{"has_next_page":false,"end_cursor":""},
			"edges":[{"node":{"id":"3","shortcode":"C"}}]}}}}`)
	})

	var shortcodes []string
	for post, err := range env.client.Posts(context.Background(), &Profile{ID: "42", Username: "alice"}) {
		require.NoError(t, err)
		shortcodes = append(shortcodes, post.Shortcode)
	}

	assert.Equal(t, []string{"A", "B", "C"}, shortcodes)
	assert.Equal(t, 2, pages)
}

func TestPostsStopsOnError(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc(GraphQLEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	var errCount int
	for post, err := range env.client.Posts(context.Background(), &Profile{ID: "42", Username: "alice"}) {
		assert.Nil(t, post)
		assert.Equal(t, errs.ErrorTypeServerError, errs.TypeOf(err))
		errCount++
	}
	assert.Equal(t, 1, errCount)
}

func TestDownloadPostSingleImage(t *testing.T) {
	env := newTestEnv(t)
	img := env.serveMedia("a.jpg", "JPEGDATA")

	taken := time.Date(2023, 5, 1, 12, 30, 45, 0, time.UTC)
	post := &Post{
		MediaItem: MediaItem{DisplayURL: img},
		ID:        "1",
		Shortcode: "A",
		TakenAt:   taken,
		Caption:   "hello world",
	}

	dir := env.store.Path("alice", storage.KindPosts, "A")
	require.NoError(t, env.store.EnsureDir(dir))

	transfer, err := env.client.DownloadPost(context.Background(), post, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, transfer.Files)

	assert.Equal(t, "JPEGDATA", env.readFile(t, dir+"/2023-05-01_12-30-45_UTC.jpg"))
	assert.Equal(t, "hello world", env.readFile(t, dir+"/2023-05-01_12-30-45_UTC.txt"))
	var meta metadata.PostMetadata
	require.NoError(t, json.Unmarshal([]byte(env.readFile(t, dir+"/2023-05-01_12-30-45_UTC.json")), &meta))
	assert.Equal(t, "A", meta.Shortcode)
	assert.Equal(t, "hello world", meta.Caption)
	assert.Equal(t, []string{"2023-05-01_12-30-45_UTC.jpg"}, meta.Files)
	assert.True(t, taken.Equal(meta.TakenAt))
}

func TestDownloadPostSidecar(t *testing.T) {
	env := newTestEnv(t)
	img := env.serveMedia("1.jpg", "ONE")
	vid := env.serveMedia("2.mp4", "TWO")

	post := &Post{
		ID:        "1",
		Shortcode: "S",
		TakenAt:   time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Children: []MediaItem{
			{DisplayURL: img},
			{IsVideo: true, DisplayURL: img, VideoURL: vid},
		},
	}

	dir := env.store.Path("alice", storage.KindPosts, "S")
	require.NoError(t, env.store.EnsureDir(dir))

	_, err := env.client.DownloadPost(context.Background(), post, dir)
	require.NoError(t, err)

	assert.Equal(t, "ONE", env.readFile(t, dir+"/2023-05-01_00-00-00_UTC_1.jpg"))
	assert.Equal(t, "TWO", env.readFile(t, dir+"/2023-05-01_00-00-00_UTC_2.mp4"))
	assert.False(t, env.store.Exists(dir+"/2023-05-01_00-00-00_UTC.txt"))
}

func TestDownloadPostMediaFailure(t *testing.T) {
	env := newTestEnv(t)
	post := &Post{
		MediaItem: MediaItem{DisplayURL: env.server.URL + "/media/missing.jpg"},
		Shortcode: "A",
	}

	_, err := env.client.DownloadPost(context.Background(), post, "/data/alice/posts/A")
	assert.Equal(t, errs.ErrorTypeNetwork, errs.TypeOf(err))
	assert.False(t, errs.IsHandled(err))
}

func TestFollowersPaginates(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("/api/v1/friendships/42/followers/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("max_id") {
		case "":
			io.WriteString(w, `{"status":"ok","users":[{"pk":1,"username":"a"},{"pk":"2","username":"b"}],"next_max_id":"50"}`)
		case "50":
			io.WriteString(w, `{"status":"ok","users":[{"pk":3,"username":"c"}],"next_max_id":null}`)
		default:
			t.Errorf("unexpected max_id %q", r.URL.Query().Get("max_id"))
		}
	})

	var names []string
	for name, err := range env.client.Followers(context.Background(), &Profile{ID: "42"}) {
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestFolloweesUsesFollowingEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("/api/v1/friendships/42/following/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"ok","users":[{"pk":9,"username":"z"}]}`)
	})

	var names []string
	for name, err := range env.client.Followees(context.Background(), &Profile{ID: "42"}) {
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.Equal(t, []string{"z"}, names)
}

func TestFollowersLoginRequired(t *testing.T) {
	env := newTestEnv(t)
	env.mux.HandleFunc("/api/v1/friendships/42/followers/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"login_required","status":"fail"}`)
	})

	for _, err := range env.client.Followers(context.Background(), &Profile{ID: "42", Username: "alice"}) {
		assert.ErrorIs(t, err, errs.ErrLoginRequired)
	}
}

func TestDownloadStories(t *testing.T) {
	env := newTestEnv(t)
	img := env.serveMedia("s1.jpg", "S1")
	vid := env.serveMedia("s2.mp4", "S2")

	env.mux.HandleFunc(ReelsMediaEndpoint, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"42"}, r.URL.Query()["reel_ids"])
		fmt.Fprintf(w, `{"status":"ok","reels":{"42":{"id":42,"items":[
			{"id":"b","taken_at":1700000060,"media_type":2,
			 "image_versions2":{"candidates":[{"url":%q}]},"video_versions":[{"url":%q}]},
			{"id":"a","taken_at":1700000000,"media_type":1,
			 "image_versions2":{"candidates":[{"url":%q}]}}]}}}`, img, vid, img)
	})

	dir := env.store.Path("alice", storage.KindStories)
	require.NoError(t, env.store.EnsureDir(dir))

	transfer, err := env.client.DownloadStories(context.Background(), []string{"42"}, dir)
	require.NoError(t, err)
	assert.Equal(t, Transfer{Files: 2, Bytes: 4}, transfer)

	assert.Equal(t, "S1", env.readFile(t, dir+"/2023-11-14_22-13-20_UTC.jpg"))
	assert.Equal(t, "S2", env.readFile(t, dir+"/2023-11-14_22-14-20_UTC.mp4"))
}

func TestDownloadStoriesSameSecond(t *testing.T) {
	env := newTestEnv(t)
	first := env.serveMedia("f.jpg", "FIRST")
	second := env.serveMedia("s.jpg", "SECOND")

	env.mux.HandleFunc(ReelsMediaEndpoint, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"status":"ok","reels":{"42":{"id":"42","items":[
			{"id":"a","taken_at":1700000000,"media_type":1,"image_versions2":{"candidates":[{"url":%q}]}},
			{"id":"b","taken_at":1700000000,"media_type":1,"image_versions2":{"candidates":[{"url":%q}]}}]}}}`, first, second)
	})

	dir := env.store.Path("alice", storage.KindStories)
	require.NoError(t, env.store.EnsureDir(dir))

	transfer, err := env.client.DownloadStories(context.Background(), []string{"42"}, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, transfer.Files)

	assert.Equal(t, "FIRST", env.readFile(t, dir+"/2023-11-14_22-13-20_UTC.jpg"))
	assert.Equal(t, "SECOND", env.readFile(t, dir+"/2023-11-14_22-13-20_UTC_2.jpg"))
}

func TestDownloadStoriesNoIDs(t *testing.T) {
	env := newTestEnv(t)

	transfer, err := env.client.DownloadStories(context.Background(), nil, "/data/x/stories")
	require.NoError(t, err)
	assert.Zero(t, transfer)
}
