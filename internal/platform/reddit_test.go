package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedditAdapter(srv *httptest.Server) *RedditAdapter {
	return &RedditAdapter{
		oauthURL:  srv.URL,
		userAgent: "megaphone-test/1.0",
		client:    srv.Client(),
	}
}

func TestRedditPublishSelfPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/submit", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "self", r.PostFormValue("kind"))
		assert.Equal(t, "indiegames", r.PostFormValue("sr"))
		assert.Equal(t, "launch day", r.PostFormValue("title"))
		assert.Equal(t, "we shipped", r.PostFormValue("text"))

		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{
				"errors": []any{},
				"data":   map[string]string{"id": "ab12", "url": "https://reddit.com/r/indiegames/ab12"},
			},
		})
	}))
	defer srv.Close()

	a := newTestRedditAdapter(srv)
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{
		Body:  "we shipped",
		Title: "launch day",
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "ab12", result.PostID)
	assert.Equal(t, "https://reddit.com/r/indiegames/ab12", result.PostURL)
}

func TestRedditPublishTitleDefaultsToTruncatedBody(t *testing.T) {
	longBody := strings.Repeat("x", 400)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Len(t, r.PostFormValue("title"), 300)

		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{"errors": []any{}, "data": map[string]string{"id": "x"}},
		})
	}))
	defer srv.Close()

	a := newTestRedditAdapter(srv)
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{Body: longBody})

	assert.True(t, result.Success, result.Error)
}

func TestRedditPublishLinkPostUsesCustomSubreddit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "link", r.PostFormValue("kind"))
		assert.Equal(t, "gamedev", r.PostFormValue("sr"))
		assert.Equal(t, "https://example.com/launch", r.PostFormValue("url"))

		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{"errors": []any{}, "data": map[string]string{"id": "x"}},
		})
	}))
	defer srv.Close()

	a := newTestRedditAdapter(srv)
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{
		Body:      "launching",
		Title:     "launch",
		Subreddit: "gamedev",
		LinkURL:   "https://example.com/launch",
	})

	assert.True(t, result.Success, result.Error)
}

func TestRedditPublishRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"json": map[string]any{
				"errors": [][]any{{"RATELIMIT", "you are doing that too much"}},
			},
		})
	}))
	defer srv.Close()

	a := newTestRedditAdapter(srv)
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{Body: "hi", Title: "hi"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "RATELIMIT")
}

func TestRedditFetchCommentsSkipsOwnAndDeleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/user/solodev/submitted"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"children": []map[string]any{
						{"kind": "t3", "data": map[string]any{"id": "post1", "permalink": "/r/indiegames/post1"}},
					},
				},
			})
		case strings.HasPrefix(r.URL.Path, "/comments/post1"):
			json.NewEncoder(w).Encode([]map[string]any{
				{"data": map[string]any{"children": []any{}}},
				{"data": map[string]any{
					"children": []map[string]any{
						{"kind": "t1", "data": map[string]any{"id": "c1", "body": "nice", "author": "fan", "author_fullname": "t2_f", "created_utc": 1756500000.0}},
						{"kind": "t1", "data": map[string]any{"id": "c2", "body": "thanks", "author": "solodev", "created_utc": 1756500100.0}},
						{"kind": "t1", "data": map[string]any{"id": "c3", "body": "[removed]", "author": "[deleted]", "created_utc": 1756500200.0}},
					},
				}},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	a := newTestRedditAdapter(srv)
	comments, err := a.FetchComments(context.Background(), Credentials{AccessToken: "token"}, Target{Username: "solodev"})

	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "fan", comments[0].AuthorUsername)
	assert.Equal(t, "t2_f", comments[0].AuthorID)
	assert.Equal(t, "https://reddit.com/r/indiegames/post1", comments[0].PostURL)
}

func TestRedditFetchCommentsMissingTarget(t *testing.T) {
	a := NewRedditAdapter("megaphone-test/1.0")
	_, err := a.FetchComments(context.Background(), Credentials{AccessToken: "token"}, Target{})

	assert.ErrorIs(t, err, ErrMissingTarget)
}
