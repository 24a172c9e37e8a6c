package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiktokPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/post/publish/video/init/", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sourceInfo := body["source_info"].(map[string]any)
		assert.Equal(t, "PULL_FROM_URL", sourceInfo["source"])
		assert.Equal(t, "https://cdn.example.com/trailer.mp4", sourceInfo["video_url"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"publish_id": "p1"},
		})
	}))
	defer srv.Close()

	a := &TiktokAdapter{apiURL: srv.URL, client: srv.Client()}
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{
		Body:      "new trailer",
		MediaURLs: []string{"https://cdn.example.com/trailer.mp4"},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "p1", result.PostID)
}

func TestTiktokPublishWithoutMedia(t *testing.T) {
	a := NewTiktokAdapter()
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{Body: "text only"})

	assert.False(t, result.Success)
	assert.Equal(t, ErrUnsupportedContent.Error(), result.Error)
}

func TestTiktokPublishAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"code": "spam_risk", "message": "posting too fast"},
		})
	}))
	defer srv.Close()

	a := &TiktokAdapter{apiURL: srv.URL, client: srv.Client()}
	result := a.Publish(context.Background(), Credentials{AccessToken: "token"}, Content{
		Body:      "again",
		MediaURLs: []string{"https://cdn.example.com/v.mp4"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "posting too fast", result.Error)
}

func TestTiktokFetchCommentsUnsupported(t *testing.T) {
	a := NewTiktokAdapter()
	_, err := a.FetchComments(context.Background(), Credentials{AccessToken: "token"}, Target{})

	assert.ErrorIs(t, err, ErrFetchUnsupported)
}
