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

func TestDiscordPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "true", r.URL.Query().Get("wait"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "patch notes", body["content"])
		assert.Len(t, body["embeds"], 1)

		json.NewEncoder(w).Encode(map[string]string{"id": "m1", "channel_id": "ch1"})
	}))
	defer srv.Close()

	a := &DiscordAdapter{client: srv.Client()}
	result := a.Publish(context.Background(), Credentials{WebhookURL: srv.URL}, Content{
		Body:      "patch notes",
		MediaURLs: []string{"https://cdn.example.com/shot.png"},
	})

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "m1", result.PostID)
	assert.Equal(t, "https://discord.com/channels/ch1/m1", result.PostURL)
}

func TestDiscordPublishMissingWebhook(t *testing.T) {
	a := NewDiscordAdapter()
	result := a.Publish(context.Background(), Credentials{}, Content{Body: "hi"})

	assert.False(t, result.Success)
	assert.Equal(t, ErrMissingCredentials.Error(), result.Error)
}

func TestDiscordPublishWebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	a := &DiscordAdapter{client: srv.Client()}
	result := a.Publish(context.Background(), Credentials{WebhookURL: srv.URL}, Content{Body: "hi"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "404")
}

func TestDiscordFetchCommentsMissingTarget(t *testing.T) {
	a := NewDiscordAdapter()
	_, err := a.FetchComments(context.Background(), Credentials{BotToken: "token"}, Target{})

	assert.ErrorIs(t, err, ErrMissingTarget)
}

func TestDiscordFetchCommentsMissingBotToken(t *testing.T) {
	a := NewDiscordAdapter()
	_, err := a.FetchComments(context.Background(), Credentials{}, Target{ChannelID: "ch1"})

	assert.ErrorIs(t, err, ErrMissingCredentials)
}
