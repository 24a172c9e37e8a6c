package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/solodevhq/megaphone/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name      string
	publishFn func(ctx context.Context, creds platform.Credentials, content platform.Content) platform.PublishResult
	fetchFn   func(ctx context.Context, creds platform.Credentials, target platform.Target) ([]platform.Comment, error)
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Publish(ctx context.Context, creds platform.Credentials, content platform.Content) platform.PublishResult {
	if a.publishFn == nil {
		return platform.PublishResult{Success: true}
	}
	return a.publishFn(ctx, creds, content)
}

func (a *stubAdapter) FetchComments(ctx context.Context, creds platform.Credentials, target platform.Target) ([]platform.Comment, error) {
	if a.fetchFn == nil {
		return nil, nil
	}
	return a.fetchFn(ctx, creds, target)
}

func okAdapter(name, postID string) *stubAdapter {
	return &stubAdapter{
		name: name,
		publishFn: func(context.Context, platform.Credentials, platform.Content) platform.PublishResult {
			return platform.PublishResult{Success: true, PostID: postID}
		},
	}
}

func failingAdapter(name, message string) *stubAdapter {
	return &stubAdapter{
		name: name,
		publishFn: func(context.Context, platform.Credentials, platform.Content) platform.PublishResult {
			return platform.PublishResult{Success: false, Error: message}
		},
	}
}

func allCreds(names ...string) map[string]platform.Credentials {
	creds := make(map[string]platform.Credentials, len(names))
	for _, name := range names {
		creds[name] = platform.Credentials{AccessToken: "token"}
	}
	return creds
}

func TestPublishReportsEveryPlatform(t *testing.T) {
	registry := platform.NewRegistry(
		okAdapter("twitter", "t1"),
		failingAdapter("discord", "webhook gone"),
	)
	o := NewOrchestrator(registry, time.Second)

	results := o.Publish(context.Background(), PublishRequest{
		Platforms:   []string{"twitter", "discord"},
		Content:     "hello",
		Credentials: allCreds("twitter", "discord"),
	})

	require.Len(t, results, 2)
	assert.True(t, results["twitter"].Success)
	assert.Equal(t, "t1", results["twitter"].PostID)
	assert.False(t, results["discord"].Success)
	assert.Equal(t, "webhook gone", results["discord"].Error)
	assert.False(t, results.AllSuccessful())
	assert.Equal(t, "discord: webhook gone", results.ErrorSummary())
}

func TestPublishMissingCredentials(t *testing.T) {
	called := false
	adapter := &stubAdapter{
		name: "twitter",
		publishFn: func(context.Context, platform.Credentials, platform.Content) platform.PublishResult {
			called = true
			return platform.PublishResult{Success: true}
		},
	}
	o := NewOrchestrator(platform.NewRegistry(adapter, okAdapter("discord", "d1")), time.Second)

	results := o.Publish(context.Background(), PublishRequest{
		Platforms:   []string{"twitter", "discord"},
		Credentials: allCreds("discord"),
	})

	require.Len(t, results, 2)
	assert.False(t, called, "adapter must not be invoked without credentials")
	assert.False(t, results["twitter"].Success)
	assert.Equal(t, platform.ErrMissingCredentials.Error(), results["twitter"].Error)
	assert.True(t, results["discord"].Success)
}

func TestPublishUnknownPlatform(t *testing.T) {
	o := NewOrchestrator(platform.NewRegistry(okAdapter("twitter", "t1")), time.Second)

	results := o.Publish(context.Background(), PublishRequest{
		Platforms:   []string{"myspace"},
		Credentials: allCreds("myspace"),
	})

	require.Len(t, results, 1)
	assert.False(t, results["myspace"].Success)
	assert.Equal(t, platform.ErrUnknownPlatform.Error(), results["myspace"].Error)
}

func TestPublishPanickingAdapterIsIsolated(t *testing.T) {
	panicking := &stubAdapter{
		name: "reddit",
		publishFn: func(context.Context, platform.Credentials, platform.Content) platform.PublishResult {
			panic("listing blew up")
		},
	}
	o := NewOrchestrator(platform.NewRegistry(panicking, okAdapter("twitter", "t1")), time.Second)

	results := o.Publish(context.Background(), PublishRequest{
		Platforms:   []string{"reddit", "twitter"},
		Credentials: allCreds("reddit", "twitter"),
	})

	require.Len(t, results, 2)
	assert.False(t, results["reddit"].Success)
	assert.Contains(t, results["reddit"].Error, "panic")
	assert.True(t, results["twitter"].Success)
}

func TestPublishHungAdapterTimesOut(t *testing.T) {
	hung := &stubAdapter{
		name: "tiktok",
		publishFn: func(ctx context.Context, _ platform.Credentials, _ platform.Content) platform.PublishResult {
			<-time.After(5 * time.Second)
			return platform.PublishResult{Success: true}
		},
	}
	o := NewOrchestrator(platform.NewRegistry(hung, okAdapter("twitter", "t1")), 50*time.Millisecond)

	results := o.Publish(context.Background(), PublishRequest{
		Platforms:   []string{"tiktok", "twitter"},
		Credentials: allCreds("tiktok", "twitter"),
	})

	require.Len(t, results, 2)
	assert.False(t, results["tiktok"].Success)
	assert.Equal(t, "timeout", results["tiktok"].Error)
	assert.True(t, results["twitter"].Success)
}

func TestPublishPlatformContentOverride(t *testing.T) {
	var gotBody string
	adapter := &stubAdapter{
		name: "twitter",
		publishFn: func(_ context.Context, _ platform.Credentials, content platform.Content) platform.PublishResult {
			gotBody = content.Body
			return platform.PublishResult{Success: true}
		},
	}
	o := NewOrchestrator(platform.NewRegistry(adapter), time.Second)

	o.Publish(context.Background(), PublishRequest{
		Platforms:       []string{"twitter"},
		Content:         "generic",
		PlatformContent: map[string]string{"twitter": "bird flavored"},
		Credentials:     allCreds("twitter"),
	})

	assert.Equal(t, "bird flavored", gotBody)
}

func TestPublishEmptyPlatformSet(t *testing.T) {
	o := NewOrchestrator(platform.NewRegistry(), time.Second)

	results := o.Publish(context.Background(), PublishRequest{})

	assert.Empty(t, results)
	assert.True(t, results.AllSuccessful())
	assert.Equal(t, "", results.ErrorSummary())
}

func TestErrorSummaryIsSortedByPlatform(t *testing.T) {
	results := Results{
		"twitter": {Success: false, Error: "rate limited"},
		"discord": {Success: false, Error: "webhook gone"},
		"reddit":  {Success: true},
	}

	assert.Equal(t, "discord: webhook gone; twitter: rate limited", results.ErrorSummary())
}
