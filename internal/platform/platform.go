package platform

import (
	"context"
	"errors"
	"time"
)

const (
	Twitter = "twitter"
	Reddit  = "reddit"
	Discord = "discord"
	Tiktok  = "tiktok"
	Youtube = "youtube"
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrUnsupportedContent = errors.New("unsupported content for platform")
	ErrMissingTarget      = errors.New("missing addressing metadata")
	ErrFetchUnsupported   = errors.New("comment fetch not supported")
	ErrUnknownPlatform    = errors.New("unknown platform")
)

// Credentials is the per-account credential bundle. Different platforms
// require different subsets; an adapter checks its own required fields
// before making any network call.
type Credentials struct {
	AccessToken  string
	AccessSecret string
	RefreshToken string
	WebhookURL   string
	BotToken     string
	APIKey       string
}

// Target is platform-specific addressing metadata for comment fetches
// and Reddit submissions.
type Target struct {
	Username  string
	ChannelID string
	Subreddit string
}

type Content struct {
	Body      string
	Title     string
	Subreddit string
	LinkURL   string
	MediaURLs []string
}

type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"post_id,omitempty"`
	PostURL string `json:"post_url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Comment is the normalized shape every adapter produces. CreatedAt is
// always UTC so comments from different platforms interleave by recency.
type Comment struct {
	Platform       string    `json:"platform"`
	ID             string    `json:"id"`
	Text           string    `json:"text"`
	AuthorID       string    `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	PostURL        string    `json:"post_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// Adapter is the two-operation contract every platform implements.
// Publish never panics past the adapter and never returns an error value:
// every failure is folded into the PublishResult. FetchComments degrades
// to an empty list plus an error so one broken account cannot abort
// aggregation.
type Adapter interface {
	Name() string
	Publish(ctx context.Context, creds Credentials, content Content) PublishResult
	FetchComments(ctx context.Context, creds Credentials, target Target) ([]Comment, error)
}

func failure(err error) PublishResult {
	return PublishResult{Success: false, Error: err.Error()}
}

type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
