package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/solodevhq/megaphone/internal/transfer"
)

const redditDefaultSubreddit = "indiegames"

type RedditAdapter struct {
	oauthURL  string
	userAgent string
	client    *http.Client
}

func NewRedditAdapter(userAgent string) *RedditAdapter {
	return &RedditAdapter{
		oauthURL:  "https://oauth.reddit.com",
		userAgent: userAgent,
		client:    &http.Client{},
	}
}

func (a *RedditAdapter) Name() string {
	return Reddit
}

func (a *RedditAdapter) Publish(ctx context.Context, creds Credentials, content Content) PublishResult {
	if creds.AccessToken == "" {
		return failure(ErrMissingCredentials)
	}

	subreddit := content.Subreddit
	if subreddit == "" {
		subreddit = redditDefaultSubreddit
	}

	title := content.Title
	if title == "" {
		title = truncate(content.Body, 300)
	}

	data := url.Values{}
	data.Set("api_type", "json")
	data.Set("sr", subreddit)
	data.Set("title", title)
	if content.LinkURL != "" {
		data.Set("kind", "link")
		data.Set("url", content.LinkURL)
	} else {
		data.Set("kind", "self")
		data.Set("text", content.Body)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.oauthURL+"/api/submit", strings.NewReader(data.Encode()))
	if err != nil {
		return failure(err)
	}
	a.setHeaders(req, creds.AccessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PublishResult{Success: false, Error: fmt.Sprintf("reddit submit returned status %d", resp.StatusCode)}
	}

	var result transfer.RedditSubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if len(result.JSON.Errors) > 0 {
		return PublishResult{Success: false, Error: fmt.Sprintf("reddit submit rejected: %v", result.JSON.Errors[0])}
	}

	return PublishResult{
		Success: true,
		PostID:  result.JSON.Data.ID,
		PostURL: result.JSON.Data.URL,
	}
}

func (a *RedditAdapter) FetchComments(ctx context.Context, creds Credentials, target Target) ([]Comment, error) {
	if target.Username == "" {
		return nil, ErrMissingTarget
	}
	if creds.AccessToken == "" {
		return nil, ErrMissingCredentials
	}

	submissions, err := a.recentSubmissions(ctx, creds.AccessToken, target.Username)
	if err != nil {
		return nil, err
	}

	var comments []Comment
	for _, submission := range submissions {
		submissionComments, err := a.submissionComments(ctx, creds.AccessToken, submission)
		if err != nil {
			// one unreadable thread should not sink the whole account
			slog.Info("reddit comment fetch failed", "submission", submission.ID, "error", err.Error())
			continue
		}

		for _, c := range submissionComments {
			if c.AuthorUsername == target.Username {
				continue
			}
			comments = append(comments, c)
		}
	}

	return comments, nil
}

func (a *RedditAdapter) recentSubmissions(ctx context.Context, accessToken, username string) ([]transfer.RedditThingData, error) {
	listURL := fmt.Sprintf("%s/user/%s/submitted?limit=10", a.oauthURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, "GET", listURL, nil)
	if err != nil {
		return nil, err
	}
	a.setHeaders(req, accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit listing returned status %d", resp.StatusCode)
	}

	var listing transfer.RedditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, err
	}

	submissions := make([]transfer.RedditThingData, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		submissions = append(submissions, child.Data)
	}
	return submissions, nil
}

func (a *RedditAdapter) submissionComments(ctx context.Context, accessToken string, submission transfer.RedditThingData) ([]Comment, error) {
	commentsURL := fmt.Sprintf("%s/comments/%s?limit=100", a.oauthURL, url.PathEscape(submission.ID))
	req, err := http.NewRequestWithContext(ctx, "GET", commentsURL, nil)
	if err != nil {
		return nil, err
	}
	a.setHeaders(req, accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit comments returned status %d", resp.StatusCode)
	}

	// The comments endpoint returns two listings: the submission itself,
	// then its comment tree.
	var listings []transfer.RedditListing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	postURL := "https://reddit.com" + submission.Permalink

	var comments []Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" || child.Data.Author == "" || child.Data.Author == "[deleted]" {
			continue
		}

		authorID := child.Data.AuthorFullname
		if authorID == "" {
			authorID = child.Data.Author
		}

		comments = append(comments, Comment{
			Platform:       Reddit,
			ID:             child.Data.ID,
			Text:           child.Data.Body,
			AuthorID:       authorID,
			AuthorUsername: child.Data.Author,
			PostURL:        postURL,
			CreatedAt:      time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
		})
	}

	return comments, nil
}

func (a *RedditAdapter) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", a.userAgent)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
