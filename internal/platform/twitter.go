package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/solodevhq/megaphone/internal/transfer"
)

const twitterMaxImages = 4

type TwitterAdapter struct {
	apiURL    string
	uploadURL string
	client    *http.Client
}

func NewTwitterAdapter() *TwitterAdapter {
	return &TwitterAdapter{
		apiURL:    "https://api.twitter.com",
		uploadURL: "https://upload.twitter.com/1.1/media/upload.json",
		client:    &http.Client{},
	}
}

func (a *TwitterAdapter) Name() string {
	return Twitter
}

func (a *TwitterAdapter) Publish(ctx context.Context, creds Credentials, content Content) PublishResult {
	if creds.AccessToken == "" {
		return failure(ErrMissingCredentials)
	}

	// Media uploads are best-effort: a failed attachment never blocks the tweet.
	var mediaIDs []string
	for _, mediaURL := range limitMedia(content.MediaURLs, twitterMaxImages) {
		mediaID, err := a.uploadMedia(ctx, creds.AccessToken, mediaURL)
		if err != nil {
			slog.Info("twitter media upload failed", "url", mediaURL, "error", err.Error())
			continue
		}
		mediaIDs = append(mediaIDs, mediaID)
	}

	payload := transfer.TweetRequest{Text: content.Body}
	if len(mediaIDs) > 0 {
		payload.Media = &transfer.TweetMedia{MediaIDs: mediaIDs}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.apiURL+"/2/tweets", bytes.NewBuffer(jsonData))
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := a.client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	var result transfer.TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		msg := result.Detail
		if msg == "" {
			msg = fmt.Sprintf("twitter returned status %d", resp.StatusCode)
		}
		return PublishResult{Success: false, Error: msg}
	}

	return PublishResult{
		Success: true,
		PostID:  result.Data.ID,
		PostURL: fmt.Sprintf("https://twitter.com/i/web/status/%s", result.Data.ID),
	}
}

func (a *TwitterAdapter) uploadMedia(ctx context.Context, accessToken, mediaURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response status: %d", resp.StatusCode)
	}

	fileBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", "media")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(fileBytes); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	uploadReq, err := http.NewRequestWithContext(ctx, "POST", a.uploadURL, &body)
	if err != nil {
		return "", err
	}
	uploadReq.Header.Set("Authorization", "Bearer "+accessToken)
	uploadReq.Header.Set("Content-Type", writer.FormDataContentType())

	uploadResp, err := a.client.Do(uploadReq)
	if err != nil {
		return "", err
	}
	defer uploadResp.Body.Close()

	if uploadResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media upload returned status %d", uploadResp.StatusCode)
	}

	var uploadResult transfer.TwitterMediaUploadResponse
	if err := json.NewDecoder(uploadResp.Body).Decode(&uploadResult); err != nil {
		return "", err
	}

	return uploadResult.MediaIDString, nil
}

func (a *TwitterAdapter) FetchComments(ctx context.Context, creds Credentials, target Target) ([]Comment, error) {
	if target.Username == "" {
		return nil, ErrMissingTarget
	}
	if creds.AccessToken == "" {
		return nil, ErrMissingCredentials
	}

	query := url.Values{}
	query.Set("query", "@"+target.Username)
	query.Set("max_results", "100")
	query.Set("tweet.fields", "created_at,author_id")
	query.Set("expansions", "author_id")

	searchURL := a.apiURL + "/2/tweets/search/recent?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter search returned status %d", resp.StatusCode)
	}

	var result transfer.TwitterSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	usernames := make(map[string]string, len(result.Includes.Users))
	for _, user := range result.Includes.Users {
		usernames[user.ID] = user.Username
	}

	comments := make([]Comment, 0, len(result.Data))
	for _, tweet := range result.Data {
		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			createdAt = time.Now().UTC()
		}

		authorUsername := usernames[tweet.AuthorID]
		if authorUsername == "" {
			authorUsername = "unknown"
		}

		comments = append(comments, Comment{
			Platform:       Twitter,
			ID:             tweet.ID,
			Text:           tweet.Text,
			AuthorID:       tweet.AuthorID,
			AuthorUsername: authorUsername,
			PostURL:        fmt.Sprintf("https://twitter.com/%s/status/%s", target.Username, tweet.ID),
			CreatedAt:      createdAt.UTC(),
		})
	}

	return comments, nil
}

func limitMedia(urls []string, max int) []string {
	if len(urls) > max {
		return urls[:max]
	}
	return urls
}
