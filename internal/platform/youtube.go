package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type YoutubeAdapter struct {
	client *http.Client
}

func NewYoutubeAdapter() *YoutubeAdapter {
	return &YoutubeAdapter{client: &http.Client{}}
}

func (a *YoutubeAdapter) Name() string {
	return Youtube
}

// Publish uploads the first media URL as a video. YouTube is video-only, so a
// text-only request fails before any network call.
func (a *YoutubeAdapter) Publish(ctx context.Context, creds Credentials, content Content) PublishResult {
	if creds.AccessToken == "" {
		return failure(ErrMissingCredentials)
	}
	if len(content.MediaURLs) == 0 {
		return failure(ErrUnsupportedContent)
	}

	token := &oauth2.Token{AccessToken: creds.AccessToken}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	service, err := youtube.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return failure(fmt.Errorf("failed to create youtube service: %w", err))
	}

	tempFile, err := a.downloadVideo(ctx, content.MediaURLs[0])
	if err != nil {
		return failure(err)
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		return failure(err)
	}
	defer file.Close()

	title := content.Title
	if title == "" {
		title = truncate(content.Body, 100)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: content.Body,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return failure(fmt.Errorf("failed to upload video: %w", err))
	}

	return PublishResult{
		Success: true,
		PostID:  response.Id,
		PostURL: fmt.Sprintf("https://youtu.be/%s", response.Id),
	}
}

// FetchComments lists comment threads on the channel's ten most recent videos
// using an API key, the one YouTube credential that needs no OAuth dance.
func (a *YoutubeAdapter) FetchComments(ctx context.Context, creds Credentials, target Target) ([]Comment, error) {
	if target.ChannelID == "" {
		return nil, ErrMissingTarget
	}
	if creds.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(creds.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	searchResponse, err := service.Search.List([]string{"snippet"}).
		ChannelId(target.ChannelID).
		Order("date").
		MaxResults(10).
		Type("video").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch youtube videos: %w", err)
	}

	var comments []Comment
	for _, item := range searchResponse.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		videoID := item.Id.VideoId

		threadsResponse, err := service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			MaxResults(50).
			Context(ctx).
			Do()
		if err != nil {
			// comments may simply be disabled on this video
			continue
		}

		for _, thread := range threadsResponse.Items {
			if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			snippet := thread.Snippet.TopLevelComment.Snippet

			createdAt, err := time.Parse(time.RFC3339, snippet.PublishedAt)
			if err != nil {
				createdAt = time.Now().UTC()
			}

			authorID := ""
			if snippet.AuthorChannelId != nil {
				authorID = snippet.AuthorChannelId.Value
			}

			comments = append(comments, Comment{
				Platform:       Youtube,
				ID:             thread.Id,
				Text:           snippet.TextDisplay,
				AuthorID:       authorID,
				AuthorUsername: snippet.AuthorDisplayName,
				PostURL:        fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
				CreatedAt:      createdAt.UTC(),
			})
		}
	}

	return comments, nil
}

func (a *YoutubeAdapter) downloadVideo(ctx context.Context, videoURL string) (string, error) {
	tempFile, err := os.CreateTemp("", "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer tempFile.Close()

	req, err := http.NewRequestWithContext(ctx, "GET", videoURL, nil)
	if err != nil {
		return "", err
	}

	response, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error downloading video: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response status: %d", response.StatusCode)
	}

	if _, err := io.Copy(tempFile, response.Body); err != nil {
		return "", fmt.Errorf("error saving video to temporary file: %w", err)
	}

	return tempFile.Name(), nil
}
