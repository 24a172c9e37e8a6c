package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/solodevhq/megaphone/internal/transfer"
)

type TiktokAdapter struct {
	apiURL string
	client *http.Client
}

func NewTiktokAdapter() *TiktokAdapter {
	return &TiktokAdapter{
		apiURL: "https://open.tiktokapis.com",
		client: &http.Client{},
	}
}

func (a *TiktokAdapter) Name() string {
	return Tiktok
}

// Publish initializes a direct video post. TikTok only accepts video, so a
// request without a media URL fails before any network call.
func (a *TiktokAdapter) Publish(ctx context.Context, creds Credentials, content Content) PublishResult {
	if creds.AccessToken == "" {
		return failure(ErrMissingCredentials)
	}
	if len(content.MediaURLs) == 0 {
		return failure(ErrUnsupportedContent)
	}

	uploadRequest := transfer.TiktokVideoUploadRequest{
		PostInfo: transfer.TiktokVideoPostInfo{
			Title:                 content.Body,
			PrivacyLevel:          "PUBLIC_TO_EVERYONE",
			DisableDuet:           false,
			DisableComment:        false,
			DisableStitch:         false,
			VideoCoverTimestampMs: 1000,
		},
		SourceInfo: transfer.TiktokVideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: content.MediaURLs[0],
		},
	}

	jsonData, err := json.Marshal(uploadRequest)
	if err != nil {
		return failure(err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.apiURL+"/v2/post/publish/video/init/", bytes.NewBuffer(jsonData))
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

	var result transfer.TiktokUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return failure(err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := result.Error.Message
		if msg == "" {
			msg = fmt.Sprintf("tiktok returned status %d", resp.StatusCode)
		}
		return PublishResult{Success: false, Error: msg}
	}

	return PublishResult{
		Success: true,
		PostID:  result.Data.PublishID,
	}
}

// FetchComments is not available: the TikTok comment API requires a separate
// research-access approval, so the aggregator skips TikTok accounts.
func (a *TiktokAdapter) FetchComments(ctx context.Context, creds Credentials, target Target) ([]Comment, error) {
	return nil, ErrFetchUnsupported
}
