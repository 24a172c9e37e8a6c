package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// PostCreation is the inbound shape for scheduling a post.
type PostCreation struct {
	AppID           int64             `json:"app_id"`
	Content         string            `json:"content"`
	Title           string            `json:"title"`
	Platforms       []string          `json:"platforms"`
	PlatformContent map[string]string `json:"platform_content"`
	MediaURLs       []string          `json:"media_urls"`
	ScheduledFor    string            `json:"scheduled_for"`
}
