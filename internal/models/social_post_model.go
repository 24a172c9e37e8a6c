package models

import "time"

type SocialPost struct {
	ID              int64             `db:"id" json:"id"`
	AppID           int64             `db:"app_id" json:"app_id"`
	UserID          int64             `db:"user_id" json:"user_id"`
	Content         string            `db:"content" json:"content"`
	Title           string            `db:"title" json:"title"`
	Platforms       []string          `db:"platforms" json:"platforms"`
	PlatformContent map[string]string `db:"platform_content" json:"platform_content,omitempty"`
	MediaURLs       []string          `db:"media_urls" json:"media_urls,omitempty"`
	ScheduledFor    time.Time         `db:"scheduled_for" json:"scheduled_for"`
	Status          string            `db:"status" json:"status"`
	PublishResults  []byte            `db:"publish_results" json:"publish_results,omitempty"`
	ErrorMessage    string            `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing"
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)
