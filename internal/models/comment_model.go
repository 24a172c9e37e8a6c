package models

import (
	"database/sql"
	"time"
)

// CommunityComment is one synced comment from an external platform. The pair
// (Platform, PlatformCommentID) is the identity used for de-duplication.
type CommunityComment struct {
	ID                int64           `db:"id" json:"id"`
	AppID             int64           `db:"app_id" json:"app_id"`
	Platform          string          `db:"platform" json:"platform"`
	PlatformCommentID string          `db:"platform_comment_id" json:"platform_comment_id"`
	CommentText       string          `db:"comment_text" json:"comment_text"`
	PlatformUserID    string          `db:"platform_user_id" json:"platform_user_id"`
	PlatformUsername  string          `db:"platform_username" json:"platform_username"`
	PostURL           string          `db:"post_url" json:"post_url"`
	SentimentScore    sql.NullFloat64 `db:"sentiment_score" json:"sentiment_score"`
	SentimentLabel    sql.NullString  `db:"sentiment_label" json:"sentiment_label"`
	CommentedAt       time.Time       `db:"commented_at" json:"commented_at"`
	SyncedAt          time.Time       `db:"synced_at" json:"synced_at"`
}
