package models

import "time"

type SocialAccount struct {
	ID              int64     `db:"id" json:"id"`
	AppID           int64     `db:"app_id" json:"app_id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Platform        string    `db:"platform" json:"platform"`
	AccountName     string    `db:"account_name" json:"account_name"`
	AccountUsername string    `db:"account_username" json:"account_username"`
	ChannelID       string    `db:"channel_id" json:"channel_id"`
	Subreddit       string    `db:"subreddit" json:"subreddit"`
	ProfilePicture  string    `db:"profile_picture_url" json:"profile_picture"`
	AccessToken     string    `db:"access_token" json:"-"`
	AccessSecret    string    `db:"access_secret" json:"-"`
	RefreshToken    string    `db:"refresh_token" json:"-"`
	WebhookURL      string    `db:"webhook_url" json:"-"`
	BotToken        string    `db:"bot_token" json:"-"`
	APIKey          string    `db:"api_key" json:"-"`
	TokenExpiresAt  time.Time `db:"token_expires_at" json:"token_expires_at"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
