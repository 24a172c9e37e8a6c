package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/solodevhq/megaphone/internal/transfer"
)

type DiscordAdapter struct {
	client *http.Client
}

func NewDiscordAdapter() *DiscordAdapter {
	return &DiscordAdapter{client: &http.Client{}}
}

func (a *DiscordAdapter) Name() string {
	return Discord
}

// Publish posts through an incoming webhook. Media URLs become image embeds.
func (a *DiscordAdapter) Publish(ctx context.Context, creds Credentials, content Content) PublishResult {
	if creds.WebhookURL == "" {
		return failure(ErrMissingCredentials)
	}

	message := transfer.DiscordWebhookMessage{
		Content: content.Body,
		Embeds:  []transfer.DiscordEmbed{},
	}
	for _, mediaURL := range content.MediaURLs {
		message.Embeds = append(message.Embeds, transfer.DiscordEmbed{
			Image: &transfer.DiscordEmbedImage{URL: mediaURL},
		})
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return failure(err)
	}

	// wait=true makes Discord return the created message instead of a 204
	req, err := http.NewRequestWithContext(ctx, "POST", creds.WebhookURL+"?wait=true", bytes.NewBuffer(jsonData))
	if err != nil {
		return failure(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return failure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PublishResult{Success: false, Error: fmt.Sprintf("discord webhook returned status %d", resp.StatusCode)}
	}

	var created transfer.DiscordMessage
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		// the post went through; the body is a bonus
		return PublishResult{Success: true}
	}

	return PublishResult{
		Success: true,
		PostID:  created.ID,
		PostURL: fmt.Sprintf("https://discord.com/channels/%s/%s", created.ChannelID, created.ID),
	}
}

// FetchComments reads recent channel messages with a bot token.
func (a *DiscordAdapter) FetchComments(ctx context.Context, creds Credentials, target Target) ([]Comment, error) {
	if target.ChannelID == "" {
		return nil, ErrMissingTarget
	}
	if creds.BotToken == "" {
		return nil, ErrMissingCredentials
	}

	session, err := discordgo.New("Bot " + creds.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	defer session.Close()

	messages, err := session.ChannelMessages(target.ChannelID, 100, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discord messages: %w", err)
	}

	comments := make([]Comment, 0, len(messages))
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.Bot {
			continue
		}
		comments = append(comments, Comment{
			Platform:       Discord,
			ID:             msg.ID,
			Text:           msg.Content,
			AuthorID:       msg.Author.ID,
			AuthorUsername: msg.Author.Username,
			PostURL:        fmt.Sprintf("https://discord.com/channels/%s/%s", target.ChannelID, msg.ID),
			CreatedAt:      msg.Timestamp.UTC(),
		})
	}

	return comments, nil
}
