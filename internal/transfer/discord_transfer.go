package transfer

type DiscordWebhookMessage struct {
	Content string         `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	URL         string            `json:"url,omitempty"`
	Color       int               `json:"color,omitempty"`
	Image       *DiscordEmbedImage `json:"image,omitempty"`
}

type DiscordEmbedImage struct {
	URL string `json:"url"`
}

type DiscordMessage struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}
