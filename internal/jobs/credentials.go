package job

import (
	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/platform"
	"github.com/solodevhq/megaphone/pkg/utils"
)

// decryptAccountCredentials turns a stored account's encrypted tokens into
// the plaintext bundle adapters consume. Empty fields stay empty.
func decryptAccountCredentials(secretKey string, acc *models.SocialAccount) (platform.Credentials, error) {
	key := []byte(secretKey)
	var c platform.Credentials

	fields := []struct {
		src string
		dst *string
	}{
		{acc.AccessToken, &c.AccessToken},
		{acc.AccessSecret, &c.AccessSecret},
		{acc.RefreshToken, &c.RefreshToken},
		{acc.WebhookURL, &c.WebhookURL},
		{acc.BotToken, &c.BotToken},
		{acc.APIKey, &c.APIKey},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		plain, err := utils.Decrypt(f.src, key)
		if err != nil {
			return platform.Credentials{}, err
		}
		*f.dst = plain
	}

	return c, nil
}

func accountTarget(acc *models.SocialAccount) platform.Target {
	return platform.Target{
		Username:  acc.AccountUsername,
		ChannelID: acc.ChannelID,
		Subreddit: acc.Subreddit,
	}
}
