package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	config "github.com/solodevhq/megaphone/configs"
	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/platform"
	"github.com/solodevhq/megaphone/internal/repository"
	"github.com/solodevhq/megaphone/internal/transfer"
	"github.com/solodevhq/megaphone/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// TokenRefreshJob renews OAuth tokens that expire within the next half hour,
// so publish and sync runs never hit a platform with a stale token.
type TokenRefreshJob struct {
	cfg    *config.Config
	ar     repository.SocialAccountRepository
	client *http.Client
}

func NewTokenRefreshJob(cfg *config.Config, ar repository.SocialAccountRepository) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg:    cfg,
		ar:     ar,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := j.ar.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := j.refreshAccount(ctx, acc); err != nil {
				slog.Info("unable to refresh tokens", "platform", acc.Platform, "account_id", acc.ID)
			}
		}(acc)
	}

	wg.Wait()
}

func (j *TokenRefreshJob) refreshAccount(ctx context.Context, acc *models.SocialAccount) error {
	refreshToken, err := utils.Decrypt(acc.RefreshToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	var token *oauth2.Token
	switch acc.Platform {
	case platform.Youtube:
		token, err = j.refreshGoogleToken(ctx, refreshToken)
	case platform.Tiktok:
		token, err = j.refreshTiktokToken(ctx, refreshToken)
	case platform.Reddit:
		token, err = j.refreshRedditToken(ctx, refreshToken)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	return j.storeToken(ctx, acc, token)
}

func (j *TokenRefreshJob) refreshGoogleToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		ClientID:     j.cfg.GoogleClientID,
		ClientSecret: j.cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
	}

	src := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return token, nil
}

func (j *TokenRefreshJob) refreshTiktokToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("client_key", j.cfg.TiktokClientKey)
	form.Set("client_secret", j.cfg.TiktokClientSecret)
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://open.tiktokapis.com/v2/oauth/token/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := j.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var tr transfer.TiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, errors.New("tiktok token refresh returned no access token")
	}

	return &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

func (j *TokenRefreshJob) refreshRedditToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://www.reddit.com/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(j.cfg.RedditClientID, j.cfg.RedditClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", j.cfg.RedditUserAgent)

	resp, err := j.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit token refresh failed with status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.AccessToken == "" {
		return nil, errors.New("reddit token refresh returned no access token")
	}

	return &oauth2.Token{
		AccessToken: body.AccessToken,
		Expiry:      time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}

func (j *TokenRefreshJob) storeToken(ctx context.Context, acc *models.SocialAccount, token *oauth2.Token) error {
	key := []byte(j.cfg.SecretKey)

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), key)
	if err != nil {
		return err
	}

	updated := models.SocialAccount{
		AccessToken:    encryptedAccess,
		TokenExpiresAt: token.Expiry,
	}
	if token.RefreshToken != "" {
		encryptedRefresh, err := utils.Encrypt([]byte(token.RefreshToken), key)
		if err != nil {
			return err
		}
		updated.RefreshToken = encryptedRefresh
	}

	return j.ar.SetToken(ctx, acc.UserID, acc.AccessToken, &updated)
}
