package job

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	config "github.com/solodevhq/megaphone/configs"
	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/platform"
	"github.com/solodevhq/megaphone/internal/publisher"
	"github.com/solodevhq/megaphone/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type publishOutcome struct {
	status       string
	results      []byte
	errorMessage string
}

type fakePostRepo struct {
	posts         map[int64]*models.SocialPost
	due           []*models.SocialPost
	statusUpdates []string
	outcomes      map[int64]publishOutcome
	panicOnUpdate int64
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    make(map[int64]*models.SocialPost),
		outcomes: make(map[int64]publishOutcome),
	}
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.SocialPost, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) Create(ctx context.Context, post *models.SocialPost) (int64, error) {
	return 0, nil
}

func (r *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialPost, error) {
	return nil, nil
}

func (r *fakePostRepo) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.SocialPost, error) {
	return r.due, nil
}

func (r *fakePostRepo) UpdateStatus(ctx context.Context, status string, postID int64) error {
	if r.panicOnUpdate == postID {
		panic("database exploded")
	}
	r.statusUpdates = append(r.statusUpdates, status)
	return nil
}

func (r *fakePostRepo) SetPublishOutcome(ctx context.Context, postID int64, status string, results []byte, errorMessage string) error {
	r.outcomes[postID] = publishOutcome{status: status, results: results, errorMessage: errorMessage}
	return nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type fakeAccountRepo struct {
	accounts []*models.SocialAccount
}

func (r *fakeAccountRepo) Create(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	return 0, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListActive(ctx context.Context) ([]*models.SocialAccount, error) {
	return r.accounts, nil
}

func (r *fakeAccountRepo) ListByAppPlatforms(ctx context.Context, appID int64, platforms []string) ([]*models.SocialAccount, error) {
	requested := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		requested[p] = true
	}

	var matched []*models.SocialAccount
	for _, acc := range r.accounts {
		if acc.AppID == appID && requested[acc.Platform] {
			matched = append(matched, acc)
		}
	}
	return matched, nil
}

func (r *fakeAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakeAccountRepo) SetToken(ctx context.Context, userID int64, oldAccessToken string, sa *models.SocialAccount) error {
	return nil
}

func (r *fakeAccountRepo) Remove(ctx context.Context, id int64) error {
	return nil
}

type recordingAdapter struct {
	name     string
	gotCreds platform.Credentials
	result   platform.PublishResult
}

func (a *recordingAdapter) Name() string { return a.name }

func (a *recordingAdapter) Publish(ctx context.Context, creds platform.Credentials, content platform.Content) platform.PublishResult {
	a.gotCreds = creds
	return a.result
}

func (a *recordingAdapter) FetchComments(ctx context.Context, creds platform.Credentials, target platform.Target) ([]platform.Comment, error) {
	return nil, nil
}

func encrypt(t *testing.T, value string) string {
	t.Helper()
	encrypted, err := utils.Encrypt([]byte(value), []byte(testSecretKey))
	require.NoError(t, err)
	return encrypted
}

func testConfig() *config.Config {
	return &config.Config{SecretKey: testSecretKey}
}

func TestPublishJobRun(t *testing.T) {
	pr := newFakePostRepo()
	post := &models.SocialPost{
		ID:        1,
		AppID:     10,
		Content:   "launch day",
		Platforms: []string{"twitter", "discord"},
		Status:    models.PostStatusScheduled,
	}
	pr.due = []*models.SocialPost{post}
	pr.posts[1] = post

	ar := &fakeAccountRepo{accounts: []*models.SocialAccount{
		{ID: 1, AppID: 10, Platform: "twitter", AccessToken: encrypt(t, "tw-token")},
		{ID: 2, AppID: 10, Platform: "discord", WebhookURL: encrypt(t, "https://discord.test/hook")},
	}}

	twitter := &recordingAdapter{name: "twitter", result: platform.PublishResult{Success: true, PostID: "t1"}}
	discord := &recordingAdapter{name: "discord", result: platform.PublishResult{Success: true, PostID: "d1"}}
	orchestrator := publisher.NewOrchestrator(platform.NewRegistry(twitter, discord), time.Second)

	j := NewPublishJob(testConfig(), pr, ar, orchestrator)
	summary, err := j.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)
	assert.Equal(t, models.PostStatusPublished, summary.Results[0].Status)

	assert.Equal(t, "tw-token", twitter.gotCreds.AccessToken)
	assert.Equal(t, "https://discord.test/hook", discord.gotCreds.WebhookURL)

	assert.Contains(t, pr.statusUpdates, models.PostStatusPublishing)

	outcome := pr.outcomes[1]
	assert.Equal(t, models.PostStatusPublished, outcome.status)
	assert.Empty(t, outcome.errorMessage)

	var stored map[string]platform.PublishResult
	require.NoError(t, json.Unmarshal(outcome.results, &stored))
	require.Len(t, stored, 2)
	assert.True(t, stored["twitter"].Success)
	assert.True(t, stored["discord"].Success)
}

func TestPublishJobMissingAccountFailsThatPlatformOnly(t *testing.T) {
	pr := newFakePostRepo()
	post := &models.SocialPost{
		ID:        1,
		AppID:     10,
		Content:   "launch day",
		Platforms: []string{"twitter", "discord"},
		Status:    models.PostStatusScheduled,
	}
	pr.due = []*models.SocialPost{post}

	ar := &fakeAccountRepo{accounts: []*models.SocialAccount{
		{ID: 1, AppID: 10, Platform: "twitter", AccessToken: encrypt(t, "tw-token")},
	}}

	twitter := &recordingAdapter{name: "twitter", result: platform.PublishResult{Success: true}}
	discord := &recordingAdapter{name: "discord", result: platform.PublishResult{Success: true}}
	orchestrator := publisher.NewOrchestrator(platform.NewRegistry(twitter, discord), time.Second)

	j := NewPublishJob(testConfig(), pr, ar, orchestrator)
	summary, err := j.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, summary.Processed)

	outcome := pr.outcomes[1]
	assert.Equal(t, models.PostStatusFailed, outcome.status)
	assert.Equal(t, "discord: missing credentials", outcome.errorMessage)

	var stored map[string]platform.PublishResult
	require.NoError(t, json.Unmarshal(outcome.results, &stored))
	assert.True(t, stored["twitter"].Success)
	assert.False(t, stored["discord"].Success)
}

func TestPublishJobIsolatesPanickingPost(t *testing.T) {
	pr := newFakePostRepo()
	bad := &models.SocialPost{ID: 1, AppID: 10, Platforms: []string{"twitter"}, Status: models.PostStatusScheduled}
	good := &models.SocialPost{ID: 2, AppID: 10, Platforms: []string{"twitter"}, Status: models.PostStatusScheduled}
	pr.due = []*models.SocialPost{bad, good}
	pr.panicOnUpdate = 1

	ar := &fakeAccountRepo{accounts: []*models.SocialAccount{
		{ID: 1, AppID: 10, Platform: "twitter", AccessToken: encrypt(t, "tw-token")},
	}}

	twitter := &recordingAdapter{name: "twitter", result: platform.PublishResult{Success: true}}
	orchestrator := publisher.NewOrchestrator(platform.NewRegistry(twitter), time.Second)

	j := NewPublishJob(testConfig(), pr, ar, orchestrator)
	summary, err := j.Run(context.Background())

	require.NoError(t, err)
	require.Equal(t, 2, summary.Processed)

	assert.Equal(t, models.PostStatusFailed, summary.Results[0].Status)
	assert.Contains(t, summary.Results[0].Message, "panic")
	assert.Equal(t, models.PostStatusPublished, summary.Results[1].Status)
}

func TestProcessPostSkipsNonScheduled(t *testing.T) {
	pr := newFakePostRepo()
	pr.posts[1] = &models.SocialPost{ID: 1, Status: models.PostStatusPublished, Platforms: []string{"twitter"}}

	orchestrator := publisher.NewOrchestrator(platform.NewRegistry(), time.Second)
	j := NewPublishJob(testConfig(), pr, &fakeAccountRepo{}, orchestrator)

	err := j.ProcessPost(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, pr.statusUpdates)
	assert.Empty(t, pr.outcomes)
}

func TestProcessPostUnknownID(t *testing.T) {
	pr := newFakePostRepo()
	orchestrator := publisher.NewOrchestrator(platform.NewRegistry(), time.Second)
	j := NewPublishJob(testConfig(), pr, &fakeAccountRepo{}, orchestrator)

	err := j.ProcessPost(context.Background(), 42)

	assert.Error(t, err)
}
