package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	config "github.com/solodevhq/megaphone/configs"
	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/platform"
	"github.com/solodevhq/megaphone/internal/publisher"
	"github.com/solodevhq/megaphone/internal/repository"
)

const duePostsBatchSize = 50

// PublishJob drains due scheduled posts and fans each one out across its
// platforms through the orchestrator.
type PublishJob struct {
	cfg          *config.Config
	pr           repository.SocialPostRepository
	ar           repository.SocialAccountRepository
	orchestrator *publisher.Orchestrator
}

func NewPublishJob(
	cfg *config.Config,
	pr repository.SocialPostRepository,
	ar repository.SocialAccountRepository,
	orchestrator *publisher.Orchestrator) *PublishJob {
	return &PublishJob{
		cfg:          cfg,
		pr:           pr,
		ar:           ar,
		orchestrator: orchestrator,
	}
}

type PostOutcome struct {
	PostID  int64  `json:"post_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type RunSummary struct {
	Processed int           `json:"processed"`
	Results   []PostOutcome `json:"results"`
}

// Run selects due posts and processes each one. A single post failing, even
// by panic, does not stop the rest of the batch.
func (j *PublishJob) Run(ctx context.Context) (*RunSummary, error) {
	posts, err := j.pr.ListDue(ctx, time.Now(), duePostsBatchSize)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	summary := &RunSummary{Results: make([]PostOutcome, 0, len(posts))}
	for _, post := range posts {
		outcome := j.processPostSafely(ctx, post)
		summary.Results = append(summary.Results, outcome)
		summary.Processed++
	}

	return summary, nil
}

// ProcessPost publishes a single post by id. This is the entry point used by
// the delayed task queue; the post must still be in the scheduled state.
func (j *PublishJob) ProcessPost(ctx context.Context, postID int64) error {
	post, err := j.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post doesn't exist")
	}
	if post.Status != models.PostStatusScheduled {
		slog.Info("skipping post not in scheduled state", "post_id", postID, "status", post.Status)
		return nil
	}

	outcome := j.processPostSafely(ctx, post)
	if outcome.Status == models.PostStatusFailed {
		slog.Info("post publish finished with failures", "post_id", postID, "message", outcome.Message)
	}
	return nil
}

func (j *PublishJob) processPostSafely(ctx context.Context, post *models.SocialPost) (outcome PostOutcome) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("post processing panicked", "post_id", post.ID, "panic", fmt.Sprintf("%v", p))
			msg := fmt.Sprintf("panic: %v", p)
			if err := j.pr.SetPublishOutcome(ctx, post.ID, models.PostStatusFailed, nil, msg); err != nil {
				slog.Info(err.Error())
			}
			outcome = PostOutcome{PostID: post.ID, Status: models.PostStatusFailed, Message: msg}
		}
	}()

	return j.processPost(ctx, post)
}

func (j *PublishJob) processPost(ctx context.Context, post *models.SocialPost) PostOutcome {
	if err := j.pr.UpdateStatus(ctx, models.PostStatusPublishing, post.ID); err != nil {
		return PostOutcome{PostID: post.ID, Status: post.Status, Message: err.Error()}
	}

	accounts, err := j.ar.ListByAppPlatforms(ctx, post.AppID, post.Platforms)
	if err != nil {
		if uerr := j.pr.SetPublishOutcome(ctx, post.ID, models.PostStatusFailed, nil, err.Error()); uerr != nil {
			slog.Info(uerr.Error())
		}
		return PostOutcome{PostID: post.ID, Status: models.PostStatusFailed, Message: err.Error()}
	}

	creds, targets := j.buildCredentials(accounts)

	req := publisher.PublishRequest{
		Platforms:       post.Platforms,
		Content:         post.Content,
		Title:           post.Title,
		PlatformContent: post.PlatformContent,
		MediaURLs:       post.MediaURLs,
		Credentials:     creds,
		Targets:         targets,
	}

	results := j.orchestrator.Publish(ctx, req)

	raw, err := json.Marshal(results)
	if err != nil {
		slog.Info(err.Error())
	}

	status := models.PostStatusPublished
	message := ""
	if !results.AllSuccessful() {
		status = models.PostStatusFailed
		message = results.ErrorSummary()
	}

	if err := j.pr.SetPublishOutcome(ctx, post.ID, status, raw, message); err != nil {
		slog.Info(err.Error())
		return PostOutcome{PostID: post.ID, Status: models.PostStatusFailed, Message: err.Error()}
	}

	return PostOutcome{PostID: post.ID, Status: status, Message: message}
}

// buildCredentials decrypts each connected account's tokens into the adapter
// credential bundle. An account whose tokens cannot be decrypted is dropped,
// which surfaces downstream as a missing-credentials failure for its platform.
func (j *PublishJob) buildCredentials(accounts []*models.SocialAccount) (map[string]platform.Credentials, map[string]platform.Target) {
	creds := make(map[string]platform.Credentials, len(accounts))
	targets := make(map[string]platform.Target, len(accounts))

	for _, acc := range accounts {
		c, err := decryptAccountCredentials(j.cfg.SecretKey, acc)
		if err != nil {
			slog.Info("unable to decrypt account tokens", "account_id", acc.ID, "platform", acc.Platform)
			continue
		}
		creds[acc.Platform] = c
		targets[acc.Platform] = accountTarget(acc)
	}

	return creds, targets
}
