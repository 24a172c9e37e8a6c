package job

import (
	"context"
	"log/slog"
	"time"

	config "github.com/solodevhq/megaphone/configs"
	"github.com/solodevhq/megaphone/internal/models"
	"github.com/solodevhq/megaphone/internal/publisher"
	"github.com/solodevhq/megaphone/internal/repository"
	"github.com/solodevhq/megaphone/internal/service"
)

// CommentSyncJob pulls recent comments for every active account, de-duplicates
// them against previously synced rows and stores the new ones with a
// best-effort sentiment classification.
type CommentSyncJob struct {
	cfg        *config.Config
	ar         repository.SocialAccountRepository
	cr         repository.CommentRepository
	aggregator *publisher.Aggregator
	sentiment  service.SentimentService
}

func NewCommentSyncJob(
	cfg *config.Config,
	ar repository.SocialAccountRepository,
	cr repository.CommentRepository,
	aggregator *publisher.Aggregator,
	sentiment service.SentimentService) *CommentSyncJob {
	return &CommentSyncJob{
		cfg:        cfg,
		ar:         ar,
		cr:         cr,
		aggregator: aggregator,
		sentiment:  sentiment,
	}
}

type SyncSummary struct {
	AppsProcessed int `json:"apps_processed"`
	TotalSynced   int `json:"total_synced"`
}

// Run syncs comments for all apps that have at least one active account.
// Apps are processed independently so one failing app cannot block the rest.
func (j *CommentSyncJob) Run(ctx context.Context) (*SyncSummary, error) {
	accounts, err := j.ar.ListActive(ctx)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	byApp := make(map[int64][]*models.SocialAccount)
	for _, acc := range accounts {
		byApp[acc.AppID] = append(byApp[acc.AppID], acc)
	}

	summary := &SyncSummary{}
	for appID, appAccounts := range byApp {
		synced := j.syncAppSafely(ctx, appID, appAccounts)
		summary.AppsProcessed++
		summary.TotalSynced += synced
	}

	return summary, nil
}

func (j *CommentSyncJob) syncAppSafely(ctx context.Context, appID int64, accounts []*models.SocialAccount) (synced int) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("comment sync panicked", "app_id", appID, "panic", p)
			synced = 0
		}
	}()

	return j.syncApp(ctx, appID, accounts)
}

func (j *CommentSyncJob) syncApp(ctx context.Context, appID int64, accounts []*models.SocialAccount) int {
	specs := make([]publisher.FetchSpec, 0, len(accounts))
	for _, acc := range accounts {
		c, err := decryptAccountCredentials(j.cfg.SecretKey, acc)
		if err != nil {
			slog.Info("unable to decrypt account tokens", "account_id", acc.ID, "platform", acc.Platform)
			continue
		}
		specs = append(specs, publisher.FetchSpec{
			Platform:    acc.Platform,
			Credentials: c,
			Target:      accountTarget(acc),
		})
	}

	comments := j.aggregator.Aggregate(ctx, specs)

	synced := 0
	for _, comment := range comments {
		exists, err := j.cr.Exists(ctx, comment.Platform, comment.ID)
		if err != nil {
			slog.Info(err.Error())
			continue
		}
		if exists {
			continue
		}

		row := models.CommunityComment{
			AppID:             appID,
			Platform:          comment.Platform,
			PlatformCommentID: comment.ID,
			CommentText:       comment.Text,
			PlatformUserID:    comment.AuthorID,
			PlatformUsername:  comment.AuthorUsername,
			PostURL:           comment.PostURL,
			CommentedAt:       comment.CreatedAt,
			SyncedAt:          time.Now().UTC(),
		}

		// Sentiment is best effort. A failed classification stores the
		// comment with null sentiment fields rather than dropping it.
		if j.sentiment != nil {
			if result, err := j.sentiment.Classify(ctx, comment.Text, comment.Platform+" comment"); err == nil {
				row.SentimentScore.Valid = true
				row.SentimentScore.Float64 = result.Score
				row.SentimentLabel.Valid = true
				row.SentimentLabel.String = result.Label
			}
		}

		if _, err := j.cr.Create(ctx, &row); err != nil {
			slog.Info(err.Error())
			continue
		}
		synced++
	}

	return synced
}
