package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/solodevhq/megaphone/internal/models"
)

type SocialPostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.SocialPost, error)
	Create(ctx context.Context, post *models.SocialPost) (int64, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialPost, error)
	ListDue(ctx context.Context, before time.Time, limit int) ([]*models.SocialPost, error)
	UpdateStatus(ctx context.Context, status string, postID int64) error
	SetPublishOutcome(ctx context.Context, postID int64, status string, results []byte, errorMessage string) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type socialPostRepository struct {
	db *sql.DB
}

func NewSocialPostRepository(db *sql.DB) SocialPostRepository {
	return &socialPostRepository{db: db}
}

const socialPostColumns = `id, app_id, user_id, content, title, platforms, platform_content, media_urls, scheduled_for, status, publish_results, error_message, created_at, updated_at`

func (r *socialPostRepository) Create(ctx context.Context, post *models.SocialPost) (int64, error) {
	query := `
		INSERT INTO social_posts (app_id, user_id, content, title, platforms, platform_content, media_urls, scheduled_for, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	platformContent, err := json.Marshal(post.PlatformContent)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		post.AppID,
		post.UserID,
		post.Content,
		post.Title,
		pq.Array(post.Platforms),
		platformContent,
		pq.Array(post.MediaURLs),
		post.ScheduledFor,
		post.Status,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialPostRepository) GetByID(ctx context.Context, id int64) (*models.SocialPost, error) {
	query := `SELECT ` + socialPostColumns + ` FROM social_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	post, err := scanSocialPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *socialPostRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialPost, error) {
	query := `SELECT ` + socialPostColumns + ` FROM social_posts WHERE user_id = $1 ORDER BY scheduled_for DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectSocialPosts(rows)
}

// ListDue selects posts whose scheduled time has passed and that are still in
// the scheduled state. Terminal and in-flight posts are never selected, which
// makes overlapping cron invocations safe.
func (r *socialPostRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.SocialPost, error) {
	query := `SELECT ` + socialPostColumns + ` FROM social_posts WHERE status = $1 AND scheduled_for <= $2 ORDER BY scheduled_for ASC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, before, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectSocialPosts(rows)
}

func (r *socialPostRepository) UpdateStatus(ctx context.Context, status string, postID int64) error {
	query := `
		UPDATE social_posts
		SET status = $1,
			updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) SetPublishOutcome(ctx context.Context, postID int64, status string, results []byte, errorMessage string) error {
	query := `
		UPDATE social_posts
		SET status = $1,
			publish_results = $2,
			error_message = $3,
			updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, status, results, errorMessage, time.Now(), postID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *socialPostRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := `SELECT 1 FROM social_posts WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *socialPostRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM social_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSocialPost(row rowScanner) (*models.SocialPost, error) {
	var post models.SocialPost
	var platformContent []byte
	var publishResults sql.NullString
	var errorMessage sql.NullString

	err := row.Scan(
		&post.ID,
		&post.AppID,
		&post.UserID,
		&post.Content,
		&post.Title,
		pq.Array(&post.Platforms),
		&platformContent,
		pq.Array(&post.MediaURLs),
		&post.ScheduledFor,
		&post.Status,
		&publishResults,
		&errorMessage,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(platformContent) > 0 {
		if err := json.Unmarshal(platformContent, &post.PlatformContent); err != nil {
			return nil, err
		}
	}
	if publishResults.Valid {
		post.PublishResults = []byte(publishResults.String)
	}
	post.ErrorMessage = errorMessage.String

	return &post, nil
}

func collectSocialPosts(rows *sql.Rows) ([]*models.SocialPost, error) {
	var posts []*models.SocialPost
	for rows.Next() {
		post, err := scanSocialPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}
