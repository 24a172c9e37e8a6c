package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/solodevhq/megaphone/internal/models"
)

type CommentRepository interface {
	Exists(ctx context.Context, platform, platformCommentID string) (bool, error)
	Create(ctx context.Context, comment *models.CommunityComment) (int64, error)
	ListByAppID(ctx context.Context, appID int64, limit int) ([]*models.CommunityComment, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Exists checks identity by (platform, platform_comment_id), never by body
// text, since two distinct comments may share text.
func (r *commentRepository) Exists(ctx context.Context, platform, platformCommentID string) (bool, error) {
	query := `SELECT 1 FROM community_comments WHERE platform = $1 AND platform_comment_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, platform, platformCommentID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *commentRepository) Create(ctx context.Context, comment *models.CommunityComment) (int64, error) {
	query := `
		INSERT INTO community_comments (app_id, platform, platform_comment_id, comment_text, platform_user_id, platform_username, post_url, sentiment_score, sentiment_label, commented_at, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		comment.AppID,
		comment.Platform,
		comment.PlatformCommentID,
		comment.CommentText,
		comment.PlatformUserID,
		comment.PlatformUsername,
		comment.PostURL,
		comment.SentimentScore,
		comment.SentimentLabel,
		comment.CommentedAt,
		comment.SyncedAt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *commentRepository) ListByAppID(ctx context.Context, appID int64, limit int) ([]*models.CommunityComment, error) {
	query := `
		SELECT id, app_id, platform, platform_comment_id, comment_text, platform_user_id, platform_username, post_url, sentiment_score, sentiment_label, commented_at, synced_at
		FROM community_comments
		WHERE app_id = $1
		ORDER BY commented_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, appID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var comments []*models.CommunityComment
	for rows.Next() {
		var c models.CommunityComment
		err := rows.Scan(
			&c.ID,
			&c.AppID,
			&c.Platform,
			&c.PlatformCommentID,
			&c.CommentText,
			&c.PlatformUserID,
			&c.PlatformUsername,
			&c.PostURL,
			&c.SentimentScore,
			&c.SentimentLabel,
			&c.CommentedAt,
			&c.SyncedAt,
		)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, nil
}
