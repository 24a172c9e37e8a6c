package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/solodevhq/megaphone/internal/models"
)

type AppRepository interface {
	GetByID(ctx context.Context, id int64) (*models.MarketingApp, error)
	CheckByUserID(ctx context.Context, appID, userID int64) (bool, error)
}

type appRepository struct {
	db *sql.DB
}

func NewAppRepository(db *sql.DB) AppRepository {
	return &appRepository{db: db}
}

func (r *appRepository) GetByID(ctx context.Context, id int64) (*models.MarketingApp, error) {
	query := `SELECT id, user_id, name, tagline, created_at FROM marketing_apps WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var app models.MarketingApp
	err := row.Scan(&app.ID, &app.UserID, &app.Name, &app.Tagline, &app.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &app, nil
}

func (r *appRepository) CheckByUserID(ctx context.Context, appID, userID int64) (bool, error) {
	query := `SELECT 1 FROM marketing_apps WHERE id = $1 AND user_id = $2`

	var result int
	err := r.db.QueryRowContext(ctx, query, appID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
