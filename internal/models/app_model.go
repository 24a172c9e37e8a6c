package models

import "time"

type MarketingApp struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Tagline   string    `db:"tagline" json:"tagline"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
