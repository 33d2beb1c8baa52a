package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type systemUserRepository struct {
	db *sqlx.DB
}

func NewSystemUserRepository(db *sqlx.DB) SystemUserRepository {
	return &systemUserRepository{db: db}
}

func (r *systemUserRepository) GetPasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := r.db.GetContext(ctx, &hash, `SELECT password_hash FROM system_users WHERE user_id = 1`)
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (r *systemUserRepository) SetPasswordHash(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE system_users SET password_hash = ?, updated_at = ? WHERE user_id = 1`,
		hash, time.Now(),
	)
	return err
}

func (r *systemUserRepository) Seed(ctx context.Context, hash string, seededAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO system_users (user_id, password_hash, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		hash, seededAt,
	)
	return err
}
