package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/leadhub/internal/entity"
)

type PasswordResetRepository struct {
	DB *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) *PasswordResetRepository {
	return &PasswordResetRepository{DB: db}
}

// Upsert keeps at most one pending reset per account; a new request
// invalidates the previous token.
func (r *PasswordResetRepository) Upsert(ctx context.Context, t *entity.PasswordResetToken) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`, t.UserID, t.TokenHash, t.CreatedAt, t.ExpiresAt)
	return err
}

func (r *PasswordResetRepository) Find(ctx context.Context, userID int64) (*entity.PasswordResetToken, error) {
	var t entity.PasswordResetToken
	err := r.DB.QueryRowContext(ctx, `
		SELECT user_id, token_hash, created_at, expires_at
		FROM password_reset_tokens
		WHERE user_id = $1
	`, userID).Scan(&t.UserID, &t.TokenHash, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrRecordNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PasswordResetRepository) Delete(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	return err
}
