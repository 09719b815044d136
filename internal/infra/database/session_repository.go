package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/leadhub/internal/entity"
)

type SessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, s.Token, s.UserID, s.ExpiresAt).Scan(&s.CreatedAt)
}

func (r *SessionRepository) FindValid(ctx context.Context, token string) (*entity.Session, error) {
	var s entity.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrRecordNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}
