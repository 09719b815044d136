package entity

import (
	"context"
	"time"
)

// Session is an opaque server-side token; one row per signed-in device.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *Session) error
	// FindValid resolves a token only while it is unexpired.
	FindValid(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	// DeleteByUser revokes every session of the account (password reset).
	DeleteByUser(ctx context.Context, userID int64) error
}
