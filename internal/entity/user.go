package entity

import (
	"context"
	"time"
)

type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	RememberToken   *string    `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) HasVerifiedEmail() bool {
	return u.EmailVerifiedAt != nil
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// FindVerifiedByEmail matches only accounts whose email is verified.
	FindVerifiedByEmail(ctx context.Context, email string) (*User, error)

	// UsernameTaken checks all accounts; ignoreID excludes one account
	// (pass 0 to exclude nobody).
	UsernameTaken(ctx context.Context, username string, ignoreID int64) (bool, error)
	// VerifiedEmailTaken checks whether a *verified* account holds the
	// email; ignoreID excludes one account.
	VerifiedEmailTaken(ctx context.Context, email string, ignoreID int64) (bool, error)

	UpdateUsername(ctx context.Context, id int64, username string) error
	// ChangeEmail replaces the address and drops the verification
	// timestamp in the same statement.
	ChangeEmail(ctx context.Context, id int64, email string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// ResetPassword replaces the hash and clears the remember token.
	ResetPassword(ctx context.Context, id int64, hash string) error
	UpdateRememberToken(ctx context.Context, id int64, token *string) error
	// MarkEmailVerified sets the verification timestamp once; it fails
	// with ErrRecordNotFound when the account is already verified (the
	// guard lives in the WHERE clause).
	MarkEmailVerified(ctx context.Context, id int64) error
}

type PasswordResetToken struct {
	UserID    int64
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// One pending reset per account: Upsert replaces any previous token.
type PasswordResetRepositoryInterface interface {
	Upsert(ctx context.Context, t *PasswordResetToken) error
	Find(ctx context.Context, userID int64) (*PasswordResetToken, error)
	Delete(ctx context.Context, userID int64) error
}
