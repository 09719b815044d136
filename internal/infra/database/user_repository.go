package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/lib/pq"

	"github.com/xavierca1/leadhub/internal/entity"
)

// Index names referenced when translating unique violations.
const (
	usernameUniqueIndex      = "users_username_key"
	verifiedEmailUniqueIndex = "users_verified_email_unique"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, username, email, password_hash, email_verified_at, remember_token, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.DB.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if translated := translateUniqueViolation(err); translated != nil {
			return translated
		}
		log.Printf("user insert failed: %v", err)
		return err
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepository) FindVerifiedByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND email_verified_at IS NOT NULL`,
		email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.EmailVerifiedAt,
		&u.RememberToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrRecordNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UsernameTaken(ctx context.Context, username string, ignoreID int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id != $2)`,
		username, ignoreID,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) VerifiedEmailTaken(ctx context.Context, email string, ignoreID int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM users
			WHERE email = $1 AND email_verified_at IS NOT NULL AND id != $2
		)`,
		email, ignoreID,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET username = $2, updated_at = NOW() WHERE id = $1`,
		id, username)
	if err != nil {
		if translated := translateUniqueViolation(err); translated != nil {
			return translated
		}
	}
	return err
}

func (r *UserRepository) ChangeEmail(ctx context.Context, id int64, email string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email = $2, email_verified_at = NULL, updated_at = NOW() WHERE id = $1`,
		id, email)
	return err
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, hash)
	return err
}

func (r *UserRepository) ResetPassword(ctx context.Context, id int64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, remember_token = NULL, updated_at = NOW() WHERE id = $1`,
		id, hash)
	return err
}

func (r *UserRepository) UpdateRememberToken(ctx context.Context, id int64, token *string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET remember_token = $2, updated_at = NOW() WHERE id = $1`,
		id, token)
	return err
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id int64) error {
	// The IS NULL guard keeps verification one-way and set-once.
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET email_verified_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND email_verified_at IS NULL`,
		id)
	if err != nil {
		if translated := translateUniqueViolation(err); translated != nil {
			return translated
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}

func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case usernameUniqueIndex:
		return entity.ErrDuplicateUsername
	case verifiedEmailUniqueIndex:
		return entity.ErrDuplicateVerifiedEmail
	}
	return nil
}
