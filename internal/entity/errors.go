package entity

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")

	ErrDuplicateUsername = errors.New("username already taken")

	// ErrDuplicateVerifiedEmail is raised by the partial unique index on
	// verified emails: at most one account may hold an email in verified
	// state at any time.
	ErrDuplicateVerifiedEmail = errors.New("email already verified on another account")
)
