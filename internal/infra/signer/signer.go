package signer

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidLink = errors.New("invalid or expired link signature")

// LinkSigner issues the tamper-evident signature segment of e-mail
// verification URLs: an HS256 token binding (account id, email) with an
// expiry. The link carries id and email in plain path segments; the
// signature only has to prove they were not altered.
type LinkSigner struct {
	secret []byte
	ttl    time.Duration
}

func New(secret string, ttl time.Duration) *LinkSigner {
	return &LinkSigner{secret: []byte(secret), ttl: ttl}
}

type linkClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *LinkSigner) Sign(userID int64, email string) (string, error) {
	now := time.Now()
	claims := linkClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *LinkSigner) Verify(signature string, userID int64, email string) error {
	token, err := jwt.ParseWithClaims(signature, &linkClaims{}, func(t *jwt.Token) (interface{}, error) {
		// HS* only; reject anything that tries to switch algorithms.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidLink
	}

	claims, ok := token.Claims.(*linkClaims)
	if !ok {
		return ErrInvalidLink
	}
	if claims.Subject != strconv.FormatInt(userID, 10) || claims.Email != email {
		return ErrInvalidLink
	}
	return nil
}
