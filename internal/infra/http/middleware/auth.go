package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xavierca1/leadhub/internal/entity"
)

// SessionCookie is the cookie carrying the opaque session token.
const SessionCookie = "session_token"

type contextKey string

const userContextKey contextKey = "authenticated_user"

// SessionAuth resolves the session cookie into an explicit principal
// and puts it on the request context; usecases never see ambient auth
// state, only the user handed to them.
type SessionAuth struct {
	Sessions entity.SessionRepositoryInterface
	Users    entity.UserRepositoryInterface
}

func NewSessionAuth(sessions entity.SessionRepositoryInterface, users entity.UserRepositoryInterface) *SessionAuth {
	return &SessionAuth{Sessions: sessions, Users: users}
}

func (a *SessionAuth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			unauthorized(w)
			return
		}

		session, err := a.Sessions.FindValid(r.Context(), cookie.Value)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := a.Users.FindByID(r.Context(), session.UserID)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated principal, nil outside of
// RequireUser-wrapped routes.
func UserFromContext(ctx context.Context) *entity.User {
	user, _ := ctx.Value(userContextKey).(*entity.User)
	return user
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": "Требуется аутентификация.",
	})
}
