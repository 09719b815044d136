package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/leadhub/internal/infra/http/middleware"
	"github.com/xavierca1/leadhub/internal/usecase"
)

type AuthHandler struct {
	Auth *usecase.AuthUseCase
	// Public credential endpoints share one IP limiter; the resend
	// link endpoint is throttled per account, 1 request a minute.
	loginLimiter  *RateLimiter
	resendLimiter *RateLimiter
}

func NewAuthHandler(auth *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		Auth:          auth,
		loginLimiter:  NewRateLimiter(10, time.Minute),
		resendLimiter: NewRateLimiter(1, time.Minute),
	}
}

// remember defaults to true when the client leaves it out.
type credentialsRequest struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Remember             *bool  `json:"remember"`
}

func (req *credentialsRequest) remember() bool {
	return req.Remember == nil || *req.Remember
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(getClientIP(r)) {
		writeMessage(w, http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже.")
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	session, err := h.Auth.Login(r.Context(), usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Remember: req.remember(),
	})
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	setSessionCookie(w, session)
	writeSuccess(w)
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(getClientIP(r)) {
		writeMessage(w, http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже.")
		return
	}

	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	session, err := h.Auth.Register(r.Context(), usecase.RegisterInput{
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Remember:             req.remember(),
	})
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordRegistration()

	setSessionCookie(w, session)
	writeSuccess(w)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.Auth.Logout(r.Context(), cookie.Value); err != nil {
			writeUsecaseError(w, err)
			return
		}
	}

	clearSessionCookie(w)
	writeSuccess(w)
}

func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Недействительная ссылка подтверждения E-mail адреса.")
		return
	}
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Недействительная ссылка подтверждения E-mail адреса.")
		return
	}

	verifyErr := h.Auth.VerifyEmail(r.Context(), usecase.VerifyEmailInput{
		UserID:    id,
		Email:     email,
		Signature: chi.URLParam(r, "signature"),
	})
	if verifyErr != nil {
		writeUsecaseError(w, verifyErr)
		return
	}

	writeSuccess(w)
}

func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !h.loginLimiter.Allow(getClientIP(r)) {
		writeMessage(w, http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже.")
		return
	}

	var input usecase.ForgotPasswordInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if err := h.Auth.ForgotPassword(r.Context(), input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w)
}

func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input usecase.ResetPasswordInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if err := h.Auth.ResetPassword(r.Context(), input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w)
}

// HandleCurrentUser serializes the authenticated principal; the
// password hash and remember token never leave the server.
func (h *AuthHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	writeSuccessData(w, user)
}

func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if !h.resendLimiter.Allow(strconv.FormatInt(user.ID, 10)) {
		writeMessage(w, http.StatusTooManyRequests, "Слишком много запросов. Попробуйте позже.")
		return
	}

	if err := h.Auth.ResendVerification(r.Context(), user); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w)
}

func setSessionCookie(w http.ResponseWriter, session *usecase.SessionOutput) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
