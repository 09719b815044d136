package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/leadhub/internal/entity"
	"github.com/xavierca1/leadhub/internal/infra/http/middleware"
	"github.com/xavierca1/leadhub/internal/infra/queue"
)

const (
	sessionTTL         = 24 * time.Hour
	sessionRememberTTL = 30 * 24 * time.Hour
	resetTokenTTL      = time.Hour
	resetRetryAfter    = time.Minute
)

const (
	msgInvalidCredentials = "Неверное имя пользователя или пароль."
	msgInvalidLink        = "Недействительная ссылка подтверждения E-mail адреса."
	msgEmailNotVerified   = "Данный E-mail не подтвержден ни на одном аккаунте."
	msgResetTokenInvalid  = "Токен сброса пароля недействителен."
	msgResetTokenExpired  = "Срок действия токена сброса пароля истёк."
	msgResetThrottled     = "Пожалуйста, подождите перед повторной попыткой."
)

type AuthUseCase struct {
	Users    entity.UserRepositoryInterface
	Sessions entity.SessionRepositoryInterface
	Resets   entity.PasswordResetRepositoryInterface
	Mail     MailQueueInterface
	Signer   LinkSignerInterface
	// AppURL is the public base URL links in outgoing mail point at.
	AppURL string
}

func NewAuthUseCase(
	users entity.UserRepositoryInterface,
	sessions entity.SessionRepositoryInterface,
	resets entity.PasswordResetRepositoryInterface,
	mailQueue MailQueueInterface,
	signer LinkSignerInterface,
	appURL string,
) *AuthUseCase {
	return &AuthUseCase{
		Users:    users,
		Sessions: sessions,
		Resets:   resets,
		Mail:     mailQueue,
		Signer:   signer,
		AppURL:   appURL,
	}
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*SessionOutput, error) {
	v := Violations{}
	if input.Username == "" {
		v.Add("username", msgRequired)
	}
	if input.Password == "" {
		v.Add("password", msgRequired)
	}
	if !v.Empty() {
		return nil, &ValidationErrors{Fields: v}
	}

	user, err := uc.Users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			// Same message as a wrong password: never reveal which
			// field was wrong.
			return nil, &DomainError{Code: CodeInvalidCredentials, Message: msgInvalidCredentials}
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, &DomainError{Code: CodeInvalidCredentials, Message: msgInvalidCredentials}
	}

	return uc.startSession(ctx, user.ID, input.Remember)
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*SessionOutput, error) {
	v := Violations{}

	if input.Username == "" {
		v.Add("username", msgRequired)
	} else {
		for _, msg := range validateUsernameSyntax(input.Username) {
			v.Add("username", msg)
		}
		taken, err := uc.Users.UsernameTaken(ctx, input.Username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			v.Add("username", msgUsernameTaken)
		}
	}

	if input.Email == "" {
		v.Add("email", msgRequired)
	} else if !isValidEmail(input.Email) {
		v.Add("email", msgInvalidEmail)
	} else {
		taken, err := uc.Users.VerifiedEmailTaken(ctx, input.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			v.Add("email", msgEmailVerified)
		}
	}

	validatePassword(input.Password, input.PasswordConfirmation, v)

	if !v.Empty() {
		return nil, &ValidationErrors{Fields: v}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := uc.Users.Create(ctx, user); err != nil {
		// The unique index closes the check-then-insert race; surface
		// it as the same field error the pre-check would have produced.
		if errors.Is(err, entity.ErrDuplicateUsername) {
			return nil, &ValidationErrors{Fields: Violations{"username": {msgUsernameTaken}}}
		}
		return nil, err
	}

	uc.publishVerificationMail(ctx, user)

	// Registration auto-logs-in; the account starts unverified.
	return uc.startSession(ctx, user.ID, input.Remember)
}

func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return uc.Sessions.Delete(ctx, token)
}

func (uc *AuthUseCase) VerifyEmail(ctx context.Context, input VerifyEmailInput) error {
	if err := uc.Signer.Verify(input.Signature, input.UserID, input.Email); err != nil {
		return &DomainError{Code: CodeInvalidLink, Message: msgInvalidLink}
	}

	user, err := uc.Users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return &DomainError{Code: CodeInvalidLink, Message: msgInvalidLink}
		}
		return err
	}

	if user.Email != input.Email {
		return &DomainError{
			Code:    CodeEmailMismatch,
			Message: fmt.Sprintf("Текущий E-mail адрес пользователя %s отличается от E-mail адреса в ссылке.", user.Username),
		}
	}

	if user.HasVerifiedEmail() {
		return &DomainError{
			Code:    CodeAlreadyVerified,
			Message: fmt.Sprintf("E-mail адрес %s пользователя %s уже подтвержден.", input.Email, user.Username),
		}
	}

	taken, err := uc.Users.VerifiedEmailTaken(ctx, user.Email, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return &DomainError{
			Code:    CodeEmailConflict,
			Message: fmt.Sprintf("E-mail адрес %s уже подтвержден у другого пользователя.", user.Email),
		}
	}

	if err := uc.Users.MarkEmailVerified(ctx, user.ID); err != nil {
		if errors.Is(err, entity.ErrDuplicateVerifiedEmail) {
			// Lost the race against another account verifying the same
			// address between the check and the update.
			return &DomainError{
				Code:    CodeEmailConflict,
				Message: fmt.Sprintf("E-mail адрес %s уже подтвержден у другого пользователя.", user.Email),
			}
		}
		if errors.Is(err, entity.ErrRecordNotFound) {
			// The IS NULL guard matched nothing: the account got verified
			// between our read and the update.
			return &DomainError{
				Code:    CodeAlreadyVerified,
				Message: fmt.Sprintf("E-mail адрес %s пользователя %s уже подтвержден.", input.Email, user.Username),
			}
		}
		log.Printf("mark email verified failed for user %d: %v", user.ID, err)
		return internalError()
	}

	return nil
}

func (uc *AuthUseCase) ForgotPassword(ctx context.Context, input ForgotPasswordInput) error {
	v := Violations{}
	if input.Email == "" {
		v.Add("email", msgRequired)
	} else if !isValidEmail(input.Email) {
		v.Add("email", msgInvalidEmail)
	}
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	// Only verified emails receive reset links. The message reveals
	// whether the address is verified, not whether it exists; that
	// partial leak is the documented behavior.
	user, err := uc.Users.FindVerifiedByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return &ValidationErrors{Fields: Violations{"email": {msgEmailNotVerified}}}
		}
		return err
	}

	if prev, err := uc.Resets.Find(ctx, user.ID); err == nil {
		if time.Since(prev.CreatedAt) < resetRetryAfter {
			return &DomainError{Code: CodeResetThrottled, Message: msgResetThrottled}
		}
	} else if !errors.Is(err, entity.ErrRecordNotFound) {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	rec := &entity.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(token),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := uc.Resets.Upsert(ctx, rec); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s&email=%s", uc.AppURL, token, url.QueryEscape(user.Email))
	uc.publishMail(ctx, queue.MailJob{
		Kind:     queue.MailKindPasswordReset,
		To:       user.Email,
		Username: user.Username,
		Link:     link,
	})

	return nil
}

func (uc *AuthUseCase) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	v := Violations{}
	if input.Token == "" {
		v.Add("token", msgRequired)
	}
	if input.Email == "" {
		v.Add("email", msgRequired)
	} else if !isValidEmail(input.Email) {
		v.Add("email", msgInvalidEmail)
	}
	validatePassword(input.Password, input.PasswordConfirmation, v)
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	user, err := uc.Users.FindVerifiedByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return &DomainError{
				Code:    CodeResetTokenInvalid,
				Message: fmt.Sprintf("E-mail %s не подтвержден ни на одном аккаунте.", input.Email),
			}
		}
		return err
	}

	rec, err := uc.Resets.Find(ctx, user.ID)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return &DomainError{Code: CodeResetTokenInvalid, Message: msgResetTokenInvalid}
		}
		return err
	}
	if rec.TokenHash != hashResetToken(input.Token) {
		return &DomainError{Code: CodeResetTokenInvalid, Message: msgResetTokenInvalid}
	}
	if time.Now().After(rec.ExpiresAt) {
		return &DomainError{Code: CodeResetTokenExpired, Message: msgResetTokenExpired}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.Users.ResetPassword(ctx, user.ID, string(hash)); err != nil {
		log.Printf("password reset failed for user %d: %v", user.ID, err)
		return internalError()
	}

	// Single use: burn the token and revoke every live session.
	if err := uc.Resets.Delete(ctx, user.ID); err != nil {
		log.Printf("reset token cleanup failed for user %d: %v", user.ID, err)
	}
	if err := uc.Sessions.DeleteByUser(ctx, user.ID); err != nil {
		log.Printf("session revocation failed for user %d: %v", user.ID, err)
	}

	return nil
}

// ResendVerification re-issues the signed link for the authenticated,
// still-unverified account.
func (uc *AuthUseCase) ResendVerification(ctx context.Context, user *entity.User) error {
	if user.HasVerifiedEmail() {
		return &DomainError{
			Code:    CodeAlreadyVerified,
			Message: "E-mail данного пользователя уже подтверждён.",
		}
	}
	uc.publishVerificationMail(ctx, user)
	return nil
}

func (uc *AuthUseCase) startSession(ctx context.Context, userID int64, remember bool) (*SessionOutput, error) {
	ttl := sessionTTL
	if remember {
		ttl = sessionRememberTTL
		token := uuid.NewString()
		if err := uc.Users.UpdateRememberToken(ctx, userID, &token); err != nil {
			return nil, err
		}
	}

	session := &entity.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := uc.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &SessionOutput{Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (uc *AuthUseCase) publishVerificationMail(ctx context.Context, user *entity.User) {
	publishVerificationMail(ctx, uc.Mail, uc.Signer, uc.AppURL, user)
}

func (uc *AuthUseCase) publishMail(ctx context.Context, job queue.MailJob) {
	if err := uc.Mail.PublishMail(ctx, job); err != nil {
		log.Printf("mail publish failed (%s to %s): %v", job.Kind, job.To, err)
	}
}

// publishVerificationMail is shared with the settings flow, which also
// re-sends links after an email change. The mail counter moves with the
// publish so a failed sign or publish is never counted.
func publishVerificationMail(ctx context.Context, q MailQueueInterface, s LinkSignerInterface, appURL string, user *entity.User) {
	sig, err := s.Sign(user.ID, user.Email)
	if err != nil {
		log.Printf("verification link signing failed for user %d: %v", user.ID, err)
		return
	}
	link := fmt.Sprintf("%s/email/verify/%d/%s/%s", appURL, user.ID, url.PathEscape(user.Email), sig)
	job := queue.MailJob{
		Kind:     queue.MailKindVerification,
		To:       user.Email,
		Username: user.Username,
		Link:     link,
	}
	if err := q.PublishMail(ctx, job); err != nil {
		log.Printf("mail publish failed (%s to %s): %v", job.Kind, job.To, err)
		return
	}
	middleware.RecordVerificationMail()
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Tokens are stored hashed so a leaked table does not leak usable links.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
