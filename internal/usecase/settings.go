package usecase

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/leadhub/internal/entity"
)

// SettingsUseCase mutates the authenticated account. The principal is
// always passed in explicitly; there is no ambient current user.
type SettingsUseCase struct {
	Users  entity.UserRepositoryInterface
	Mail   MailQueueInterface
	Signer LinkSignerInterface
	AppURL string
}

func NewSettingsUseCase(
	users entity.UserRepositoryInterface,
	mailQueue MailQueueInterface,
	signer LinkSignerInterface,
	appURL string,
) *SettingsUseCase {
	return &SettingsUseCase{Users: users, Mail: mailQueue, Signer: signer, AppURL: appURL}
}

func (uc *SettingsUseCase) ChangeUsername(ctx context.Context, user *entity.User, input ChangeUsernameInput) error {
	v := Violations{}
	if input.Username == "" {
		v.Add("username", msgRequired)
	} else {
		for _, msg := range validateUsernameSyntax(input.Username) {
			v.Add("username", msg)
		}
		taken, err := uc.Users.UsernameTaken(ctx, input.Username, user.ID)
		if err != nil {
			return err
		}
		if taken {
			v.Add("username", msgUsernameTaken)
		}
	}
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	if err := uc.Users.UpdateUsername(ctx, user.ID, input.Username); err != nil {
		if errors.Is(err, entity.ErrDuplicateUsername) {
			return &ValidationErrors{Fields: Violations{"username": {msgUsernameTaken}}}
		}
		return err
	}
	user.Username = input.Username
	return nil
}

// ChangeEmail drops the verification timestamp: the new address starts
// unverified and gets a fresh signed link.
func (uc *SettingsUseCase) ChangeEmail(ctx context.Context, user *entity.User, input ChangeEmailInput) error {
	v := Violations{}
	if input.Email == "" {
		v.Add("email", msgRequired)
	} else if !isValidEmail(input.Email) {
		v.Add("email", msgInvalidEmail)
	} else {
		if input.EmailConfirmation == "" {
			v.Add("email_confirmation", msgRequired)
		} else if input.Email != input.EmailConfirmation {
			v.Add("email", msgEmailConfirm)
		}
		taken, err := uc.Users.VerifiedEmailTaken(ctx, input.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			v.Add("email", msgEmailVerified)
		}
	}
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	if err := uc.Users.ChangeEmail(ctx, user.ID, input.Email); err != nil {
		return err
	}
	user.Email = input.Email
	user.EmailVerifiedAt = nil

	publishVerificationMail(ctx, uc.Mail, uc.Signer, uc.AppURL, user)
	return nil
}

func (uc *SettingsUseCase) ChangePassword(ctx context.Context, user *entity.User, input ChangePasswordInput) error {
	v := Violations{}
	validatePassword(input.Password, input.PasswordConfirmation, v)
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.Users.UpdatePasswordHash(ctx, user.ID, string(hash))
}
