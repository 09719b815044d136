package usecase

import (
	"time"

	"github.com/xavierca1/leadhub/internal/entity"
)

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type RegisterInput struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Remember             bool   `json:"remember"`
}

type VerifyEmailInput struct {
	UserID    int64
	Email     string
	Signature string
}

type ForgotPasswordInput struct {
	Email string `json:"email"`
}

type ResetPasswordInput struct {
	Token                string `json:"token"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ChangeUsernameInput struct {
	Username string `json:"username"`
}

type ChangeEmailInput struct {
	Email             string `json:"email"`
	EmailConfirmation string `json:"email_confirmation"`
}

type ChangePasswordInput struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// SessionOutput is what a successful login/registration hands the
// transport layer to build the session cookie from.
type SessionOutput struct {
	Token     string
	ExpiresAt time.Time
}

type LeadListInput struct {
	Page      *int
	PerPage   *int
	SortField string
	SortOrder *int
}

type LeadCreateInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Appeal    *string `json:"appeal"`
}

type LeadUpdateInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Appeal    *string `json:"appeal"`
}

type LeadStatusInput struct {
	Status string `json:"status"`
}

type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalRecords int `json:"total_records"`
}

type LeadListOutput struct {
	Records      []*entity.Lead `json:"records"`
	StatusCounts map[string]int `json:"status_counts"`
	Pagination   *Pagination    `json:"pagination,omitempty"`
}
