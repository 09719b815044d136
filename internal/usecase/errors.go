package usecase

import "fmt"

// ValidationErrors is field-scoped and always complete: every rule for
// every field ran before it was built.
type ValidationErrors struct {
	Fields Violations
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func AsValidationErrors(err error) (*ValidationErrors, bool) {
	e, ok := err.(*ValidationErrors)
	return e, ok
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// Domain-flow error codes mapped to HTTP statuses at the handler
// boundary. Credential failures stay deliberately vague; signed-link
// failures carry specific reasons since link contents are not secret.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidLink        = "invalid_link"
	CodeEmailMismatch      = "email_mismatch"
	CodeAlreadyVerified    = "already_verified"
	CodeEmailConflict      = "email_conflict"
	CodeResetTokenInvalid  = "reset_token_invalid"
	CodeResetTokenExpired  = "reset_token_expired"
	CodeResetThrottled     = "reset_throttled"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func AsDomainError(err error) (*DomainError, bool) {
	e, ok := err.(*DomainError)
	return e, ok
}

// TechnicalError covers persistence failures after all checks passed;
// the client only ever sees the generic message.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

const msgInternal = "Произошла внутренняя ошибка. Попробуйте позже."

func internalError() *TechnicalError {
	return &TechnicalError{Code: "persistence", Message: msgInternal}
}
