package usecase

import (
	"fmt"
	"net/mail"
	"regexp"

	"github.com/xavierca1/leadhub/internal/entity"
)

// Violations maps a field name to the ordered list of messages produced
// for it. Every rule of every field runs before a response goes out.
type Violations map[string][]string

func (v Violations) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v Violations) Empty() bool {
	return len(v) == 0
}

const (
	msgRequired        = "Поле обязательно для заполнения."
	msgMustBeInteger   = "Значение должно быть целым числом."
	msgInvalidEmail    = "Укажите корректный E-mail адрес."
	msgMax255          = "Значение не может быть длиннее 255 символов."
	msgUsernameMin     = "Имя пользователя должно содержать не менее 3 символов."
	msgUsernameMax     = "Имя пользователя не может быть длиннее 20 символов."
	msgUsernameCharset = "Имя пользователя может содержать только английские буквы, цифры, дефисы и нижние подчеркивания."
	msgUsernameOnlySep = "Имя пользователя не может состоять только из дефисов или нижних подчеркиваний."
	msgUsernameTaken   = "Это имя пользователя уже занято."
	msgEmailVerified   = "Данный E-mail уже используется и подтвержден на одном из аккаунтов."
	msgPasswordMin     = "Пароль должен содержать не менее 8 символов."
	msgPasswordConfirm = "Пароль не совпадает с подтверждением."
	msgEmailConfirm    = "E-mail не совпадает с подтверждением."
	msgInvalidPhone    = "Укажите корректный номер мобильного телефона."
	msgUnknownColumn   = "Колонка с таким названием не существует."
	msgSortOrderRange  = "Порядок сортировки должен быть в диапазоне от -1 до 1."
	msgInvalidStatus   = "Недопустимый статус лида."
)

var (
	usernameCharsetRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	usernameOnlySepRe = regexp.MustCompile(`^[_-]+$`)

	// Russian mobile numbers: optional +7/7/8 prefix, operator code
	// starting with 4, 8 or 9, conventional separators allowed.
	russianPhoneRe = regexp.MustCompile(`^(\+7|7|8)?[\s\-]?\(?[489][0-9]{2}\)?[\s\-]?[0-9]{3}[\s\-]?[0-9]{2}[\s\-]?[0-9]{2}$`)
)

// leadSortableColumns is the static whitelist standing in for a live
// schema lookup; anything else is rejected before it can reach ORDER BY.
var leadSortableColumns = map[string]bool{
	"id":         true,
	"first_name": true,
	"last_name":  true,
	"phone":      true,
	"email":      true,
	"appeal":     true,
	"created_at": true,
	"updated_at": true,
}

func validateUsernameSyntax(username string) []string {
	var msgs []string
	if n := len(username); n < 3 {
		msgs = append(msgs, msgUsernameMin)
	} else if n > 20 {
		msgs = append(msgs, msgUsernameMax)
	}

	// Length and charset are independent rules and may fail together.
	// The composition check is the one exception: it is skipped when the
	// charset check already failed, those two never fire together.
	if !usernameCharsetRe.MatchString(username) {
		msgs = append(msgs, msgUsernameCharset)
	} else if usernameOnlySepRe.MatchString(username) {
		msgs = append(msgs, msgUsernameOnlySep)
	}
	return msgs
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

func isValidRussianPhone(phone string) bool {
	return russianPhoneRe.MatchString(phone)
}

func isSortableLeadColumn(column string) bool {
	return leadSortableColumns[column]
}

func validatePassword(password, confirmation string, v Violations) {
	if password == "" {
		v.Add("password", msgRequired)
		return
	}
	if len(password) < 8 {
		v.Add("password", msgPasswordMin)
	}
	if confirmation == "" {
		v.Add("password_confirmation", msgRequired)
	} else if password != confirmation {
		v.Add("password", msgPasswordConfirm)
	}
}

func validateLeadStatus(status string, v Violations) {
	if status == "" {
		v.Add("status", msgRequired)
		return
	}
	if !entity.LeadStatusType(status).Valid() {
		v.Add("status", msgInvalidStatus)
	}
}

func validateLeadField(field, value string, v Violations) {
	switch field {
	case "first_name", "last_name", "appeal":
		if len(value) > 255 {
			v.Add(field, msgMax255)
		}
	case "phone":
		if !isValidRussianPhone(value) {
			v.Add(field, msgInvalidPhone)
		}
	case "email":
		if !isValidEmail(value) {
			v.Add(field, msgInvalidEmail)
		} else if len(value) > 255 {
			v.Add(field, msgMax255)
		}
	default:
		panic(fmt.Sprintf("unknown lead field %q", field))
	}
}
