package handlers

import (
	"net/http"

	"github.com/xavierca1/leadhub/internal/infra/http/middleware"
	"github.com/xavierca1/leadhub/internal/usecase"
)

// SettingsHandler serves the authenticated account-settings endpoints;
// RequireUser guards every route so the principal is always present.
type SettingsHandler struct {
	Settings *usecase.SettingsUseCase
}

func NewSettingsHandler(settings *usecase.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{Settings: settings}
}

func (h *SettingsHandler) HandleChangeUsername(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangeUsernameInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if err := h.Settings.ChangeUsername(r.Context(), user, input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w)
}

func (h *SettingsHandler) HandleChangeEmail(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangeEmailInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if err := h.Settings.ChangeEmail(r.Context(), user, input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w)
}

func (h *SettingsHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var input usecase.ChangePasswordInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	user := middleware.UserFromContext(r.Context())
	if err := h.Settings.ChangePassword(r.Context(), user, input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccess(w)
}
