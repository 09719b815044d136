package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/xavierca1/leadhub/internal/usecase"
)

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// Envelope is the uniform response shape of the whole API.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Data    any                 `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, Envelope{Success: true})
}

func writeSuccessData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: false, Message: message})
}

func writeFieldErrors(w http.ResponseWriter, errs map[string][]string) {
	writeJSON(w, http.StatusBadRequest, Envelope{Success: false, Errors: errs})
}

func writeInvalidJSON(w http.ResponseWriter) {
	writeMessage(w, http.StatusBadRequest, "Некорректный JSON.")
}

// writeUsecaseError maps the usecase error taxonomy onto HTTP statuses.
// Nothing escapes as an unhandled fault: unknown errors become the
// generic internal message.
func writeUsecaseError(w http.ResponseWriter, err error) {
	if ve, ok := usecase.AsValidationErrors(err); ok {
		writeFieldErrors(w, ve.Fields)
		return
	}
	if usecase.IsNotFoundError(err) {
		writeMessage(w, http.StatusNotFound, err.Error())
		return
	}
	if de, ok := usecase.AsDomainError(err); ok {
		status := http.StatusBadRequest
		if de.Code == usecase.CodeInvalidCredentials {
			status = http.StatusUnauthorized
		}
		writeMessage(w, status, de.Message)
		return
	}
	if usecase.IsTechnicalError(err) {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("unhandled error at api boundary: %v", err)
	writeMessage(w, http.StatusInternalServerError, "Произошла внутренняя ошибка. Попробуйте позже.")
}
