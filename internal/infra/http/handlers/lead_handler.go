package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/leadhub/internal/infra/http/middleware"
	"github.com/xavierca1/leadhub/internal/usecase"
)

type LeadHandler struct {
	Leads *usecase.LeadUseCase
}

func NewLeadHandler(leads *usecase.LeadUseCase) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := usecase.LeadListInput{SortField: query.Get("sort_field")}
	v := usecase.Violations{}

	input.Page = parseIntParam(query.Get("page"), "page", v)
	input.PerPage = parseIntParam(query.Get("per_page"), "per_page", v)
	input.SortOrder = parseIntParam(query.Get("sort_order"), "sort_order", v)

	if !v.Empty() {
		writeFieldErrors(w, v)
		return
	}

	output, err := h.Leads.List(r.Context(), input)
	if err != nil {
		writeUsecaseError(w, err)
		return
	}

	writeSuccessData(w, output)
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.LeadCreateInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if _, err := h.Leads.Create(r.Context(), input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadMutation("create")
	writeSuccess(w)
}

func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.leadID(w, r)
	if !ok {
		return
	}

	var input usecase.LeadUpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if err := h.Leads.Update(r.Context(), id, input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadMutation("update")
	writeSuccess(w)
}

func (h *LeadHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.leadID(w, r)
	if !ok {
		return
	}

	var input usecase.LeadStatusInput
	if err := decodeJSON(r, &input); err != nil {
		writeInvalidJSON(w)
		return
	}

	if err := h.Leads.UpdateStatus(r.Context(), id, input); err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadMutation("update_status")
	writeSuccess(w)
}

func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.leadID(w, r)
	if !ok {
		return
	}

	if err := h.Leads.Delete(r.Context(), id); err != nil {
		writeUsecaseError(w, err)
		return
	}

	middleware.RecordLeadMutation("delete")
	writeSuccess(w)
}

// leadID parses the path id; a non-numeric id reads as an unknown lead.
func (h *LeadHandler) leadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Лид с id %s не найден.", raw))
		return 0, false
	}
	return id, true
}

func parseIntParam(raw, field string, v usecase.Violations) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(field, "Значение должно быть целым числом.")
		return nil
	}
	return &n
}
