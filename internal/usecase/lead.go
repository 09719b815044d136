package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/leadhub/internal/entity"
)

const defaultPerPage = 10

type LeadUseCase struct {
	Leads entity.LeadRepositoryInterface
}

func NewLeadUseCase(leads entity.LeadRepositoryInterface) *LeadUseCase {
	return &LeadUseCase{Leads: leads}
}

func (uc *LeadUseCase) List(ctx context.Context, input LeadListInput) (*LeadListOutput, error) {
	v := Violations{}
	if input.SortField != "" && !isSortableLeadColumn(input.SortField) {
		v.Add("sort_field", msgUnknownColumn)
	}
	if input.SortOrder != nil && (*input.SortOrder < -1 || *input.SortOrder > 1) {
		v.Add("sort_order", msgSortOrderRange)
	}
	if !v.Empty() {
		return nil, &ValidationErrors{Fields: v}
	}

	sortOrder := -1
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	}

	var sortField string
	var desc bool
	if sortOrder == 0 {
		// Order 0 pins the listing to newest-first regardless of any
		// requested field.
		sortField = "created_at"
		desc = true
	} else {
		sortField = input.SortField
		if sortField == "" {
			sortField = "created_at"
		}
		desc = sortOrder == -1
	}

	counts, err := uc.Leads.CountByCurrentStatus(ctx)
	if err != nil {
		return nil, err
	}
	statusCounts := map[string]int{
		string(entity.LeadStatusNew):     0,
		string(entity.LeadStatusPending): 0,
		string(entity.LeadStatusDone):    0,
	}
	for t, n := range counts {
		statusCounts[string(t)] = n
	}

	if input.Page == nil && input.PerPage == nil {
		records, err := uc.Leads.List(ctx, sortField, desc)
		if err != nil {
			return nil, err
		}
		return &LeadListOutput{Records: records, StatusCounts: statusCounts}, nil
	}

	page := 1
	if input.Page != nil && *input.Page > 0 {
		page = *input.Page
	}
	perPage := defaultPerPage
	if input.PerPage != nil && *input.PerPage > 0 {
		perPage = *input.PerPage
	}

	result, err := uc.Leads.ListPage(ctx, sortField, desc, page, perPage)
	if err != nil {
		return nil, err
	}
	return &LeadListOutput{
		Records:      result.Records,
		StatusCounts: statusCounts,
		Pagination: &Pagination{
			CurrentPage:  result.CurrentPage,
			TotalPages:   result.TotalPages,
			TotalRecords: result.TotalRecords,
		},
	}, nil
}

func (uc *LeadUseCase) Create(ctx context.Context, input LeadCreateInput) (*entity.Lead, error) {
	v := Violations{}
	uc.validateRequired(v, "first_name", input.FirstName)
	uc.validateRequired(v, "last_name", input.LastName)
	uc.validateRequired(v, "phone", input.Phone)
	uc.validateRequired(v, "email", input.Email)
	// Appeal is required but nullable: an explicit null passes, a
	// present value still obeys the length rule.
	if input.Appeal != nil {
		validateLeadField("appeal", *input.Appeal, v)
	}
	if !v.Empty() {
		return nil, &ValidationErrors{Fields: v}
	}

	lead := &entity.Lead{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Email:     input.Email,
		Appeal:    input.Appeal,
		Status:    entity.LeadStatusNew,
	}
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (uc *LeadUseCase) Update(ctx context.Context, id int64, input LeadUpdateInput) error {
	if _, err := uc.findLead(ctx, id); err != nil {
		return err
	}

	v := Violations{}
	if input.FirstName != nil {
		validateLeadField("first_name", *input.FirstName, v)
	}
	if input.LastName != nil {
		validateLeadField("last_name", *input.LastName, v)
	}
	if input.Phone != nil {
		validateLeadField("phone", *input.Phone, v)
	}
	if input.Email != nil {
		validateLeadField("email", *input.Email, v)
	}
	if input.Appeal != nil {
		validateLeadField("appeal", *input.Appeal, v)
	}
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	return uc.Leads.Update(ctx, id, entity.LeadUpdate{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Email:     input.Email,
		Appeal:    input.Appeal,
	})
}

func (uc *LeadUseCase) UpdateStatus(ctx context.Context, id int64, input LeadStatusInput) error {
	if _, err := uc.findLead(ctx, id); err != nil {
		return err
	}

	v := Violations{}
	validateLeadStatus(input.Status, v)
	if !v.Empty() {
		return &ValidationErrors{Fields: v}
	}

	// Append-only history: the new row becomes the current status.
	return uc.Leads.AppendStatus(ctx, id, entity.LeadStatusType(input.Status))
}

func (uc *LeadUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.Leads.Delete(ctx, id); err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return uc.notFound(id)
		}
		return err
	}
	return nil
}

func (uc *LeadUseCase) findLead(ctx context.Context, id int64) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return nil, uc.notFound(id)
		}
		return nil, err
	}
	return lead, nil
}

func (uc *LeadUseCase) notFound(id int64) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("Лид с id %d не найден.", id)}
}

func (uc *LeadUseCase) validateRequired(v Violations, field, value string) {
	if value == "" {
		v.Add(field, msgRequired)
		return
	}
	validateLeadField(field, value, v)
}
