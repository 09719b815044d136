package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/leadhub/internal/entity"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func emptyCounts() map[entity.LeadStatusType]int {
	return map[entity.LeadStatusType]int{}
}

func TestLeadCreateStartsInNewStatus(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	var created *entity.Lead
	leads.On("Create", mock.Anything, mock.AnythingOfType("*entity.Lead")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Lead)
			created.ID = 42
		}).
		Return(nil)

	lead, err := uc.Create(context.Background(), LeadCreateInput{
		FirstName: "Иван",
		LastName:  "Петров",
		Phone:     "+7 (926) 123-45-67",
		Email:     "ivan@example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), lead.ID)
	assert.Equal(t, entity.LeadStatusNew, created.Status)
	assert.Nil(t, created.Appeal)
}

func TestLeadCreateValidatesEveryField(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	longAppeal := make([]byte, 256)
	for i := range longAppeal {
		longAppeal[i] = 'a'
	}

	_, err := uc.Create(context.Background(), LeadCreateInput{
		FirstName: "",
		LastName:  "Петров",
		Phone:     "12345",
		Email:     "not-an-email",
		Appeal:    strPtr(string(longAppeal)),
	})

	ve, ok := AsValidationErrors(err)
	assert.True(t, ok)
	assert.Equal(t, []string{msgRequired}, ve.Fields["first_name"])
	assert.Equal(t, []string{msgInvalidPhone}, ve.Fields["phone"])
	assert.Equal(t, []string{msgInvalidEmail}, ve.Fields["email"])
	assert.Equal(t, []string{msgMax255}, ve.Fields["appeal"])
	assert.NotContains(t, ve.Fields, "last_name")
	leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLeadListDefaultsToNewestFirst(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("CountByCurrentStatus", mock.Anything).Return(emptyCounts(), nil)
	leads.On("List", mock.Anything, "created_at", true).Return([]*entity.Lead{}, nil)

	out, err := uc.List(context.Background(), LeadListInput{})

	assert.NoError(t, err)
	assert.Nil(t, out.Pagination, "no page params means no pagination block")
	leads.AssertExpectations(t)
}

func TestLeadListSortOrderZeroPinsCreatedAtDesc(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("CountByCurrentStatus", mock.Anything).Return(emptyCounts(), nil)
	leads.On("List", mock.Anything, "created_at", true).Return([]*entity.Lead{}, nil)

	// sort_order=0 overrides even an explicit sort_field.
	_, err := uc.List(context.Background(), LeadListInput{
		SortField: "email",
		SortOrder: intPtr(0),
	})

	assert.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestLeadListAscendingOnRequestedColumn(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("CountByCurrentStatus", mock.Anything).Return(emptyCounts(), nil)
	leads.On("List", mock.Anything, "last_name", false).Return([]*entity.Lead{}, nil)

	_, err := uc.List(context.Background(), LeadListInput{
		SortField: "last_name",
		SortOrder: intPtr(1),
	})

	assert.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestLeadListRejectsUnknownSortColumn(t *testing.T) {
	uc := NewLeadUseCase(new(MockLeadRepository))

	_, err := uc.List(context.Background(), LeadListInput{
		SortField: "password_hash; DROP TABLE leads",
	})

	ve, ok := AsValidationErrors(err)
	assert.True(t, ok)
	assert.Equal(t, []string{msgUnknownColumn}, ve.Fields["sort_field"])
}

func TestLeadListRejectsOutOfRangeSortOrder(t *testing.T) {
	uc := NewLeadUseCase(new(MockLeadRepository))

	_, err := uc.List(context.Background(), LeadListInput{SortOrder: intPtr(2)})

	ve, ok := AsValidationErrors(err)
	assert.True(t, ok)
	assert.Equal(t, []string{msgSortOrderRange}, ve.Fields["sort_order"])
}

func TestLeadListPaginatesWithDefaults(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("CountByCurrentStatus", mock.Anything).Return(map[entity.LeadStatusType]int{
		entity.LeadStatusNew:  3,
		entity.LeadStatusDone: 1,
	}, nil)
	leads.On("ListPage", mock.Anything, "created_at", true, 2, defaultPerPage).Return(&entity.LeadPage{
		Records:      []*entity.Lead{{ID: 11}},
		CurrentPage:  2,
		TotalPages:   2,
		TotalRecords: 14,
	}, nil)

	out, err := uc.List(context.Background(), LeadListInput{Page: intPtr(2)})

	assert.NoError(t, err)
	assert.Equal(t, 2, out.Pagination.CurrentPage)
	assert.Equal(t, 14, out.Pagination.TotalRecords)
	// Absent statuses still show up as zero.
	assert.Equal(t, map[string]int{"NEW": 3, "PENDING": 0, "DONE": 1}, out.StatusCounts)
	leads.AssertExpectations(t)
}

func TestLeadUpdateChecksExistenceBeforeValidation(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("FindByID", mock.Anything, int64(42)).Return(nil, entity.ErrRecordNotFound)

	// The payload is invalid too, but the missing lead wins.
	err := uc.Update(context.Background(), 42, LeadUpdateInput{Phone: strPtr("12345")})

	assert.True(t, IsNotFoundError(err))
	assert.Equal(t, "Лид с id 42 не найден.", err.Error())
	leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadUpdateAppliesPartialChanges(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("FindByID", mock.Anything, int64(42)).Return(&entity.Lead{ID: 42}, nil)
	leads.On("Update", mock.Anything, int64(42), mock.MatchedBy(func(upd entity.LeadUpdate) bool {
		return upd.Phone != nil && *upd.Phone == "89261234567" && upd.Email == nil
	})).Return(nil)

	err := uc.Update(context.Background(), 42, LeadUpdateInput{Phone: strPtr("89261234567")})

	assert.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestLeadUpdateRejectsInvalidFields(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("FindByID", mock.Anything, int64(42)).Return(&entity.Lead{ID: 42}, nil)

	err := uc.Update(context.Background(), 42, LeadUpdateInput{
		Phone: strPtr("12345"),
		Email: strPtr("broken"),
	})

	ve, ok := AsValidationErrors(err)
	assert.True(t, ok)
	assert.Equal(t, []string{msgInvalidPhone}, ve.Fields["phone"])
	assert.Equal(t, []string{msgInvalidEmail}, ve.Fields["email"])
	leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadStatusChangeAppendsHistoryRow(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("FindByID", mock.Anything, int64(42)).Return(&entity.Lead{ID: 42, Status: entity.LeadStatusNew}, nil)
	leads.On("AppendStatus", mock.Anything, int64(42), entity.LeadStatusPending).Return(nil)

	err := uc.UpdateStatus(context.Background(), 42, LeadStatusInput{Status: "PENDING"})

	assert.NoError(t, err)
	leads.AssertExpectations(t)
}

func TestLeadStatusChangeRejectsUnknownStatus(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("FindByID", mock.Anything, int64(42)).Return(&entity.Lead{ID: 42}, nil)

	err := uc.UpdateStatus(context.Background(), 42, LeadStatusInput{Status: "ARCHIVED"})

	ve, ok := AsValidationErrors(err)
	assert.True(t, ok)
	assert.Equal(t, []string{msgInvalidStatus}, ve.Fields["status"])
	leads.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadDeleteIsNotIdempotent(t *testing.T) {
	leads := new(MockLeadRepository)
	uc := NewLeadUseCase(leads)

	leads.On("Delete", mock.Anything, int64(42)).Return(nil).Once()
	leads.On("Delete", mock.Anything, int64(42)).Return(entity.ErrRecordNotFound).Once()

	assert.NoError(t, uc.Delete(context.Background(), 42))

	err := uc.Delete(context.Background(), 42)
	assert.True(t, IsNotFoundError(err))
	leads.AssertExpectations(t)
}
