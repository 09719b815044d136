package entity

import (
	"context"
	"time"
)

type LeadStatusType string

const (
	LeadStatusNew     LeadStatusType = "NEW"
	LeadStatusPending LeadStatusType = "PENDING"
	LeadStatusDone    LeadStatusType = "DONE"
)

func (t LeadStatusType) Valid() bool {
	switch t {
	case LeadStatusNew, LeadStatusPending, LeadStatusDone:
		return true
	}
	return false
}

type Lead struct {
	ID        int64          `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Phone     string         `json:"phone"`
	Email     string         `json:"email"`
	Appeal    *string        `json:"appeal"`
	Status    LeadStatusType `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// LeadStatus is one row of the append-only status history. The lead's
// current status is the most recent row, NEW when none exist.
type LeadStatus struct {
	ID        int64          `json:"id"`
	LeadID    int64          `json:"lead_id"`
	Type      LeadStatusType `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
}

// LeadUpdate carries a partial update; nil fields are left untouched.
type LeadUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	Appeal    *string
}

type LeadPage struct {
	Records      []*Lead
	CurrentPage  int
	TotalPages   int
	TotalRecords int
}

type LeadRepositoryInterface interface {
	// Create persists the lead together with its initial NEW status in
	// one transaction; a lead must never exist without a status row.
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id int64) (*Lead, error)
	// List and ListPage trust sortField to come from the sortable-column
	// whitelist; they interpolate it into the ORDER BY clause.
	List(ctx context.Context, sortField string, desc bool) ([]*Lead, error)
	ListPage(ctx context.Context, sortField string, desc bool, page, perPage int) (*LeadPage, error)
	Update(ctx context.Context, id int64, upd LeadUpdate) error
	AppendStatus(ctx context.Context, leadID int64, t LeadStatusType) error
	Delete(ctx context.Context, id int64) error
	// CountByCurrentStatus aggregates leads by their current (latest)
	// status; statuses with no leads are absent from the map.
	CountByCurrentStatus(ctx context.Context) (map[LeadStatusType]int, error)
}
