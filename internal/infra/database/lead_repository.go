package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xavierca1/leadhub/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

// Every read resolves the current status inline: latest history row,
// NEW when the history is empty.
const leadSelect = `
	SELECT l.id, l.first_name, l.last_name, l.phone, l.email, l.appeal,
	       COALESCE(s.type, 'NEW') AS status,
	       l.created_at, l.updated_at
	FROM leads l
	LEFT JOIN LATERAL (
		SELECT type FROM lead_statuses
		WHERE lead_id = l.id
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	) s ON true
`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	// Lead and initial status are one unit: a lead must never exist
	// without a status row.
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO leads (first_name, last_name, phone, email, appeal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, lead.FirstName, lead.LastName, lead.Phone, lead.Email, lead.Appeal).
		Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_statuses (lead_id, type, created_at)
		VALUES ($1, $2, NOW())
	`, lead.ID, entity.LeadStatusNew)
	if err != nil {
		return err
	}

	lead.Status = entity.LeadStatusNew
	return tx.Commit()
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, leadSelect+` WHERE l.id = $1`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrRecordNotFound
		}
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, sortField string, desc bool) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, leadSelect+orderClause(sortField, desc))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

func (r *LeadRepository) ListPage(ctx context.Context, sortField string, desc bool, page, perPage int) (*entity.LeadPage, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&total); err != nil {
		return nil, err
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	offset := (page - 1) * perPage
	rows, err := r.DB.QueryContext(ctx,
		leadSelect+orderClause(sortField, desc)+` LIMIT $1 OFFSET $2`,
		perPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records, err := collectLeads(rows)
	if err != nil {
		return nil, err
	}

	return &entity.LeadPage{
		Records:      records,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalRecords: total,
	}, nil
}

func (r *LeadRepository) Update(ctx context.Context, id int64, upd entity.LeadUpdate) error {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("first_name", upd.FirstName)
	add("last_name", upd.LastName)
	add("phone", upd.Phone)
	add("email", upd.Email)
	add("appeal", upd.Appeal)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $1`, strings.Join(sets, ", "))

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}

func (r *LeadRepository) AppendStatus(ctx context.Context, leadID int64, t entity.LeadStatusType) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO lead_statuses (lead_id, type, created_at)
		VALUES ($1, $2, NOW())
	`, leadID, t)
	return err
}

func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	// History rows go with it via ON DELETE CASCADE.
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrRecordNotFound
	}
	return nil
}

func (r *LeadRepository) CountByCurrentStatus(ctx context.Context) (map[entity.LeadStatusType]int, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT COALESCE(s.type, 'NEW') AS type, COUNT(*)
		FROM leads l
		LEFT JOIN LATERAL (
			SELECT type FROM lead_statuses
			WHERE lead_id = l.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) s ON true
		GROUP BY 1
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[entity.LeadStatusType]int)
	for rows.Next() {
		var t entity.LeadStatusType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// orderClause assumes sortField already passed the sortable-column
// whitelist; it is the only place a request value meets raw SQL.
func orderClause(sortField string, desc bool) string {
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY l.%s %s, l.id %s", sortField, direction, direction)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(
		&l.ID,
		&l.FirstName,
		&l.LastName,
		&l.Phone,
		&l.Email,
		&l.Appeal,
		&l.Status,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLeads(rows *sql.Rows) ([]*entity.Lead, error) {
	leads := []*entity.Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}
