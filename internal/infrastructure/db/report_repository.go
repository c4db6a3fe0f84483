package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schuttebj/linc-print-gateway/internal/domain/report"
)

// ReportRepository implements report.Repository using sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repo.
func NewReportRepository(db *sqlx.DB) report.Repository {
	return &ReportRepository{db: db}
}

// reportRow is the storage shape; console_logs is serialized JSON.
type reportRow struct {
	ID          string     `db:"id"`
	Description string     `db:"description"`
	PageURL     string     `db:"page_url"`
	BrowserInfo string     `db:"browser_info"`
	Screenshot  *string    `db:"screenshot"`
	ConsoleLogs string     `db:"console_logs"`
	Status      string     `db:"status"`
	BackendRef  *string    `db:"backend_ref"`
	SubmittedBy *string    `db:"submitted_by"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func toRow(r *report.Report) (*reportRow, error) {
	logs, err := json.Marshal(r.ConsoleLogs)
	if err != nil {
		return nil, err
	}
	row := &reportRow{
		ID:          r.ID.String(),
		Description: r.Description,
		PageURL:     r.PageURL,
		BrowserInfo: r.BrowserInfo,
		Screenshot:  r.Screenshot,
		ConsoleLogs: string(logs),
		Status:      r.Status,
		BackendRef:  r.BackendRef,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.SubmittedBy != nil {
		id := r.SubmittedBy.String()
		row.SubmittedBy = &id
	}
	return row, nil
}

func (row *reportRow) toReport() (*report.Report, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, err
	}
	r := &report.Report{
		ID:          id,
		Description: row.Description,
		PageURL:     row.PageURL,
		BrowserInfo: row.BrowserInfo,
		Screenshot:  row.Screenshot,
		Status:      row.Status,
		BackendRef:  row.BackendRef,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.ConsoleLogs != "" {
		if err := json.Unmarshal([]byte(row.ConsoleLogs), &r.ConsoleLogs); err != nil {
			r.ConsoleLogs = []string{}
		}
	} else {
		r.ConsoleLogs = []string{}
	}
	if row.SubmittedBy != nil {
		if sid, err := uuid.Parse(*row.SubmittedBy); err == nil {
			r.SubmittedBy = &sid
		}
	}
	return r, nil
}

func (r *ReportRepository) Create(ctx context.Context, rpt *report.Report) error {
	row, err := toRow(rpt)
	if err != nil {
		return err
	}
	query := `INSERT INTO reports (id, description, page_url, browser_info, screenshot, console_logs, status, backend_ref, submitted_by, created_at, updated_at)
		VALUES (:id, :description, :page_url, :browser_info, :screenshot, :console_logs, :status, :backend_ref, :submitted_by, :created_at, :updated_at)`
	_, err = r.db.NamedExecContext(ctx, query, row)
	return err
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var row reportRow
	query := r.db.Rebind(`SELECT * FROM reports WHERE id = ?`)
	err := r.db.GetContext(ctx, &row, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, report.ErrNotFound
		}
		return nil, err
	}
	return row.toReport()
}

func (r *ReportRepository) List(ctx context.Context, filter report.Filter) ([]report.Report, int, error) {
	where := []string{"1=1"}
	params := []interface{}{}
	if filter.Status != "" {
		where = append(where, "status = ?")
		params = append(params, filter.Status)
	}
	base := "FROM reports WHERE " + strings.Join(where, " AND ")
	query := r.db.Rebind("SELECT * " + base + " ORDER BY created_at DESC LIMIT ? OFFSET ?")
	var rows []reportRow
	queryArgs := append(append([]interface{}{}, params...), filter.Limit, filter.Offset)
	if err := r.db.SelectContext(ctx, &rows, query, queryArgs...); err != nil {
		return nil, 0, err
	}
	reports := make([]report.Report, 0, len(rows))
	for i := range rows {
		rpt, err := rows[i].toReport()
		if err != nil {
			continue
		}
		reports = append(reports, *rpt)
	}
	countQuery := r.db.Rebind("SELECT COUNT(*) " + base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, params...); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *ReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM reports WHERE created_at < ?`)
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
