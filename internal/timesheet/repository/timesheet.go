package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Timesheet statuses
const (
	StatusDraft     = "DRAFT"
	StatusSubmitted = "SUBMITTED"
	StatusApproved  = "APPROVED"
)

// Timesheet represents one work record. The slot (employee, project,
// work date, start time) is unique; start_time NULL counts as a value,
// so at most one day-level entry can exist per employee/project/date.
type Timesheet struct {
	ID          string    `db:"id" json:"id"`
	EmployeeID  string    `db:"employee_id" json:"employeeId"`
	ProjectID   string    `db:"project_id" json:"projectId"`
	StageID     *string   `db:"stage_id" json:"stageId,omitempty"`
	WorkDate    time.Time `db:"work_date" json:"workDate"`
	StartTime   *string   `db:"start_time" json:"startTime,omitempty"` // HH:mm
	EndTime     *string   `db:"end_time" json:"endTime,omitempty"`     // HH:mm
	Hours       float64   `db:"hours" json:"hours"`
	Description *string   `db:"description" json:"description,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// TimesheetDetail is a timesheet joined with the business identifiers
// of its employee and project, for list and report views.
type TimesheetDetail struct {
	Timesheet
	EmployeeCode string  `db:"employee_code" json:"employeeCode"`
	EmployeeName string  `db:"employee_name" json:"employeeName"`
	ProjectCode  string  `db:"project_code" json:"projectCode"`
	ProjectName  string  `db:"project_name" json:"projectName"`
	TaskID       *string `db:"task_id" json:"taskId,omitempty"`
}

// Slot identifies a timesheet by its natural key, expressed in business
// identifiers as they appear in CSV files.
type Slot struct {
	EmployeeCode string  `db:"employee_code"`
	ProjectCode  string  `db:"project_code"`
	WorkDate     string  `db:"work_date"`
	StartTime    *string `db:"start_time"`
}

// ListFilter narrows timesheet listings
type ListFilter struct {
	EmployeeID string // storage id
	ProjectID  string
	Status     string
	From       *time.Time
	To         *time.Time
}

// TimesheetRepository handles timesheet persistence
type TimesheetRepository struct {
	db *database.DB
}

// NewTimesheetRepository creates a new timesheet repository
func NewTimesheetRepository(db *database.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

const timesheetColumns = `id, employee_id, project_id, stage_id, work_date, start_time, end_time,
	       hours, description, status, created_at, updated_at`

// Create inserts a timesheet outside a transaction
func (r *TimesheetRepository) Create(ctx context.Context, ts *Timesheet) error {
	return r.create(ctx, r.db, ts)
}

// CreateTx inserts a timesheet inside an existing transaction
func (r *TimesheetRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, ts *Timesheet) error {
	return r.create(ctx, tx, ts)
}

func (r *TimesheetRepository) create(ctx context.Context, q sqlx.ExtContext, ts *Timesheet) error {
	if ts.ID == "" {
		ts.ID = uuid.New().String()
	}
	if ts.Status == "" {
		ts.Status = StatusDraft
	}

	query := `
		INSERT INTO timesheets (id, employee_id, project_id, stage_id, work_date,
		                        start_time, end_time, hours, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRowxContext(ctx, query,
		ts.ID, ts.EmployeeID, ts.ProjectID, ts.StageID, ts.WorkDate,
		ts.StartTime, ts.EndTime, ts.Hours, ts.Description, ts.Status,
	).Scan(&ts.CreatedAt, &ts.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a timesheet by primary key
func (r *TimesheetRepository) GetByID(ctx context.Context, id string) (*Timesheet, error) {
	var ts Timesheet

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE id = $1`

	err := r.db.GetContext(ctx, &ts, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("timesheet")
	}
	if err != nil {
		return nil, err
	}

	return &ts, nil
}

// List lists timesheets joined with business identifiers
func (r *TimesheetRepository) List(ctx context.Context, filter *ListFilter, page, perPage int) ([]*TimesheetDetail, int64, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	n := 0

	addArg := func(clause string, value interface{}) {
		n++
		where += clause + argn(n)
		args = append(args, value)
	}

	if filter.EmployeeID != "" {
		addArg(` AND t.employee_id = `, filter.EmployeeID)
	}
	if filter.ProjectID != "" {
		addArg(` AND t.project_id = `, filter.ProjectID)
	}
	if filter.Status != "" {
		addArg(` AND t.status = `, filter.Status)
	}
	if filter.From != nil {
		addArg(` AND t.work_date >= `, *filter.From)
	}
	if filter.To != nil {
		addArg(` AND t.work_date <= `, *filter.To)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM timesheets t` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT t.id, t.employee_id, t.project_id, t.stage_id, t.work_date,
		       t.start_time, t.end_time, t.hours, t.description, t.status,
		       t.created_at, t.updated_at,
		       e.employee_id AS employee_code, e.name AS employee_name,
		       p.project_code, p.name AS project_name,
		       s.task_id
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN stages s ON s.id = t.stage_id` + where + `
		ORDER BY t.work_date DESC, t.start_time NULLS FIRST, e.employee_id
		LIMIT ` + argn(n+1) + ` OFFSET ` + argn(n+2)

	args = append(args, perPage, offset)

	var sheets []*TimesheetDetail
	if err := r.db.SelectContext(ctx, &sheets, query, args...); err != nil {
		return nil, 0, err
	}

	return sheets, total, nil
}

// Update updates the mutable fields of a timesheet
func (r *TimesheetRepository) Update(ctx context.Context, ts *Timesheet) error {
	query := `
		UPDATE timesheets SET
			project_id = $2, stage_id = $3, work_date = $4, start_time = $5,
			end_time = $6, hours = $7, description = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		ts.ID, ts.ProjectID, ts.StageID, ts.WorkDate, ts.StartTime,
		ts.EndTime, ts.Hours, ts.Description,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("timesheet")
	}

	return nil
}

// UpdateStatus sets the workflow status of a timesheet
func (r *TimesheetRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.updateStatus(ctx, r.db, id, status)
}

// UpdateStatusTx sets the workflow status inside an existing transaction
func (r *TimesheetRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id, status string) error {
	return r.updateStatus(ctx, tx, id, status)
}

func (r *TimesheetRepository) updateStatus(ctx context.Context, q sqlx.ExtContext, id, status string) error {
	query := `UPDATE timesheets SET status = $2, updated_at = NOW() WHERE id = $1`
	result, err := q.ExecContext(ctx, query, id, status)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("timesheet")
	}

	return nil
}

// Delete removes a timesheet. Approvals cascade.
func (r *TimesheetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM timesheets WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("timesheet")
	}

	return nil
}

// DeleteBySlotTx removes the timesheet occupying the full natural key,
// inside an existing transaction. A NULL start time matches only rows
// whose start_time IS NULL; it is never a wildcard.
func (r *TimesheetRepository) DeleteBySlotTx(ctx context.Context, tx *sqlx.Tx, employeeID, projectID string, workDate time.Time, startTime *string) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if startTime == nil {
		query := `
			DELETE FROM timesheets
			WHERE employee_id = $1 AND project_id = $2 AND work_date = $3 AND start_time IS NULL
		`
		result, err = tx.ExecContext(ctx, query, employeeID, projectID, workDate)
	} else {
		query := `
			DELETE FROM timesheets
			WHERE employee_id = $1 AND project_id = $2 AND work_date = $3 AND start_time = $4
		`
		result, err = tx.ExecContext(ctx, query, employeeID, projectID, workDate, *startTime)
	}
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// ListAllDetails returns every timesheet joined with business
// identifiers, in stable file-friendly order. Used by CSV export.
func (r *TimesheetRepository) ListAllDetails(ctx context.Context) ([]*TimesheetDetail, error) {
	query := `
		SELECT t.id, t.employee_id, t.project_id, t.stage_id, t.work_date,
		       t.start_time, t.end_time, t.hours, t.description, t.status,
		       t.created_at, t.updated_at,
		       e.employee_id AS employee_code, e.name AS employee_name,
		       p.project_code, p.name AS project_name,
		       s.task_id
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN stages s ON s.id = t.stage_id
		ORDER BY t.work_date, e.employee_id, p.project_code, t.start_time NULLS FIRST
	`

	var sheets []*TimesheetDetail
	if err := r.db.SelectContext(ctx, &sheets, query); err != nil {
		return nil, err
	}

	return sheets, nil
}

// GetDetailBySlot fetches the timesheet occupying a natural-key slot,
// identified by business identifiers as they appear in CSV files. A
// NULL start time matches only day-level rows, never a wildcard.
func (r *TimesheetRepository) GetDetailBySlot(ctx context.Context, employeeCode, projectCode, workDate string, startTime *string) (*TimesheetDetail, error) {
	query := `
		SELECT t.id, t.employee_id, t.project_id, t.stage_id, t.work_date,
		       t.start_time, t.end_time, t.hours, t.description, t.status,
		       t.created_at, t.updated_at,
		       e.employee_id AS employee_code, e.name AS employee_name,
		       p.project_code, p.name AS project_name,
		       s.task_id
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		JOIN projects p ON p.id = t.project_id
		LEFT JOIN stages s ON s.id = t.stage_id
		WHERE e.employee_id = $1 AND p.project_code = $2 AND t.work_date = $3`

	args := []interface{}{employeeCode, projectCode, workDate}
	if startTime == nil {
		query += ` AND t.start_time IS NULL`
	} else {
		query += ` AND t.start_time = $4`
		args = append(args, *startTime)
	}

	var detail TimesheetDetail
	err := r.db.GetContext(ctx, &detail, query, args...)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("timesheet")
	}
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

// ListSlots returns the natural keys of all existing timesheets,
// expressed in business identifiers. Used by the duplicate resolver.
func (r *TimesheetRepository) ListSlots(ctx context.Context) ([]*Slot, error) {
	query := `
		SELECT e.employee_id AS employee_code, p.project_code,
		       to_char(t.work_date, 'YYYY-MM-DD') AS work_date, t.start_time
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		JOIN projects p ON p.id = t.project_id
	`

	var slots []*Slot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, err
	}

	return slots, nil
}

// argn renders a positional parameter placeholder
func argn(n int) string {
	return fmt.Sprintf("$%d", n)
}
