package repository

import (
	"context"
	"time"

	"github.com/tempoworks/tempo-backend/pkg/database"
)

// ProjectHours aggregates recorded hours for one project
type ProjectHours struct {
	ProjectID   string  `db:"project_id" json:"projectId"`
	ProjectCode string  `db:"project_code" json:"projectCode"`
	ProjectName string  `db:"project_name" json:"projectName"`
	TotalHours  float64 `db:"total_hours" json:"totalHours"`
	EntryCount  int64   `db:"entry_count" json:"entryCount"`
}

// EmployeeHours aggregates recorded hours for one employee
type EmployeeHours struct {
	EmployeeID   string  `db:"employee_id" json:"employeeId"`
	EmployeeCode string  `db:"employee_code" json:"employeeCode"`
	EmployeeName string  `db:"employee_name" json:"employeeName"`
	TotalHours   float64 `db:"total_hours" json:"totalHours"`
	EntryCount   int64   `db:"entry_count" json:"entryCount"`
}

// Filter bounds a report query
type Filter struct {
	From   time.Time
	To     time.Time
	Status string // optional timesheet status filter
}

// ReportRepository runs read-only aggregation queries
type ReportRepository struct {
	db *database.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// HoursByProject sums hours per project over a date range
func (r *ReportRepository) HoursByProject(ctx context.Context, f *Filter) ([]*ProjectHours, error) {
	query := `
		SELECT p.id AS project_id, p.project_code, p.name AS project_name,
		       COALESCE(SUM(t.hours), 0) AS total_hours,
		       COUNT(t.id) AS entry_count
		FROM timesheets t
		JOIN projects p ON p.id = t.project_id
		WHERE t.work_date >= $1 AND t.work_date <= $2
	`
	args := []interface{}{f.From, f.To}

	if f.Status != "" {
		query += ` AND t.status = $3`
		args = append(args, f.Status)
	}

	query += `
		GROUP BY p.id, p.project_code, p.name
		ORDER BY total_hours DESC, p.project_code
	`

	var rows []*ProjectHours
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return rows, nil
}

// HoursByEmployee sums hours per employee over a date range
func (r *ReportRepository) HoursByEmployee(ctx context.Context, f *Filter) ([]*EmployeeHours, error) {
	query := `
		SELECT e.id AS employee_id, e.employee_id AS employee_code, e.name AS employee_name,
		       COALESCE(SUM(t.hours), 0) AS total_hours,
		       COUNT(t.id) AS entry_count
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.work_date >= $1 AND t.work_date <= $2
	`
	args := []interface{}{f.From, f.To}

	if f.Status != "" {
		query += ` AND t.status = $3`
		args = append(args, f.Status)
	}

	query += `
		GROUP BY e.id, e.employee_id, e.name
		ORDER BY total_hours DESC, e.employee_id
	`

	var rows []*EmployeeHours
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	return rows, nil
}
