package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Project represents a billable project
type Project struct {
	ID          string     `db:"id" json:"id"`
	ProjectCode string     `db:"project_code" json:"projectCode"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      string     `db:"status" json:"status"` // ACTIVE, COMPLETED, SUSPENDED, CANCELLED
	StartDate   *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"endDate,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// ProjectRepository handles project persistence
type ProjectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *database.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, p *Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = "ACTIVE"
	}

	query := `
		INSERT INTO projects (id, project_code, name, description, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		p.ID, p.ProjectCode, p.Name, p.Description, p.Status, p.StartDate, p.EndDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a project by primary key
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*Project, error) {
	var p Project

	query := `
		SELECT id, project_code, name, description, status, start_date, end_date,
		       created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &p, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// GetByCode gets a project by its business code
func (r *ProjectRepository) GetByCode(ctx context.Context, code string) (*Project, error) {
	var p Project

	query := `
		SELECT id, project_code, name, description, status, start_date, end_date,
		       created_at, updated_at
		FROM projects
		WHERE project_code = $1
	`

	err := r.db.GetContext(ctx, &p, query, code)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("project")
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// List lists projects with pagination, optionally filtered by status
func (r *ProjectRepository) List(ctx context.Context, page, perPage int, status string) ([]*Project, int64, error) {
	var total int64
	var projects []*Project

	where := ``
	args := []interface{}{}
	if status != "" {
		where = `WHERE status = $1`
		args = append(args, status)
	}

	countQuery := `SELECT COUNT(*) FROM projects ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, project_code, name, description, status, start_date, end_date,
		       created_at, updated_at
		FROM projects ` + where + `
		ORDER BY project_code
	`
	if status != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, perPage, offset)

	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *ProjectRepository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects SET
			project_code = $2, name = $3, description = $4, status = $5,
			start_date = $6, end_date = $7, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.ProjectCode, p.Name, p.Description, p.Status, p.StartDate, p.EndDate,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("project")
	}

	return nil
}

// Delete removes a project. Fails with a foreign key error if timesheets
// reference it; MapPQError surfaces that as a 400.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("project")
	}

	return nil
}

// ListAll returns every project ordered by code. Used by CSV export.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]*Project, error) {
	var projects []*Project
	query := `
		SELECT id, project_code, name, description, status, start_date, end_date,
		       created_at, updated_at
		FROM projects
		ORDER BY project_code
	`
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, err
	}
	return projects, nil
}

// ExistsByCode reports whether a project with the business code exists.
func (r *ProjectRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM projects WHERE project_code = $1)`
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, err
	}
	return exists, nil
}

// ListCodes returns all project codes for duplicate detection.
func (r *ProjectRepository) ListCodes(ctx context.Context) ([]string, error) {
	var codes []string
	query := `SELECT project_code FROM projects ORDER BY project_code`
	if err := r.db.SelectContext(ctx, &codes, query); err != nil {
		return nil, err
	}
	return codes, nil
}
