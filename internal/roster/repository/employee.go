package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Employee represents a person who can record timesheets.
// EmployeeID is the business identifier (e.g. EMP001) used in CSV files
// and approval references; ID is the storage primary key.
type Employee struct {
	ID           string    `db:"id" json:"id"`
	EmployeeID   string    `db:"employee_id" json:"employeeId"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"` // LEVEL1, LEVEL2, LEVEL3
	Position     *string   `db:"position" json:"position,omitempty"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	if emp.Role == "" {
		emp.Role = "LEVEL1"
	}
	emp.IsActive = true

	query := `
		INSERT INTO employees (id, employee_id, name, email, password_hash, role, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		emp.ID, emp.EmployeeID, emp.Name, emp.Email, emp.PasswordHash,
		emp.Role, emp.Position, emp.IsActive,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets an employee by primary key
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee

	query := `
		SELECT id, employee_id, name, email, password_hash, role, position,
		       is_active, created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &emp, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// GetByEmployeeID gets an employee by business identifier
func (r *EmployeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*Employee, error) {
	var emp Employee

	query := `
		SELECT id, employee_id, name, email, password_hash, role, position,
		       is_active, created_at, updated_at
		FROM employees
		WHERE employee_id = $1
	`

	err := r.db.GetContext(ctx, &emp, query, employeeID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// GetByEmail gets an employee by email
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	var emp Employee

	query := `
		SELECT id, employee_id, name, email, password_hash, role, position,
		       is_active, created_at, updated_at
		FROM employees
		WHERE email = $1
	`

	err := r.db.GetContext(ctx, &emp, query, email)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// List lists employees with pagination
func (r *EmployeeRepository) List(ctx context.Context, page, perPage int, includeInactive bool) ([]*Employee, int64, error) {
	var total int64
	var employees []*Employee

	where := `WHERE is_active = true`
	if includeInactive {
		where = ``
	}

	countQuery := `SELECT COUNT(*) FROM employees ` + where
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, employee_id, name, email, password_hash, role, position,
		       is_active, created_at, updated_at
		FROM employees ` + where + `
		ORDER BY employee_id
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &employees, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// Update updates an employee
func (r *EmployeeRepository) Update(ctx context.Context, emp *Employee) error {
	query := `
		UPDATE employees SET
			employee_id = $2, name = $3, email = $4, password_hash = $5,
			role = $6, position = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.EmployeeID, emp.Name, emp.Email, emp.PasswordHash,
		emp.Role, emp.Position, emp.IsActive,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("employee")
	}

	return nil
}

// Deactivate marks an employee inactive. Timesheets reference employees,
// so rows are never physically removed.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE employees SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("employee")
	}

	return nil
}

// ExistsByEmployeeID reports whether an active employee with the business
// identifier exists. Used for referential checks during CSV validation.
func (r *EmployeeRepository) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, employeeID); err != nil {
		return false, err
	}
	return exists, nil
}

// ListAll returns every employee ordered by business identifier.
// Used by CSV export.
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]*Employee, error) {
	var employees []*Employee
	query := `
		SELECT id, employee_id, name, email, password_hash, role, position,
		       is_active, created_at, updated_at
		FROM employees
		ORDER BY employee_id
	`
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, err
	}
	return employees, nil
}

// ListEmployeeIDs returns the business identifiers of all employees.
// Used by the duplicate resolver to detect existing records in one scan.
func (r *EmployeeRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT employee_id FROM employees ORDER BY employee_id`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}
