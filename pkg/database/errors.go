package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "role_valid"):
		return errors.Validation(map[string]string{
			"role": "must be one of: LEVEL1, LEVEL2, LEVEL3",
		})

	case strings.Contains(constraint, "project_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: ACTIVE, COMPLETED, SUSPENDED, CANCELLED",
		})

	case strings.Contains(constraint, "timesheet_status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: DRAFT, SUBMITTED, APPROVED",
		})

	case strings.Contains(constraint, "hours_quarter"):
		return errors.Validation(map[string]string{
			"hours": "must be a positive multiple of 0.25",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "timesheets_slot"):
		return "a timesheet already exists for this employee, project, date and start time"
	case strings.Contains(constraint, "employees_employee_id"):
		return "an employee with this employee ID already exists"
	case strings.Contains(constraint, "email"):
		return "an employee with this email already exists"
	case strings.Contains(constraint, "project_code"):
		return "a project with this code already exists"
	case strings.Contains(constraint, "task_id"):
		return "a stage with this task ID already exists"
	default:
		return "a record with these values already exists"
	}
}
