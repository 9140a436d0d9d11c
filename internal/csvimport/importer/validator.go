package importer

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// FieldError describes one invalid field in a CSV row
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ReferenceChecker answers existence questions during validation.
// Implementations must be read-only; validation never mutates state.
type ReferenceChecker interface {
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	ProjectExists(ctx context.Context, projectCode string) (bool, error)
	StageExists(ctx context.Context, taskID string) (bool, error)
}

var (
	codePattern  = regexp.MustCompile(`^[A-Z0-9_-]+$`)
	taskPattern  = regexp.MustCompile(`^TD\.[0-9]{2}\.[0-9]{2}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	timePattern  = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

const dateLayout = "2006-01-02"

// validHours reports whether hours is a positive multiple of 0.25
func validHours(h float64) bool {
	if h <= 0 {
		return false
	}
	quarters := h * 4
	return quarters == float64(int64(quarters))
}

// ValidateEmployee validates an employee candidate. Errors are returned
// in field order so previews are stable.
func ValidateEmployee(c *EmployeeCandidate) []FieldError {
	var errs []FieldError

	if c.EmployeeID == "" {
		errs = append(errs, FieldError{Field: "employeeId", Message: "is required"})
	} else if !codePattern.MatchString(c.EmployeeID) {
		errs = append(errs, FieldError{Field: "employeeId", Message: "must contain only A-Z, 0-9, _ and -", Value: c.EmployeeID})
	}

	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	}

	if c.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "is required"})
	} else if !emailPattern.MatchString(c.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "is not a valid email address", Value: c.Email})
	}

	if c.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "is required"})
	} else if len(c.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}

	if c.Role != "" && c.Role != "LEVEL1" && c.Role != "LEVEL2" && c.Role != "LEVEL3" {
		errs = append(errs, FieldError{Field: "role", Message: "must be one of LEVEL1, LEVEL2, LEVEL3", Value: c.Role})
	}

	return errs
}

// ValidateProject validates a project candidate
func ValidateProject(c *ProjectCandidate) []FieldError {
	var errs []FieldError

	if c.ProjectCode == "" {
		errs = append(errs, FieldError{Field: "projectCode", Message: "is required"})
	} else if !codePattern.MatchString(c.ProjectCode) {
		errs = append(errs, FieldError{Field: "projectCode", Message: "must contain only A-Z, 0-9, _ and -", Value: c.ProjectCode})
	}

	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	}

	if c.Status != "" {
		switch c.Status {
		case "ACTIVE", "COMPLETED", "SUSPENDED", "CANCELLED":
		default:
			errs = append(errs, FieldError{Field: "status", Message: "must be one of ACTIVE, COMPLETED, SUSPENDED, CANCELLED", Value: c.Status})
		}
	}

	var start, end time.Time
	var startOK, endOK bool

	if c.StartDate != nil {
		t, err := time.Parse(dateLayout, *c.StartDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "startDate", Message: "must match format " + dateLayout, Value: *c.StartDate})
		} else {
			start, startOK = t, true
		}
	}
	if c.EndDate != nil {
		t, err := time.Parse(dateLayout, *c.EndDate)
		if err != nil {
			errs = append(errs, FieldError{Field: "endDate", Message: "must match format " + dateLayout, Value: *c.EndDate})
		} else {
			end, endOK = t, true
		}
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, FieldError{Field: "endDate", Message: "must not be before startDate", Value: *c.EndDate})
	}

	return errs
}

// ValidateStage validates a stage candidate
func ValidateStage(c *StageCandidate) []FieldError {
	var errs []FieldError

	if c.TaskID == "" {
		errs = append(errs, FieldError{Field: "taskId", Message: "is required"})
	} else if !taskPattern.MatchString(c.TaskID) {
		errs = append(errs, FieldError{Field: "taskId", Message: "must match pattern TD.NN.NN", Value: c.TaskID})
	}

	if c.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	}

	return errs
}

// ValidateTimesheet validates a timesheet candidate, including
// referential checks against existing employees, projects and stages.
func ValidateTimesheet(ctx context.Context, c *TimesheetCandidate, refs ReferenceChecker) ([]FieldError, error) {
	var errs []FieldError

	if c.EmployeeID == "" {
		errs = append(errs, FieldError{Field: "employeeId", Message: "is required"})
	} else if !codePattern.MatchString(c.EmployeeID) {
		errs = append(errs, FieldError{Field: "employeeId", Message: "must contain only A-Z, 0-9, _ and -", Value: c.EmployeeID})
	} else {
		exists, err := refs.EmployeeExists(ctx, c.EmployeeID)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs = append(errs, FieldError{Field: "employeeId", Message: "employee does not exist", Value: c.EmployeeID})
		}
	}

	if c.ProjectCode == "" {
		errs = append(errs, FieldError{Field: "projectCode", Message: "is required"})
	} else if !codePattern.MatchString(c.ProjectCode) {
		errs = append(errs, FieldError{Field: "projectCode", Message: "must contain only A-Z, 0-9, _ and -", Value: c.ProjectCode})
	} else {
		exists, err := refs.ProjectExists(ctx, c.ProjectCode)
		if err != nil {
			return nil, err
		}
		if !exists {
			errs = append(errs, FieldError{Field: "projectCode", Message: "project does not exist", Value: c.ProjectCode})
		}
	}

	if c.TaskID != nil {
		if !taskPattern.MatchString(*c.TaskID) {
			errs = append(errs, FieldError{Field: "taskId", Message: "must match pattern TD.NN.NN", Value: *c.TaskID})
		} else {
			exists, err := refs.StageExists(ctx, *c.TaskID)
			if err != nil {
				return nil, err
			}
			if !exists {
				errs = append(errs, FieldError{Field: "taskId", Message: "stage does not exist", Value: *c.TaskID})
			}
		}
	}

	if c.WorkDate == "" {
		errs = append(errs, FieldError{Field: "date", Message: "is required"})
	} else if _, err := time.Parse(dateLayout, c.WorkDate); err != nil {
		errs = append(errs, FieldError{Field: "date", Message: "must match format " + dateLayout, Value: c.WorkDate})
	}

	if c.StartTime != nil && !timePattern.MatchString(*c.StartTime) {
		errs = append(errs, FieldError{Field: "startTime", Message: "must match format HH:mm", Value: *c.StartTime})
	}
	if c.EndTime != nil && !timePattern.MatchString(*c.EndTime) {
		errs = append(errs, FieldError{Field: "endTime", Message: "must match format HH:mm", Value: *c.EndTime})
	}
	if (c.StartTime == nil) != (c.EndTime == nil) {
		errs = append(errs, FieldError{Field: "startTime", Message: "startTime and endTime must be provided together"})
	}
	if c.StartTime != nil && c.EndTime != nil &&
		timePattern.MatchString(*c.StartTime) && timePattern.MatchString(*c.EndTime) &&
		*c.EndTime <= *c.StartTime {
		errs = append(errs, FieldError{Field: "endTime", Message: "must be after startTime", Value: *c.EndTime})
	}

	if c.Hours == nil {
		errs = append(errs, FieldError{Field: "hours", Message: "is required and must be a number"})
	} else if !validHours(*c.Hours) {
		errs = append(errs, FieldError{
			Field:   "hours",
			Message: "must be a positive multiple of 0.25",
			Value:   fmt.Sprintf("%g", *c.Hours),
		})
	}

	if c.Status != "" {
		switch c.Status {
		case "DRAFT", "SUBMITTED", "APPROVED":
		default:
			errs = append(errs, FieldError{Field: "status", Message: "must be one of DRAFT, SUBMITTED, APPROVED", Value: c.Status})
		}
	}

	return errs, nil
}
