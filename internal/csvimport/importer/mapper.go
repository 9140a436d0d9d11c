package importer

import (
	"math"
	"strconv"
	"strings"
)

// EmployeeCandidate is a typed employee row before validation.
// Candidates appear in validate responses (preview, duplicate data),
// so the raw password never marshals.
type EmployeeCandidate struct {
	EmployeeID string  `json:"employeeId"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"-"`
	Role       string  `json:"role"`
	Position   *string `json:"position,omitempty"`
}

// ProjectCandidate is a typed project row before validation
type ProjectCandidate struct {
	ProjectCode string  `json:"projectCode"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
}

// StageCandidate is a typed stage row before validation
type StageCandidate struct {
	TaskID      string  `json:"taskId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// TimesheetCandidate is a typed timesheet row before validation.
// Hours is a pointer: a value that fails to parse is absent, never zero.
type TimesheetCandidate struct {
	EmployeeID  string   `json:"employeeId"`
	ProjectCode string   `json:"projectCode"`
	TaskID      *string  `json:"taskId,omitempty"`
	WorkDate    string   `json:"date"`
	StartTime   *string  `json:"startTime,omitempty"`
	EndTime     *string  `json:"endTime,omitempty"`
	Hours       *float64 `json:"hours,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      string   `json:"status"`
}

// stringField resolves a required string field, trimmed
func stringField(row map[string]string, field string) string {
	v, _ := FieldValue(row, field)
	return strings.TrimSpace(v)
}

// optionalField resolves an optional string field; empty means absent
func optionalField(row map[string]string, field string) *string {
	v, ok := FieldValue(row, field)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// floatField resolves an optional float field. Values that fail to
// parse, or parse to NaN or Inf, are absent rather than zero so the
// validator reports a missing value instead of silently importing 0.
func floatField(row map[string]string, field string) *float64 {
	v, ok := FieldValue(row, field)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// MapEmployee maps a raw CSV row to an employee candidate
func MapEmployee(row map[string]string) *EmployeeCandidate {
	return &EmployeeCandidate{
		EmployeeID: stringField(row, "employeeId"),
		Name:       stringField(row, "name"),
		Email:      stringField(row, "email"),
		Password:   stringField(row, "password"),
		Role:       strings.ToUpper(stringField(row, "role")),
		Position:   optionalField(row, "position"),
	}
}

// MapProject maps a raw CSV row to a project candidate
func MapProject(row map[string]string) *ProjectCandidate {
	return &ProjectCandidate{
		ProjectCode: stringField(row, "projectCode"),
		Name:        stringField(row, "name"),
		Description: optionalField(row, "description"),
		Status:      strings.ToUpper(stringField(row, "status")),
		StartDate:   optionalField(row, "startDate"),
		EndDate:     optionalField(row, "endDate"),
	}
}

// MapStage maps a raw CSV row to a stage candidate
func MapStage(row map[string]string) *StageCandidate {
	return &StageCandidate{
		TaskID:      stringField(row, "taskId"),
		Name:        stringField(row, "name"),
		Description: optionalField(row, "description"),
		Category:    optionalField(row, "category"),
	}
}

// MapTimesheet maps a raw CSV row to a timesheet candidate
func MapTimesheet(row map[string]string) *TimesheetCandidate {
	return &TimesheetCandidate{
		EmployeeID:  stringField(row, "employeeId"),
		ProjectCode: stringField(row, "projectCode"),
		TaskID:      optionalField(row, "taskId"),
		WorkDate:    stringField(row, "date"),
		StartTime:   optionalField(row, "startTime"),
		EndTime:     optionalField(row, "endTime"),
		Hours:       floatField(row, "hours"),
		Description: optionalField(row, "description"),
		Status:      strings.ToUpper(stringField(row, "status")),
	}
}
