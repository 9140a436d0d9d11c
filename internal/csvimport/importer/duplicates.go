package importer

import "strings"

// nullSlot marks an absent start time inside a slot key. NULL is a
// value in the timesheet natural key, not a wildcard: a day-level entry
// occupies the slot with no start time.
const nullSlot = "<null>"

// TimesheetSlotKey synthesizes the canonical natural-key string for a
// timesheet slot. The duplicate resolver and the executor's replace
// path both derive keys from this one function so a duplicate detected
// during validation is exactly the row replaced during execution.
func TimesheetSlotKey(employeeID, projectCode, workDate string, startTime *string) string {
	start := nullSlot
	if startTime != nil {
		start = *startTime
	}
	return strings.Join([]string{"TIMESHEET", employeeID, projectCode, workDate, start}, "|")
}

// EmployeeKey synthesizes the natural-key string for an employee row
func EmployeeKey(employeeID string) string {
	return "EMPLOYEE|" + employeeID
}

// ProjectKey synthesizes the natural-key string for a project row
func ProjectKey(projectCode string) string {
	return "PROJECT|" + projectCode
}

// StageKey synthesizes the natural-key string for a stage row
func StageKey(taskID string) string {
	return "STAGE|" + taskID
}

// CandidateKey returns the natural-key string for a mapped candidate.
// Returns "" when the identifying fields are missing; such rows fail
// validation and never reach duplicate resolution.
func CandidateKey(dataType DataType, candidate interface{}) string {
	switch c := candidate.(type) {
	case *EmployeeCandidate:
		if c.EmployeeID == "" {
			return ""
		}
		return EmployeeKey(c.EmployeeID)
	case *ProjectCandidate:
		if c.ProjectCode == "" {
			return ""
		}
		return ProjectKey(c.ProjectCode)
	case *StageCandidate:
		if c.TaskID == "" {
			return ""
		}
		return StageKey(c.TaskID)
	case *TimesheetCandidate:
		if c.EmployeeID == "" || c.ProjectCode == "" || c.WorkDate == "" {
			return ""
		}
		return TimesheetSlotKey(c.EmployeeID, c.ProjectCode, c.WorkDate, c.StartTime)
	}
	return ""
}

// DuplicateKind distinguishes where the conflicting record lives
type DuplicateKind string

// Duplicate kinds
const (
	DuplicateExisting DuplicateKind = "EXISTING" // conflicts with a stored record
	DuplicateInFile   DuplicateKind = "IN_FILE"  // conflicts with an earlier row of the same file
)

// Duplicate describes one row that collides on its natural key. The
// existing and new payloads show the caller what a replace decision
// would overwrite.
type Duplicate struct {
	RowNumber    int           `json:"rowNumber"`
	Key          string        `json:"key"`
	Kind         DuplicateKind `json:"kind"`
	Field        string        `json:"field"`
	Value        string        `json:"value"`
	ExistingData interface{}   `json:"existingData,omitempty"`
	NewData      interface{}   `json:"newData,omitempty"`
}

// ConflictField names the natural-key field behind a candidate and the
// value that collided. Timesheets collide on the whole slot, so the
// field is the slot and the value its key without the type prefix.
func ConflictField(candidate interface{}) (string, string) {
	switch c := candidate.(type) {
	case *EmployeeCandidate:
		return "employeeId", c.EmployeeID
	case *ProjectCandidate:
		return "projectCode", c.ProjectCode
	case *StageCandidate:
		return "taskId", c.TaskID
	case *TimesheetCandidate:
		key := TimesheetSlotKey(c.EmployeeID, c.ProjectCode, c.WorkDate, c.StartTime)
		return "slot", strings.TrimPrefix(key, "TIMESHEET|")
	}
	return "", ""
}

// Resolver detects natural-key collisions across a batch. Existing keys
// come from storage; batch keys accumulate as rows are observed in file
// order, so the first occurrence of a key is never flagged but every
// later occurrence is.
type Resolver struct {
	existing map[string]struct{}
	seen     map[string]seenRow // key -> first occurrence
}

type seenRow struct {
	number    int
	candidate interface{}
}

// NewResolver creates a resolver primed with the natural keys of
// existing records.
func NewResolver(existingKeys []string) *Resolver {
	existing := make(map[string]struct{}, len(existingKeys))
	for _, k := range existingKeys {
		existing[k] = struct{}{}
	}
	return &Resolver{
		existing: existing,
		seen:     make(map[string]seenRow),
	}
}

// Observe records a row's key and candidate and reports whether the
// key collides. The check against earlier batch rows wins over the
// check against storage so in-file duplicates are reported as such
// even when the key also exists in storage; an in-file duplicate
// carries the earlier row's candidate as its existing data.
func (r *Resolver) Observe(rowNumber int, key string, candidate interface{}) *Duplicate {
	if key == "" {
		return nil
	}

	field, value := ConflictField(candidate)

	if first, ok := r.seen[key]; ok {
		return &Duplicate{
			RowNumber:    rowNumber,
			Key:          key,
			Kind:         DuplicateInFile,
			Field:        field,
			Value:        value,
			ExistingData: first.candidate,
			NewData:      candidate,
		}
	}
	r.seen[key] = seenRow{number: rowNumber, candidate: candidate}

	if _, ok := r.existing[key]; ok {
		return &Duplicate{
			RowNumber: rowNumber,
			Key:       key,
			Kind:      DuplicateExisting,
			Field:     field,
			Value:     value,
			NewData:   candidate,
		}
	}

	return nil
}
