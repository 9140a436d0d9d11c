package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	rosterrepo "github.com/tempoworks/tempo-backend/internal/roster/repository"
	tsrepo "github.com/tempoworks/tempo-backend/internal/timesheet/repository"

	"github.com/tempoworks/tempo-backend/internal/csvimport/events"
	"github.com/tempoworks/tempo-backend/internal/csvimport/importer"
	"github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	"github.com/tempoworks/tempo-backend/pkg/config"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// EmployeeStore is the slice of employee persistence the importer needs
type EmployeeStore interface {
	ListEmployeeIDs(ctx context.Context) ([]string, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*rosterrepo.Employee, error)
	ListAll(ctx context.Context) ([]*rosterrepo.Employee, error)
	Create(ctx context.Context, emp *rosterrepo.Employee) error
	Update(ctx context.Context, emp *rosterrepo.Employee) error
}

// ProjectStore is the slice of project persistence the importer needs
type ProjectStore interface {
	ListCodes(ctx context.Context) ([]string, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	GetByCode(ctx context.Context, code string) (*rosterrepo.Project, error)
	ListAll(ctx context.Context) ([]*rosterrepo.Project, error)
	Create(ctx context.Context, p *rosterrepo.Project) error
	Update(ctx context.Context, p *rosterrepo.Project) error
}

// StageStore is the slice of stage persistence the importer needs
type StageStore interface {
	ListTaskIDs(ctx context.Context) ([]string, error)
	ExistsByTaskID(ctx context.Context, taskID string) (bool, error)
	GetByTaskID(ctx context.Context, taskID string) (*rosterrepo.Stage, error)
	ListAll(ctx context.Context) ([]*rosterrepo.Stage, error)
	Create(ctx context.Context, s *rosterrepo.Stage) error
	Update(ctx context.Context, s *rosterrepo.Stage) error
}

// EventPublisher publishes import lifecycle events.
// Satisfied by events.ImportEventPublisher.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, log *repository.ImportLog)
}

var _ EventPublisher = (*events.ImportEventPublisher)(nil)

// ImportService orchestrates CSV validation and execution
type ImportService struct {
	db            *database.DB
	cfg           *config.ImportConfig
	employees     EmployeeStore
	projects      ProjectStore
	stages        StageStore
	timesheetRepo *tsrepo.TimesheetRepository
	approvalRepo  *tsrepo.ApprovalRepository
	logRepo       *repository.ImportLogRepository
	publisher     EventPublisher
	logger        *logger.Logger
}

// NewImportService creates a new import service
func NewImportService(
	db *database.DB,
	cfg *config.ImportConfig,
	employees EmployeeStore,
	projects ProjectStore,
	stages StageStore,
	timesheetRepo *tsrepo.TimesheetRepository,
	approvalRepo *tsrepo.ApprovalRepository,
	logRepo *repository.ImportLogRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *ImportService {
	return &ImportService{
		db:            db,
		cfg:           cfg,
		employees:     employees,
		projects:      projects,
		stages:        stages,
		timesheetRepo: timesheetRepo,
		approvalRepo:  approvalRepo,
		logRepo:       logRepo,
		publisher:     publisher,
		logger:        log,
	}
}

// refChecker adapts the stores to the validator's read-only interface
type refChecker struct {
	employees EmployeeStore
	projects  ProjectStore
	stages    StageStore
}

func (r *refChecker) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	return r.employees.ExistsByEmployeeID(ctx, employeeID)
}

func (r *refChecker) ProjectExists(ctx context.Context, projectCode string) (bool, error) {
	return r.projects.ExistsByCode(ctx, projectCode)
}

func (r *refChecker) StageExists(ctx context.Context, taskID string) (bool, error) {
	return r.stages.ExistsByTaskID(ctx, taskID)
}

// parsedFile is a CSV file split into raw rows keyed by raw header.
// Row numbers are 1-based file line numbers; the header is line 1.
type parsedFile struct {
	header []string
	rows   []rawRow
}

type rawRow struct {
	number int
	fields map[string]string
	broken bool // column count mismatch
}

// parseCSV reads the whole file into raw rows. Header cells keep their
// raw bytes; field resolution handles BOM and whitespace later.
func (s *ImportService) parseCSV(r io.Reader) (*parsedFile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.BadRequest("file is empty")
	}
	if err != nil {
		return nil, errors.BadRequest("invalid CSV: " + err.Error())
	}

	file := &parsedFile{header: header}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			file.rows = append(file.rows, rawRow{number: line, broken: true})
			continue
		}

		if len(record) != len(header) {
			file.rows = append(file.rows, rawRow{number: line, broken: true})
			continue
		}

		fields := make(map[string]string, len(header))
		for i, h := range header {
			fields[h] = record[i]
		}
		file.rows = append(file.rows, rawRow{number: line, fields: fields})
	}

	if len(file.rows) > s.cfg.MaxRows {
		return nil, errors.BadRequest(fmt.Sprintf("file exceeds the maximum of %d rows", s.cfg.MaxRows))
	}

	return file, nil
}

// existingKeys loads the natural keys of stored records for a data type
func (s *ImportService) existingKeys(ctx context.Context, dataType importer.DataType) ([]string, error) {
	switch dataType {
	case importer.DataTypeEmployee:
		ids, err := s.employees.ListEmployeeIDs(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = importer.EmployeeKey(id)
		}
		return keys, nil

	case importer.DataTypeProject:
		codes, err := s.projects.ListCodes(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(codes))
		for i, c := range codes {
			keys[i] = importer.ProjectKey(c)
		}
		return keys, nil

	case importer.DataTypeStage:
		ids, err := s.stages.ListTaskIDs(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = importer.StageKey(id)
		}
		return keys, nil

	case importer.DataTypeTimesheet:
		slots, err := s.timesheetRepo.ListSlots(ctx)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(slots))
		for i, slot := range slots {
			keys[i] = importer.TimesheetSlotKey(slot.EmployeeCode, slot.ProjectCode, slot.WorkDate, slot.StartTime)
		}
		return keys, nil
	}

	return nil, errors.BadRequest("unsupported data type")
}

// mapAndValidate maps a raw row to its candidate and validates it
func (s *ImportService) mapAndValidate(ctx context.Context, dataType importer.DataType, row rawRow) (interface{}, []importer.FieldError, error) {
	if row.broken {
		return nil, []importer.FieldError{{Field: "row", Message: "column count does not match header"}}, nil
	}

	switch dataType {
	case importer.DataTypeEmployee:
		c := importer.MapEmployee(row.fields)
		return c, importer.ValidateEmployee(c), nil

	case importer.DataTypeProject:
		c := importer.MapProject(row.fields)
		return c, importer.ValidateProject(c), nil

	case importer.DataTypeStage:
		c := importer.MapStage(row.fields)
		return c, importer.ValidateStage(c), nil

	case importer.DataTypeTimesheet:
		c := importer.MapTimesheet(row.fields)
		refs := &refChecker{employees: s.employees, projects: s.projects, stages: s.stages}
		errs, err := importer.ValidateTimesheet(ctx, c, refs)
		if err != nil {
			return nil, nil, err
		}
		return c, errs, nil
	}

	return nil, nil, errors.BadRequest("unsupported data type")
}

// RowError groups the field errors of one row
type RowError struct {
	RowNumber int                   `json:"rowNumber"`
	Errors    []importer.FieldError `json:"errors"`
}

// ValidationResult is the outcome of a dry-run validation. IsValid
// covers row errors only; duplicates are decisions for the caller, not
// defects.
type ValidationResult struct {
	DataType   importer.DataType     `json:"dataType"`
	FileName   string                `json:"fileName"`
	TotalRows  int                   `json:"totalRows"`
	ValidRows  int                   `json:"validRows"`
	ErrorRows  int                   `json:"errorRows"`
	IsValid    bool                  `json:"isValid"`
	Errors     []RowError            `json:"errors"`
	Duplicates []*importer.Duplicate `json:"duplicates"`
	Preview    []interface{}         `json:"preview"`
}

// existingRecord fetches the stored record a candidate collides with,
// so duplicate reports can show what a replace would overwrite.
func (s *ImportService) existingRecord(ctx context.Context, candidate interface{}) (interface{}, error) {
	switch c := candidate.(type) {
	case *importer.EmployeeCandidate:
		return s.employees.GetByEmployeeID(ctx, c.EmployeeID)
	case *importer.ProjectCandidate:
		return s.projects.GetByCode(ctx, c.ProjectCode)
	case *importer.StageCandidate:
		return s.stages.GetByTaskID(ctx, c.TaskID)
	case *importer.TimesheetCandidate:
		return s.timesheetRepo.GetDetailBySlot(ctx, c.EmployeeID, c.ProjectCode, c.WorkDate, c.StartTime)
	}
	return nil, errors.BadRequest("unsupported data type")
}

// Validate runs the full pipeline against a file without writing
// anything. The returned duplicates carry the natural-key strings a
// later execute call can decide on.
func (s *ImportService) Validate(ctx context.Context, dataType importer.DataType, fileName string, r io.Reader) (*ValidationResult, error) {
	if !dataType.Valid() {
		return nil, errors.BadRequest("unsupported data type")
	}

	file, err := s.parseCSV(r)
	if err != nil {
		return nil, err
	}

	keys, err := s.existingKeys(ctx, dataType)
	if err != nil {
		return nil, err
	}
	resolver := importer.NewResolver(keys)

	result := &ValidationResult{
		DataType:   dataType,
		FileName:   fileName,
		TotalRows:  len(file.rows),
		Errors:     []RowError{},
		Duplicates: []*importer.Duplicate{},
		Preview:    []interface{}{},
	}

	for _, row := range file.rows {
		candidate, fieldErrs, err := s.mapAndValidate(ctx, dataType, row)
		if err != nil {
			return nil, err
		}

		if len(fieldErrs) > 0 {
			result.ErrorRows++
			result.Errors = append(result.Errors, RowError{RowNumber: row.number, Errors: fieldErrs})
			continue
		}

		result.ValidRows++

		key := importer.CandidateKey(dataType, candidate)
		if dup := resolver.Observe(row.number, key, candidate); dup != nil {
			if dup.Kind == importer.DuplicateExisting {
				// the record may have vanished since the key list was loaded
				if existing, err := s.existingRecord(ctx, candidate); err == nil {
					dup.ExistingData = existing
				}
			}
			result.Duplicates = append(result.Duplicates, dup)
		}

		if len(result.Preview) < s.cfg.PreviewRows {
			result.Preview = append(result.Preview, candidate)
		}
	}

	result.IsValid = result.ErrorRows == 0
	return result, nil
}

// GetLog returns one import log with its error rows
func (s *ImportService) GetLog(ctx context.Context, id string) (*repository.ImportLog, []*repository.ImportError, error) {
	return s.logRepo.GetByID(ctx, id)
}

// ListLogs lists import logs, newest first
func (s *ImportService) ListLogs(ctx context.Context, page, perPage int, dataType string) ([]*repository.ImportLog, int64, error) {
	return s.logRepo.List(ctx, page, perPage, dataType)
}

// parseWorkDate parses a validated work date
func parseWorkDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
