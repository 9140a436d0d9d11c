package service

import (
	"context"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	rosterrepo "github.com/tempoworks/tempo-backend/internal/roster/repository"
	tsrepo "github.com/tempoworks/tempo-backend/internal/timesheet/repository"

	"github.com/tempoworks/tempo-backend/internal/csvimport/importer"
	"github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Duplicate decisions. Anything other than an explicit replace is a
// skip; rows the caller never decided on are skipped too.
const (
	DecisionSkip    = "skip"
	DecisionReplace = "replace"
)

// ExecuteResult is the outcome of an executed import
type ExecuteResult struct {
	ImportLogID string                    `json:"importLogId"`
	DataType    importer.DataType         `json:"dataType"`
	FileName    string                    `json:"fileName"`
	TotalRows   int                       `json:"totalRows"`
	SuccessRows int                       `json:"successRows"`
	ErrorRows   int                       `json:"errorRows"`
	Status      string                    `json:"status"`
	Errors      []*repository.ImportError `json:"errors"`
}

// Execute runs the import for real. Rows are processed in file order,
// one row per unit of work; a failing row is recorded and never aborts
// the rest of the file. The whole run is summarized in one import log.
func (s *ImportService) Execute(ctx context.Context, dataType importer.DataType, fileName string, r io.Reader, decisions map[string]string, operatorID string) (*ExecuteResult, error) {
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

	var (
		importErrors []*repository.ImportError
		successRows  int
		errorRows    int
		approverID   string // resolved lazily for APPROVED timesheet rows
	)

	recordFieldErrors := func(rowNumber int, fieldErrs []importer.FieldError) {
		errorRows++
		for _, fe := range fieldErrs {
			fe := fe
			ie := &repository.ImportError{
				RowNumber: rowNumber,
				Field:     &fe.Field,
				Message:   fe.Message,
			}
			if fe.Value != "" {
				ie.RawValue = &fe.Value
			}
			importErrors = append(importErrors, ie)
		}
	}

	recordRowError := func(rowNumber int, message string, rawValue *string) {
		errorRows++
		importErrors = append(importErrors, &repository.ImportError{
			RowNumber: rowNumber,
			Message:   message,
			RawValue:  rawValue,
		})
	}

	for _, row := range file.rows {
		// Re-map and re-validate: the file on execute may differ from
		// the one previously validated.
		candidate, fieldErrs, err := s.mapAndValidate(ctx, dataType, row)
		if err != nil {
			return nil, err
		}
		if len(fieldErrs) > 0 {
			recordFieldErrors(row.number, fieldErrs)
			continue
		}

		key := importer.CandidateKey(dataType, candidate)
		replace := false

		if dup := resolver.Observe(row.number, key, candidate); dup != nil {
			if decisions[key] != DecisionReplace {
				k := key
				recordRowError(row.number, "duplicate row skipped", &k)
				continue
			}
			replace = true
		}

		switch c := candidate.(type) {
		case *importer.EmployeeCandidate:
			err = s.importEmployee(ctx, c, replace)

		case *importer.ProjectCandidate:
			err = s.importProject(ctx, c, replace)

		case *importer.StageCandidate:
			err = s.importStage(ctx, c, replace)

		case *importer.TimesheetCandidate:
			if c.Status == string(tsrepo.StatusApproved) && approverID == "" {
				approverID = s.resolveApprover(ctx, operatorID)
			}
			err = s.importTimesheet(ctx, c, replace, approverID)
		}

		if err != nil {
			recordRowError(row.number, err.Error(), nil)
			continue
		}

		successRows++
	}

	status := repository.ImportSuccess
	switch {
	case errorRows == 0:
		status = repository.ImportSuccess
	case successRows == 0:
		status = repository.ImportFailed
	default:
		status = repository.ImportPartial
	}

	log := &repository.ImportLog{
		DataType:    string(dataType),
		FileName:    fileName,
		TotalRows:   len(file.rows),
		SuccessRows: successRows,
		ErrorRows:   errorRows,
		Status:      status,
		OperatorID:  operatorID,
	}

	if err := s.logRepo.Create(ctx, log, importErrors); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.PublishCompleted(ctx, log)
	}

	s.logger.WithImportLog(log.ID).Info().
		Str("data_type", string(dataType)).
		Int("total", log.TotalRows).
		Int("success", successRows).
		Int("errors", errorRows).
		Str("status", status).
		Msg("import executed")

	return &ExecuteResult{
		ImportLogID: log.ID,
		DataType:    dataType,
		FileName:    fileName,
		TotalRows:   log.TotalRows,
		SuccessRows: successRows,
		ErrorRows:   errorRows,
		Status:      status,
		Errors:      importErrors,
	}, nil
}

// resolveApprover resolves the configured default approver's storage id.
// Falls back to the operator when the configured approver is unknown.
func (s *ImportService) resolveApprover(ctx context.Context, operatorID string) string {
	if s.cfg.DefaultApprover != "" {
		if emp, err := s.employees.GetByEmployeeID(ctx, s.cfg.DefaultApprover); err == nil {
			return emp.ID
		}
		s.logger.Warn().Str("default_approver", s.cfg.DefaultApprover).
			Msg("configured default approver not found, using operator")
	}
	return operatorID
}

func (s *ImportService) importEmployee(ctx context.Context, c *importer.EmployeeCandidate, replace bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Internal("failed to hash password")
	}

	if replace {
		existing, err := s.employees.GetByEmployeeID(ctx, c.EmployeeID)
		if err != nil {
			return err
		}
		existing.Name = c.Name
		existing.Email = c.Email
		existing.PasswordHash = string(hash)
		if c.Role != "" {
			existing.Role = c.Role
		}
		existing.Position = c.Position
		existing.IsActive = true
		return s.employees.Update(ctx, existing)
	}

	emp := &rosterrepo.Employee{
		EmployeeID:   c.EmployeeID,
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: string(hash),
		Role:         c.Role,
		Position:     c.Position,
	}
	return s.employees.Create(ctx, emp)
}

func (s *ImportService) importProject(ctx context.Context, c *importer.ProjectCandidate, replace bool) error {
	start, err := parseOptionalDate(c.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalDate(c.EndDate)
	if err != nil {
		return err
	}

	if replace {
		existing, err := s.projects.GetByCode(ctx, c.ProjectCode)
		if err != nil {
			return err
		}
		existing.Name = c.Name
		existing.Description = c.Description
		if c.Status != "" {
			existing.Status = c.Status
		}
		existing.StartDate = start
		existing.EndDate = end
		return s.projects.Update(ctx, existing)
	}

	p := &rosterrepo.Project{
		ProjectCode: c.ProjectCode,
		Name:        c.Name,
		Description: c.Description,
		Status:      c.Status,
		StartDate:   start,
		EndDate:     end,
	}
	return s.projects.Create(ctx, p)
}

func (s *ImportService) importStage(ctx context.Context, c *importer.StageCandidate, replace bool) error {
	if replace {
		existing, err := s.stages.GetByTaskID(ctx, c.TaskID)
		if err != nil {
			return err
		}
		existing.Name = c.Name
		existing.Description = c.Description
		existing.Category = c.Category
		existing.IsActive = true
		return s.stages.Update(ctx, existing)
	}

	st := &rosterrepo.Stage{
		TaskID:      c.TaskID,
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
	}
	return s.stages.Create(ctx, st)
}

// importTimesheet inserts one timesheet row and its paired approval in
// a single transaction. On replace, the row occupying the full natural
// key is deleted first, inside the same transaction.
func (s *ImportService) importTimesheet(ctx context.Context, c *importer.TimesheetCandidate, replace bool, approverID string) error {
	emp, err := s.employees.GetByEmployeeID(ctx, c.EmployeeID)
	if err != nil {
		return err
	}
	proj, err := s.projects.GetByCode(ctx, c.ProjectCode)
	if err != nil {
		return err
	}

	var stageID *string
	if c.TaskID != nil {
		stage, err := s.stages.GetByTaskID(ctx, *c.TaskID)
		if err != nil {
			return err
		}
		stageID = &stage.ID
	}

	workDate, err := parseWorkDate(c.WorkDate)
	if err != nil {
		return errors.BadRequest("invalid date: " + c.WorkDate)
	}

	status := c.Status
	if status == "" {
		status = tsrepo.StatusDraft
	}

	return s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if replace {
			if _, err := s.timesheetRepo.DeleteBySlotTx(ctx, tx, emp.ID, proj.ID, workDate, c.StartTime); err != nil {
				return err
			}
		}

		ts := &tsrepo.Timesheet{
			EmployeeID:  emp.ID,
			ProjectID:   proj.ID,
			StageID:     stageID,
			WorkDate:    workDate,
			StartTime:   c.StartTime,
			EndTime:     c.EndTime,
			Hours:       *c.Hours,
			Description: c.Description,
			Status:      status,
		}
		if err := s.timesheetRepo.CreateTx(ctx, tx, ts); err != nil {
			return err
		}

		switch status {
		case tsrepo.StatusSubmitted:
			approval := &tsrepo.Approval{
				TimesheetID: ts.ID,
				Status:      tsrepo.ApprovalPending,
				SubmitterID: emp.ID,
			}
			return s.approvalRepo.CreateTx(ctx, tx, approval)

		case tsrepo.StatusApproved:
			now := time.Now().UTC()
			approval := &tsrepo.Approval{
				TimesheetID: ts.ID,
				Status:      tsrepo.ApprovalApproved,
				SubmitterID: emp.ID,
				ApproverID:  &approverID,
				ApprovedAt:  &now,
			}
			return s.approvalRepo.CreateTx(ctx, tx, approval)
		}

		// DRAFT rows carry no approval
		return nil
	})
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, errors.BadRequest("invalid date: " + *s)
	}
	return &t, nil
}
