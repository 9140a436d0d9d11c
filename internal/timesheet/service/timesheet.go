package service

import (
	"context"
	"math"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tempoworks/tempo-backend/internal/timesheet/events"
	"github.com/tempoworks/tempo-backend/internal/timesheet/repository"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// EventPublisher publishes timesheet workflow events.
// Satisfied by events.TimesheetEventPublisher.
type EventPublisher interface {
	PublishSubmitted(ctx context.Context, ts *repository.Timesheet, actorID string)
	PublishApproved(ctx context.Context, ts *repository.Timesheet, actorID string)
	PublishRejected(ctx context.Context, ts *repository.Timesheet, actorID string)
	PublishReset(ctx context.Context, ts *repository.Timesheet, actorID string)
}

var _ EventPublisher = (*events.TimesheetEventPublisher)(nil)

// TimesheetService handles timesheet business logic and the approval workflow
type TimesheetService struct {
	db            *database.DB
	timesheetRepo *repository.TimesheetRepository
	approvalRepo  *repository.ApprovalRepository
	publisher     EventPublisher
	logger        *logger.Logger
}

// NewTimesheetService creates a new timesheet service
func NewTimesheetService(
	db *database.DB,
	timesheetRepo *repository.TimesheetRepository,
	approvalRepo *repository.ApprovalRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *TimesheetService {
	return &TimesheetService{
		db:            db,
		timesheetRepo: timesheetRepo,
		approvalRepo:  approvalRepo,
		publisher:     publisher,
		logger:        log,
	}
}

// CreateTimesheetRequest is the payload for creating a timesheet
type CreateTimesheetRequest struct {
	EmployeeID  string  `json:"employeeId" validate:"required,uuid"`
	ProjectID   string  `json:"projectId" validate:"required,uuid"`
	StageID     *string `json:"stageId,omitempty" validate:"omitempty,uuid"`
	WorkDate    string  `json:"workDate" validate:"required,datetime=2006-01-02"`
	StartTime   *string `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime     *string `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	Hours       float64 `json:"hours" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// UpdateTimesheetRequest is the payload for updating a draft timesheet
type UpdateTimesheetRequest struct {
	ProjectID   string  `json:"projectId" validate:"required,uuid"`
	StageID     *string `json:"stageId,omitempty" validate:"omitempty,uuid"`
	WorkDate    string  `json:"workDate" validate:"required,datetime=2006-01-02"`
	StartTime   *string `json:"startTime,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime     *string `json:"endTime,omitempty" validate:"omitempty,datetime=15:04"`
	Hours       float64 `json:"hours" validate:"required"`
	Description *string `json:"description,omitempty"`
}

// ValidHours reports whether hours is a positive multiple of 0.25.
func ValidHours(hours float64) bool {
	if hours <= 0 {
		return false
	}
	quarters := hours * 4
	return math.Abs(quarters-math.Round(quarters)) < 1e-9
}

func validateTimes(hours float64, startTime, endTime *string) error {
	if !ValidHours(hours) {
		return errors.Validation(map[string]string{
			"hours": "must be a positive multiple of 0.25",
		})
	}
	if (startTime == nil) != (endTime == nil) {
		return errors.Validation(map[string]string{
			"startTime": "startTime and endTime must be provided together",
		})
	}
	if startTime != nil && *endTime <= *startTime {
		return errors.Validation(map[string]string{
			"endTime": "must be after startTime",
		})
	}
	return nil
}

// Create creates a new draft timesheet
func (s *TimesheetService) Create(ctx context.Context, req *CreateTimesheetRequest) (*repository.Timesheet, error) {
	if err := validateTimes(req.Hours, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return nil, errors.Validation(map[string]string{"workDate": "must match format 2006-01-02"})
	}

	ts := &repository.Timesheet{
		EmployeeID:  req.EmployeeID,
		ProjectID:   req.ProjectID,
		StageID:     req.StageID,
		WorkDate:    workDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Hours:       req.Hours,
		Description: req.Description,
		Status:      repository.StatusDraft,
	}

	if err := s.timesheetRepo.Create(ctx, ts); err != nil {
		return nil, err
	}

	return ts, nil
}

// Get gets a timesheet by primary key
func (s *TimesheetService) Get(ctx context.Context, id string) (*repository.Timesheet, error) {
	return s.timesheetRepo.GetByID(ctx, id)
}

// List lists timesheets with filters and pagination
func (s *TimesheetService) List(ctx context.Context, filter *repository.ListFilter, page, perPage int) ([]*repository.TimesheetDetail, int64, error) {
	return s.timesheetRepo.List(ctx, filter, page, perPage)
}

// Update updates a timesheet. Only drafts can be edited.
func (s *TimesheetService) Update(ctx context.Context, id string, req *UpdateTimesheetRequest) (*repository.Timesheet, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ts.Status != repository.StatusDraft {
		return nil, errors.Conflict("only draft timesheets can be edited")
	}

	if err := validateTimes(req.Hours, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return nil, errors.Validation(map[string]string{"workDate": "must match format 2006-01-02"})
	}

	ts.ProjectID = req.ProjectID
	ts.StageID = req.StageID
	ts.WorkDate = workDate
	ts.StartTime = req.StartTime
	ts.EndTime = req.EndTime
	ts.Hours = req.Hours
	ts.Description = req.Description

	if err := s.timesheetRepo.Update(ctx, ts); err != nil {
		return nil, err
	}

	return ts, nil
}

// Delete removes a timesheet. Only drafts can be deleted.
func (s *TimesheetService) Delete(ctx context.Context, id string) error {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if ts.Status != repository.StatusDraft {
		return errors.Conflict("only draft timesheets can be deleted")
	}

	return s.timesheetRepo.Delete(ctx, id)
}

// Submit moves a draft to SUBMITTED and opens a PENDING approval.
func (s *TimesheetService) Submit(ctx context.Context, id, actorID string) (*repository.Timesheet, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ts.Status != repository.StatusDraft {
		return nil, errors.Conflict("only draft timesheets can be submitted")
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.timesheetRepo.UpdateStatusTx(ctx, tx, id, repository.StatusSubmitted); err != nil {
			return err
		}

		approval := &repository.Approval{
			TimesheetID: id,
			Status:      repository.ApprovalPending,
			SubmitterID: actorID,
		}
		return s.approvalRepo.CreateTx(ctx, tx, approval)
	})
	if err != nil {
		return nil, err
	}

	ts.Status = repository.StatusSubmitted
	s.publisher.PublishSubmitted(ctx, ts, actorID)

	return ts, nil
}

// Approve moves a submitted timesheet to APPROVED.
func (s *TimesheetService) Approve(ctx context.Context, id, approverID string, comments *string) (*repository.Timesheet, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ts.Status != repository.StatusSubmitted {
		return nil, errors.Conflict("only submitted timesheets can be approved")
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.timesheetRepo.UpdateStatusTx(ctx, tx, id, repository.StatusApproved); err != nil {
			return err
		}
		return s.approvalRepo.Decide(ctx, tx, id, repository.ApprovalApproved, approverID, comments)
	})
	if err != nil {
		return nil, err
	}

	ts.Status = repository.StatusApproved
	s.publisher.PublishApproved(ctx, ts, approverID)

	return ts, nil
}

// Reject records a rejection and returns the timesheet to DRAFT so the
// submitter can correct and resubmit.
func (s *TimesheetService) Reject(ctx context.Context, id, approverID string, comments *string) (*repository.Timesheet, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ts.Status != repository.StatusSubmitted {
		return nil, errors.Conflict("only submitted timesheets can be rejected")
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.timesheetRepo.UpdateStatusTx(ctx, tx, id, repository.StatusDraft); err != nil {
			return err
		}
		return s.approvalRepo.Decide(ctx, tx, id, repository.ApprovalRejected, approverID, comments)
	})
	if err != nil {
		return nil, err
	}

	ts.Status = repository.StatusDraft
	s.publisher.PublishRejected(ctx, ts, approverID)

	return ts, nil
}

// ResetToSubmitted reverts an approved timesheet and its approval back to
// SUBMITTED/PENDING so it can be re-reviewed.
func (s *TimesheetService) ResetToSubmitted(ctx context.Context, id, actorID string) (*repository.Timesheet, error) {
	ts, err := s.timesheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ts.Status != repository.StatusApproved {
		return nil, errors.Conflict("only approved timesheets can be reset")
	}

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.timesheetRepo.UpdateStatusTx(ctx, tx, id, repository.StatusSubmitted); err != nil {
			return err
		}
		return s.approvalRepo.ResetToPendingTx(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}

	ts.Status = repository.StatusSubmitted
	s.publisher.PublishReset(ctx, ts, actorID)

	return ts, nil
}

// BatchResult reports the outcome of one item in a batch operation
type BatchResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchSubmit submits multiple drafts. Failures do not abort the batch.
func (s *TimesheetService) BatchSubmit(ctx context.Context, ids []string, actorID string) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Submit(ctx, id, actorID); err != nil {
			results = append(results, BatchResult{ID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BatchResult{ID: id, Success: true})
	}
	return results
}

// BatchApprove approves multiple submitted timesheets. Failures do not
// abort the batch.
func (s *TimesheetService) BatchApprove(ctx context.Context, ids []string, approverID string) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Approve(ctx, id, approverID, nil); err != nil {
			results = append(results, BatchResult{ID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BatchResult{ID: id, Success: true})
	}
	return results
}

// GetApproval gets the approval record for a timesheet
func (s *TimesheetService) GetApproval(ctx context.Context, timesheetID string) (*repository.Approval, error) {
	return s.approvalRepo.GetByTimesheetID(ctx, timesheetID)
}

// ListPendingApprovals lists pending approvals with pagination
func (s *TimesheetService) ListPendingApprovals(ctx context.Context, page, perPage int) ([]*repository.Approval, int64, error) {
	return s.approvalRepo.ListPending(ctx, page, perPage)
}
