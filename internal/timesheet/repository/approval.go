package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Approval statuses
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Approval tracks the review state of one submitted timesheet.
// Each timesheet has at most one approval row.
type Approval struct {
	ID          string     `db:"id" json:"id"`
	TimesheetID string     `db:"timesheet_id" json:"timesheetId"`
	Status      string     `db:"status" json:"status"`
	SubmitterID string     `db:"submitter_id" json:"submitterId"`
	ApproverID  *string    `db:"approver_id" json:"approverId,omitempty"`
	SubmittedAt time.Time  `db:"submitted_at" json:"submittedAt"`
	ApprovedAt  *time.Time `db:"approved_at" json:"approvedAt,omitempty"`
	Comments    *string    `db:"comments" json:"comments,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// ApprovalRepository handles approval persistence
type ApprovalRepository struct {
	db *database.DB
}

// NewApprovalRepository creates a new approval repository
func NewApprovalRepository(db *database.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// Create inserts an approval outside a transaction
func (r *ApprovalRepository) Create(ctx context.Context, a *Approval) error {
	return r.create(ctx, r.db, a)
}

// CreateTx inserts an approval inside an existing transaction
func (r *ApprovalRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, a *Approval) error {
	return r.create(ctx, tx, a)
}

func (r *ApprovalRepository) create(ctx context.Context, q sqlx.ExtContext, a *Approval) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = ApprovalPending
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO approvals (id, timesheet_id, status, submitter_id, approver_id,
		                       submitted_at, approved_at, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := q.QueryRowxContext(ctx, query,
		a.ID, a.TimesheetID, a.Status, a.SubmitterID, a.ApproverID,
		a.SubmittedAt, a.ApprovedAt, a.Comments,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByTimesheetID gets the approval for a timesheet
func (r *ApprovalRepository) GetByTimesheetID(ctx context.Context, timesheetID string) (*Approval, error) {
	var a Approval

	query := `
		SELECT id, timesheet_id, status, submitter_id, approver_id,
		       submitted_at, approved_at, comments, created_at, updated_at
		FROM approvals
		WHERE timesheet_id = $1
	`

	err := r.db.GetContext(ctx, &a, query, timesheetID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("approval")
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// ListPending lists pending approvals with pagination
func (r *ApprovalRepository) ListPending(ctx context.Context, page, perPage int) ([]*Approval, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM approvals WHERE status = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, ApprovalPending); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, timesheet_id, status, submitter_id, approver_id,
		       submitted_at, approved_at, comments, created_at, updated_at
		FROM approvals
		WHERE status = $1
		ORDER BY submitted_at
		LIMIT $2 OFFSET $3
	`

	var approvals []*Approval
	if err := r.db.SelectContext(ctx, &approvals, query, ApprovalPending, perPage, offset); err != nil {
		return nil, 0, err
	}

	return approvals, total, nil
}

// Decide records an approval decision inside an existing transaction
func (r *ApprovalRepository) Decide(ctx context.Context, tx *sqlx.Tx, timesheetID, status, approverID string, comments *string) error {
	query := `
		UPDATE approvals SET
			status = $2, approver_id = $3, approved_at = NOW(), comments = $4, updated_at = NOW()
		WHERE timesheet_id = $1
	`

	result, err := tx.ExecContext(ctx, query, timesheetID, status, approverID, comments)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("approval")
	}

	return nil
}

// ResetToPendingTx reverts a decided approval to PENDING inside a transaction
func (r *ApprovalRepository) ResetToPendingTx(ctx context.Context, tx *sqlx.Tx, timesheetID string) error {
	query := `
		UPDATE approvals SET
			status = $2, approver_id = NULL, approved_at = NULL, updated_at = NOW()
		WHERE timesheet_id = $1
	`

	result, err := tx.ExecContext(ctx, query, timesheetID, ApprovalPending)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("approval")
	}

	return nil
}

// DeleteByTimesheetIDTx removes the approval paired with a timesheet
func (r *ApprovalRepository) DeleteByTimesheetIDTx(ctx context.Context, tx *sqlx.Tx, timesheetID string) error {
	query := `DELETE FROM approvals WHERE timesheet_id = $1`
	_, err := tx.ExecContext(ctx, query, timesheetID)
	return err
}
