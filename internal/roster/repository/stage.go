package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
)

// Stage represents a work breakdown stage (task) that timesheet entries
// may optionally reference. TaskID follows the TD.NN.NN pattern.
type Stage struct {
	ID          string    `db:"id" json:"id"`
	TaskID      string    `db:"task_id" json:"taskId"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Category    *string   `db:"category" json:"category,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// StageRepository handles stage persistence
type StageRepository struct {
	db *database.DB
}

// NewStageRepository creates a new stage repository
func NewStageRepository(db *database.DB) *StageRepository {
	return &StageRepository{db: db}
}

// Create creates a new stage
func (r *StageRepository) Create(ctx context.Context, s *Stage) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.IsActive = true

	query := `
		INSERT INTO stages (id, task_id, name, description, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		s.ID, s.TaskID, s.Name, s.Description, s.Category, s.IsActive,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a stage by primary key
func (r *StageRepository) GetByID(ctx context.Context, id string) (*Stage, error) {
	var s Stage

	query := `
		SELECT id, task_id, name, description, category, is_active, created_at, updated_at
		FROM stages
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &s, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("stage")
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// GetByTaskID gets a stage by its task identifier
func (r *StageRepository) GetByTaskID(ctx context.Context, taskID string) (*Stage, error) {
	var s Stage

	query := `
		SELECT id, task_id, name, description, category, is_active, created_at, updated_at
		FROM stages
		WHERE task_id = $1
	`

	err := r.db.GetContext(ctx, &s, query, taskID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("stage")
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// List lists stages with pagination
func (r *StageRepository) List(ctx context.Context, page, perPage int, includeInactive bool) ([]*Stage, int64, error) {
	var total int64
	var stages []*Stage

	where := `WHERE is_active = true`
	if includeInactive {
		where = ``
	}

	countQuery := `SELECT COUNT(*) FROM stages ` + where
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, task_id, name, description, category, is_active, created_at, updated_at
		FROM stages ` + where + `
		ORDER BY task_id
		LIMIT $1 OFFSET $2
	`

	if err := r.db.SelectContext(ctx, &stages, query, perPage, offset); err != nil {
		return nil, 0, err
	}

	return stages, total, nil
}

// Update updates a stage
func (r *StageRepository) Update(ctx context.Context, s *Stage) error {
	query := `
		UPDATE stages SET
			task_id = $2, name = $3, description = $4, category = $5,
			is_active = $6, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.TaskID, s.Name, s.Description, s.Category, s.IsActive,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stage")
	}

	return nil
}

// Deactivate soft deletes a stage
func (r *StageRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE stages SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("stage")
	}

	return nil
}

// ListAll returns every stage ordered by task identifier. Used by CSV export.
func (r *StageRepository) ListAll(ctx context.Context) ([]*Stage, error) {
	var stages []*Stage
	query := `
		SELECT id, task_id, name, description, category, is_active, created_at, updated_at
		FROM stages
		ORDER BY task_id
	`
	if err := r.db.SelectContext(ctx, &stages, query); err != nil {
		return nil, err
	}
	return stages, nil
}

// ExistsByTaskID reports whether an active stage with the task identifier exists.
func (r *StageRepository) ExistsByTaskID(ctx context.Context, taskID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM stages WHERE task_id = $1 AND is_active = true)`
	if err := r.db.GetContext(ctx, &exists, query, taskID); err != nil {
		return false, err
	}
	return exists, nil
}

// ListTaskIDs returns all task identifiers for duplicate detection.
func (r *StageRepository) ListTaskIDs(ctx context.Context) ([]string, error) {
	var ids []string
	query := `SELECT task_id FROM stages ORDER BY task_id`
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}
