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

// Import log statuses
const (
	ImportSuccess = "SUCCESS" // every row imported
	ImportPartial = "PARTIAL" // some rows imported, some failed
	ImportFailed  = "FAILED"  // no rows imported
)

// ImportLog summarizes one executed import
type ImportLog struct {
	ID          string    `db:"id" json:"id"`
	DataType    string    `db:"data_type" json:"dataType"`
	FileName    string    `db:"file_name" json:"fileName"`
	TotalRows   int       `db:"total_rows" json:"totalRows"`
	SuccessRows int       `db:"success_rows" json:"successRows"`
	ErrorRows   int       `db:"error_rows" json:"errorRows"`
	Status      string    `db:"status" json:"status"`
	OperatorID  string    `db:"operator_id" json:"operatorId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ImportError records one failed or skipped row of an import
type ImportError struct {
	ID          string  `db:"id" json:"id"`
	ImportLogID string  `db:"import_log_id" json:"importLogId"`
	RowNumber   int     `db:"row_number" json:"rowNumber"`
	Field       *string `db:"field" json:"field,omitempty"`
	Message     string  `db:"message" json:"message"`
	RawValue    *string `db:"raw_value" json:"rawValue,omitempty"`
}

// ImportLogRepository persists import logs and their error rows
type ImportLogRepository struct {
	db *database.DB
}

// NewImportLogRepository creates a new import log repository
func NewImportLogRepository(db *database.DB) *ImportLogRepository {
	return &ImportLogRepository{db: db}
}

// Create persists a log and its error rows atomically
func (r *ImportLogRepository) Create(ctx context.Context, log *ImportLog, errs []*ImportError) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO csv_import_logs (id, data_type, file_name, total_rows, success_rows,
			                             error_rows, status, operator_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`

		err := tx.QueryRowxContext(ctx, query,
			log.ID, log.DataType, log.FileName, log.TotalRows, log.SuccessRows,
			log.ErrorRows, log.Status, log.OperatorID,
		).Scan(&log.CreatedAt)
		if err != nil {
			return err
		}

		for _, e := range errs {
			if e.ID == "" {
				e.ID = uuid.New().String()
			}
			e.ImportLogID = log.ID

			errQuery := `
				INSERT INTO csv_import_errors (id, import_log_id, row_number, field, message, raw_value)
				VALUES ($1, $2, $3, $4, $5, $6)
			`
			if _, err := tx.ExecContext(ctx, errQuery,
				e.ID, e.ImportLogID, e.RowNumber, e.Field, e.Message, e.RawValue,
			); err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByID returns a log with its error rows
func (r *ImportLogRepository) GetByID(ctx context.Context, id string) (*ImportLog, []*ImportError, error) {
	var log ImportLog

	query := `
		SELECT id, data_type, file_name, total_rows, success_rows, error_rows,
		       status, operator_id, created_at
		FROM csv_import_logs
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &log, query, id)
	if err == sql.ErrNoRows {
		return nil, nil, errors.NotFound("import log")
	}
	if err != nil {
		return nil, nil, err
	}

	var importErrors []*ImportError
	errQuery := `
		SELECT id, import_log_id, row_number, field, message, raw_value
		FROM csv_import_errors
		WHERE import_log_id = $1
		ORDER BY row_number
	`
	if err := r.db.SelectContext(ctx, &importErrors, errQuery, id); err != nil {
		return nil, nil, err
	}

	return &log, importErrors, nil
}

// List lists import logs, newest first
func (r *ImportLogRepository) List(ctx context.Context, page, perPage int, dataType string) ([]*ImportLog, int64, error) {
	where := ``
	args := []interface{}{}
	if dataType != "" {
		where = `WHERE data_type = $1`
		args = append(args, dataType)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM csv_import_logs ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	query := `
		SELECT id, data_type, file_name, total_rows, success_rows, error_rows,
		       status, operator_id, created_at
		FROM csv_import_logs ` + where + `
		ORDER BY created_at DESC
	`
	if dataType != "" {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, perPage, offset)

	var logs []*ImportLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
