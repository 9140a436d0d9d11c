package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/testutil"
)

func newLogRepo(t *testing.T) (*repository.ImportLogRepository, *testutil.MockDB) {
	t.Helper()

	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	db := database.NewFromSqlx(mock.DB, logger.New("csvimport-test", "test"))
	return repository.NewImportLogRepository(db), mock
}

func TestImportLogCreate_PersistsErrorsAtomically(t *testing.T) {
	repo, mock := newLogRepo(t)

	mock.ExpectBegin()
	mock.Mock.ExpectQuery("INSERT INTO csv_import_logs").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mock.Mock.ExpectExec("INSERT INTO csv_import_errors").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.Mock.ExpectExec("INSERT INTO csv_import_errors").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	field := "email"
	log := &repository.ImportLog{
		DataType:    "EMPLOYEE",
		FileName:    "employees.csv",
		TotalRows:   3,
		SuccessRows: 1,
		ErrorRows:   2,
		Status:      repository.ImportPartial,
		OperatorID:  "operator-1",
	}
	errs := []*repository.ImportError{
		{RowNumber: 3, Field: &field, Message: "is not a valid email address"},
		{RowNumber: 4, Message: "duplicate row skipped"},
	}

	require.NoError(t, repo.Create(context.Background(), log, errs))

	assert.NotEmpty(t, log.ID)
	for _, e := range errs {
		assert.Equal(t, log.ID, e.ImportLogID)
		assert.NotEmpty(t, e.ID)
	}
	mock.ExpectationsWereMet(t)
}

func TestImportLogCreate_RollsBackOnErrorInsertFailure(t *testing.T) {
	repo, mock := newLogRepo(t)

	mock.ExpectBegin()
	mock.Mock.ExpectQuery("INSERT INTO csv_import_logs").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mock.Mock.ExpectExec("INSERT INTO csv_import_errors").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	log := &repository.ImportLog{DataType: "EMPLOYEE", FileName: "x.csv", Status: repository.ImportFailed, OperatorID: "op"}
	err := repo.Create(context.Background(), log, []*repository.ImportError{{RowNumber: 2, Message: "boom"}})

	assert.Error(t, err)
	mock.ExpectationsWereMet(t)
}

func TestImportLogGetByID_NotFound(t *testing.T) {
	repo, mock := newLogRepo(t)

	mock.Mock.ExpectQuery("FROM csv_import_logs").
		WithArgs("missing").
		WillReturnRows(testutil.MockRows(
			"id", "data_type", "file_name", "total_rows", "success_rows",
			"error_rows", "status", "operator_id", "created_at",
		))

	_, _, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mock.ExpectationsWereMet(t)
}

func TestImportLogList_FiltersByDataType(t *testing.T) {
	repo, mock := newLogRepo(t)

	now := time.Now()
	mock.Mock.ExpectQuery("SELECT COUNT").
		WithArgs("TIMESHEET").
		WillReturnRows(testutil.MockRows("count").AddRow(int64(1)))
	mock.Mock.ExpectQuery("FROM csv_import_logs").
		WithArgs("TIMESHEET", 20, 0).
		WillReturnRows(testutil.MockRows(
			"id", "data_type", "file_name", "total_rows", "success_rows",
			"error_rows", "status", "operator_id", "created_at",
		).AddRow("log-1", "TIMESHEET", "timesheets.csv", 10, 10, 0, repository.ImportSuccess, "op", now))

	logs, total, err := repo.List(context.Background(), 1, 20, "TIMESHEET")
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, "log-1", logs[0].ID)
	mock.ExpectationsWereMet(t)
}
