package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tempoworks/tempo-backend/internal/roster/repository"
	"github.com/tempoworks/tempo-backend/internal/roster/service"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/testutil"
)

func newRosterService(t *testing.T) (*service.RosterService, *testutil.MockDB) {
	t.Helper()

	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	db := database.NewFromSqlx(mock.DB, logger.New("roster-test", "test"))
	svc := service.NewRosterService(
		repository.NewEmployeeRepository(db),
		repository.NewProjectRepository(db),
		repository.NewStageRepository(db),
		logger.New("roster-test", "test"),
	)
	return svc, mock
}

func TestCreateEmployee_HashesPassword(t *testing.T) {
	svc, mock := newRosterService(t)

	mock.Mock.ExpectQuery("INSERT INTO employees").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	emp, err := svc.CreateEmployee(context.Background(), &service.CreateEmployeeRequest{
		EmployeeID: "EMP001",
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Password:   "secret123",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", emp.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte("secret123")))
	mock.ExpectationsWereMet(t)
}

func TestUpdateEmployee_KeepsPasswordWhenBlank(t *testing.T) {
	svc, mock := newRosterService(t)

	now := time.Now()
	mock.Mock.ExpectQuery("FROM employees").
		WithArgs("emp-1").
		WillReturnRows(testutil.MockRows(
			"id", "employee_id", "name", "email", "password_hash", "role",
			"position", "is_active", "created_at", "updated_at",
		).AddRow("emp-1", "EMP001", "Jane", "jane@example.com", "old-hash", "LEVEL1", nil, true, now, now))
	mock.Mock.ExpectExec("UPDATE employees SET").
		WithArgs("emp-1", "EMP001", "Jane Doe", "jane@example.com", "old-hash", "LEVEL2", nil, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	emp, err := svc.UpdateEmployee(context.Background(), "emp-1", &service.UpdateEmployeeRequest{
		Name:  "Jane Doe",
		Email: "jane@example.com",
		Role:  "LEVEL2",
	})
	require.NoError(t, err)

	assert.Equal(t, "old-hash", emp.PasswordHash)
	assert.Equal(t, "EMP001", emp.EmployeeID, "business identifier is immutable")
	mock.ExpectationsWereMet(t)
}

func TestCreateProject_RejectsInvertedDateRange(t *testing.T) {
	svc, _ := newRosterService(t)

	start, end := "2026-06-30", "2026-01-01"
	_, err := svc.CreateProject(context.Background(), &service.CreateProjectRequest{
		ProjectCode: "PRJ001",
		Name:        "Relaunch",
		StartDate:   &start,
		EndDate:     &end,
	})
	assert.Error(t, err)
}

func TestCreateProject(t *testing.T) {
	svc, mock := newRosterService(t)

	mock.Mock.ExpectQuery("INSERT INTO projects").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	start := "2026-01-01"
	p, err := svc.CreateProject(context.Background(), &service.CreateProjectRequest{
		ProjectCode: "PRJ001",
		Name:        "Relaunch",
		StartDate:   &start,
	})
	require.NoError(t, err)

	require.NotNil(t, p.StartDate)
	assert.Equal(t, "2026-01-01", p.StartDate.Format("2006-01-02"))
	assert.Nil(t, p.EndDate)
	mock.ExpectationsWereMet(t)
}
