package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tempoworks/tempo-backend/internal/auth/jwt"
	"github.com/tempoworks/tempo-backend/internal/auth/service"
	"github.com/tempoworks/tempo-backend/internal/roster/repository"
	"github.com/tempoworks/tempo-backend/pkg/config"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/testutil"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.MockDB) {
	t.Helper()

	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	log := logger.New("auth-test", "test")
	db := database.NewFromSqlx(mock.DB, log)

	manager := jwt.NewManager(&config.JWTConfig{
		Secret:       "test-secret",
		Issuer:       "tempo-test",
		AccessExpiry: time.Hour,
	})

	return service.NewAuthService(repository.NewEmployeeRepository(db), manager, log), mock
}

func expectEmployeeByEmail(mock *testutil.MockDB, email, passwordHash string, active bool) {
	now := time.Now()
	mock.Mock.ExpectQuery("FROM employees").
		WithArgs(email).
		WillReturnRows(testutil.MockRows(
			"id", "employee_id", "name", "email", "password_hash", "role",
			"position", "is_active", "created_at", "updated_at",
		).AddRow("emp-1", "EMP001", "Jane Doe", email, passwordHash, "LEVEL1", nil, active, now, now))
}

func TestLogin(t *testing.T) {
	svc, mock := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	expectEmployeeByEmail(mock, "jane@example.com", string(hash), true)

	resp, err := svc.Login(context.Background(), &service.LoginRequest{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "EMP001", resp.Employee.EmployeeID)
	mock.ExpectationsWereMet(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mock := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	expectEmployeeByEmail(mock, "jane@example.com", string(hash), true)

	_, err = svc.Login(context.Background(), &service.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})
	assert.ErrorContains(t, err, "invalid credentials")
	mock.ExpectationsWereMet(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.Mock.ExpectQuery("FROM employees").
		WithArgs("nobody@example.com").
		WillReturnRows(testutil.MockRows(
			"id", "employee_id", "name", "email", "password_hash", "role",
			"position", "is_active", "created_at", "updated_at",
		))

	_, err := svc.Login(context.Background(), &service.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	// unknown email and wrong password are indistinguishable
	assert.ErrorContains(t, err, "invalid credentials")
	mock.ExpectationsWereMet(t)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, mock := newAuthService(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	expectEmployeeByEmail(mock, "jane@example.com", string(hash), false)

	_, err = svc.Login(context.Background(), &service.LoginRequest{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	assert.ErrorContains(t, err, "deactivated")
	mock.ExpectationsWereMet(t)
}
