package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/tempoworks/tempo-backend/internal/auth/jwt"
	"github.com/tempoworks/tempo-backend/internal/roster/repository"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// AuthService handles authentication
type AuthService struct {
	employeeRepo *repository.EmployeeRepository
	jwtManager   *jwt.Manager
	logger       *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(employeeRepo *repository.EmployeeRepository, jwtManager *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		employeeRepo: employeeRepo,
		jwtManager:   jwtManager,
		logger:       log,
	}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the authenticated employee
type LoginResponse struct {
	Token    *jwt.Token           `json:"token"`
	Employee *repository.Employee `json:"employee"`
}

// Login verifies credentials and issues an access token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	emp, err := s.employeeRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same response for unknown email and wrong password
		return nil, errors.Unauthorized("invalid credentials")
	}

	if !emp.IsActive {
		return nil, errors.Unauthorized("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.Unauthorized("invalid credentials")
	}

	token, err := s.jwtManager.GenerateToken(&jwt.UserInfo{
		ID:         emp.ID,
		Email:      emp.Email,
		Name:       emp.Name,
		Role:       emp.Role,
		EmployeeID: emp.EmployeeID,
	})
	if err != nil {
		return nil, errors.Internal("failed to issue token")
	}

	s.logger.Info().Str("employee_id", emp.EmployeeID).Msg("login")

	return &LoginResponse{Token: token, Employee: emp}, nil
}

// GetCurrentUser returns the employee behind an authenticated request
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*repository.Employee, error) {
	return s.employeeRepo.GetByID(ctx, userID)
}
