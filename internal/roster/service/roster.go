package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tempoworks/tempo-backend/internal/roster/repository"
	"github.com/tempoworks/tempo-backend/pkg/errors"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

// RosterService handles employee, project and stage business logic
type RosterService struct {
	employeeRepo *repository.EmployeeRepository
	projectRepo  *repository.ProjectRepository
	stageRepo    *repository.StageRepository
	logger       *logger.Logger
}

// NewRosterService creates a new roster service
func NewRosterService(
	employeeRepo *repository.EmployeeRepository,
	projectRepo *repository.ProjectRepository,
	stageRepo *repository.StageRepository,
	log *logger.Logger,
) *RosterService {
	return &RosterService{
		employeeRepo: employeeRepo,
		projectRepo:  projectRepo,
		stageRepo:    stageRepo,
		logger:       log,
	}
}

// CreateEmployeeRequest is the payload for creating an employee
type CreateEmployeeRequest struct {
	EmployeeID string  `json:"employeeId" validate:"required,max=50"`
	Name       string  `json:"name" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"omitempty,oneof=LEVEL1 LEVEL2 LEVEL3"`
	Position   *string `json:"position,omitempty"`
}

// UpdateEmployeeRequest is the payload for updating an employee
type UpdateEmployeeRequest struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"omitempty,min=8"`
	Role     string  `json:"role" validate:"required,oneof=LEVEL1 LEVEL2 LEVEL3"`
	Position *string `json:"position,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// CreateEmployee creates an employee with a hashed password
func (s *RosterService) CreateEmployee(ctx context.Context, req *CreateEmployeeRequest) (*repository.Employee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password")
	}

	emp := &repository.Employee{
		EmployeeID:   req.EmployeeID,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Position:     req.Position,
	}

	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.Info().Str("employee_id", emp.EmployeeID).Msg("employee created")
	return emp, nil
}

// GetEmployee gets an employee by primary key
func (s *RosterService) GetEmployee(ctx context.Context, id string) (*repository.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

// ListEmployees lists employees with pagination
func (s *RosterService) ListEmployees(ctx context.Context, page, perPage int, includeInactive bool) ([]*repository.Employee, int64, error) {
	return s.employeeRepo.List(ctx, page, perPage, includeInactive)
}

// UpdateEmployee updates an employee. The business identifier is immutable.
func (s *RosterService) UpdateEmployee(ctx context.Context, id string, req *UpdateEmployeeRequest) (*repository.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	emp.Name = req.Name
	emp.Email = req.Email
	emp.Role = req.Role
	emp.Position = req.Position
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Internal("failed to hash password")
		}
		emp.PasswordHash = string(hash)
	}

	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return nil, err
	}

	return emp, nil
}

// DeactivateEmployee marks an employee inactive
func (s *RosterService) DeactivateEmployee(ctx context.Context, id string) error {
	return s.employeeRepo.Deactivate(ctx, id)
}

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	ProjectCode string  `json:"projectCode" validate:"required,max=50"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status" validate:"omitempty,oneof=ACTIVE COMPLETED SUSPENDED CANCELLED"`
	StartDate   *string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest is the payload for updating a project
type UpdateProjectRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status" validate:"required,oneof=ACTIVE COMPLETED SUSPENDED CANCELLED"`
	StartDate   *string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CreateProject creates a project
func (s *RosterService) CreateProject(ctx context.Context, req *CreateProjectRequest) (*repository.Project, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	p := &repository.Project{
		ProjectCode: req.ProjectCode,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   start,
		EndDate:     end,
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("project_code", p.ProjectCode).Msg("project created")
	return p, nil
}

// GetProject gets a project by primary key
func (s *RosterService) GetProject(ctx context.Context, id string) (*repository.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// ListProjects lists projects with pagination
func (s *RosterService) ListProjects(ctx context.Context, page, perPage int, status string) ([]*repository.Project, int64, error) {
	return s.projectRepo.List(ctx, page, perPage, status)
}

// UpdateProject updates a project. The project code is immutable.
func (s *RosterService) UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) (*repository.Project, error) {
	p, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Status = req.Status
	p.StartDate = start
	p.EndDate = end

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// DeleteProject removes a project
func (s *RosterService) DeleteProject(ctx context.Context, id string) error {
	return s.projectRepo.Delete(ctx, id)
}

// CreateStageRequest is the payload for creating a stage
type CreateStageRequest struct {
	TaskID      string  `json:"taskId" validate:"required,max=20"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// UpdateStageRequest is the payload for updating a stage
type UpdateStageRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateStage creates a stage
func (s *RosterService) CreateStage(ctx context.Context, req *CreateStageRequest) (*repository.Stage, error) {
	st := &repository.Stage{
		TaskID:      req.TaskID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	}

	if err := s.stageRepo.Create(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

// GetStage gets a stage by primary key
func (s *RosterService) GetStage(ctx context.Context, id string) (*repository.Stage, error) {
	return s.stageRepo.GetByID(ctx, id)
}

// ListStages lists stages with pagination
func (s *RosterService) ListStages(ctx context.Context, page, perPage int, includeInactive bool) ([]*repository.Stage, int64, error) {
	return s.stageRepo.List(ctx, page, perPage, includeInactive)
}

// UpdateStage updates a stage. The task identifier is immutable.
func (s *RosterService) UpdateStage(ctx context.Context, id string, req *UpdateStageRequest) (*repository.Stage, error) {
	st, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	st.Name = req.Name
	st.Description = req.Description
	st.Category = req.Category
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := s.stageRepo.Update(ctx, st); err != nil {
		return nil, err
	}

	return st, nil
}

// DeactivateStage soft deletes a stage
func (s *RosterService) DeactivateStage(ctx context.Context, id string) error {
	return s.stageRepo.Deactivate(ctx, id)
}

func parseDateRange(startStr, endStr *string) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if startStr != nil && *startStr != "" {
		t, err := time.Parse("2006-01-02", *startStr)
		if err != nil {
			return nil, nil, errors.Validation(map[string]string{"startDate": "must match format 2006-01-02"})
		}
		start = &t
	}
	if endStr != nil && *endStr != "" {
		t, err := time.Parse("2006-01-02", *endStr)
		if err != nil {
			return nil, nil, errors.Validation(map[string]string{"endDate": "must match format 2006-01-02"})
		}
		end = &t
	}

	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, errors.Validation(map[string]string{"endDate": "must not be before startDate"})
	}

	return start, end, nil
}
