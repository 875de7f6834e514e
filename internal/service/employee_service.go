package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"site-tracker-api/internal/config"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
)

// EmployeeService defines the interface for employee management
type EmployeeService interface {
	CreateEmployee(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error)
	GetEmployee(ctx context.Context, employeeID uuid.UUID) (*dto.EmployeeResponse, error)
	ListEmployees(ctx context.Context, filters *dto.EmployeeFilters) ([]dto.EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, employeeID uuid.UUID, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, employeeID uuid.UUID) error
	// EnsureBootstrapAdmin creates or refreshes the configured admin account
	EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error
}

type employeeServiceImpl struct {
	employeeRepo repository.EmployeeRepository
	logger       *zap.Logger
}

// NewEmployeeService creates a new instance of EmployeeService
func NewEmployeeService(employeeRepo repository.EmployeeRepository, logger *zap.Logger) EmployeeService {
	return &employeeServiceImpl{employeeRepo: employeeRepo, logger: loggerOrNop(logger)}
}

func (s *employeeServiceImpl) CreateEmployee(ctx context.Context, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, response.NewValidationError("Invalid role", req.Role)
	}
	status, err := domain.ParseEmployeeStatus(req.Status)
	if err != nil {
		return nil, response.NewValidationError("Invalid employee status", req.Status)
	}

	phone := strings.TrimSpace(req.Phone)
	if err := s.ensurePhoneFree(ctx, phone, uuid.Nil); err != nil {
		return nil, err
	}

	cred, err := domain.NewBcryptCredential(req.Password)
	if err != nil {
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to secure password", err.Error())
	}

	employee := &domain.Employee{
		Name:            strings.TrimSpace(req.Name),
		Phone:           phone,
		Email:           req.Email,
		Role:            role,
		Status:          status,
		ProfileImageURL: req.ProfileImageURL,
		Credential:      cred,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return nil, response.NewPersistenceError("Failed to create employee", err)
	}

	s.logger.Info("Employee created",
		zap.String("employee_id", employee.ID.String()),
		zap.String("role", string(role)))

	resp := toEmployeeResponse(employee)
	return &resp, nil
}

func (s *employeeServiceImpl) GetEmployee(ctx context.Context, employeeID uuid.UUID) (*dto.EmployeeResponse, error) {
	employee, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, lookupError(err, "Employee")
	}
	resp := toEmployeeResponse(employee)
	return &resp, nil
}

func (s *employeeServiceImpl) ListEmployees(ctx context.Context, filters *dto.EmployeeFilters) ([]dto.EmployeeResponse, error) {
	var filter repository.EmployeeFilter
	if filters != nil {
		if filters.Role != "" {
			role, err := domain.ParseRole(filters.Role)
			if err != nil {
				return nil, response.NewValidationError("Invalid role", filters.Role)
			}
			filter.Role = role
		}
		if filters.Status != "" {
			status, err := domain.ParseEmployeeStatus(filters.Status)
			if err != nil {
				return nil, response.NewValidationError("Invalid employee status", filters.Status)
			}
			filter.Status = status
		}
		filter.Search = strings.TrimSpace(filters.Search)
	}

	employees, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list employees", err)
	}

	result := make([]dto.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		result = append(result, toEmployeeResponse(e))
	}
	return result, nil
}

func (s *employeeServiceImpl) UpdateEmployee(ctx context.Context, employeeID uuid.UUID, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	employee, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, lookupError(err, "Employee")
	}

	if req.Name != nil {
		employee.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone != employee.Phone {
			if err := s.ensurePhoneFree(ctx, phone, employee.ID); err != nil {
				return nil, err
			}
		}
		employee.Phone = phone
	}
	if req.Email != nil {
		employee.Email = req.Email
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, response.NewValidationError("Invalid role", *req.Role)
		}
		employee.Role = role
	}
	if req.Status != nil {
		status, err := domain.ParseEmployeeStatus(*req.Status)
		if err != nil {
			return nil, response.NewValidationError("Invalid employee status", *req.Status)
		}
		employee.Status = status
	}
	if req.ProfileImageURL != nil {
		employee.ProfileImageURL = req.ProfileImageURL
	}

	employee.UpdatedAt = nowUTC()
	if err := s.employeeRepo.Update(ctx, employee); err != nil {
		return nil, response.NewPersistenceError("Failed to update employee", err)
	}

	if req.Password != nil {
		cred, err := domain.NewBcryptCredential(*req.Password)
		if err != nil {
			return nil, response.NewAppError(response.ErrCodeInternal, "Failed to secure password", err.Error())
		}
		if err := s.employeeRepo.UpdateCredential(ctx, employee.ID, cred); err != nil {
			return nil, response.NewPersistenceError("Failed to update password", err)
		}
	}

	resp := toEmployeeResponse(employee)
	return &resp, nil
}

func (s *employeeServiceImpl) DeleteEmployee(ctx context.Context, employeeID uuid.UUID) error {
	if err := s.employeeRepo.Delete(ctx, employeeID); err != nil {
		return lookupError(err, "Employee")
	}
	s.logger.Info("Employee deleted", zap.String("employee_id", employeeID.String()))
	return nil
}

// EnsureBootstrapAdmin upserts the configured admin by phone. The account is an ordinary
// employee row; an existing one is promoted, reactivated and given the configured password.
func (s *employeeServiceImpl) EnsureBootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig) error {
	if !cfg.Enabled() {
		return nil
	}

	cred, err := domain.NewBcryptCredential(cfg.AdminPassword)
	if err != nil {
		return err
	}

	existing, err := s.employeeRepo.FindByPhone(ctx, cfg.AdminPhone)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name := cfg.AdminName
		if name == "" {
			name = "Administrator"
		}
		admin := &domain.Employee{
			Name:       name,
			Phone:      cfg.AdminPhone,
			Role:       domain.RoleAdmin,
			Status:     domain.EmployeeActive,
			Credential: cred,
		}
		if err := s.employeeRepo.Create(ctx, admin); err != nil {
			return response.NewPersistenceError("Failed to create bootstrap admin", err)
		}
		s.logger.Info("Bootstrap admin created", zap.String("employee_id", admin.ID.String()))
		return nil
	case err != nil:
		return response.NewPersistenceError("Failed to look up bootstrap admin", err)
	}

	if !existing.IsAdmin() || !existing.IsActive() {
		existing.Role = domain.RoleAdmin
		existing.Status = domain.EmployeeActive
		existing.UpdatedAt = nowUTC()
		if err := s.employeeRepo.Update(ctx, existing); err != nil {
			return response.NewPersistenceError("Failed to update bootstrap admin", err)
		}
	}
	if existing.Credential.NeedsRehash() || !existing.Credential.Verify(cfg.AdminPassword) {
		if err := s.employeeRepo.UpdateCredential(ctx, existing.ID, cred); err != nil {
			return response.NewPersistenceError("Failed to update bootstrap admin password", err)
		}
	}
	s.logger.Info("Bootstrap admin verified", zap.String("employee_id", existing.ID.String()))
	return nil
}

func (s *employeeServiceImpl) ensurePhoneFree(ctx context.Context, phone string, self uuid.UUID) error {
	existing, err := s.employeeRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return response.NewPersistenceError("Failed to check phone number", err)
	}
	if existing.ID != self {
		return response.NewAppError(response.ErrCodeAlreadyExists, "Phone number is already registered", "")
	}
	return nil
}
