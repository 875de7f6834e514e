package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// PhaseService defines the interface for phase business logic.
// Status and progress are never written here; see WorkflowService.
type PhaseService interface {
	CreatePhase(ctx context.Context, siteID uuid.UUID, req *dto.CreatePhaseRequest) (*dto.PhaseResponse, error)
	GetPhase(ctx context.Context, phaseID uuid.UUID, mode workflow.ProgressMode) (*dto.PhaseResponse, error)
	ListPhases(ctx context.Context, siteID uuid.UUID, mode workflow.ProgressMode) ([]dto.PhaseResponse, error)
	UpdatePhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error)
	DeletePhase(ctx context.Context, phaseID uuid.UUID) error
}

type phaseServiceImpl struct {
	siteRepo     repository.SiteRepository
	phaseRepo    repository.PhaseRepository
	employeeRepo repository.EmployeeRepository
	logger       *zap.Logger
}

// NewPhaseService creates a new instance of PhaseService
func NewPhaseService(
	siteRepo repository.SiteRepository,
	phaseRepo repository.PhaseRepository,
	employeeRepo repository.EmployeeRepository,
	logger *zap.Logger,
) PhaseService {
	return &phaseServiceImpl{
		siteRepo:     siteRepo,
		phaseRepo:    phaseRepo,
		employeeRepo: employeeRepo,
		logger:       loggerOrNop(logger),
	}
}

func (s *phaseServiceImpl) CreatePhase(ctx context.Context, siteID uuid.UUID, req *dto.CreatePhaseRequest) (*dto.PhaseResponse, error) {
	if _, err := s.siteRepo.FindByID(ctx, siteID); err != nil {
		return nil, lookupError(err, "Site")
	}
	if err := validateDateRange(req.StartDate, req.DueDate); err != nil {
		return nil, err
	}
	if err := s.ensureAssignable(ctx, req.AssignedTo); err != nil {
		return nil, err
	}

	existing, err := s.phaseRepo.FindBySiteID(ctx, siteID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to load phases", err)
	}
	order := nextOrderNumber(existing)
	if req.OrderNumber != nil {
		order = *req.OrderNumber
	}

	phase := &domain.Phase{
		SiteID:      siteID,
		Name:        strings.TrimSpace(req.Name),
		OrderNumber: order,
		AssignedTo:  req.AssignedTo,
		Status:      domain.StatusNotStarted,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		Budget:      req.Budget,
	}
	if err := s.phaseRepo.Create(ctx, phase); err != nil {
		return nil, response.NewPersistenceError("Failed to create phase", err)
	}

	s.logger.Info("Phase created",
		zap.String("phase_id", phase.ID.String()),
		zap.String("site_id", siteID.String()))

	resp := toPhaseResponse(phase, nil, workflow.ProgressModeExplicit)
	return &resp, nil
}

func (s *phaseServiceImpl) GetPhase(ctx context.Context, phaseID uuid.UUID, mode workflow.ProgressMode) (*dto.PhaseResponse, error) {
	phase, err := s.phaseRepo.FindByID(ctx, phaseID)
	if err != nil {
		return nil, lookupError(err, "Phase")
	}

	responses, err := buildPhaseResponses(ctx, s.phaseRepo, []*domain.Phase{phase}, mode)
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// ListPhases returns a site's phases ordered by order number
func (s *phaseServiceImpl) ListPhases(ctx context.Context, siteID uuid.UUID, mode workflow.ProgressMode) ([]dto.PhaseResponse, error) {
	if _, err := s.siteRepo.FindByID(ctx, siteID); err != nil {
		return nil, lookupError(err, "Site")
	}

	phases, err := s.phaseRepo.FindBySiteID(ctx, siteID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list phases", err)
	}
	return buildPhaseResponses(ctx, s.phaseRepo, phases, mode)
}

func (s *phaseServiceImpl) UpdatePhase(ctx context.Context, phaseID uuid.UUID, req *dto.UpdatePhaseRequest) (*dto.PhaseResponse, error) {
	phase, err := s.phaseRepo.FindByID(ctx, phaseID)
	if err != nil {
		return nil, lookupError(err, "Phase")
	}

	if req.Name != nil {
		phase.Name = strings.TrimSpace(*req.Name)
	}
	if req.OrderNumber != nil {
		phase.OrderNumber = *req.OrderNumber
	}
	if req.Unassign {
		phase.AssignedTo = nil
	} else if req.AssignedTo != nil {
		if err := s.ensureAssignable(ctx, req.AssignedTo); err != nil {
			return nil, err
		}
		phase.AssignedTo = req.AssignedTo
	}
	if req.StartDate != nil {
		phase.StartDate = req.StartDate
	}
	if req.DueDate != nil {
		phase.DueDate = req.DueDate
	}
	if req.Budget != nil {
		phase.Budget = *req.Budget
	}
	if err := validateDateRange(phase.StartDate, phase.DueDate); err != nil {
		return nil, err
	}

	phase.UpdatedAt = nowUTC()
	if err := s.phaseRepo.UpdateDetails(ctx, phase); err != nil {
		return nil, response.NewPersistenceError("Failed to update phase", err)
	}

	return s.GetPhase(ctx, phaseID, workflow.ProgressModeExplicit)
}

// DeletePhase removes the phase with its tasks, todos, updates and messages
func (s *phaseServiceImpl) DeletePhase(ctx context.Context, phaseID uuid.UUID) error {
	if err := s.phaseRepo.Delete(ctx, phaseID); err != nil {
		return lookupError(err, "Phase")
	}
	s.logger.Info("Phase deleted", zap.String("phase_id", phaseID.String()))
	return nil
}

// ensureAssignable rejects unknown or inactive employees
func (s *phaseServiceImpl) ensureAssignable(ctx context.Context, employeeID *uuid.UUID) error {
	if employeeID == nil {
		return nil
	}
	return ensureActiveEmployee(ctx, s.employeeRepo, *employeeID)
}

func ensureActiveEmployee(ctx context.Context, employeeRepo repository.EmployeeRepository, employeeID uuid.UUID) error {
	employee, err := employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return lookupError(err, "Employee")
	}
	if !employee.IsActive() {
		return response.NewValidationError("Employee is inactive", employeeID.String())
	}
	return nil
}

func nextOrderNumber(phases []*domain.Phase) int {
	highest := 0
	for _, p := range phases {
		if p.OrderNumber > highest {
			highest = p.OrderNumber
		}
	}
	return highest + 1
}
