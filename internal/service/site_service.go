package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
	"site-tracker-api/internal/workflow"
)

// SiteService defines the interface for site business logic
type SiteService interface {
	CreateSite(ctx context.Context, req *dto.CreateSiteRequest) (*dto.SiteDetailResponse, error)
	GetSite(ctx context.Context, siteID uuid.UUID, mode workflow.ProgressMode) (*dto.SiteDetailResponse, error)
	ListSites(ctx context.Context, status string) ([]dto.SiteResponse, error)
	UpdateSite(ctx context.Context, siteID uuid.UUID, req *dto.UpdateSiteRequest) (*dto.SiteResponse, error)
	DeleteSite(ctx context.Context, siteID uuid.UUID) error
}

// siteServiceImpl is the implementation of SiteService
type siteServiceImpl struct {
	repos   *repository.Repositories
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSiteService creates a new instance of SiteService
func NewSiteService(repos *repository.Repositories, m *metrics.Metrics, logger *zap.Logger) SiteService {
	return &siteServiceImpl{
		repos:   repos,
		metrics: m,
		logger:  loggerOrNop(logger),
	}
}

func parseSiteStatus(raw string) (domain.SiteStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.SiteStatusPlanned, nil
	}
	status := domain.SiteStatus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_"))
	if !status.IsValid() {
		return "", response.NewValidationError("Invalid site status", raw)
	}
	return status, nil
}

// CreateSite creates a site and, when asked, its phases from the master template list
func (s *siteServiceImpl) CreateSite(ctx context.Context, req *dto.CreateSiteRequest) (*dto.SiteDetailResponse, error) {
	if err := validateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	status, err := parseSiteStatus(req.Status)
	if err != nil {
		return nil, err
	}

	site := &domain.Site{
		Name:        strings.TrimSpace(req.Name),
		Address:     req.Address,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
	}

	var phases []*domain.Phase
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Sites.Create(ctx, site); err != nil {
			return response.NewPersistenceError("Failed to create site", err)
		}
		if !req.SeedPhases {
			return nil
		}

		templates, err := tx.PhaseTemplates.List(ctx)
		if err != nil {
			return response.NewPersistenceError("Failed to load phase templates", err)
		}
		phases = make([]*domain.Phase, 0, len(templates))
		for _, t := range templates {
			phases = append(phases, &domain.Phase{
				SiteID:      site.ID,
				Name:        t.Name,
				OrderNumber: t.OrderNumber,
				Status:      domain.StatusNotStarted,
			})
		}
		if err := tx.Phases.CreateBatch(ctx, phases); err != nil {
			return response.NewPersistenceError("Failed to seed phases", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "Failed to create site")
	}

	s.logger.Info("Site created",
		zap.String("site_id", site.ID.String()),
		zap.Int("seeded_phases", len(phases)))

	result := &dto.SiteDetailResponse{
		SiteResponse: toSiteResponse(site),
		Phases:       make([]dto.PhaseResponse, 0, len(phases)),
	}
	for _, p := range phases {
		result.Phases = append(result.Phases, toPhaseResponse(p, nil, workflow.ProgressModeExplicit))
	}
	return result, nil
}

// GetSite returns the site with its phases in order
func (s *siteServiceImpl) GetSite(ctx context.Context, siteID uuid.UUID, mode workflow.ProgressMode) (*dto.SiteDetailResponse, error) {
	site, err := s.repos.Sites.FindByID(ctx, siteID)
	if err != nil {
		return nil, lookupError(err, "Site")
	}

	phases, err := s.repos.Phases.FindBySiteID(ctx, siteID)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to load phases", err)
	}

	phaseResponses, err := buildPhaseResponses(ctx, s.repos.Phases, phases, mode)
	if err != nil {
		return nil, err
	}

	return &dto.SiteDetailResponse{
		SiteResponse: toSiteResponse(site),
		Phases:       phaseResponses,
	}, nil
}

func (s *siteServiceImpl) ListSites(ctx context.Context, status string) ([]dto.SiteResponse, error) {
	var filter domain.SiteStatus
	if strings.TrimSpace(status) != "" {
		parsed, err := parseSiteStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	sites, err := s.repos.Sites.List(ctx, filter)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list sites", err)
	}

	result := make([]dto.SiteResponse, 0, len(sites))
	for _, site := range sites {
		result = append(result, toSiteResponse(site))
	}
	return result, nil
}

func (s *siteServiceImpl) UpdateSite(ctx context.Context, siteID uuid.UUID, req *dto.UpdateSiteRequest) (*dto.SiteResponse, error) {
	site, err := s.repos.Sites.FindByID(ctx, siteID)
	if err != nil {
		return nil, lookupError(err, "Site")
	}

	if req.Name != nil {
		site.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		site.Address = *req.Address
	}
	if req.ClientName != nil {
		site.ClientName = *req.ClientName
	}
	if req.ClientPhone != nil {
		site.ClientPhone = *req.ClientPhone
	}
	if req.ClientEmail != nil {
		site.ClientEmail = *req.ClientEmail
	}
	if req.Budget != nil {
		site.Budget = *req.Budget
	}
	if req.StartDate != nil {
		site.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		site.EndDate = req.EndDate
	}
	if req.Status != nil {
		status, err := parseSiteStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		site.Status = status
	}

	// validated against the merged values, not only the request
	if err := validateDateRange(site.StartDate, site.EndDate); err != nil {
		return nil, err
	}

	site.UpdatedAt = nowUTC()
	if err := s.repos.Sites.Update(ctx, site); err != nil {
		return nil, response.NewPersistenceError("Failed to update site", err)
	}

	resp := toSiteResponse(site)
	return &resp, nil
}

func (s *siteServiceImpl) DeleteSite(ctx context.Context, siteID uuid.UUID) error {
	if err := s.repos.Sites.Delete(ctx, siteID); err != nil {
		return lookupError(err, "Site")
	}
	s.logger.Info("Site deleted", zap.String("site_id", siteID.String()))
	return nil
}

// buildPhaseResponses attaches the task-derived progress of each phase
func buildPhaseResponses(ctx context.Context, phaseRepo repository.PhaseRepository, phases []*domain.Phase, mode workflow.ProgressMode) ([]dto.PhaseResponse, error) {
	result := make([]dto.PhaseResponse, 0, len(phases))
	if len(phases) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(phases))
	for _, p := range phases {
		ids = append(ids, p.ID)
	}
	statuses, err := phaseRepo.TaskStatuses(ctx, ids)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to load task statuses", err)
	}

	for _, p := range phases {
		result = append(result, toPhaseResponse(p, statuses[p.ID], mode))
	}
	return result, nil
}
