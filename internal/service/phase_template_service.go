package service

import (
	"context"

	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
)

// PhaseTemplateService manages the master phase list new sites are seeded from
type PhaseTemplateService interface {
	SeedDefaults(ctx context.Context) error
	ListTemplates(ctx context.Context) ([]dto.PhaseTemplateResponse, error)
}

type phaseTemplateServiceImpl struct {
	templateRepo repository.PhaseTemplateRepository
	logger       *zap.Logger
}

func NewPhaseTemplateService(templateRepo repository.PhaseTemplateRepository, logger *zap.Logger) PhaseTemplateService {
	return &phaseTemplateServiceImpl{templateRepo: templateRepo, logger: loggerOrNop(logger)}
}

// SeedDefaults inserts the default construction sequence; existing rows are left alone
func (s *phaseTemplateServiceImpl) SeedDefaults(ctx context.Context) error {
	if err := s.templateRepo.Seed(ctx, domain.DefaultPhaseTemplates); err != nil {
		return response.NewPersistenceError("Failed to seed phase templates", err)
	}
	s.logger.Info("Phase templates seeded", zap.Int("count", len(domain.DefaultPhaseTemplates)))
	return nil
}

func (s *phaseTemplateServiceImpl) ListTemplates(ctx context.Context) ([]dto.PhaseTemplateResponse, error) {
	templates, err := s.templateRepo.List(ctx)
	if err != nil {
		return nil, response.NewPersistenceError("Failed to list phase templates", err)
	}

	result := make([]dto.PhaseTemplateResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, dto.PhaseTemplateResponse{
			ID:          t.ID,
			Name:        t.Name,
			OrderNumber: t.OrderNumber,
		})
	}
	return result, nil
}
