package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"site-tracker-api/internal/domain"
)

// PhaseTemplateRepository defines the interface for the master phase list
type PhaseTemplateRepository interface {
	List(ctx context.Context) ([]*domain.PhaseTemplate, error)
	// Seed inserts templates that are not present yet, matching on name and order
	Seed(ctx context.Context, templates []domain.PhaseTemplate) error
}

type phaseTemplateRepositoryImpl struct {
	db *gorm.DB
}

// NewPhaseTemplateRepository creates a new instance of PhaseTemplateRepository
func NewPhaseTemplateRepository(db *gorm.DB) PhaseTemplateRepository {
	return &phaseTemplateRepositoryImpl{db: db}
}

func (r *phaseTemplateRepositoryImpl) List(ctx context.Context) ([]*domain.PhaseTemplate, error) {
	var templates []*domain.PhaseTemplate
	if err := r.db.WithContext(ctx).Order("order_number ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *phaseTemplateRepositoryImpl) Seed(ctx context.Context, templates []domain.PhaseTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	rows := make([]domain.PhaseTemplate, len(templates))
	copy(rows, templates)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}, {Name: "order_number"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}
