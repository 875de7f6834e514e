package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// SiteRepository defines the interface for site data access
type SiteRepository interface {
	Create(ctx context.Context, site *domain.Site) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Site, error)
	List(ctx context.Context, status domain.SiteStatus) ([]*domain.Site, error)
	Update(ctx context.Context, site *domain.Site) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type siteRepositoryImpl struct {
	db *gorm.DB
}

// NewSiteRepository creates a new instance of SiteRepository
func NewSiteRepository(db *gorm.DB) SiteRepository {
	return &siteRepositoryImpl{db: db}
}

func (r *siteRepositoryImpl) Create(ctx context.Context, site *domain.Site) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *siteRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Site, error) {
	var site domain.Site
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// List returns sites newest first, optionally filtered by status
func (r *siteRepositoryImpl) List(ctx context.Context, status domain.SiteStatus) ([]*domain.Site, error) {
	var sites []*domain.Site
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (r *siteRepositoryImpl) Update(ctx context.Context, site *domain.Site) error {
	return r.db.WithContext(ctx).
		Model(site).
		Select("name", "address", "client_name", "client_phone", "client_email", "budget", "start_date", "end_date", "status", "updated_at").
		Updates(site).Error
}

// Delete removes the site and everything under it
func (r *siteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var phaseIDs []uuid.UUID
		if err := tx.Model(&domain.Phase{}).Where("site_id = ?", id).Pluck("id", &phaseIDs).Error; err != nil {
			return err
		}
		for _, phaseID := range phaseIDs {
			if err := deletePhaseTree(tx, phaseID); err != nil {
				return err
			}
		}
		if err := tx.Where("site_id = ?", id).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&domain.Site{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
