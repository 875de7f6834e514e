package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// ProgressUpdateRepository is the append-only progress record store
type ProgressUpdateRepository interface {
	// Create appends a record and assigns the next sequence number for its scope
	Create(ctx context.Context, update *domain.ProgressUpdate) error
	// ListByScope returns records in insertion order
	ListByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) ([]*domain.ProgressUpdate, error)
	// LatestByScope returns the most recent limit records, still in insertion order
	LatestByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID, limit int) ([]*domain.ProgressUpdate, error)
}

type progressUpdateRepositoryImpl struct {
	db *gorm.DB
}

// NewProgressUpdateRepository creates a new instance of ProgressUpdateRepository
func NewProgressUpdateRepository(db *gorm.DB) ProgressUpdateRepository {
	return &progressUpdateRepositoryImpl{db: db}
}

func (r *progressUpdateRepositoryImpl) Create(ctx context.Context, update *domain.ProgressUpdate) error {
	db := r.db.WithContext(ctx)

	var last int64
	if err := db.Model(&domain.ProgressUpdate{}).
		Where("scope_type = ? AND scope_id = ?", update.ScopeType, update.ScopeID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	update.Seq = last + 1

	return db.Create(update).Error
}

func (r *progressUpdateRepositoryImpl) ListByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) ([]*domain.ProgressUpdate, error) {
	var updates []*domain.ProgressUpdate
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ?", scope, scopeID).
		Order("seq ASC").
		Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *progressUpdateRepositoryImpl) LatestByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID, limit int) ([]*domain.ProgressUpdate, error) {
	var updates []*domain.ProgressUpdate
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ?", scope, scopeID).
		Order("seq DESC").
		Limit(limit).
		Find(&updates).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(updates)-1; i < j; i, j = i+1, j-1 {
		updates[i], updates[j] = updates[j], updates[i]
	}
	return updates, nil
}
