package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// MessageRepository defines the interface for chat messages
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID, before *time.Time, limit int) ([]*domain.Message, error)
	// ListConversation merges a phase's own messages with those of its tasks, oldest first
	ListConversation(ctx context.Context, phaseID uuid.UUID, taskIDs []uuid.UUID, before *time.Time, limit int) ([]*domain.Message, error)
	SenderIDs(ctx context.Context, scope domain.ScopeType, scopeIDs []uuid.UUID) ([]uuid.UUID, error)
}

type messageRepositoryImpl struct {
	db *gorm.DB
}

// NewMessageRepository creates a new instance of MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepositoryImpl{db: db}
}

func (r *messageRepositoryImpl) Create(ctx context.Context, message *domain.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepositoryImpl) ListByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID, before *time.Time, limit int) ([]*domain.Message, error) {
	query := r.db.WithContext(ctx).Where("scope_type = ? AND scope_id = ?", scope, scopeID)
	return r.page(query, before, limit)
}

func (r *messageRepositoryImpl) ListConversation(ctx context.Context, phaseID uuid.UUID, taskIDs []uuid.UUID, before *time.Time, limit int) ([]*domain.Message, error) {
	query := r.db.WithContext(ctx)
	if len(taskIDs) > 0 {
		query = query.Where(
			"(scope_type = ? AND scope_id = ?) OR (scope_type = ? AND scope_id IN ?)",
			domain.ScopePhase, phaseID, domain.ScopeTask, taskIDs,
		)
	} else {
		query = query.Where("scope_type = ? AND scope_id = ?", domain.ScopePhase, phaseID)
	}
	return r.page(query, before, limit)
}

// page takes the newest limit messages older than before and returns them oldest first
func (r *messageRepositoryImpl) page(query *gorm.DB, before *time.Time, limit int) ([]*domain.Message, error) {
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var messages []*domain.Message
	if err := query.Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *messageRepositoryImpl) SenderIDs(ctx context.Context, scope domain.ScopeType, scopeIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(scopeIDs) == 0 {
		return []uuid.UUID{}, nil
	}
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Distinct("sender_id").
		Where("scope_type = ? AND scope_id IN ?", scope, scopeIDs).
		Pluck("sender_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
