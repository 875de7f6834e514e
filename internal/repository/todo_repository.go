package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// TodoRepository defines the interface for checklist items
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error)
	ListByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) ([]*domain.Todo, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type todoRepositoryImpl struct {
	db *gorm.DB
}

// NewTodoRepository creates a new instance of TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &todoRepositoryImpl{db: db}
}

func (r *todoRepositoryImpl) Create(ctx context.Context, todo *domain.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *todoRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	var todo domain.Todo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepositoryImpl) ListByScope(ctx context.Context, scope domain.ScopeType, scopeID uuid.UUID) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	if err := r.db.WithContext(ctx).
		Where("scope_type = ? AND scope_id = ?", scope, scopeID).
		Order("created_at ASC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (r *todoRepositoryImpl) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Todo{}).
		Where("id = ?", id).
		Update("completed", completed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *todoRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Todo{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
