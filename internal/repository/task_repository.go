package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"site-tracker-api/internal/domain"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	FindByPhaseID(ctx context.Context, phaseID uuid.UUID) ([]*domain.Task, error)
	FindByAssignee(ctx context.Context, employeeID uuid.UUID) ([]*domain.Task, error)
	// UpdateDetails writes descriptive fields only; status and progress move through the workflow
	UpdateDetails(ctx context.Context, task *domain.Task) error
	// CompareAndSetState applies updates only if the row still has the expected status and progress
	CompareAndSetState(ctx context.Context, id uuid.UUID, status domain.WorkStatus, progress int, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddAssignment(ctx context.Context, assignment *domain.TaskAssignment) error
	RemoveAssignment(ctx context.Context, taskID, employeeID uuid.UUID) error
	AssigneeIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error)
}

type taskRepositoryImpl struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepositoryImpl{db: db}
}

func (r *taskRepositoryImpl) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID loads the task with its assignments
func (r *taskRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("assigned_at ASC")
		}).
		Where("id = ?", id).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepositoryImpl) FindByPhaseID(ctx context.Context, phaseID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("phase_id = ?", phaseID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepositoryImpl) FindByAssignee(ctx context.Context, employeeID uuid.UUID) ([]*domain.Task, error) {
	var tasks []*domain.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		Where("id IN (?)", r.db.Model(&domain.TaskAssignment{}).Select("task_id").Where("employee_id = ?", employeeID)).
		Order("due_date ASC, created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepositoryImpl) UpdateDetails(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).
		Model(task).
		Select("name", "amount", "start_date", "due_date", "updated_at").
		Updates(task).Error
}

func (r *taskRepositoryImpl) CompareAndSetState(ctx context.Context, id uuid.UUID, status domain.WorkStatus, progress int, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND status = ? AND progress = ?", id, status, progress).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Delete removes the task with its assignments, todos, updates and messages
func (r *taskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteTaskChildren(tx, []uuid.UUID{id}); err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.Task{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AddAssignment is idempotent for an existing (task, employee) pair
func (r *taskRepositoryImpl) AddAssignment(ctx context.Context, assignment *domain.TaskAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "employee_id"}},
			DoNothing: true,
		}).
		Create(assignment).Error
}

func (r *taskRepositoryImpl) RemoveAssignment(ctx context.Context, taskID, employeeID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND employee_id = ?", taskID, employeeID).
		Delete(&domain.TaskAssignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepositoryImpl) AssigneeIDs(ctx context.Context, taskID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&domain.TaskAssignment{}).
		Where("task_id = ?", taskID).
		Order("assigned_at ASC").
		Pluck("employee_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
