package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// PhaseRepository defines the interface for phase data access
type PhaseRepository interface {
	Create(ctx context.Context, phase *domain.Phase) error
	CreateBatch(ctx context.Context, phases []*domain.Phase) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error)
	FindBySiteID(ctx context.Context, siteID uuid.UUID) ([]*domain.Phase, error)
	// UpdateDetails writes descriptive fields only; status and progress move through the workflow
	UpdateDetails(ctx context.Context, phase *domain.Phase) error
	// CompareAndSetState applies updates only if the row still has the expected status and progress
	CompareAndSetState(ctx context.Context, id uuid.UUID, status domain.WorkStatus, progress int, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// TaskStatuses returns the statuses of every task in each of the given phases
	TaskStatuses(ctx context.Context, phaseIDs []uuid.UUID) (map[uuid.UUID][]domain.WorkStatus, error)
	// TaskAssigneeIDs returns everyone assigned to at least one task in the phase
	TaskAssigneeIDs(ctx context.Context, phaseID uuid.UUID) ([]uuid.UUID, error)
}

type phaseRepositoryImpl struct {
	db *gorm.DB
}

// NewPhaseRepository creates a new instance of PhaseRepository
func NewPhaseRepository(db *gorm.DB) PhaseRepository {
	return &phaseRepositoryImpl{db: db}
}

func (r *phaseRepositoryImpl) Create(ctx context.Context, phase *domain.Phase) error {
	return r.db.WithContext(ctx).Create(phase).Error
}

func (r *phaseRepositoryImpl) CreateBatch(ctx context.Context, phases []*domain.Phase) error {
	if len(phases) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&phases).Error
}

func (r *phaseRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Phase, error) {
	var phase domain.Phase
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&phase).Error; err != nil {
		return nil, err
	}
	return &phase, nil
}

func (r *phaseRepositoryImpl) FindBySiteID(ctx context.Context, siteID uuid.UUID) ([]*domain.Phase, error) {
	var phases []*domain.Phase
	if err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("order_number ASC, created_at ASC").
		Find(&phases).Error; err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *phaseRepositoryImpl) UpdateDetails(ctx context.Context, phase *domain.Phase) error {
	return r.db.WithContext(ctx).
		Model(phase).
		Select("name", "order_number", "assigned_to", "start_date", "due_date", "budget", "updated_at").
		Updates(phase).Error
}

func (r *phaseRepositoryImpl) CompareAndSetState(ctx context.Context, id uuid.UUID, status domain.WorkStatus, progress int, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Phase{}).
		Where("id = ? AND status = ? AND progress = ?", id, status, progress).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *phaseRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Phase{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return deletePhaseTree(tx, id)
	})
}

func (r *phaseRepositoryImpl) TaskStatuses(ctx context.Context, phaseIDs []uuid.UUID) (map[uuid.UUID][]domain.WorkStatus, error) {
	out := make(map[uuid.UUID][]domain.WorkStatus, len(phaseIDs))
	if len(phaseIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		PhaseID uuid.UUID
		Status  domain.WorkStatus
	}
	if err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Select("phase_id, status").
		Where("phase_id IN ?", phaseIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.PhaseID] = append(out[row.PhaseID], row.Status)
	}
	return out, nil
}

func (r *phaseRepositoryImpl) TaskAssigneeIDs(ctx context.Context, phaseID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&domain.TaskAssignment{}).
		Distinct("task_assignments.employee_id").
		Joins("JOIN tasks ON tasks.id = task_assignments.task_id").
		Where("tasks.phase_id = ?", phaseID).
		Pluck("task_assignments.employee_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// deletePhaseTree removes a phase together with its tasks and everything scoped to them.
// Foreign keys are not relied on so the same code runs on every driver.
func deletePhaseTree(tx *gorm.DB, phaseID uuid.UUID) error {
	var taskIDs []uuid.UUID
	if err := tx.Model(&domain.Task{}).Where("phase_id = ?", phaseID).Pluck("id", &taskIDs).Error; err != nil {
		return err
	}

	if len(taskIDs) > 0 {
		if err := deleteTaskChildren(tx, taskIDs); err != nil {
			return err
		}
		if err := tx.Where("id IN ?", taskIDs).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
	}

	if err := deleteScoped(tx, domain.ScopePhase, []uuid.UUID{phaseID}); err != nil {
		return err
	}
	return tx.Where("id = ?", phaseID).Delete(&domain.Phase{}).Error
}

func deleteTaskChildren(tx *gorm.DB, taskIDs []uuid.UUID) error {
	if err := tx.Where("task_id IN ?", taskIDs).Delete(&domain.TaskAssignment{}).Error; err != nil {
		return err
	}
	return deleteScoped(tx, domain.ScopeTask, taskIDs)
}

func deleteScoped(tx *gorm.DB, scope domain.ScopeType, ids []uuid.UUID) error {
	for _, model := range []interface{}{&domain.Todo{}, &domain.ProgressUpdate{}, &domain.Message{}} {
		if err := tx.Where("scope_type = ? AND scope_id IN ?", scope, ids).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
