package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// EmployeeFilter narrows List results
type EmployeeFilter struct {
	Role   domain.Role
	Status domain.EmployeeStatus
	Search string
}

// EmployeeRepository defines the interface for employee data access
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Employee, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Employee, error)
	List(ctx context.Context, filter EmployeeFilter) ([]*domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	UpdateCredential(ctx context.Context, id uuid.UUID, cred domain.Credential) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ActiveAdminIDs returns every active admin
	ActiveAdminIDs(ctx context.Context) ([]uuid.UUID, error)
	// ActiveIDs keeps only the ids that belong to active employees
	ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type employeeRepositoryImpl struct {
	db *gorm.DB
}

// NewEmployeeRepository creates a new instance of EmployeeRepository
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func (r *employeeRepositoryImpl) Create(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *employeeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	var employee domain.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.Employee, error) {
	var employee domain.Employee
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepositoryImpl) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Employee, error) {
	if len(ids) == 0 {
		return []*domain.Employee{}, nil
	}
	var employees []*domain.Employee
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepositoryImpl) List(ctx context.Context, filter EmployeeFilter) ([]*domain.Employee, error) {
	var employees []*domain.Employee
	query := r.db.WithContext(ctx)
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if err := query.Order("name ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepositoryImpl) Update(ctx context.Context, employee *domain.Employee) error {
	return r.db.WithContext(ctx).
		Model(employee).
		Select("name", "phone", "email", "role", "status", "profile_image_url", "updated_at").
		Updates(employee).Error
}

func (r *employeeRepositoryImpl) UpdateCredential(ctx context.Context, id uuid.UUID, cred domain.Credential) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"credential_scheme": cred.Scheme,
			"credential_secret": cred.Secret,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the employee and their task assignments
func (r *employeeRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&domain.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Phase{}).Where("assigned_to = ?", id).Update("assigned_to", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.Employee{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *employeeRepositoryImpl) ActiveAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("role = ? AND status = ?", domain.RoleAdmin, domain.EmployeeActive).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *employeeRepositoryImpl) ActiveIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}
	var active []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&domain.Employee{}).
		Where("id IN ? AND status = ?", ids, domain.EmployeeActive).
		Pluck("id", &active).Error; err != nil {
		return nil, err
	}
	return active, nil
}
