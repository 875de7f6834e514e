package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"site-tracker-api/internal/domain"
)

// NotificationRepository defines the interface for stored notifications.
// Apart from creation only the read flag is ever written.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*domain.Notification) error
	FindByIDAndEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.Notification, error)
	ListByEmployee(ctx context.Context, employeeID uuid.UUID, page, limit int, unreadOnly bool) ([]*domain.Notification, int64, error)
	CountUnread(ctx context.Context, employeeID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, id, employeeID uuid.UUID) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, employeeID uuid.UUID) (int64, error)
	// CleanupRead deletes read notifications older than daysOld
	CleanupRead(ctx context.Context, daysOld int) (int64, error)
}

type notificationRepositoryImpl struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) CreateBatch(ctx context.Context, notifications []*domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *notificationRepositoryImpl) FindByIDAndEmployee(ctx context.Context, id, employeeID uuid.UUID) (*domain.Notification, error) {
	var notification domain.Notification
	if err := r.db.WithContext(ctx).
		Where("id = ? AND employee_id = ?", id, employeeID).
		First(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepositoryImpl) ListByEmployee(ctx context.Context, employeeID uuid.UUID, page, limit int, unreadOnly bool) ([]*domain.Notification, int64, error) {
	var notifications []*domain.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("employee_id = ?", employeeID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("employee_id = ? AND is_read = ?", employeeID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepositoryImpl) MarkAsRead(ctx context.Context, id, employeeID uuid.UUID) (*domain.Notification, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND employee_id = ?", id, employeeID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.FindByIDAndEmployee(ctx, id, employeeID)
}

func (r *notificationRepositoryImpl) MarkAllAsRead(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("employee_id = ? AND is_read = ?", employeeID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *notificationRepositoryImpl) CleanupRead(ctx context.Context, daysOld int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysOld)
	result := r.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
