package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/dto"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/response"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// NotificationService reads an employee's notifications. Only the read flag is ever changed.
type NotificationService interface {
	List(ctx context.Context, employeeID uuid.UUID, query *dto.NotificationQuery) ([]dto.NotificationResponse, int64, int, int, error)
	UnreadCount(ctx context.Context, employeeID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, employeeID, notificationID uuid.UUID) (*dto.NotificationResponse, error)
	MarkAllAsRead(ctx context.Context, employeeID uuid.UUID) (int64, error)
	// CleanupRead deletes read notifications older than daysOld
	CleanupRead(ctx context.Context, daysOld int) (int64, error)
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepository
	cache            *UnreadCache
	logger           *zap.Logger
}

// NewNotificationService creates a new instance of NotificationService; cache may be nil
func NewNotificationService(notificationRepo repository.NotificationRepository, cache *UnreadCache, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		cache:            cache,
		logger:           loggerOrNop(logger),
	}
}

func (s *notificationServiceImpl) List(ctx context.Context, employeeID uuid.UUID, query *dto.NotificationQuery) ([]dto.NotificationResponse, int64, int, int, error) {
	page, limit, unreadOnly := 1, defaultNotificationLimit, false
	if query != nil {
		if query.Page > 0 {
			page = query.Page
		}
		if query.Limit > 0 {
			limit = query.Limit
		}
		unreadOnly = query.UnreadOnly
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, total, err := s.notificationRepo.ListByEmployee(ctx, employeeID, page, limit, unreadOnly)
	if err != nil {
		return nil, 0, page, limit, response.NewPersistenceError("Failed to list notifications", err)
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, toNotificationResponse(n))
	}
	return result, total, page, limit, nil
}

// UnreadCount serves from the Redis cache when present
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	if n, ok := s.cache.Get(ctx, employeeID); ok {
		return n, nil
	}

	n, err := s.notificationRepo.CountUnread(ctx, employeeID)
	if err != nil {
		return 0, response.NewPersistenceError("Failed to count unread notifications", err)
	}
	s.cache.Set(ctx, employeeID, n)
	return n, nil
}

func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, employeeID, notificationID uuid.UUID) (*dto.NotificationResponse, error) {
	n, err := s.notificationRepo.MarkAsRead(ctx, notificationID, employeeID)
	if err != nil {
		return nil, lookupError(err, "Notification")
	}
	s.cache.Invalidate(ctx, employeeID)

	resp := toNotificationResponse(n)
	return &resp, nil
}

func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, employeeID uuid.UUID) (int64, error) {
	updated, err := s.notificationRepo.MarkAllAsRead(ctx, employeeID)
	if err != nil {
		return 0, response.NewPersistenceError("Failed to mark notifications as read", err)
	}
	s.cache.Invalidate(ctx, employeeID)
	return updated, nil
}

func (s *notificationServiceImpl) CleanupRead(ctx context.Context, daysOld int) (int64, error) {
	if daysOld <= 0 {
		return 0, response.NewValidationError("Retention must be at least one day", "")
	}
	deleted, err := s.notificationRepo.CleanupRead(ctx, daysOld)
	if err != nil {
		return 0, response.NewPersistenceError("Failed to clean up notifications", err)
	}
	if deleted > 0 {
		s.logger.Info("Read notifications cleaned up", zap.Int64("deleted", deleted), zap.Int("days_old", daysOld))
	}
	return deleted, nil
}
