package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
)

// EmployeeChannel is the pub/sub channel a client subscribes to for live notifications
func EmployeeChannel(employeeID uuid.UUID) string {
	return fmt.Sprintf("notifications:employee:%s", employeeID.String())
}

// NotificationPublisher pushes stored notifications to live subscribers
type NotificationPublisher interface {
	Publish(ctx context.Context, notifications []domain.Notification) error
}

// RedisNotificationPublisher publishes each notification on its target employee's channel
type RedisNotificationPublisher struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewRedisNotificationPublisher returns a publisher; a nil client turns Publish into a no-op
func NewRedisNotificationPublisher(rdb *redis.Client, logger *zap.Logger) *RedisNotificationPublisher {
	return &RedisNotificationPublisher{redis: rdb, logger: logger}
}

// Publish sends every notification and returns the first error after trying them all
func (p *RedisNotificationPublisher) Publish(ctx context.Context, notifications []domain.Notification) error {
	if p.redis == nil || len(notifications) == 0 {
		return nil
	}

	var firstErr error
	for i := range notifications {
		n := &notifications[i]
		data, err := json.Marshal(n)
		if err != nil {
			p.logger.Error("failed to marshal notification for publish", zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		if err := p.redis.Publish(ctx, EmployeeChannel(n.EmployeeID), data).Err(); err != nil {
			p.logger.Warn("failed to publish notification",
				zap.String("notification_id", n.ID.String()),
				zap.String("employee_id", n.EmployeeID.String()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
