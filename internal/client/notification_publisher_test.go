package client

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
)

func TestEmployeeChannel(t *testing.T) {
	id := uuid.MustParse("8d1f0c2e-3b7a-4c55-9a0e-2f4b6c8d0e1a")
	assert.Equal(t, "notifications:employee:8d1f0c2e-3b7a-4c55-9a0e-2f4b6c8d0e1a", EmployeeChannel(id))
}

func TestRedisPublisher_NilClientIsNoop(t *testing.T) {
	p := NewRedisNotificationPublisher(nil, zap.NewNop())

	err := p.Publish(context.Background(), []domain.Notification{{ID: uuid.New(), EmployeeID: uuid.New()}})
	assert.NoError(t, err)
}

func TestRedisPublisher_UnreachableServerReturnsError(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	p := NewRedisNotificationPublisher(rdb, zap.NewNop())

	err := p.Publish(context.Background(), []domain.Notification{{ID: uuid.New(), EmployeeID: uuid.New()}})
	assert.Error(t, err)
}
