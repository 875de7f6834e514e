package database

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"site-tracker-api/internal/config"
)

// NewRedis connects to Redis from a redis:// URL or an address.
// It returns nil without error when neither is configured.
func NewRedis(cfg config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	var client *redis.Client

	switch {
	case cfg.URL != "":
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opts)
	case cfg.Addr != "":
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		log.Info("Redis not configured, notification fan-out and unread cache disabled")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	log.Info("Redis connection established successfully", zap.String("addr", client.Options().Addr), zap.Int("db", client.Options().DB))
	return client, nil
}
