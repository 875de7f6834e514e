package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessMetricsCollector refreshes business gauges periodically
type BusinessMetricsCollector struct {
	db       *gorm.DB
	metrics  *Metrics
	logger   *zap.Logger
	interval time.Duration
	done     chan struct{}
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger, interval time.Duration) *BusinessMetricsCollector {
	return &BusinessMetricsCollector{
		db:       db,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *BusinessMetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.done:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *BusinessMetricsCollector) Stop() {
	close(c.done)
}

type statusCount struct {
	Status string
	Count  int64
}

func (c *BusinessMetricsCollector) collect() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var sites []statusCount
	if err := c.db.WithContext(ctx).Table("sites").Select("status, COUNT(*) AS count").Group("status").Scan(&sites).Error; err != nil {
		c.logger.Error("Failed to count sites", zap.Error(err))
	} else {
		for _, s := range sites {
			c.metrics.SetSitesTotal(s.Status, s.Count)
		}
	}

	var tasks []statusCount
	if err := c.db.WithContext(ctx).Table("tasks").Select("status, COUNT(*) AS count").Group("status").Scan(&tasks).Error; err != nil {
		c.logger.Error("Failed to count tasks", zap.Error(err))
	} else {
		var waiting int64
		for _, s := range tasks {
			c.metrics.SetTasksTotal(s.Status, s.Count)
			if s.Status == "waiting_for_approval" {
				waiting = s.Count
			}
		}
		c.metrics.SetPendingApprovals("task", waiting)
	}

	var waitingPhases int64
	if err := c.db.WithContext(ctx).Table("phases").Where("status = ?", "waiting_for_approval").Count(&waitingPhases).Error; err != nil {
		c.logger.Error("Failed to count phases", zap.Error(err))
	} else {
		c.metrics.SetPendingApprovals("phase", waitingPhases)
	}
}
