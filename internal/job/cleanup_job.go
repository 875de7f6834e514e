// Package job runs periodic housekeeping on a cron schedule.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"site-tracker-api/internal/config"
)

const jobTimeout = 5 * time.Minute

// AttachmentCleaner removes expired temporary uploads
type AttachmentCleaner interface {
	CleanupExpired(ctx context.Context) (deleted int, failed int, err error)
}

// NotificationCleaner removes old read notifications
type NotificationCleaner interface {
	CleanupRead(ctx context.Context, daysOld int) (int64, error)
}

// CleanupJob holds the housekeeping tasks. Either cleaner may be nil.
type CleanupJob struct {
	attachments   AttachmentCleaner
	notifications NotificationCleaner
	retainDays    int
	logger        *zap.Logger
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(attachments AttachmentCleaner, notifications NotificationCleaner, retainDays int, logger *zap.Logger) *CleanupJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CleanupJob{
		attachments:   attachments,
		notifications: notifications,
		retainDays:    retainDays,
		logger:        logger,
	}
}

// RunAttachmentCleanup deletes expired temporary attachments from storage and the database
func (j *CleanupJob) RunAttachmentCleanup() {
	if j.attachments == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	j.logger.Info("Starting cleanup job for expired temporary attachments")
	deleted, failed, err := j.attachments.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("Attachment cleanup failed", zap.Error(err))
		return
	}
	j.logger.Info("Attachment cleanup completed",
		zap.Int("deleted", deleted),
		zap.Int("failed", failed),
	)
}

// RunNotificationCleanup deletes read notifications past the retention window
func (j *CleanupJob) RunNotificationCleanup() {
	if j.notifications == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := j.notifications.CleanupRead(ctx, j.retainDays)
	if err != nil {
		j.logger.Error("Notification cleanup failed", zap.Int("retain_days", j.retainDays), zap.Error(err))
		return
	}
	j.logger.Info("Notification cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Int("retain_days", j.retainDays),
	)
}

// Scheduler runs a CleanupJob on cron specs
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers the job's tasks. An empty spec disables that task.
func NewScheduler(cfg config.JobsConfig, j *CleanupJob, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	entries := []struct {
		name string
		spec string
		run  func()
	}{
		{"attachment_cleanup", cfg.AttachmentCleanupSpec, j.RunAttachmentCleanup},
		{"notification_cleanup", cfg.NotificationCleanupSpec, j.RunNotificationCleanup},
	}
	for _, e := range entries {
		if e.spec == "" {
			logger.Info("Job disabled", zap.String("job", e.name))
			continue
		}
		if _, err := c.AddFunc(e.spec, e.run); err != nil {
			return nil, fmt.Errorf("schedule %s %q: %w", e.name, e.spec, err)
		}
		logger.Info("Job scheduled", zap.String("job", e.name), zap.String("spec", e.spec))
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

// Entries returns the number of scheduled tasks
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running tasks, bounded by ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Jobs still running at shutdown")
	}
}
