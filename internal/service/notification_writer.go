package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/workflow"
)

type recipientResolver func(ctx context.Context, tx *repository.Repositories) ([]uuid.UUID, error)

// storeNotifications resolves recipients and writes one row per draft inside a savepoint of tx.
// A failure rolls back only the savepoint; the enclosing transaction carries on.
func storeNotifications(
	ctx context.Context,
	tx *repository.Repositories,
	ev workflow.Event,
	resolve recipientResolver,
	metadata map[string]interface{},
	m *metrics.Metrics,
	logger *zap.Logger,
) ([]domain.Notification, []workflow.NotificationDraft) {
	var (
		drafts []workflow.NotificationDraft
		rows   []*domain.Notification
	)

	var meta datatypes.JSON
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			meta = raw
		}
	}

	err := tx.Transaction(ctx, func(sp *repository.Repositories) error {
		recipients, err := resolve(ctx, sp)
		if err != nil {
			return err
		}
		drafts = workflow.Drafts(ev, recipients)
		if len(drafts) == 0 {
			return nil
		}

		rows = make([]*domain.Notification, 0, len(drafts))
		for _, d := range drafts {
			rows = append(rows, &domain.Notification{
				SiteID:     d.SiteID,
				PhaseID:    d.PhaseID,
				TaskID:     d.TaskID,
				EmployeeID: d.TargetEmployeeID,
				Type:       d.Type,
				Message:    d.Message,
				Metadata:   meta,
			})
		}
		return sp.Notifications.CreateBatch(ctx, rows)
	})
	if err != nil {
		logger.Warn("Failed to store notifications; continuing without them",
			zap.String("event", string(ev.Kind)),
			zap.String("site_id", ev.SiteID.String()),
			zap.Error(err))
		if m != nil {
			m.IncrementNotificationFailure("store")
		}
		return nil, drafts
	}

	stored := make([]domain.Notification, 0, len(rows))
	for _, r := range rows {
		stored = append(stored, *r)
	}
	if m != nil && len(stored) > 0 {
		m.AddNotifications(string(stored[0].Type), len(stored))
	}
	return stored, drafts
}
