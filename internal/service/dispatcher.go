package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-tracker-api/internal/client"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/queue"
	"site-tracker-api/internal/realtime"
	"site-tracker-api/internal/workflow"
)

const dispatchTimeout = 10 * time.Second

// Dispatcher delivers side effects after a transaction has committed.
// Every sink is optional and every failure is logged and counted, never returned.
type Dispatcher struct {
	publisher   client.NotificationPublisher
	webhook     client.NotificationClient
	queue       queue.Publisher
	broadcaster realtime.Broadcaster
	cache       *UnreadCache
	metrics     *metrics.Metrics
	logger      *zap.Logger

	// spawn runs a delivery; tests replace it to run inline
	spawn func(func())
}

// NewDispatcher wires the post-commit sinks
func NewDispatcher(
	publisher client.NotificationPublisher,
	webhook client.NotificationClient,
	q queue.Publisher,
	broadcaster realtime.Broadcaster,
	cache *UnreadCache,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		publisher:   publisher,
		webhook:     webhook,
		queue:       q,
		broadcaster: broadcaster,
		cache:       cache,
		metrics:     m,
		logger:      loggerOrNop(logger),
		spawn:       func(f func()) { go f() },
	}
}

// RoomEvent is pushed to the websocket room of a phase
type RoomEvent struct {
	PhaseID uuid.UUID
	Type    string
	Data    interface{}
}

// Delivery is everything produced by one committed operation
type Delivery struct {
	ActorID       uuid.UUID
	Notifications []domain.Notification
	Drafts        []workflow.NotificationDraft
	Transition    *queue.TransitionEvent
	Room          *RoomEvent
}

// Dispatch hands d to every configured sink
func (d *Dispatcher) Dispatch(delivery Delivery) {
	if d == nil {
		return
	}
	d.spawn(func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic while dispatching", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		d.deliver(ctx, delivery)
	})
}

func (d *Dispatcher) deliver(ctx context.Context, delivery Delivery) {
	if delivery.Room != nil && d.broadcaster != nil {
		d.broadcaster.Broadcast(delivery.Room.PhaseID, delivery.Room.Type, delivery.Room.Data)
	}

	if len(delivery.Notifications) > 0 {
		targets := make([]uuid.UUID, 0, len(delivery.Notifications))
		for _, n := range delivery.Notifications {
			targets = append(targets, n.EmployeeID)
		}
		d.cache.Invalidate(ctx, targets...)

		if d.publisher != nil {
			err := d.publisher.Publish(ctx, delivery.Notifications)
			d.record("redis", "publish", err)
		}
	}

	if len(delivery.Drafts) > 0 && d.webhook != nil {
		err := d.webhook.SendBulkNotifications(ctx, delivery.ActorID.String(), delivery.Drafts)
		d.record("webhook", "webhook", err)
	}

	if delivery.Transition != nil && d.queue != nil {
		err := d.queue.PublishTransition(ctx, *delivery.Transition)
		d.record("amqp", "", err)
		if err != nil {
			d.logger.Warn("failed to publish transition event",
				zap.String("scope_id", delivery.Transition.ScopeID.String()),
				zap.Error(err))
		}
	}
}

func (d *Dispatcher) record(sink, failureStage string, err error) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordPublish(sink, err)
	if err != nil && failureStage != "" {
		d.metrics.IncrementNotificationFailure(failureStage)
	}
}
