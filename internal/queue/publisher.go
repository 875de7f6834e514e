package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher hands transition events to a broker
type Publisher interface {
	PublishTransition(ctx context.Context, ev TransitionEvent) error
	Close() error
}

// NewPublisher returns an AMQP publisher, or a no-op one when url is empty
func NewPublisher(url, queueName string, logger *zap.Logger) Publisher {
	if url == "" {
		return NoopPublisher{}
	}
	if queueName == "" {
		queueName = TransitionQueue
	}
	return &AMQPPublisher{url: url, queue: queueName, logger: logger}
}

// AMQPPublisher keeps one connection and channel open and redials lazily after failures
type AMQPPublisher struct {
	url    string
	queue  string
	logger *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeLocked()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel open: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

// PublishTransition publishes ev as a persistent JSON message on the transition queue
func (p *AMQPPublisher) PublishTransition(ctx context.Context, ev TransitionEvent) error {
	if ev.EventID == uuid.Nil {
		ev.EventID = uuid.New()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal transition event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		p.logger.Warn("rabbitmq unavailable", zap.Error(err))
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID.String(),
		Timestamp:    ev.OccurredAt,
		Type:         "workflow.transition",
		Body:         body,
	})
	if err != nil {
		p.closeLocked()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *AMQPPublisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close releases the broker connection
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) PublishTransition(context.Context, TransitionEvent) error { return nil }
func (NoopPublisher) Close() error                                          { return nil }
