package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/workflow"
)

// WebhookNotification is the payload forwarded to the external delivery service
type WebhookNotification struct {
	workflow.NotificationDraft
	ActorID    string `json:"actorId"`
	OccurredAt string `json:"occurredAt"`
}

// BulkNotificationRequest represents a bulk notification request
type BulkNotificationRequest struct {
	Notifications []WebhookNotification `json:"notifications"`
}

// NotificationClient forwards stored notifications to the push delivery service
type NotificationClient interface {
	SendBulkNotifications(ctx context.Context, actorID string, drafts []workflow.NotificationDraft) error
}

type notificationClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewNotificationClient creates a webhook client; an empty baseURL yields the no-op client
func NewNotificationClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) NotificationClient {
	if baseURL == "" {
		return NewNoOpNotificationClient()
	}
	return &notificationClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		metrics:    m,
	}
}

// SendBulkNotifications posts all drafts in one request.
// Delivery problems are logged and reported as an error; callers treat them as non-fatal.
func (c *notificationClient) SendBulkNotifications(ctx context.Context, actorID string, drafts []workflow.NotificationDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/api/internal/notifications/bulk", c.baseURL)

	now := time.Now().UTC().Format(time.RFC3339)
	payload := BulkNotificationRequest{Notifications: make([]WebhookNotification, 0, len(drafts))}
	for _, d := range drafts {
		payload.Notifications = append(payload.Notifications, WebhookNotification{
			NotificationDraft: d,
			ActorID:           actorID,
			OccurredAt:        now,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notifications: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-API-Key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(url, http.MethodPost, statusCode, duration, err)
	}

	if err != nil {
		c.logger.Error("Failed to send bulk notifications",
			zap.Error(err),
			zap.Int("count", len(drafts)),
			zap.Duration("duration", duration),
		)
		return fmt.Errorf("notification webhook: %w", err)
	}
	defer resp.Body.Close()

	if statusCode < 200 || statusCode >= 300 {
		c.logger.Warn("Notification service returned non-success status",
			zap.Int("status_code", statusCode),
			zap.Int("count", len(drafts)),
		)
		return fmt.Errorf("notification webhook: unexpected status %d", statusCode)
	}

	c.logger.Debug("Bulk notifications forwarded",
		zap.Int("count", len(drafts)),
		zap.Duration("duration", duration),
	)
	return nil
}

// NoOpNotificationClient is used when no webhook is configured
type NoOpNotificationClient struct{}

func NewNoOpNotificationClient() NotificationClient {
	return &NoOpNotificationClient{}
}

func (c *NoOpNotificationClient) SendBulkNotifications(ctx context.Context, actorID string, drafts []workflow.NotificationDraft) error {
	return nil
}
