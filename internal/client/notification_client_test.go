package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/workflow"
)

func sampleDrafts() []workflow.NotificationDraft {
	return []workflow.NotificationDraft{{
		TargetEmployeeID: uuid.New(),
		Type:             domain.NotificationTaskUpdate,
		Message:          `Task "Rebar" was approved`,
		SiteID:           uuid.New(),
	}}
}

func TestSendBulkNotifications(t *testing.T) {
	var got BulkNotificationRequest
	var apiKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/internal/notifications/bulk", r.URL.Path)
		apiKey = r.Header.Get("X-Internal-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	m := metrics.NewWithRegistry(prometheus.NewRegistry(), nil)
	c := NewNotificationClient(server.URL, "secret", time.Second, zap.NewNop(), m)

	drafts := sampleDrafts()
	err := c.SendBulkNotifications(context.Background(), "actor-1", drafts)

	require.NoError(t, err)
	assert.Equal(t, "secret", apiKey)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, drafts[0].TargetEmployeeID, got.Notifications[0].TargetEmployeeID)
	assert.Equal(t, "actor-1", got.Notifications[0].ActorID)
	assert.NotEmpty(t, got.Notifications[0].OccurredAt)
}

func TestSendBulkNotifications_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewNotificationClient(server.URL, "", time.Second, zap.NewNop(), nil)

	err := c.SendBulkNotifications(context.Background(), "actor-1", sampleDrafts())
	assert.Error(t, err)
}

func TestSendBulkNotifications_EmptyIsNoop(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := NewNotificationClient(server.URL, "", time.Second, zap.NewNop(), nil)

	assert.NoError(t, c.SendBulkNotifications(context.Background(), "a", nil))
	assert.False(t, called)
}

func TestNewNotificationClient_NoURL(t *testing.T) {
	c := NewNotificationClient("", "", time.Second, zap.NewNop(), nil)

	_, ok := c.(*NoOpNotificationClient)
	assert.True(t, ok)
	assert.NoError(t, c.SendBulkNotifications(context.Background(), "a", sampleDrafts()))
}
