package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHubServer(t *testing.T, phaseID uuid.UUID) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zap.NewNop(), nil)
	go hub.Run()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, phaseID, uuid.New())
	}))

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForRoomSize(t *testing.T, hub *Hub, phaseID uuid.UUID, want int) {
	t.Helper()
	assert.Eventually(t, func() bool { return hub.RoomSize(phaseID) == want }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastReachesRoom(t *testing.T) {
	phaseID := uuid.New()
	hub, server := startHubServer(t, phaseID)

	conn := dial(t, server)
	waitForRoomSize(t, hub, phaseID, 1)

	hub.Broadcast(phaseID, EventChatMessage, map[string]string{"content": "slab poured"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type    string            `json:"type"`
		PhaseID uuid.UUID         `json:"phaseId"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, EventChatMessage, env.Type)
	assert.Equal(t, phaseID, env.PhaseID)
	assert.Equal(t, "slab poured", env.Data["content"])
}

func TestHub_BroadcastToOtherRoomIsNotDelivered(t *testing.T) {
	phaseID := uuid.New()
	hub, server := startHubServer(t, phaseID)

	conn := dial(t, server)
	waitForRoomSize(t, hub, phaseID, 1)

	hub.Broadcast(uuid.New(), EventProgress, nil)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_DisconnectLeavesRoom(t *testing.T) {
	phaseID := uuid.New()
	hub, server := startHubServer(t, phaseID)

	conn := dial(t, server)
	waitForRoomSize(t, hub, phaseID, 1)
	assert.Equal(t, 1, hub.ClientCount())

	conn.Close()
	waitForRoomSize(t, hub, phaseID, 0)
	assert.Zero(t, hub.ClientCount())
}

func TestNoopBroadcaster(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopBroadcaster{}.Broadcast(uuid.New(), EventStatus, nil)
	})
}
