package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toffeegg/flyffu-launcherd/internal/infrastructure/logging"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
)

func newTestHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(&logging.Logger{Logger: zap.NewNop()})
	router := gin.New()
	router.GET("/stream", hub.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Wait for the hub to register the client.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
	return hub, conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, sonic.Unmarshal(data, &ev))
	return ev
}

func TestBroadcastReachesClient(t *testing.T) {
	hub, conn := newTestHub(t)

	hub.ProfilesChanged([]types.Profile{{Name: "Main", Partition: "persist:profile-Main"}})

	ev := readEvent(t, conn)
	assert.Equal(t, "profiles.updated", ev.Type)
	assert.NotZero(t, ev.Timestamp)
}

func TestActiveAndRestartEvents(t *testing.T) {
	hub, conn := newTestHub(t)

	hub.ActiveChanged([]string{"Main"})
	ev := readEvent(t, conn)
	assert.Equal(t, "profiles.active", ev.Type)

	hub.RestartRequired("Main")
	ev = readEvent(t, conn)
	assert.Equal(t, "restart.required", ev.Type)
}

func TestPingPong(t *testing.T) {
	_, conn := newTestHub(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	ev := readEvent(t, conn)
	assert.Equal(t, "pong", ev.Type)
}

func TestPongToDroppedClientIsNoOp(t *testing.T) {
	hub, _ := newTestHub(t)

	hub.mu.Lock()
	var cl *client
	for c := range hub.clients {
		cl = c
	}
	hub.dropLocked(cl)
	hub.mu.Unlock()

	// The send channel is closed; a late pong must not panic.
	assert.NotPanics(t, func() {
		hub.sendTo(cl, Event{Type: "pong", Timestamp: time.Now().Unix()})
	})
}

func TestDisconnectRemovesClient(t *testing.T) {
	hub, conn := newTestHub(t)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
