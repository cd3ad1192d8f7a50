package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Kind string `json:"kind"`
	ID   int    `json:"id"`
}

func startHub(t *testing.T) (*Hub, string, context.CancelFunc) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", NewHandler(hub, zerolog.Nop()).HandleConnection)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", cancel
}

func dial(t *testing.T, hub *Hub, url string, want int) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientsCount() == want }, time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsToEveryClient(t *testing.T) {
	hub, url, _ := startHub(t)
	a := dial(t, hub, url, 1)
	b := dial(t, hub, url, 2)

	require.NoError(t, hub.Publish(TypeChange, "created", testEvent{Kind: "students", ID: 7}))

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, TypeChange, msg.Type)
		assert.Equal(t, "created", msg.Event)

		var ev testEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, testEvent{Kind: "students", ID: 7}, ev)
	}
}

func TestHub_UnregistersClosedClient(t *testing.T) {
	hub, url, _ := startHub(t)
	conn := dial(t, hub, url, 1)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientsCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub, url, cancel := startHub(t)
	conn := dial(t, hub, url, 1)

	cancel()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, hub.ClientsCount())

	// Publishing after stop does not block
	done := make(chan struct{})
	go func() {
		_ = hub.Publish(TypeNotification, "added", testEvent{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after the hub stopped")
	}
}

func TestRelay_ForwardsUntilClosed(t *testing.T) {
	hub, url, _ := startHub(t)
	conn := dial(t, hub, url, 1)

	events := make(chan testEvent, 1)
	done := make(chan struct{})
	go func() {
		Relay(context.Background(), hub, TypeNotification, events, func(e testEvent) string { return e.Kind })
		close(done)
	}()

	events <- testEvent{Kind: "added", ID: 1}
	msg := readMessage(t, conn)
	assert.Equal(t, TypeNotification, msg.Type)
	assert.Equal(t, "added", msg.Event)

	close(events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Relay did not return after the source closed")
	}
}
