package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, origins ...string) (*Hub, *httptest.Server) {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(origins, zerolog.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestHub_BroadcastsEvents(t *testing.T) {
	hub, srv := startHub(t)

	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		conn, _, err := dial(t, srv, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 10*time.Millisecond)

	event := model.OrderEvent{
		Type:       model.OrderEventCreated,
		OrderID:    "ORD-1",
		UserID:     uuid.New(),
		Status:     model.OrderPending,
		Total:      decimal.NewFromInt(290),
		OccurredAt: time.Now().UTC(),
	}
	hub.Publish(event)

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, string(model.OrderEventCreated), got["type"])
		assert.Equal(t, "ORD-1", got["orderId"])
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := startHub(t)

	conn, _, err := dial(t, srv, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	_, srv := startHub(t, "https://admin.example.com")

	header := http.Header{"Origin": {"https://evil.example.com"}}
	_, resp, err := dial(t, srv, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://admin.example.com")
	conn, _, err := dial(t, srv, header)
	require.NoError(t, err)
	conn.Close()
}
