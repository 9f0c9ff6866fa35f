package realtime

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var f map[string]any
	require.NoError(t, json.Unmarshal(b, &f))
	return f
}

func TestHubPushesOnConnectAndChange(t *testing.T) {
	var version atomic.Int64
	hub := NewHub("test", func(context.Context) (any, error) {
		return []int64{version.Load()}, nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	f := readFrame(t, conn)
	assert.Equal(t, "snapshot", f["type"])
	assert.Equal(t, []any{float64(0)}, f["data"])

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	version.Store(7)
	require.NoError(t, hub.HandleMessage(ctx, kafkaMsg()))
	f = readFrame(t, conn)
	assert.Equal(t, []any{float64(7)}, f["data"])
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub("test", func(context.Context) (any, error) { return nil, nil }, []string{"https://shop.example"})
	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	hdr := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func kafkaMsg() kafkago.Message { return kafkago.Message{Topic: "catalog.product.changed"} }
