package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func testClient() *Client {
	return &Client{
		id:          "test-client",
		send:        make(chan []byte, 256),
		connectedAt: time.Now(),
	}
}

func receive(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var msg envelope
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return envelope{}
	}
}

func TestHubRegisterSendsConnectionMessage(t *testing.T) {
	hub := testHub(t)
	client := testClient()

	hub.Register(client)

	msg := receive(t, client)
	assert.Equal(t, TypeConnection, msg.Type)

	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "connected", data["status"])
	assert.Equal(t, "test-client", data["client_id"])

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestHubBroadcastReachesAllClients(t *testing.T) {
	hub := testHub(t)
	a, b := testClient(), testClient()
	hub.Register(a)
	hub.Register(b)
	receive(t, a)
	receive(t, b)

	hub.BroadcastProgress("op-1", "impute", 50, "imputing columns")

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, TypeOperationProgress, msg.Type)
		data := msg.Data.(map[string]any)
		assert.Equal(t, "op-1", data["operation_id"])
		assert.Equal(t, "impute", data["step"])
		assert.Equal(t, float64(50), data["progress"])
		assert.NotEmpty(t, msg.Timestamp)
	}
}

func TestHubBroadcastError(t *testing.T) {
	hub := testHub(t)
	client := testClient()
	hub.Register(client)
	receive(t, client)

	hub.BroadcastError("op-2", "load", "file is empty")

	msg := receive(t, client)
	assert.Equal(t, TypeOperationError, msg.Type)
	data := msg.Data.(map[string]any)
	assert.Equal(t, "file is empty", data["message"])
}

func TestHubUnregister(t *testing.T) {
	hub := testHub(t)
	client := testClient()
	hub.Register(client)
	receive(t, client)

	hub.unregister <- client

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	// Channel is closed on unregister.
	_, open := <-client.send
	assert.False(t, open)
}

func TestHubStats(t *testing.T) {
	hub := testHub(t)
	client := testClient()
	hub.Register(client)
	receive(t, client)

	stats := hub.Stats()
	assert.Equal(t, 1, stats["active_clients"])
	assert.EqualValues(t, 1, stats["total_connections"])
}

func TestHubStopDropsClients(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Start()

	a, b := testClient(), testClient()
	hub.Register(a)
	hub.Register(b)
	receive(t, a)
	receive(t, b)

	hub.Stop()

	assert.Equal(t, 0, hub.ClientCount())
	for _, c := range []*Client{a, b} {
		_, open := <-c.send
		assert.False(t, open)
	}

	// Idempotent.
	hub.Stop()
}

func TestHubStatsConcurrentWithBroadcast(t *testing.T) {
	hub := testHub(t)
	client := testClient()
	hub.Register(client)
	receive(t, client)
	go func() {
		for range client.send {
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			hub.Broadcast(TypeInventoryUpdate, map[string]any{"seq": i})
		}
	}()
	for i := 0; i < 50; i++ {
		hub.Stats()
	}
	<-done

	assert.Eventually(t, func() bool {
		sent, _ := hub.Stats()["messages_sent"].(int64)
		return sent == 50
	}, 2*time.Second, 10*time.Millisecond)
}
