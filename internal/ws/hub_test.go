package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/numberduel-go/internal/testutil"
)

func newTestClient(hub *Hub) *Client {
	return &Client{
		hub:  hub,
		conn: newFakeConn(),
		send: make(chan []byte, sendBufferSize),
	}
}

func TestHubRegisterAndBroadcast(t *testing.T) {
	hub := NewHub("abc23456", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	c1 := newTestClient(hub)
	c2 := newTestClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte("hello"))

	for _, c := range []*Client{c1, c2} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "hello", string(msg))
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub("abc23456", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	c1 := newTestClient(hub)
	c2 := newTestClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	hub.Unregister(c1)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte("only c2"))

	select {
	case msg := <-c2.send:
		assert.Equal(t, "only c2", string(msg))
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
	assert.Empty(t, c1.send)
}

func TestHubManagerLifecycle(t *testing.T) {
	m := NewHubManager(testutil.NopLogger())

	hub := m.GetOrCreateHub("abc23456")
	require.NotNil(t, hub)
	assert.Same(t, hub, m.GetOrCreateHub("abc23456"))
	assert.Same(t, hub, m.GetHub("abc23456"))

	m.RemoveHub("abc23456")
	assert.Nil(t, m.GetHub("abc23456"))
}
