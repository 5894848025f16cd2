package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/codered/internal/services/game"
)

func newTestClient(code, id string) *client {
	c := &client{connection: newConnection(nil)}
	c.setBinding(code, id)
	return c
}

func TestHub_Publish(t *testing.T) {
	ctx := context.Background()
	hub := NewHub()
	a := newTestClient("ROOM01", "a")
	b := newTestClient("ROOM01", "b")
	other := newTestClient("ROOM02", "c")
	hub.register("ROOM01", "a", a)
	hub.register("ROOM01", "b", b)
	hub.register("ROOM02", "c", other)

	require.NoError(t, hub.Publish(ctx, &game.PublishInput{
		RoomCode: "ROOM01",
		Event:    game.EventRoomUpdated,
		Data:     map[string]string{"hello": "world"},
	}))
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
	assert.Len(t, other.send, 0)

	var frame Event
	require.NoError(t, json.Unmarshal(<-a.send, &frame))
	assert.Equal(t, FrameEvent, frame.Type)
	assert.Equal(t, game.EventRoomUpdated, frame.Event)
	assert.Equal(t, map[string]any{"hello": "world"}, frame.Data)

	require.NoError(t, hub.Publish(ctx, &game.PublishInput{RoomCode: "ROOM01", Event: game.EventPlayerJoined, ExcludeID: "b"}))
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)

	require.NoError(t, hub.Publish(ctx, &game.PublishInput{RoomCode: "ROOM01", Event: game.EventRoleAssigned, RecipientID: "b"}))
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 2)

	// rooms without connections are a no-op
	assert.NoError(t, hub.Publish(ctx, &game.PublishInput{RoomCode: "ROOM09", Event: game.EventRoomUpdated}))
}

func TestHub_SlowConnectionDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	slow := newTestClient("ROOM01", "slow")
	fast := newTestClient("ROOM01", "fast")
	hub.register("ROOM01", "slow", slow)
	hub.register("ROOM01", "fast", fast)

	for i := 0; i < sendBuffer; i++ {
		require.True(t, slow.enqueue([]byte("x")))
	}

	require.NoError(t, hub.Publish(context.Background(), &game.PublishInput{RoomCode: "ROOM01", Event: game.EventTimerUpdate}))
	assert.Len(t, slow.send, sendBuffer)
	assert.Len(t, fast.send, 1)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	first := newTestClient("ROOM01", "a")
	second := newTestClient("ROOM01", "a")

	hub.register("ROOM01", "a", first)
	hub.register("ROOM01", "a", second)

	// a stale connection cannot remove its replacement
	hub.unregister("ROOM01", "a", first)
	assert.Equal(t, 1, hub.Connections("ROOM01"))

	hub.unregister("ROOM01", "a", second)
	assert.Equal(t, 0, hub.Connections("ROOM01"))
}

func TestConnection_ClosedDropsMessages(t *testing.T) {
	c := newConnection(nil)
	c.close()
	c.close()
	assert.False(t, c.enqueue([]byte("x")))
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{name: "no restriction", allowed: nil, origin: "https://evil.example", want: true},
		{name: "no origin header", allowed: []string{"https://codered.example"}, origin: "", want: true},
		{name: "allowed", allowed: []string{"https://codered.example/"}, origin: "https://codered.example", want: true},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", want: true},
		{name: "rejected", allowed: []string{"https://codered.example"}, origin: "https://evil.example", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newOriginRequest(tt.origin)
			assert.Equal(t, tt.want, checkOrigin(tt.allowed)(r))
		})
	}
}
