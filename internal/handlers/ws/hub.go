package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/services/game"
)

// Hub routes game events to the connections of a room. It implements game.Publisher.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*client
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[string]*client),
	}
}

// Publish delivers one event. A room without connections is a no-op.
func (h *Hub) Publish(ctx context.Context, input *game.PublishInput) error {
	data, err := json.Marshal(&Event{
		Type:  FrameEvent,
		Event: input.Event,
		Data:  input.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", input.Event, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[input.RoomCode]
	if !ok {
		log.Debug().
			Str("room", input.RoomCode).
			Str("event", string(input.Event)).
			Msg("Publish for room without connections")
		return nil
	}

	if input.RecipientID != "" {
		if c, ok := members[input.RecipientID]; ok {
			h.deliver(c, input, data)
		}
		return nil
	}

	for id, c := range members {
		if id == input.ExcludeID {
			continue
		}
		h.deliver(c, input, data)
	}
	return nil
}

func (h *Hub) deliver(c *client, input *game.PublishInput, data []byte) {
	if !c.enqueue(data) {
		log.Warn().
			Str("room", input.RoomCode).
			Str("participant", c.participantID()).
			Str("event", string(input.Event)).
			Msg("Dropped event for slow connection")
	}
}

// Connections returns how many connections are registered for a room
func (h *Hub) Connections(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

func (h *Hub) register(code, participantID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[code]
	if !ok {
		members = make(map[string]*client)
		h.rooms[code] = members
	}
	members[participantID] = c
}

// unregister removes c unless another connection has since taken its place
func (h *Hub) unregister(code, participantID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[code]
	if !ok || members[participantID] != c {
		return
	}
	delete(members, participantID)
	if len(members) == 0 {
		delete(h.rooms, code)
	}
}
