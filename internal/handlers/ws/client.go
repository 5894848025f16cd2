package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// client is one game connection, bound to a room and participant after create or join
type client struct {
	*connection
	limiter *rate.Limiter

	mu   sync.Mutex
	code string
	id   string
}

func (c *client) binding() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code, c.id
}

func (c *client) participantID() string {
	_, id := c.binding()
	return id
}

func (c *client) setBinding(code, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code = code
	c.id = id
}

func (c *client) reply(ack *Ack) {
	data, err := json.Marshal(ack)
	if err != nil {
		log.Error().Err(err).Str("request", ack.ID).Msg("Failed to encode ack")
		return
	}
	if !c.enqueue(data) {
		log.Warn().
			Str("participant", c.participantID()).
			Str("request", ack.ID).
			Msg("Dropped ack for slow connection")
	}
}

func newAck(id string, data any, err error) *Ack {
	if err != nil {
		return &Ack{Type: FrameAck, ID: id, Error: err.Error()}
	}
	return &Ack{Type: FrameAck, ID: id, Success: true, Data: data}
}
