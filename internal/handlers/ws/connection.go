package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait bounds a single write to the peer
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is dropped
	pongWait = time.Minute

	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; fixes and document states fit comfortably
	maxMessageSize = 256 * 1024

	// sendBuffer is the per-connection outbound queue
	sendBuffer = 256
)

// connection owns one websocket: a buffered outbound queue drained by writePump
// and a keepalive. Sends never block the caller.
type connection struct {
	socket *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newConnection(socket *websocket.Conn) *connection {
	c := &connection{
		socket: socket,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	if socket != nil {
		socket.SetReadLimit(maxMessageSize)
		_ = socket.SetReadDeadline(time.Now().Add(pongWait))
		socket.SetPongHandler(func(string) error {
			return socket.SetReadDeadline(time.Now().Add(pongWait))
		})
	}
	return c
}

// enqueue queues data for the peer. It returns false when the queue is full
// or the connection is closed, in which case the message is dropped.
func (c *connection) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *connection) read() ([]byte, error) {
	_, data, err := c.socket.ReadMessage()
	return data, err
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Msg("Websocket write failed")
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.drain()
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// drain flushes what was queued before the close
func (c *connection) drain() {
	for {
		select {
		case data := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

// close stops the write pump; the socket is closed once pending frames are flushed
func (c *connection) close() {
	c.once.Do(func() {
		close(c.done)
	})
}
