package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/YUGESHKARAN/web-socket.io/errors"
)

// frame is the wire format in both directions: a named event plus its
// JSON payload.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Client adapts one websocket connection to the Conn handle the core
// consumes. Writes go through a buffered channel drained by a single
// write pump, so concurrent dispatches never interleave frames on the
// socket and a slow consumer never blocks a dispatch.
type Client struct {
	id           string
	socket       *websocket.Conn
	send         chan outFrame
	done         chan struct{}
	closeOnce    sync.Once
	log          *slog.Logger
	writeTimeout time.Duration
}

func newClient(log *slog.Logger, socket *websocket.Conn, bufferSize int, writeTimeout time.Duration) *Client {
	return &Client{
		id:           uuid.NewString(),
		socket:       socket,
		send:         make(chan outFrame, bufferSize),
		done:         make(chan struct{}),
		log:          log,
		writeTimeout: writeTimeout,
	}
}

func (c *Client) ID() string { return c.id }

// Emit queues an outbound event frame. Delivery is best-effort: a
// closed connection or a consumer that cannot drain its buffer loses
// the frame rather than stalling the dispatcher.
func (c *Client) Emit(event string, payload any) error {
	select {
	case <-c.done:
		return errors.ErrConnClosed
	default:
	}
	select {
	case c.send <- outFrame{Event: event, Data: payload}:
		return nil
	case <-c.done:
		return errors.ErrConnClosed
	default:
		return errors.ErrConnBufferFull
	}
}

// writePump drains queued frames onto the socket. It owns all writes;
// nothing else may touch the socket's write side.
func (c *Client) writePump() {
	defer func() {
		_ = c.socket.Close()
	}()
	for {
		select {
		case <-c.done:
			deadline := time.Now().Add(c.writeTimeout)
			_ = c.socket.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			return
		case f := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.socket.WriteJSON(f); err != nil {
				c.log.Debug("Socket write failed", "conn_id", c.id, "error", err)
				c.close()
				return
			}
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
