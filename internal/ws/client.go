package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 256
)

// Client is one live WebSocket connection. The ID is the opaque connection
// handle the rest of the relay sees; the socket itself never leaves this
// package. All writes go through the send channel so the socket has a single
// writer.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
	log  *slog.Logger
}

func newClient(conn *websocket.Conn, log *slog.Logger) *Client {
	return &Client{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		log:  log,
	}
}

// enqueue hands a frame to the write pump without blocking. A full buffer
// drops the frame; pushes are best-effort.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// close releases the write pump. Safe to call more than once.
func (c *Client) close() {
	c.once.Do(func() { close(c.send) })
}

// writePump drains the send channel onto the socket and keeps the connection
// alive with pings. It exits on write failure or when close is called.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("write failed", "conn", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
