// Package ws is the real-time transport: it owns the WebSocket connections,
// hands out opaque connection IDs, and exposes the two push primitives the
// relay core is built on, targeted send and global broadcast.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"conrelay/internal/service"
)

// Hub is the connection table. It implements service.Transport; both
// primitives are fire-and-forget and a dead or slow connection never fails
// the caller.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Client
	log   *slog.Logger
}

var _ service.Transport = (*Hub)(nil)

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		conns: make(map[string]*Client),
		log:   log,
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.conns[c.ID] = c
	total := len(h.conns)
	h.mu.Unlock()

	h.log.Debug("connection added", "conn", c.ID, "total", total)
}

// remove drops the connection from the table and releases its write pump.
func (h *Hub) remove(connID string) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if ok {
		delete(h.conns, connID)
	}
	total := len(h.conns)
	h.mu.Unlock()

	if ok {
		c.close()
		h.log.Debug("connection removed", "conn", connID, "total", total)
	}
}

// SendTo pushes the event to the given connections. Unknown IDs are skipped.
func (h *Hub) SendTo(connIDs []string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, id := range connIDs {
		if c, ok := h.conns[id]; ok {
			if !c.enqueue(payload) {
				h.log.Debug("send buffer full, frame dropped", "conn", id)
			}
		}
	}
}

// Broadcast pushes the event to every active connection.
func (h *Hub) Broadcast(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.conns {
		if !c.enqueue(payload) {
			h.log.Debug("send buffer full, frame dropped", "conn", c.ID)
		}
	}
}
