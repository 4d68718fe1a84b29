package worldapi

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/pkg/engine"
)

// Hub fans engine.Notifier events out to connected operator websocket
// clients, one goroutine-safe broadcast per world. Grounded on the
// teacher's own WebSocket observer pattern (events pushed from the
// orchestrator, fanned out to subscribed connections), rebuilt here because
// the teacher's concrete hub implementation isn't present in this copy of
// the package, only its tests.
type Hub struct {
	log *logger.Logger

	mu   sync.Mutex
	subs map[string]map[*websocket.Conn]struct{} // worldID -> set of conns

	writeMu sync.Mutex // a websocket.Conn supports one writer at a time
}

// NewHub creates an empty Hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{subs: make(map[string]map[*websocket.Conn]struct{}), log: log}
}

// Notify implements engine.Notifier: broadcasts ev as JSON to every
// connection subscribed to ev.WorldID. Never blocks on a slow client
// indefinitely; a write error drops that subscriber.
func (h *Hub) Notify(ctx context.Context, ev engine.WorkflowEvent) {
	h.mu.Lock()
	conns := h.subs[ev.WorldID]
	targets := make([]*websocket.Conn, 0, len(conns))
	for c := range conns {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.ErrorContext(ctx, "marshal workflow event", "error", err)
		return
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, c := range targets {
		_ = c.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unsubscribe(ev.WorldID, c)
		}
	}
}

// Subscribe registers conn to receive events for worldID.
func (h *Hub) Subscribe(worldID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[worldID]
	if !ok {
		set = make(map[*websocket.Conn]struct{})
		h.subs[worldID] = set
	}
	set[conn] = struct{}{}
}

func (h *Hub) unsubscribe(worldID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[worldID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, worldID)
		}
	}
	_ = conn.Close()
}

// Unsubscribe removes conn from worldID's subscriber set and closes it.
func (h *Hub) Unsubscribe(worldID string, conn *websocket.Conn) {
	h.unsubscribe(worldID, conn)
}
