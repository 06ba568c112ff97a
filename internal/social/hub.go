package social

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"citytycoon-backend/internal/logger"
)

// envelope pairs an OutboundMessage with the map it targets; an empty MapID
// means "every connected client" (used for hero messages and donations,
// which are celebratory/leaderboard events visible beyond one map).
type envelope struct {
	mapID   string
	message OutboundMessage
}

// Hub maintains active chat/hero-message websocket connections and routes
// outbound events to the right subscribers. Grounded on the teacher's
// register/unregister/broadcast channel pattern, narrowed from per-game to
// per-map connection grouping.
type Hub struct {
	connections    map[*Connection]bool
	mapConnections map[string]map[*Connection]bool

	Register   chan *Connection
	Unregister chan *Connection
	Broadcast  chan envelope

	mu     sync.RWMutex
	logger *zap.Logger
}

func NewHub() *Hub {
	return &Hub{
		connections:    make(map[*Connection]bool),
		mapConnections: make(map[string]map[*Connection]bool),
		Register:       make(chan *Connection),
		Unregister:     make(chan *Connection),
		Broadcast:      make(chan envelope, 256),
		logger:         logger.Get(),
	}
}

// Run drives the hub's event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("starting social hub")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("social hub stopping")
			h.closeAllConnections()
			return
		case conn := <-h.Register:
			h.registerConnection(conn)
		case conn := <-h.Unregister:
			h.unregisterConnection(conn)
		case env := <-h.Broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn] = true
	if conn.MapID != "" {
		if h.mapConnections[conn.MapID] == nil {
			h.mapConnections[conn.MapID] = make(map[*Connection]bool)
		}
		h.mapConnections[conn.MapID][conn] = true
	}
	h.logger.Info("connection registered", zap.String("connection_id", conn.ID), zap.String("map_id", conn.MapID))
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn]; !ok {
		return
	}
	delete(h.connections, conn)
	conn.CloseSend()
	if conns, ok := h.mapConnections[conn.MapID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.mapConnections, conn.MapID)
		}
	}
	h.logger.Info("connection unregistered", zap.String("connection_id", conn.ID))
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if env.mapID == "" {
		for conn := range h.connections {
			conn.SendMessage(env.message)
		}
		return
	}
	for conn := range h.mapConnections[env.mapID] {
		conn.SendMessage(env.message)
	}
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		conn.Close()
	}
}

// BroadcastToMap queues msg for delivery to every connection subscribed to
// mapID.
func (h *Hub) BroadcastToMap(mapID string, msg OutboundMessage) {
	h.Broadcast <- envelope{mapID: mapID, message: msg}
}

// BroadcastGlobal queues msg for delivery to every connected client.
func (h *Hub) BroadcastGlobal(msg OutboundMessage) {
	h.Broadcast <- envelope{message: msg}
}
