package social

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"citytycoon-backend/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections subscribed to one
// map's chat/hero-message stream.
type Handler struct {
	hub     *Hub
	chat    *ChatService
	logger  *zap.Logger
}

func NewHandler(hub *Hub, chat *ChatService) *Handler {
	return &Handler{hub: hub, chat: chat, logger: logger.Get()}
}

// ServeWS upgrades the request and registers a Connection scoped to
// companyID/mapID (the caller in internal/router takes companyID from the
// authenticated request context and mapID from the request path).
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request, companyID, mapID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade social websocket", zap.Error(err))
		return
	}

	connectionID := uuid.NewString()
	connection := NewConnection(connectionID, companyID, mapID, conn,
		func(msg InboundMessage) {
			if msg.Type == MessageChat {
				if _, err := h.chat.PostMessage(r.Context(), companyID, mapID, msg.Body); err != nil {
					h.logger.Warn("chat message rejected", zap.Error(err))
				}
			}
		},
		func(c *Connection) { h.hub.Unregister <- c },
	)

	h.hub.Register <- connection
	go connection.WritePump()
	go connection.ReadPump()
}
