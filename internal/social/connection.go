package social

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"citytycoon-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// Connection represents one client's websocket session, subscribed to a
// single map's chat/hero-message stream. Grounded on the teacher's
// Connection (read/write pumps, buffered send channel, done-channel close).
type Connection struct {
	ID        string
	CompanyID string
	MapID     string
	Conn      *websocket.Conn
	Send      chan OutboundMessage

	onMessage    func(InboundMessage)
	onDisconnect func(*Connection)

	mu         sync.Mutex
	logger     *zap.Logger
	Done       chan struct{}
	closeOnce  sync.Once
	sendClosed bool
}

func NewConnection(id, companyID, mapID string, conn *websocket.Conn, onMessage func(InboundMessage), onDisconnect func(*Connection)) *Connection {
	return &Connection{
		ID: id, CompanyID: companyID, MapID: mapID, Conn: conn,
		Send: make(chan OutboundMessage, 64),
		onMessage: onMessage, onDisconnect: onDisconnect,
		logger: logger.Get(), Done: make(chan struct{}),
	}
}

func (c *Connection) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sendClosed {
		close(c.Send)
		c.sendClosed = true
	}
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.Done)
		c.Conn.Close()
	})
}

// ReadPump relays inbound client messages to the hub's owner until the
// connection closes.
func (c *Connection) ReadPump() {
	defer func() {
		if c.onDisconnect != nil {
			c.onDisconnect(c)
		}
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.Done:
			return
		default:
			var msg InboundMessage
			if err := c.Conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Error("social websocket read error", zap.Error(err), zap.String("connection_id", c.ID))
				}
				return
			}
			if c.onMessage != nil {
				c.onMessage(msg)
			}
		}
	}
}

// WritePump delivers queued outbound messages and keeps the connection
// alive with periodic pings.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.logger.Error("social websocket write error", zap.Error(err), zap.String("connection_id", c.ID))
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.Done:
			return
		}
	}
}

// SendMessage queues msg for delivery, dropping it if the connection is
// closing or its buffer is full.
func (c *Connection) SendMessage(msg OutboundMessage) {
	c.mu.Lock()
	closed := c.sendClosed
	c.mu.Unlock()
	if closed {
		return
	}
	select {
	case c.Send <- msg:
	case <-c.Done:
	default:
		c.logger.Warn("social message channel full, dropping message", zap.String("connection_id", c.ID))
	}
}
