package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/feltkit/holdemd/internal/events"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// inboundMessage is the only client-to-server WebSocket traffic. Everything
// else flows server-to-client as events.
type inboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func (s *Server) handleWS(c *gin.Context) {
	tableID := c.Query("table")
	if tableID == "" {
		s.invalid(c, "table query parameter is required")
		return
	}
	playerID := c.Query("player")

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := newWSClient(conn, s, tableID, playerID)
	s.wsGauge.Inc()
	client.logger.Debug("Client connected")
	client.start()
}

// wsClient bridges one WebSocket connection to a table's event topic. The
// subscription identity decides which private events it may see.
type wsClient struct {
	conn      *websocket.Conn
	sub       *events.Subscriber
	server    *Server
	tableID   string
	playerID  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func newWSClient(conn *websocket.Conn, s *Server, tableID, playerID string) *wsClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &wsClient{
		conn:     conn,
		sub:      s.bus.SubscribeAs(events.Topic(tableID), playerID),
		server:   s,
		tableID:  tableID,
		playerID: playerID,
		logger:   s.logger.WithPrefix("ws").With("table", tableID, "player", playerID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (c *wsClient) start() {
	go c.writePump()
	go c.readPump()
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		c.server.bus.Unsubscribe(c.sub)
		_ = c.conn.Close()
		c.server.wsGauge.Dec()
		c.logger.Debug("Client disconnected", "dropped", c.sub.Dropped())
	})
}

// readPump consumes inbound messages until the peer goes away.
func (c *wsClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *wsClient) handleMessage(msg *inboundMessage) {
	switch msg.Type {
	case "chat":
		if c.playerID == "" {
			c.logger.Debug("Ignoring chat from anonymous watcher")
			return
		}
		if err := c.server.svc.Chat(c.ctx, c.tableID, c.playerID, msg.Text); err != nil {
			c.logger.Debug("Chat rejected", "error", err)
		}
	default:
		c.logger.Debug("Ignoring message", "type", msg.Type)
	}
}

// writePump streams subscribed events to the peer and keeps it alive with
// pings. An unsubscribed channel drains to a close frame.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case ev, ok := <-c.sub.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Error("Failed to write event", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}
