package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/crownjudge/pageant/go/internal/judge/push"
)

// Hub manages WebSocket connections for live pageant updates. Every
// connection receives global broadcasts; room-scoped broadcasts only
// reach connections that joined the room via a join_room message.
type Hub struct {
	connections map[*Connection]bool
	rooms       map[string]map[*Connection]bool
	mu          sync.RWMutex

	upgrader websocket.Upgrader
	config   ConnectionConfig

	broadcastCh chan BroadcastMessage
}

// Connection represents a WebSocket connection to a client
type Connection struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	ConnectedAt time.Time
	LastPing    time.Time
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// BroadcastMessage represents a notification to fan out. An empty Room
// reaches every connection.
type BroadcastMessage struct {
	Room         string
	Notification *push.Notification
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// NewHub creates a new WebSocket hub
func NewHub(config ConnectionConfig) *Hub {
	return &Hub{
		connections: make(map[*Connection]bool),
		rooms:       make(map[string]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan BroadcastMessage, 1000),
	}
}

// Start begins processing broadcast messages
func (h *Hub) Start(ctx context.Context) {
	log.Info().Msg("realtime hub started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("realtime hub shutting down")
			return
		case message := <-h.broadcastCh:
			h.handleBroadcast(message)
		}
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket
func (h *Hub) UpgradeConnection(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Hub:         h,
		ConnectedAt: time.Now(),
		LastPing:    time.Now(),
	}

	h.registerConnection(connection)

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("connection_id", connection.ID).
		Str("user_id", userID).
		Msg("WebSocket connection established")

	return nil
}

// Broadcast queues a notification for fanout. An empty room reaches all
// connections.
func (h *Hub) Broadcast(room string, notification *push.Notification) {
	select {
	case h.broadcastCh <- BroadcastMessage{Room: room, Notification: notification}:
	default:
		log.Warn().Str("room", room).Msg("broadcast channel full, dropping message")
	}
}

// Stats returns statistics about active connections
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomCounts := make(map[string]int)
	for room, members := range h.rooms {
		roomCounts[room] = len(members)
	}

	return map[string]interface{}{
		"total_connections": len(h.connections),
		"rooms":             roomCounts,
	}
}

func (h *Hub) registerConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Int("total_connections", len(h.connections)).
		Msg("connection registered")
}

func (h *Hub) unregisterConnection(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.connections[conn]; !exists {
		return
	}
	delete(h.connections, conn)
	close(conn.Send)

	for room, members := range h.rooms {
		if members[conn] {
			delete(members, conn)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	log.Info().
		Str("connection_id", conn.ID).
		Str("user_id", conn.UserID).
		Msg("connection unregistered")
}

func (h *Hub) joinRoom(conn *Connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Connection]bool)
	}
	h.rooms[room][conn] = true

	log.Debug().
		Str("connection_id", conn.ID).
		Str("room", room).
		Int("members", len(h.rooms[room])).
		Msg("connection joined room")
}

func (h *Hub) handleBroadcast(message BroadcastMessage) {
	h.mu.RLock()
	var targets []*Connection
	if message.Room == "" {
		for conn := range h.connections {
			targets = append(targets, conn)
		}
	} else {
		for conn := range h.rooms[message.Room] {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message.Notification)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal notification for broadcast")
		return
	}

	for _, conn := range targets {
		select {
		case conn.Send <- data:
		default:
			// Connection is slow/dead, close it
			log.Warn().
				Str("connection_id", conn.ID).
				Str("user_id", conn.UserID).
				Msg("connection send buffer full, closing connection")
			h.unregisterConnection(conn)
			conn.Conn.Close()
		}
	}

	log.Debug().
		Str("type", string(message.Notification.Type)).
		Str("room", message.Room).
		Int("connections", len(targets)).
		Msg("notification broadcasted")
}

// writePump handles sending messages to the WebSocket connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.Hub.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Hub.unregisterConnection(c)
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Hub.config.WriteTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
			c.LastPing = time.Now()
		}
	}
}

// readPump handles reading messages from the WebSocket connection
func (c *Connection) readPump() {
	defer func() {
		c.Hub.unregisterConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Hub.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
		c.LastPing = time.Now()
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			break
		}

		c.handleClientMessage(message)
		c.Conn.SetReadDeadline(time.Now().Add(c.Hub.config.ReadTimeout))
	}
}

// handleClientMessage processes messages received from the client. The
// only client command today is join_room.
func (c *Connection) handleClientMessage(message []byte) {
	var cmd struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	if err := json.Unmarshal(message, &cmd); err != nil {
		log.Debug().
			Str("connection_id", c.ID).
			Msg("ignoring malformed client message")
		return
	}

	switch cmd.Type {
	case "join_room":
		if cmd.Room != "" {
			c.Hub.joinRoom(c, cmd.Room)
		}
	default:
		log.Debug().
			Str("connection_id", c.ID).
			Str("type", cmd.Type).
			Msg("unknown client message type")
	}
}
