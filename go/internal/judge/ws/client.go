package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/crownjudge/pageant/go/internal/judge/push"
)

// Config holds configuration for the push channel client
type Config struct {
	URL           string
	Token         string
	JudgeID       uuid.UUID
	WriteTimeout  time.Duration
	ReadTimeout   time.Duration
	PingInterval  time.Duration
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default client configuration
func DefaultConfig(url, token string, judgeID uuid.UUID) Config {
	return Config{
		URL:           url,
		Token:         token,
		JudgeID:       judgeID,
		WriteTimeout:  10 * time.Second,
		ReadTimeout:   60 * time.Second,
		PingInterval:  30 * time.Second,
		MaxReconnects: 5,
		ReconnectWait: 3 * time.Second,
	}
}

// Client maintains the persistent push channel to the backend. On every
// (re)connect it rejoins the judge-specific room so targeted tie-breaker
// and event notifications keep flowing, and feeds every inbound message
// through the typed dispatcher.
type Client struct {
	config     Config
	dispatcher *push.Dispatcher
	clock      clockwork.Clock

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient creates a push channel client
func NewClient(config Config, dispatcher *push.Dispatcher, clock clockwork.Clock) *Client {
	return &Client{
		config:     config,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// Run connects and reads until ctx is cancelled or the reconnect budget
// is exhausted. Each successful connection resets the budget.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0
	for {
		if err := c.connect(ctx); err != nil {
			attempts++
			if attempts > c.config.MaxReconnects {
				return fmt.Errorf("push channel gave up after %d attempts: %w", attempts-1, err)
			}
			log.Warn().
				Err(err).
				Int("attempt", attempts).
				Int("max", c.config.MaxReconnects).
				Msg("push channel connect failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.clock.After(c.config.ReconnectWait):
			}
			continue
		}
		attempts = 0

		err := c.readLoop(ctx)
		c.closeConn()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("push channel disconnected, reconnecting")
	}
}

func (c *Client) connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.config.Token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.config.URL, header)
	if err != nil {
		return fmt.Errorf("dial push channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	// Rejoin the judge-specific room so targeted notifications resume.
	join := map[string]string{
		"type": "join_room",
		"room": fmt.Sprintf("judge_%s", c.config.JudgeID),
	}
	if err := c.writeJSON(join); err != nil {
		c.closeConn()
		return fmt.Errorf("join judge room: %w", err)
	}

	log.Info().
		Str("url", c.config.URL).
		Str("judge_id", c.config.JudgeID.String()).
		Msg("push channel connected")
	return nil
}

func (c *Client) readLoop(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("push channel not connected")
	}

	conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		return nil
	})

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go c.pingLoop(pingCtx, conn)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("read push message: %w", err)
			}
			return err
		}
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		if err := c.dispatcher.Dispatch(message); err != nil {
			log.Error().Err(err).Msg("failed to handle push notification")
		}
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := c.clock.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Msg("failed to send ping")
				return
			}
		}
	}
}

func (c *Client) writeJSON(v interface{}) error {
	conn := c.current()
	if conn == nil {
		return fmt.Errorf("push channel not connected")
	}
	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// Close tears the connection down. In-flight work may still complete in
// the background; its effects are simply unobserved.
func (c *Client) Close() {
	c.closeConn()
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}
