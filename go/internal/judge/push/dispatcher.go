package push

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Type identifies an inbound push notification
type Type string

const (
	TypeEventUpdated        Type = "event_updated"
	TypeScoreUpdate         Type = "score_update"
	TypeVoteUpdate          Type = "vote_update"
	TypeCandidateUpdate     Type = "candidate_update"
	TypeTiebreakerActivated Type = "tiebreaker_activated"
	TypeTiebreakerCompleted Type = "tiebreaker_completed"
	TypeTiebreakerCleared   Type = "tiebreaker_cleared"
	TypeSystemNotification  Type = "system_notification"
)

// Notification is the wire envelope for every push message
type Notification struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandlerFunc handles the decoded payload of one notification type
type HandlerFunc func(data json.RawMessage) error

// Dispatcher routes inbound push notifications to one handler per type.
// It replaces per-socket inline callbacks with a single typed inbound
// path so state transitions stay independently testable without a
// socket.
type Dispatcher struct {
	handlers map[Type]HandlerFunc
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type]HandlerFunc)}
}

// Handle registers the handler for a notification type, replacing any
// previous registration.
func (d *Dispatcher) Handle(t Type, h HandlerFunc) {
	d.handlers[t] = h
}

// Dispatch decodes a raw push message and invokes the matching handler.
// Unknown types are logged and dropped.
func (d *Dispatcher) Dispatch(raw []byte) error {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("decode push notification: %w", err)
	}

	handler, ok := d.handlers[n.Type]
	if !ok {
		log.Debug().Str("type", string(n.Type)).Msg("unhandled push notification type")
		return nil
	}

	if err := handler(n.Data); err != nil {
		return fmt.Errorf("handle %s notification: %w", n.Type, err)
	}
	return nil
}
