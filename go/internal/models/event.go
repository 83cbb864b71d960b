package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle status of a pageant event
type EventStatus string

const (
	EventStatusPending EventStatus = "pending"
	EventStatusActive  EventStatus = "active"
	EventStatusClosed  EventStatus = "closed"
)

// Event represents one judged category of the pageant (evening gown,
// talent, etc). IsActive is the sole source of scoring eligibility.
type Event struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	EventType       string      `json:"event_type,omitempty"`
	Description     string      `json:"description,omitempty"`
	Status          EventStatus `json:"status"`
	Weight          float64     `json:"weight"`
	IsMandatory     bool        `json:"is_mandatory"`
	BonusPercentage float64     `json:"bonus_percentage"`
	IsActive        bool        `json:"is_active"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
