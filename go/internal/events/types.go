package events

import "github.com/crownjudge/pageant/go/internal/models"

// CreateEventRequest carries the fields needed to create an event
type CreateEventRequest struct {
	Name            string  `json:"name"`
	EventType       string  `json:"event_type"`
	Description     string  `json:"description"`
	Weight          float64 `json:"weight"`
	IsMandatory     bool    `json:"is_mandatory"`
	BonusPercentage float64 `json:"bonus_percentage"`
}

// UpdateEventRequest carries the fields of an event update
type UpdateEventRequest struct {
	Name            string             `json:"name"`
	EventType       string             `json:"event_type"`
	Description     string             `json:"description"`
	Status          models.EventStatus `json:"status"`
	Weight          float64            `json:"weight"`
	IsMandatory     bool               `json:"is_mandatory"`
	BonusPercentage float64            `json:"bonus_percentage"`
}
