package events

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

// EventsRepository defines what the app layer needs from the repository
type EventsRepository interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error)
	SetEventActive(ctx context.Context, id uuid.UUID, isActive bool) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

// Broadcaster defines what the app layer needs from the realtime fanout
type Broadcaster interface {
	Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error
}

// App handles event business logic
type App struct {
	repo        EventsRepository
	broadcaster Broadcaster
}

// NewApp creates a new events App
func NewApp(repo EventsRepository, broadcaster Broadcaster) *App {
	return &App{
		repo:        repo,
		broadcaster: broadcaster,
	}
}

// CreateEvent creates a new event with validation
func (a *App) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if err := a.validateCreateEventRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ev, err := a.repo.CreateEvent(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Printf("Created event: %s (%s)", ev.Name, ev.EventType)
	return ev, nil
}

// GetEvent retrieves an event by ID
func (a *App) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	ev, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

// ListEvents retrieves all events
func (a *App) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := a.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEvent updates an existing event and notifies connected clients
func (a *App) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name cannot be empty")
	}
	if req.Weight < 0 || req.Weight > 100 {
		return nil, fmt.Errorf("validation failed: weight must be between 0 and 100")
	}

	ev, err := a.repo.UpdateEvent(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	a.broadcastEventUpdated(ctx, ev, "")
	log.Printf("Updated event: %s", ev.Name)
	return ev, nil
}

// SetEventActive toggles whether the event accepts judge scores. The
// full event snapshot is broadcast so judge consoles can re-derive
// eligibility without a refetch.
func (a *App) SetEventActive(ctx context.Context, id uuid.UUID, isActive bool) (*models.Event, error) {
	ev, err := a.repo.SetEventActive(ctx, id, isActive)
	if err != nil {
		return nil, fmt.Errorf("failed to set event active: %w", err)
	}

	msg := fmt.Sprintf("Event %q is now closed for scoring", ev.Name)
	if isActive {
		msg = fmt.Sprintf("Event %q is now open for scoring", ev.Name)
	}
	a.broadcastEventUpdated(ctx, ev, msg)

	log.Printf("Event %s active=%v", ev.Name, isActive)
	return ev, nil
}

// DeleteEvent deletes an event by ID
func (a *App) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	ev, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("event not found: %w", err)
	}

	if err := a.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	log.Printf("Deleted event: %s", ev.Name)
	return nil
}

func (a *App) broadcastEventUpdated(ctx context.Context, ev *models.Event, msg string) {
	err := a.broadcaster.Broadcast(ctx, push.TypeEventUpdated, "", push.EventUpdatedPayload{
		Event:   *ev,
		Message: msg,
	})
	if err != nil {
		// Fanout failures must not fail the write; clients recover on
		// their next fetch.
		log.Printf("Failed to broadcast event update for %s: %v", ev.ID, err)
	}
}

func (a *App) validateCreateEventRequest(req CreateEventRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Weight < 0 || req.Weight > 100 {
		return fmt.Errorf("weight must be between 0 and 100")
	}
	if req.BonusPercentage < 0 || req.BonusPercentage > 100 {
		return fmt.Errorf("bonus_percentage must be between 0 and 100")
	}
	return nil
}
