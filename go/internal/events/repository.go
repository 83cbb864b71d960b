package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Repository implements event data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new events repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, name, event_type, description, status, weight, is_mandatory, bonus_percentage, is_active, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	err := row.Scan(&ev.ID, &ev.Name, &ev.EventType, &ev.Description, &ev.Status,
		&ev.Weight, &ev.IsMandatory, &ev.BonusPercentage, &ev.IsActive, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// CreateEvent inserts a new event
func (r *Repository) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (id, name, event_type, description, status, weight, is_mandatory, bonus_percentage, is_active)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, false)
		RETURNING `+eventColumns,
		uuid.New(), req.Name, req.EventType, req.Description, req.Weight, req.IsMandatory, req.BonusPercentage)

	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return ev, nil
}

// GetEvent retrieves an event by ID
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

// ListEvents retrieves all events in creation order
func (r *Repository) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

// UpdateEvent updates an existing event
func (r *Repository) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*models.Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE events
		SET name = $2, event_type = $3, description = $4, status = $5, weight = $6,
		    is_mandatory = $7, bonus_percentage = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns,
		id, req.Name, req.EventType, req.Description, req.Status, req.Weight, req.IsMandatory, req.BonusPercentage)

	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return ev, nil
}

// SetEventActive flips the scoring eligibility flag
func (r *Repository) SetEventActive(ctx context.Context, id uuid.UUID, isActive bool) (*models.Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE events
		SET is_active = $2,
		    status = CASE WHEN $2 THEN 'active' ELSE 'closed' END,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+eventColumns,
		id, isActive)

	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to set event active: %w", err)
	}
	return ev, nil
}

// DeleteEvent deletes an event by ID
func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
