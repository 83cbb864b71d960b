package candidates

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

// CandidatesRepository defines what the app layer needs from the repository
type CandidatesRepository interface {
	CreateCandidate(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error)
	GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	UpdateCandidate(ctx context.Context, id uuid.UUID, req UpdateCandidateRequest) (*models.Candidate, error)
	DeleteCandidate(ctx context.Context, id uuid.UUID) error
	EventResults(ctx context.Context, eventID uuid.UUID) ([]models.CandidateResult, error)
}

// Broadcaster defines what the app layer needs from the realtime fanout
type Broadcaster interface {
	Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error
}

// App handles candidate business logic
type App struct {
	repo        CandidatesRepository
	broadcaster Broadcaster
}

// NewApp creates a new candidates App
func NewApp(repo CandidatesRepository, broadcaster Broadcaster) *App {
	return &App{
		repo:        repo,
		broadcaster: broadcaster,
	}
}

// CreateCandidate registers a new candidate with validation
func (a *App) CreateCandidate(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name is required")
	}

	c, err := a.repo.CreateCandidate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}

	a.broadcastCandidateUpdate(ctx, c)
	log.Printf("Created candidate: %s (%s)", c.Name, c.Department)
	return c, nil
}

// GetCandidate retrieves a candidate by ID
func (a *App) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	c, err := a.repo.GetCandidate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates retrieves the active candidate roster
func (a *App) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	candidates, err := a.repo.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// UpdateCandidate updates an existing candidate and notifies connected clients
func (a *App) UpdateCandidate(ctx context.Context, id uuid.UUID, req UpdateCandidateRequest) (*models.Candidate, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("validation failed: name cannot be empty")
	}

	c, err := a.repo.UpdateCandidate(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}

	a.broadcastCandidateUpdate(ctx, c)
	log.Printf("Updated candidate: %s", c.Name)
	return c, nil
}

// DeleteCandidate deletes a candidate by ID
func (a *App) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	c, err := a.repo.GetCandidate(ctx, id)
	if err != nil {
		return fmt.Errorf("candidate not found: %w", err)
	}

	if err := a.repo.DeleteCandidate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}

	log.Printf("Deleted candidate: %s", c.Name)
	return nil
}

// EventResults returns the per-candidate standings for one event
func (a *App) EventResults(ctx context.Context, eventID uuid.UUID) ([]models.CandidateResult, error) {
	results, err := a.repo.EventResults(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event results: %w", err)
	}
	return results, nil
}

func (a *App) broadcastCandidateUpdate(ctx context.Context, c *models.Candidate) {
	err := a.broadcaster.Broadcast(ctx, push.TypeCandidateUpdate, "", push.CandidateUpdatePayload{
		Candidate: *c,
	})
	if err != nil {
		log.Printf("Failed to broadcast candidate update for %s: %v", c.ID, err)
	}
}
