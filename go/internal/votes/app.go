package votes

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

// CastVoteRequest is one public audience vote
type CastVoteRequest struct {
	CandidateID  uuid.UUID `json:"candidateId"`
	VoterSession string    `json:"voterSession"`
}

// VotesRepository defines what the app layer needs from the repository
type VotesRepository interface {
	CreateVote(ctx context.Context, candidateID uuid.UUID, voterSession, voterIP string) (*models.PublicVote, error)
	CountByCandidate(ctx context.Context, candidateID uuid.UUID) (int, error)
	Counts(ctx context.Context) (map[uuid.UUID]int, error)
}

// CandidateGetter resolves candidates so votes can be gated on roster
// membership.
type CandidateGetter interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error)
}

// Broadcaster defines what the app layer needs from the realtime fanout
type Broadcaster interface {
	Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error
}

// App handles public vote business logic
type App struct {
	repo        VotesRepository
	candidates  CandidateGetter
	broadcaster Broadcaster
}

// NewApp creates a new votes App
func NewApp(repo VotesRepository, candidates CandidateGetter, broadcaster Broadcaster) *App {
	return &App{
		repo:        repo,
		candidates:  candidates,
		broadcaster: broadcaster,
	}
}

// CastVote records one audience vote and broadcasts the new total
func (a *App) CastVote(ctx context.Context, req CastVoteRequest, voterIP string) (*models.PublicVote, error) {
	if req.VoterSession == "" {
		return nil, fmt.Errorf("validation failed: voter session is required")
	}

	candidate, err := a.candidates.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		return nil, fmt.Errorf("candidate not found: %w", err)
	}
	if !candidate.IsActive {
		return nil, fmt.Errorf("candidate %q is not accepting votes", candidate.Name)
	}

	vote, err := a.repo.CreateVote(ctx, req.CandidateID, req.VoterSession, voterIP)
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	total, err := a.repo.CountByCandidate(ctx, req.CandidateID)
	if err != nil {
		log.Printf("Failed to count votes for %s: %v", req.CandidateID, err)
		total = 0
	}

	err = a.broadcaster.Broadcast(ctx, push.TypeVoteUpdate, "", push.VoteUpdatePayload{
		CandidateID: req.CandidateID.String(),
		TotalVotes:  total,
	})
	if err != nil {
		log.Printf("Failed to broadcast vote update for %s: %v", req.CandidateID, err)
	}

	log.Printf("Public vote for %s (total %d)", candidate.Name, total)
	return vote, nil
}

// VoteCounts returns the per-candidate public vote totals
func (a *App) VoteCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	counts, err := a.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote counts: %w", err)
	}
	return counts, nil
}
