package tiebreak

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

// TiebreakRepository defines what the app layer needs from the repository
type TiebreakRepository interface {
	CreateSession(ctx context.Context, req ActivateRequest, activatedBy string) (*models.TieBreakerSession, error)
	ActiveSession(ctx context.Context) (*models.TieBreakerSession, error)
	HasJudgeVoted(ctx context.Context, sessionID, judgeID uuid.UUID) (bool, error)
	RecordVotes(ctx context.Context, sessionID, judgeID uuid.UUID, votes []models.TieBreakerVote) error
	CountVotedJudges(ctx context.Context, sessionID uuid.UUID) (int, error)
	CompleteSession(ctx context.Context, sessionID uuid.UUID) (string, float64, error)
	ClearAll(ctx context.Context) error
	DetectTies(ctx context.Context) ([]TieGroup, error)
}

// JudgeCounter reports how many judges must vote before a round resolves
type JudgeCounter interface {
	ListJudges(ctx context.Context) ([]models.User, error)
}

// Broadcaster defines what the app layer needs from the realtime fanout
type Broadcaster interface {
	Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error
}

// App handles tie-breaker round business logic
type App struct {
	repo        TiebreakRepository
	judges      JudgeCounter
	broadcaster Broadcaster
}

// NewApp creates a new tiebreak App
func NewApp(repo TiebreakRepository, judges JudgeCounter, broadcaster Broadcaster) *App {
	return &App{
		repo:        repo,
		judges:      judges,
		broadcaster: broadcaster,
	}
}

// Activate starts a tie-breaker round for a tied candidate group. Only
// one round runs at a time.
func (a *App) Activate(ctx context.Context, req ActivateRequest, activatedBy string) (*models.TieBreakerSession, error) {
	if len(req.CandidateIDs) < 2 {
		return nil, fmt.Errorf("validation failed: a tiebreaker needs at least two candidates")
	}
	if req.Position < 1 || req.Position > 3 {
		return nil, fmt.Errorf("validation failed: position must be 1, 2 or 3")
	}

	if _, err := a.repo.ActiveSession(ctx); err == nil {
		return nil, fmt.Errorf("a tiebreaker session is already active")
	} else if !errors.Is(err, ErrNoActiveSession) {
		return nil, fmt.Errorf("failed to check active session: %w", err)
	}

	session, err := a.repo.CreateSession(ctx, req, activatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to activate tiebreaker: %w", err)
	}

	err = a.broadcaster.Broadcast(ctx, push.TypeTiebreakerActivated, "", push.TiebreakerActivatedPayload{
		Tiebreaker: *session,
		Message:    fmt.Sprintf("Tiebreaker activated for position %d", session.Position),
	})
	if err != nil {
		log.Printf("Failed to broadcast tiebreaker activation %s: %v", session.ID, err)
	}

	log.Printf("Activated tiebreaker %s at position %d with %d candidates", session.ID, session.Position, len(session.Candidates))
	return session, nil
}

// CurrentForJudge returns the active session annotated with whether the
// judge has already voted. A nil session means no round is running.
func (a *App) CurrentForJudge(ctx context.Context, judgeID uuid.UUID) (*models.TieBreakerSession, error) {
	session, err := a.repo.ActiveSession(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current tiebreaker: %w", err)
	}

	voted, err := a.repo.HasJudgeVoted(ctx, session.ID, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vote state: %w", err)
	}
	session.HasVoted = voted
	return session, nil
}

// SubmitVotes records one judge's full vote batch. When the last judge
// votes the round completes and the winner is broadcast.
func (a *App) SubmitVotes(ctx context.Context, judgeID uuid.UUID, votes []models.TieBreakerVote) (*models.TieBreakerVoteResult, error) {
	session, err := a.repo.ActiveSession(ctx)
	if errors.Is(err, ErrNoActiveSession) {
		return nil, fmt.Errorf("no active tiebreaker session")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	if err := a.validateVotes(session, votes); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	voted, err := a.repo.HasJudgeVoted(ctx, session.ID, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check vote state: %w", err)
	}
	if voted {
		return nil, fmt.Errorf("judge has already voted in this tiebreaker")
	}

	if err := a.repo.RecordVotes(ctx, session.ID, judgeID, votes); err != nil {
		return nil, fmt.Errorf("failed to record votes: %w", err)
	}

	votedCount, err := a.repo.CountVotedJudges(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count voted judges: %w", err)
	}
	judges, err := a.judges.ListJudges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count judges: %w", err)
	}

	allVoted := len(judges) > 0 && votedCount >= len(judges)
	if allVoted {
		a.completeSession(ctx, session.ID)
	}

	log.Printf("Judge %s voted in tiebreaker %s (%d/%d)", judgeID, session.ID, votedCount, len(judges))
	return &models.TieBreakerVoteResult{
		VotesSubmitted: len(votes),
		AllJudgesVoted: allVoted,
	}, nil
}

// ClearAll cancels any running round and notifies all consoles
func (a *App) ClearAll(ctx context.Context) error {
	if err := a.repo.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear tiebreakers: %w", err)
	}

	err := a.broadcaster.Broadcast(ctx, push.TypeTiebreakerCleared, "", push.TiebreakerClearedPayload{
		Message: "All tiebreakers have been cleared",
	})
	if err != nil {
		log.Printf("Failed to broadcast tiebreaker clear: %v", err)
	}

	log.Printf("Cleared tiebreaker sessions")
	return nil
}

// DetectTies returns the tied candidate groups at positions 1 through 3
func (a *App) DetectTies(ctx context.Context) ([]TieGroup, error) {
	groups, err := a.repo.DetectTies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect ties: %w", err)
	}
	return groups, nil
}

func (a *App) completeSession(ctx context.Context, sessionID uuid.UUID) {
	winnerName, winnerAvg, err := a.repo.CompleteSession(ctx, sessionID)
	if err != nil {
		log.Printf("Failed to complete tiebreaker %s: %v", sessionID, err)
		return
	}

	payload := push.TiebreakerCompletedPayload{
		TiebreakerID: sessionID.String(),
		Message:      "All judges have voted",
	}
	if winnerName != "" {
		payload.Winner = &push.TiebreakerWinner{
			CandidateName: winnerName,
			AverageScore:  winnerAvg,
		}
	}
	if err := a.broadcaster.Broadcast(ctx, push.TypeTiebreakerCompleted, "", payload); err != nil {
		log.Printf("Failed to broadcast tiebreaker completion %s: %v", sessionID, err)
	}

	log.Printf("Completed tiebreaker %s, winner %s (%.2f)", sessionID, winnerName, winnerAvg)
}

func (a *App) validateVotes(session *models.TieBreakerSession, votes []models.TieBreakerVote) error {
	members := make(map[uuid.UUID]bool, len(session.Candidates))
	for _, c := range session.Candidates {
		members[c.ID] = true
	}

	if len(votes) != len(session.Candidates) {
		return fmt.Errorf("expected %d votes, got %d", len(session.Candidates), len(votes))
	}

	seen := make(map[uuid.UUID]bool, len(votes))
	maxScore := 10 + bonusForPosition(session.Position)
	for _, vote := range votes {
		if !members[vote.CandidateID] {
			return fmt.Errorf("candidate %s is not part of this tiebreaker", vote.CandidateID)
		}
		if seen[vote.CandidateID] {
			return fmt.Errorf("duplicate vote for candidate %s", vote.CandidateID)
		}
		seen[vote.CandidateID] = true
		if math.IsNaN(vote.Score) || vote.Score <= 0 || vote.Score > maxScore {
			return fmt.Errorf("score %.2f for candidate %s is out of range", vote.Score, vote.CandidateID)
		}
	}
	return nil
}

func bonusForPosition(position int) float64 {
	switch position {
	case 1:
		return 5
	case 2:
		return 3
	case 3:
		return 1
	default:
		return 0
	}
}
