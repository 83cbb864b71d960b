package scores

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

// ScoresRepository defines what the app layer needs from the repository
type ScoresRepository interface {
	UpsertScore(ctx context.Context, judgeID uuid.UUID, req SubmitScoreRequest) (*models.JudgeScore, error)
	ScoresByJudge(ctx context.Context, judgeID uuid.UUID) ([]models.JudgeScore, error)
	ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]models.JudgeScore, error)
	VotingStatus(ctx context.Context) ([]JudgeVotingStatus, error)
	ResetAll(ctx context.Context) error
}

// EventGetter resolves events so score submissions can be gated on the
// event's is_active flag.
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Broadcaster defines what the app layer needs from the realtime fanout
type Broadcaster interface {
	Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error
}

// App handles judge score business logic
type App struct {
	repo        ScoresRepository
	events      EventGetter
	broadcaster Broadcaster
}

// NewApp creates a new scores App
func NewApp(repo ScoresRepository, events EventGetter, broadcaster Broadcaster) *App {
	return &App{
		repo:        repo,
		events:      events,
		broadcaster: broadcaster,
	}
}

// SubmitScore validates and persists one judge score. Scores run 0-10
// with at most one decimal, and the event must currently be active.
func (a *App) SubmitScore(ctx context.Context, judgeID uuid.UUID, req SubmitScoreRequest) (*models.JudgeScore, error) {
	if err := validateScore(req.Score); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ev, err := a.events.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}
	if !ev.IsActive {
		return nil, fmt.Errorf("event %q is not open for scoring", ev.Name)
	}

	score, err := a.repo.UpsertScore(ctx, judgeID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit score: %w", err)
	}

	a.broadcastScoreUpdate(ctx, score)
	log.Printf("Judge %s scored candidate %s: %.1f (%s)", judgeID, req.CandidateID, req.Score, ev.Name)
	return score, nil
}

// MyScores returns every score the judge has submitted so far
func (a *App) MyScores(ctx context.Context, judgeID uuid.UUID) ([]models.JudgeScore, error) {
	scores, err := a.repo.ScoresByJudge(ctx, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get judge scores: %w", err)
	}
	return scores, nil
}

// ScoresByEvent returns all scores submitted for one event
func (a *App) ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]models.JudgeScore, error) {
	scores, err := a.repo.ScoresByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event scores: %w", err)
	}
	return scores, nil
}

// VotingStatus returns the notary's per-judge completion matrix
func (a *App) VotingStatus(ctx context.Context) ([]JudgeVotingStatus, error) {
	statuses, err := a.repo.VotingStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get voting status: %w", err)
	}
	return statuses, nil
}

// ResetAll wipes every score, public vote and tie-breaker round and
// broadcasts a system notification so consoles refresh.
func (a *App) ResetAll(ctx context.Context) error {
	if err := a.repo.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to reset votes: %w", err)
	}

	err := a.broadcaster.Broadcast(ctx, push.TypeSystemNotification, "", push.SystemNotificationPayload{
		Level:   "warning",
		Message: "All votes have been reset by an administrator",
	})
	if err != nil {
		log.Printf("Failed to broadcast vote reset: %v", err)
	}

	log.Printf("All votes reset")
	return nil
}

func (a *App) broadcastScoreUpdate(ctx context.Context, score *models.JudgeScore) {
	err := a.broadcaster.Broadcast(ctx, push.TypeScoreUpdate, "", push.ScoreUpdatePayload{
		Score: *score,
	})
	if err != nil {
		log.Printf("Failed to broadcast score update for %s: %v", score.ID, err)
	}
}

func validateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("score must be a finite number")
	}
	if score < 0 || score > 10 {
		return fmt.Errorf("score must be between 0 and 10")
	}
	if math.Abs(score*10-math.Round(score*10)) > 1e-9 {
		return fmt.Errorf("score must have at most one decimal place")
	}
	return nil
}
