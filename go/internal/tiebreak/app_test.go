package tiebreak

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

type fakeTiebreakRepo struct {
	active      *models.TieBreakerSession
	voted       map[uuid.UUID]bool
	votedCount  int
	recorded    [][]models.TieBreakerVote
	completed   []uuid.UUID
	winnerName  string
	winnerScore float64
}

func (r *fakeTiebreakRepo) CreateSession(ctx context.Context, req ActivateRequest, activatedBy string) (*models.TieBreakerSession, error) {
	session := &models.TieBreakerSession{
		ID:          uuid.New(),
		Position:    req.Position,
		Status:      models.TieBreakerStatusActive,
		ActivatedBy: activatedBy,
	}
	for _, id := range req.CandidateIDs {
		session.Candidates = append(session.Candidates, models.TieBreakerCandidate{ID: id, Name: id.String()[:8]})
	}
	r.active = session
	return session, nil
}

func (r *fakeTiebreakRepo) ActiveSession(ctx context.Context) (*models.TieBreakerSession, error) {
	if r.active == nil {
		return nil, ErrNoActiveSession
	}
	snapshot := *r.active
	return &snapshot, nil
}

func (r *fakeTiebreakRepo) HasJudgeVoted(ctx context.Context, sessionID, judgeID uuid.UUID) (bool, error) {
	return r.voted[judgeID], nil
}

func (r *fakeTiebreakRepo) RecordVotes(ctx context.Context, sessionID, judgeID uuid.UUID, votes []models.TieBreakerVote) error {
	if r.voted == nil {
		r.voted = make(map[uuid.UUID]bool)
	}
	r.voted[judgeID] = true
	r.votedCount++
	r.recorded = append(r.recorded, votes)
	return nil
}

func (r *fakeTiebreakRepo) CountVotedJudges(ctx context.Context, sessionID uuid.UUID) (int, error) {
	return r.votedCount, nil
}

func (r *fakeTiebreakRepo) CompleteSession(ctx context.Context, sessionID uuid.UUID) (string, float64, error) {
	r.completed = append(r.completed, sessionID)
	r.active = nil
	return r.winnerName, r.winnerScore, nil
}

func (r *fakeTiebreakRepo) ClearAll(ctx context.Context) error {
	r.active = nil
	return nil
}

func (r *fakeTiebreakRepo) DetectTies(ctx context.Context) ([]TieGroup, error) {
	return nil, nil
}

type fakeJudgeCounter struct {
	judges int
}

func (c *fakeJudgeCounter) ListJudges(ctx context.Context) ([]models.User, error) {
	out := make([]models.User, c.judges)
	for i := range out {
		out[i] = models.User{ID: uuid.New(), Role: models.UserRoleJudge}
	}
	return out, nil
}

type fakeBroadcaster struct {
	types []push.Type
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error {
	b.types = append(b.types, t)
	return nil
}

func sessionVotes(session *models.TieBreakerSession, score float64) []models.TieBreakerVote {
	votes := make([]models.TieBreakerVote, 0, len(session.Candidates))
	for _, c := range session.Candidates {
		votes = append(votes, models.TieBreakerVote{CandidateID: c.ID, Score: score})
	}
	return votes
}

func TestActivateBroadcastsAndRejectsSecondSession(t *testing.T) {
	repo := &fakeTiebreakRepo{}
	broadcaster := &fakeBroadcaster{}
	app := NewApp(repo, &fakeJudgeCounter{judges: 2}, broadcaster)

	req := ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Position:     1,
	}
	session, err := app.Activate(context.Background(), req, "Head Admin")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if session.Position != 1 || len(session.Candidates) != 2 {
		t.Errorf("session = %+v", session)
	}
	if len(broadcaster.types) != 1 || broadcaster.types[0] != push.TypeTiebreakerActivated {
		t.Errorf("broadcasts = %v, want tiebreaker_activated", broadcaster.types)
	}

	if _, err := app.Activate(context.Background(), req, "Head Admin"); err == nil {
		t.Error("second Activate succeeded, want already-active rejection")
	}
}

func TestActivateValidation(t *testing.T) {
	app := NewApp(&fakeTiebreakRepo{}, &fakeJudgeCounter{judges: 1}, &fakeBroadcaster{})

	_, err := app.Activate(context.Background(), ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New()},
		Position:     1,
	}, "admin")
	if err == nil || !strings.Contains(err.Error(), "two candidates") {
		t.Errorf("Activate with one candidate = %v", err)
	}

	_, err = app.Activate(context.Background(), ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Position:     4,
	}, "admin")
	if err == nil || !strings.Contains(err.Error(), "position") {
		t.Errorf("Activate with position 4 = %v", err)
	}
}

func TestSubmitVotesResolvesWhenLastJudgeVotes(t *testing.T) {
	repo := &fakeTiebreakRepo{winnerName: "Alice", winnerScore: 12.5}
	broadcaster := &fakeBroadcaster{}
	app := NewApp(repo, &fakeJudgeCounter{judges: 2}, broadcaster)

	session, err := app.Activate(context.Background(), ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Position:     2,
	}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	broadcaster.types = nil

	result, err := app.SubmitVotes(context.Background(), uuid.New(), sessionVotes(session, 10))
	if err != nil {
		t.Fatalf("first SubmitVotes: %v", err)
	}
	if result.AllJudgesVoted {
		t.Error("first of two judges should not resolve the round")
	}
	if len(broadcaster.types) != 0 {
		t.Errorf("unexpected broadcasts after first vote: %v", broadcaster.types)
	}

	result, err = app.SubmitVotes(context.Background(), uuid.New(), sessionVotes(session, 11))
	if err != nil {
		t.Fatalf("second SubmitVotes: %v", err)
	}
	if !result.AllJudgesVoted {
		t.Error("second of two judges should resolve the round")
	}
	if len(repo.completed) != 1 {
		t.Errorf("completed sessions = %v, want exactly one", repo.completed)
	}
	if len(broadcaster.types) != 1 || broadcaster.types[0] != push.TypeTiebreakerCompleted {
		t.Errorf("broadcasts = %v, want tiebreaker_completed", broadcaster.types)
	}
}

func TestSubmitVotesRejectsDoubleVote(t *testing.T) {
	repo := &fakeTiebreakRepo{}
	app := NewApp(repo, &fakeJudgeCounter{judges: 3}, &fakeBroadcaster{})

	session, err := app.Activate(context.Background(), ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Position:     3,
	}, "admin")
	if err != nil {
		t.Fatal(err)
	}

	judgeID := uuid.New()
	if _, err := app.SubmitVotes(context.Background(), judgeID, sessionVotes(session, 9)); err != nil {
		t.Fatalf("SubmitVotes: %v", err)
	}
	if _, err := app.SubmitVotes(context.Background(), judgeID, sessionVotes(session, 9)); err == nil {
		t.Error("second SubmitVotes from same judge succeeded, want rejection")
	}
}

func TestSubmitVotesValidatesBatch(t *testing.T) {
	repo := &fakeTiebreakRepo{}
	app := NewApp(repo, &fakeJudgeCounter{judges: 1}, &fakeBroadcaster{})

	session, err := app.Activate(context.Background(), ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Position:     1,
	}, "admin")
	if err != nil {
		t.Fatal(err)
	}

	// Incomplete batch.
	_, err = app.SubmitVotes(context.Background(), uuid.New(), sessionVotes(session, 9)[:1])
	if err == nil || !strings.Contains(err.Error(), "expected 2 votes") {
		t.Errorf("incomplete batch = %v", err)
	}

	// Outsider candidate.
	outsider := sessionVotes(session, 9)
	outsider[0].CandidateID = uuid.New()
	if _, err := app.SubmitVotes(context.Background(), uuid.New(), outsider); err == nil {
		t.Error("batch with outsider candidate succeeded, want rejection")
	}

	// Score above position-1 ceiling (10 raw + 5 bonus).
	tooHigh := sessionVotes(session, 15.5)
	if _, err := app.SubmitVotes(context.Background(), uuid.New(), tooHigh); err == nil {
		t.Error("batch with score above ceiling succeeded, want rejection")
	}
}

func TestCurrentForJudgeAnnotatesHasVoted(t *testing.T) {
	repo := &fakeTiebreakRepo{}
	app := NewApp(repo, &fakeJudgeCounter{judges: 2}, &fakeBroadcaster{})

	// No round running.
	session, err := app.CurrentForJudge(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("CurrentForJudge: %v", err)
	}
	if session != nil {
		t.Errorf("session = %+v, want nil with no active round", session)
	}

	created, err := app.Activate(context.Background(), ActivateRequest{
		CandidateIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Position:     1,
	}, "admin")
	if err != nil {
		t.Fatal(err)
	}

	judgeID := uuid.New()
	session, err = app.CurrentForJudge(context.Background(), judgeID)
	if err != nil {
		t.Fatal(err)
	}
	if session == nil || session.HasVoted {
		t.Errorf("session = %+v, want active round not yet voted", session)
	}

	if _, err := app.SubmitVotes(context.Background(), judgeID, sessionVotes(created, 8)); err != nil {
		t.Fatal(err)
	}
	session, err = app.CurrentForJudge(context.Background(), judgeID)
	if err != nil {
		t.Fatal(err)
	}
	if session == nil || !session.HasVoted {
		t.Errorf("session = %+v, want HasVoted after voting", session)
	}
}

func TestClearAllBroadcasts(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	app := NewApp(&fakeTiebreakRepo{}, &fakeJudgeCounter{judges: 1}, broadcaster)

	if err := app.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(broadcaster.types) != 1 || broadcaster.types[0] != push.TypeTiebreakerCleared {
		t.Errorf("broadcasts = %v, want tiebreaker_cleared", broadcaster.types)
	}
}
