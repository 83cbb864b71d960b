package scores

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/models"
)

type fakeScoresRepo struct {
	upserted []SubmitScoreRequest
}

func (r *fakeScoresRepo) UpsertScore(ctx context.Context, judgeID uuid.UUID, req SubmitScoreRequest) (*models.JudgeScore, error) {
	r.upserted = append(r.upserted, req)
	return &models.JudgeScore{
		ID:          uuid.New(),
		JudgeID:     judgeID,
		CandidateID: req.CandidateID,
		EventID:     req.EventID,
		Score:       req.Score,
	}, nil
}

func (r *fakeScoresRepo) ScoresByJudge(ctx context.Context, judgeID uuid.UUID) ([]models.JudgeScore, error) {
	return nil, nil
}

func (r *fakeScoresRepo) ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]models.JudgeScore, error) {
	return nil, nil
}

func (r *fakeScoresRepo) VotingStatus(ctx context.Context) ([]JudgeVotingStatus, error) {
	return nil, nil
}

func (r *fakeScoresRepo) ResetAll(ctx context.Context) error { return nil }

type fakeEventGetter struct {
	event *models.Event
}

func (g *fakeEventGetter) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return g.event, nil
}

type fakeBroadcaster struct {
	types []push.Type
}

func (b *fakeBroadcaster) Broadcast(ctx context.Context, t push.Type, room string, payload interface{}) error {
	b.types = append(b.types, t)
	return nil
}

func TestSubmitScoreValidation(t *testing.T) {
	activeEvent := &models.Event{ID: uuid.New(), Name: "Talent", IsActive: true}

	tests := []struct {
		name    string
		score   float64
		event   *models.Event
		wantErr string
	}{
		{"valid whole", 8, activeEvent, ""},
		{"valid one decimal", 7.5, activeEvent, ""},
		{"too low", -1, activeEvent, "between 0 and 10"},
		{"too high", 10.5, activeEvent, "between 0 and 10"},
		{"two decimals", 7.55, activeEvent, "one decimal"},
		{"inactive event", 8, &models.Event{ID: activeEvent.ID, Name: "Talent", IsActive: false}, "not open for scoring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeScoresRepo{}
			app := NewApp(repo, &fakeEventGetter{event: tt.event}, &fakeBroadcaster{})

			_, err := app.SubmitScore(context.Background(), uuid.New(), SubmitScoreRequest{
				EventID:     tt.event.ID,
				CandidateID: uuid.New(),
				Score:       tt.score,
			})

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("SubmitScore: %v", err)
				}
				if len(repo.upserted) != 1 {
					t.Errorf("upserted %d scores, want 1", len(repo.upserted))
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("SubmitScore = %v, want error containing %q", err, tt.wantErr)
			}
			if len(repo.upserted) != 0 {
				t.Errorf("rejected score reached the repository: %+v", repo.upserted)
			}
		})
	}
}

func TestSubmitScoreBroadcastsUpdate(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	app := NewApp(&fakeScoresRepo{}, &fakeEventGetter{
		event: &models.Event{ID: uuid.New(), Name: "Talent", IsActive: true},
	}, broadcaster)

	_, err := app.SubmitScore(context.Background(), uuid.New(), SubmitScoreRequest{
		EventID:     uuid.New(),
		CandidateID: uuid.New(),
		Score:       9,
	})
	if err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	if len(broadcaster.types) != 1 || broadcaster.types[0] != push.TypeScoreUpdate {
		t.Errorf("broadcasts = %v, want single score_update", broadcaster.types)
	}
}

func TestResetAllBroadcastsSystemNotification(t *testing.T) {
	broadcaster := &fakeBroadcaster{}
	app := NewApp(&fakeScoresRepo{}, &fakeEventGetter{}, broadcaster)

	if err := app.ResetAll(context.Background()); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if len(broadcaster.types) != 1 || broadcaster.types[0] != push.TypeSystemNotification {
		t.Errorf("broadcasts = %v, want single system_notification", broadcaster.types)
	}
}
