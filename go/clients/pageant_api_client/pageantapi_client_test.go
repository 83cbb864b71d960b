package pageant_api_client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/models"
)

func TestSubmitScoreSendsBearerAndPayload(t *testing.T) {
	eventID := uuid.New()
	candidateID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scores" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req SubmitScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.EventID != eventID || req.CandidateID != candidateID || req.Score != 8.5 {
			t.Errorf("request = %+v, want submitted score fields", req)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": models.JudgeScore{
				ID:          uuid.New(),
				EventID:     req.EventID,
				CandidateID: req.CandidateID,
				Score:       req.Score,
			},
		})
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")
	score, err := client.SubmitScore(context.Background(), eventID, candidateID, 8.5)
	if err != nil {
		t.Fatalf("SubmitScore: %v", err)
	}
	if score.Score != 8.5 || score.EventID != eventID {
		t.Errorf("persisted score = %+v, want echo of submission", score)
	}
}

func TestSubmitScoreSurfacesEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "event \"Talent\" is not open for scoring",
		})
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")
	_, err := client.SubmitScore(context.Background(), uuid.New(), uuid.New(), 5)
	if err == nil {
		t.Fatal("SubmitScore succeeded, want envelope error")
	}
}

func TestMyScores(t *testing.T) {
	want := []models.JudgeScore{
		{ID: uuid.New(), EventID: uuid.New(), CandidateID: uuid.New(), Score: 7},
		{ID: uuid.New(), EventID: uuid.New(), CandidateID: uuid.New(), Score: 9.5},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scores/my-scores" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": want})
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")
	scores, err := client.MyScores(context.Background())
	if err != nil {
		t.Fatalf("MyScores: %v", err)
	}
	if len(scores) != 2 || scores[1].Score != 9.5 {
		t.Errorf("scores = %+v, want 2 persisted scores", scores)
	}
}

func TestCurrentTiebreaker(t *testing.T) {
	session := models.TieBreakerSession{
		ID:       uuid.New(),
		Position: 2,
		Status:   models.TieBreakerStatusActive,
		Candidates: []models.TieBreakerCandidate{
			{ID: uuid.New(), Name: "Alice"},
			{ID: uuid.New(), Name: "Bea"},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/judge/tiebreaker/current" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": CurrentTiebreakerResponse{
				HasActiveTiebreaker: true,
				Tiebreaker:          &session,
			},
		})
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")
	resp, err := client.CurrentTiebreaker(context.Background())
	if err != nil {
		t.Fatalf("CurrentTiebreaker: %v", err)
	}
	if !resp.HasActiveTiebreaker || resp.Tiebreaker == nil || resp.Tiebreaker.ID != session.ID {
		t.Errorf("response = %+v, want active session", resp)
	}
}

func TestSubmitTiebreakerVotes(t *testing.T) {
	votes := []models.TieBreakerVote{
		{CandidateID: uuid.New(), Score: 13.5},
		{CandidateID: uuid.New(), Score: 12.0},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/judge/tiebreaker/vote" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req struct {
			TiebreakerVotes []models.TieBreakerVote `json:"tiebreakerVotes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.TiebreakerVotes) != 2 || req.TiebreakerVotes[0].Score != 13.5 {
			t.Errorf("request votes = %+v, want submitted batch", req.TiebreakerVotes)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    models.TieBreakerVoteResult{VotesSubmitted: 2, AllJudgesVoted: true},
		})
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")
	result, err := client.SubmitTiebreakerVotes(context.Background(), votes)
	if err != nil {
		t.Fatalf("SubmitTiebreakerVotes: %v", err)
	}
	if result.VotesSubmitted != 2 || !result.AllJudgesVoted {
		t.Errorf("result = %+v, want acknowledged batch", result)
	}
}

func TestPublicVotes(t *testing.T) {
	candidateID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/votes" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPost:
			var req CastVoteRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.CandidateID != candidateID || req.VoterSession != "session-1" {
				t.Errorf("request = %+v, want cast vote fields", req)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data": models.PublicVote{
					ID:           uuid.New(),
					CandidateID:  req.CandidateID,
					VoterSession: req.VoterSession,
				},
			})
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    map[uuid.UUID]int{candidateID: 3},
			})
		default:
			t.Errorf("unexpected method: %s", r.Method)
		}
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")

	vote, err := client.CastVote(context.Background(), candidateID, "session-1")
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if vote.CandidateID != candidateID {
		t.Errorf("vote = %+v, want echo of cast vote", vote)
	}

	counts, err := client.VoteCounts(context.Background())
	if err != nil {
		t.Fatalf("VoteCounts: %v", err)
	}
	if counts[candidateID] != 3 {
		t.Errorf("counts = %+v, want 3 votes for candidate", counts)
	}
}

func TestEventsAndCandidates(t *testing.T) {
	events := []models.Event{{ID: uuid.New(), Name: "Talent", IsActive: true}}
	candidates := []models.Candidate{{ID: uuid.New(), Name: "Alice", IsActive: true}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/events":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": events})
		case "/api/candidates":
			json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": candidates})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewPageantApiClient(server.URL, "test-token")

	gotEvents, err := client.Events(context.Background())
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(gotEvents) != 1 || gotEvents[0].Name != "Talent" {
		t.Errorf("events = %+v", gotEvents)
	}

	gotCandidates, err := client.Candidates(context.Background())
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(gotCandidates) != 1 || gotCandidates[0].Name != "Alice" {
		t.Errorf("candidates = %+v", gotCandidates)
	}
}
