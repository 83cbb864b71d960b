package pageant_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/models"
)

// SubmitScoreRequest is the submit payload for one judge score
type SubmitScoreRequest struct {
	EventID     uuid.UUID `json:"eventId"`
	CandidateID uuid.UUID `json:"candidateId"`
	Score       float64   `json:"score"`
}

// MyScores fetches every score the authenticated judge has persisted
func (c *PageantApiClient) MyScores(ctx context.Context) ([]models.JudgeScore, error) {
	body, err := c.Get(ctx, endpointMyScores)
	if err != nil {
		return nil, fmt.Errorf("failed to get my scores: %w", err)
	}

	var scores []models.JudgeScore
	if err := decodeEnvelope(body, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// SubmitScore persists one score. The backend echoes the persisted record.
func (c *PageantApiClient) SubmitScore(ctx context.Context, eventID, candidateID uuid.UUID, score float64) (*models.JudgeScore, error) {
	payload, err := json.Marshal(SubmitScoreRequest{
		EventID:     eventID,
		CandidateID: candidateID,
		Score:       score,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal score: %w", err)
	}

	body, err := c.Post(ctx, endpointScores, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to submit score: %w", err)
	}

	var persisted models.JudgeScore
	if err := decodeEnvelope(body, &persisted); err != nil {
		return nil, err
	}
	return &persisted, nil
}

// ScoresByEvent fetches every judge's scores for one event
func (c *PageantApiClient) ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]models.JudgeScore, error) {
	body, err := c.Get(ctx, fmt.Sprintf(endpointScoresByEvent, eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to get scores for event %s: %w", eventID, err)
	}

	var scores []models.JudgeScore
	if err := decodeEnvelope(body, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
