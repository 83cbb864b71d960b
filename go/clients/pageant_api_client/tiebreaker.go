package pageant_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/crownjudge/pageant/go/internal/models"
)

// CurrentTiebreakerResponse is the polling fetch result
type CurrentTiebreakerResponse struct {
	HasActiveTiebreaker bool                      `json:"hasActiveTiebreaker"`
	Tiebreaker          *models.TieBreakerSession `json:"tiebreaker,omitempty"`
}

// CurrentTiebreaker fetches the tie-breaker session the judge is
// expected to vote on, if any.
func (c *PageantApiClient) CurrentTiebreaker(ctx context.Context) (*CurrentTiebreakerResponse, error) {
	body, err := c.Get(ctx, endpointTiebreakerCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to get current tiebreaker: %w", err)
	}

	var resp CurrentTiebreakerResponse
	if err := decodeEnvelope(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitTiebreakerVotes submits the judge's full set of tie-breaker
// votes. Scores must already include the position bonus.
func (c *PageantApiClient) SubmitTiebreakerVotes(ctx context.Context, votes []models.TieBreakerVote) (*models.TieBreakerVoteResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"tiebreakerVotes": votes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tiebreaker votes: %w", err)
	}

	body, err := c.Post(ctx, endpointTiebreakerVote, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to submit tiebreaker votes: %w", err)
	}

	var result models.TieBreakerVoteResult
	if err := decodeEnvelope(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
