package pageant_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/models"
)

// CastVoteRequest is one public audience vote
type CastVoteRequest struct {
	CandidateID  uuid.UUID `json:"candidateId"`
	VoterSession string    `json:"voterSession"`
}

// CastVote records one audience vote for a candidate. The backend echoes
// the persisted vote.
func (c *PageantApiClient) CastVote(ctx context.Context, candidateID uuid.UUID, voterSession string) (*models.PublicVote, error) {
	payload, err := json.Marshal(CastVoteRequest{
		CandidateID:  candidateID,
		VoterSession: voterSession,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vote: %w", err)
	}

	body, err := c.Post(ctx, endpointPublicVotes, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	var vote models.PublicVote
	if err := decodeEnvelope(body, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

// VoteCounts fetches the per-candidate public vote totals
func (c *PageantApiClient) VoteCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	body, err := c.Get(ctx, endpointPublicVotes)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote counts: %w", err)
	}

	var counts map[uuid.UUID]int
	if err := decodeEnvelope(body, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
