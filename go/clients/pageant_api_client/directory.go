package pageant_api_client

import (
	"context"
	"fmt"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Events fetches the full event roster. The controller treats this as
// ground truth for roster membership.
func (c *PageantApiClient) Events(ctx context.Context) ([]models.Event, error) {
	body, err := c.Get(ctx, endpointEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	var events []models.Event
	if err := decodeEnvelope(body, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Candidates fetches the full candidate roster
func (c *PageantApiClient) Candidates(ctx context.Context) ([]models.Candidate, error) {
	body, err := c.Get(ctx, endpointCandidates)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidates: %w", err)
	}

	var candidates []models.Candidate
	if err := decodeEnvelope(body, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}
