package models

import (
	"time"

	"github.com/google/uuid"
)

// TieBreakerStatus represents the lifecycle status of a tie-breaker round
type TieBreakerStatus string

const (
	TieBreakerStatusActive    TieBreakerStatus = "active"
	TieBreakerStatusCompleted TieBreakerStatus = "completed"
	TieBreakerStatusCleared   TieBreakerStatus = "cleared"
)

// TieBreakerCandidate is one member of a tied group
type TieBreakerCandidate struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Major    string    `json:"major,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
}

// TieBreakerSession is a mandatory supplemental scoring round triggered
// when final rankings are tied at a placement position. Position 1/2/3
// determines the bonus added to each submitted raw score.
type TieBreakerSession struct {
	ID          uuid.UUID             `json:"id"`
	Candidates  []TieBreakerCandidate `json:"candidates"`
	Position    int                   `json:"position"`
	Status      TieBreakerStatus      `json:"status"`
	Description string                `json:"description"`
	ActivatedBy string                `json:"activated_by"`
	HasVoted    bool                  `json:"has_voted"`
	CreatedAt   time.Time             `json:"created_at"`
}

// TieBreakerVote is a judge's vote for one candidate in a tie-breaker.
// Score is the summed value (raw + position bonus) sent to the backend.
type TieBreakerVote struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Score       float64   `json:"score"`
}

// TieBreakerVoteResult is the backend acknowledgment for a batch of
// tie-breaker votes.
type TieBreakerVoteResult struct {
	VotesSubmitted int  `json:"votesSubmitted"`
	AllJudgesVoted bool `json:"allJudgesVoted"`
}
