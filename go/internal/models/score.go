package models

import (
	"time"

	"github.com/google/uuid"
)

// JudgeScore is a persisted score submitted by one judge for one
// candidate in one event. Scores run 0-10 with one decimal of precision.
type JudgeScore struct {
	ID          uuid.UUID `json:"id"`
	JudgeID     uuid.UUID `json:"judge_id"`
	CandidateID uuid.UUID `json:"candidate_id"`
	EventID     uuid.UUID `json:"event_id"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicVote is a single vote from the public audience
type PublicVote struct {
	ID           uuid.UUID `json:"id"`
	CandidateID  uuid.UUID `json:"candidate_id"`
	VoterSession string    `json:"voter_session,omitempty"`
	VoterIP      string    `json:"voter_ip,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
