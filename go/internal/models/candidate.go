package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate represents a pageant candidate
type Candidate struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Major      string    `json:"major"`
	Department string    `json:"department"`
	ImageURL   string    `json:"image_url,omitempty"`
	Biography  string    `json:"biography,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CandidateResult aggregates judge scores and public votes for one candidate
// within one event.
type CandidateResult struct {
	CandidateID  uuid.UUID `json:"candidate_id"`
	Name         string    `json:"name"`
	AverageScore float64   `json:"average_score"`
	JudgeCount   int       `json:"judge_count"`
	PublicVotes  int       `json:"public_votes"`
}
