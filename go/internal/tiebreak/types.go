package tiebreak

import "github.com/google/uuid"

// ActivateRequest asks for a new tie-breaker round at one placement
// position.
type ActivateRequest struct {
	CandidateIDs []uuid.UUID `json:"candidateIds"`
	Position     int         `json:"position"`
	Description  string      `json:"description"`
}

// TieGroup is a set of candidates sharing the same average at one
// placement position.
type TieGroup struct {
	Position     int         `json:"position"`
	AverageScore float64     `json:"average_score"`
	CandidateIDs []uuid.UUID `json:"candidate_ids"`
}
