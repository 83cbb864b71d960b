package scores

import "github.com/google/uuid"

// SubmitScoreRequest is one judge score for one candidate in one event
type SubmitScoreRequest struct {
	EventID     uuid.UUID `json:"eventId"`
	CandidateID uuid.UUID `json:"candidateId"`
	Score       float64   `json:"score"`
}

// EventProgress is one judge's completion state for one event
type EventProgress struct {
	EventID   uuid.UUID `json:"event_id"`
	EventName string    `json:"event_name"`
	Scored    int       `json:"scored"`
	Total     int       `json:"total"`
	Complete  bool      `json:"complete"`
}

// JudgeVotingStatus is the notary view of one judge's progress across
// all events.
type JudgeVotingStatus struct {
	JudgeID   uuid.UUID       `json:"judge_id"`
	JudgeName string          `json:"judge_name"`
	Events    []EventProgress `json:"events"`
}
