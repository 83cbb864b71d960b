package push

import (
	"github.com/crownjudge/pageant/go/internal/models"
)

// Notification payload shapes shared between the realtime fanout and the
// judge console.

// EventUpdatedPayload carries a full event snapshot whenever an admin
// changes an event, most importantly its is_active flag.
type EventUpdatedPayload struct {
	Event   models.Event `json:"event"`
	Message string       `json:"message,omitempty"`
}

// ScoreUpdatePayload announces a persisted judge score to other viewers
type ScoreUpdatePayload struct {
	Score models.JudgeScore `json:"score"`
}

// VoteUpdatePayload announces a public vote count change
type VoteUpdatePayload struct {
	CandidateID string `json:"candidate_id"`
	TotalVotes  int    `json:"total_votes"`
}

// CandidateUpdatePayload announces a candidate roster change
type CandidateUpdatePayload struct {
	Candidate models.Candidate `json:"candidate"`
}

// TiebreakerActivatedPayload carries the freshly activated session
type TiebreakerActivatedPayload struct {
	Tiebreaker models.TieBreakerSession `json:"tiebreaker"`
	Message    string                   `json:"message,omitempty"`
}

// TiebreakerWinner describes the resolved winner of a completed round
type TiebreakerWinner struct {
	CandidateName string  `json:"candidate_name"`
	AverageScore  float64 `json:"average_score"`
}

// TiebreakerCompletedPayload announces that all judges have voted
type TiebreakerCompletedPayload struct {
	TiebreakerID string            `json:"tiebreaker_id"`
	Winner       *TiebreakerWinner `json:"winner,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// TiebreakerClearedPayload announces an admin reset of all tie-breakers
type TiebreakerClearedPayload struct {
	Message string `json:"message,omitempty"`
}

// SystemNotificationPayload is a free-form operator broadcast
type SystemNotificationPayload struct {
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}
