package scores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Repository implements judge score data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new scores repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const scoreColumns = `id, judge_id, candidate_id, event_id, score, created_at, updated_at`

func scanScore(row pgx.Row) (*models.JudgeScore, error) {
	var s models.JudgeScore
	err := row.Scan(&s.ID, &s.JudgeID, &s.CandidateID, &s.EventID, &s.Score, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertScore inserts or replaces the judge's score for one candidate in
// one event. Resubmitting overwrites the previous value.
func (r *Repository) UpsertScore(ctx context.Context, judgeID uuid.UUID, req SubmitScoreRequest) (*models.JudgeScore, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO judge_scores (id, judge_id, candidate_id, event_id, score)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (judge_id, candidate_id, event_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = now()
		RETURNING `+scoreColumns,
		uuid.New(), judgeID, req.CandidateID, req.EventID, req.Score)

	s, err := scanScore(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert score: %w", err)
	}
	return s, nil
}

// ScoresByJudge retrieves all scores submitted by one judge
func (r *Repository) ScoresByJudge(ctx context.Context, judgeID uuid.UUID) ([]models.JudgeScore, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scoreColumns+` FROM judge_scores WHERE judge_id = $1 ORDER BY created_at`, judgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list judge scores: %w", err)
	}
	return collectScores(rows)
}

// ScoresByEvent retrieves all scores submitted for one event
func (r *Repository) ScoresByEvent(ctx context.Context, eventID uuid.UUID) ([]models.JudgeScore, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scoreColumns+` FROM judge_scores WHERE event_id = $1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event scores: %w", err)
	}
	return collectScores(rows)
}

func collectScores(rows pgx.Rows) ([]models.JudgeScore, error) {
	defer rows.Close()

	var scores []models.JudgeScore
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, *s)
	}
	return scores, rows.Err()
}

// VotingStatus builds per-judge, per-event completion counts against the
// active candidate roster.
func (r *Repository) VotingStatus(ctx context.Context) ([]JudgeVotingStatus, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.full_name, e.id, e.name,
		       COUNT(s.id) AS scored,
		       (SELECT COUNT(*) FROM candidates c WHERE c.is_active) AS total
		FROM users u
		CROSS JOIN events e
		LEFT JOIN judge_scores s ON s.judge_id = u.id AND s.event_id = e.id
		WHERE u.role = 'judge'
		GROUP BY u.id, u.full_name, e.id, e.name, e.created_at
		ORDER BY u.full_name, e.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to get voting status: %w", err)
	}
	defer rows.Close()

	var statuses []JudgeVotingStatus
	byJudge := make(map[uuid.UUID]int)
	for rows.Next() {
		var judgeID uuid.UUID
		var judgeName string
		var progress EventProgress
		if err := rows.Scan(&judgeID, &judgeName, &progress.EventID, &progress.EventName, &progress.Scored, &progress.Total); err != nil {
			return nil, fmt.Errorf("failed to scan voting status: %w", err)
		}
		progress.Complete = progress.Total > 0 && progress.Scored >= progress.Total

		idx, ok := byJudge[judgeID]
		if !ok {
			statuses = append(statuses, JudgeVotingStatus{JudgeID: judgeID, JudgeName: judgeName})
			idx = len(statuses) - 1
			byJudge[judgeID] = idx
		}
		statuses[idx].Events = append(statuses[idx].Events, progress)
	}
	return statuses, rows.Err()
}

// ResetAll wipes all judge scores, public votes and tie-breaker rounds
// inside one transaction.
func (r *Repository) ResetAll(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reset: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM tiebreaker_votes`,
		`DELETE FROM tiebreaker_sessions`,
		`DELETE FROM public_votes`,
		`DELETE FROM judge_scores`,
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset votes: %w", err)
		}
	}
	return tx.Commit(ctx)
}
