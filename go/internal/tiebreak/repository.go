package tiebreak

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/models"
)

// ErrNoActiveSession is returned when no tie-breaker round is running
var ErrNoActiveSession = errors.New("no active tiebreaker session")

// Repository implements tie-breaker data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new tiebreak repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSession inserts a new active session and its candidate set
func (r *Repository) CreateSession(ctx context.Context, req ActivateRequest, activatedBy string) (*models.TieBreakerSession, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin session create: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.New()
	var session models.TieBreakerSession
	err = tx.QueryRow(ctx, `
		INSERT INTO tiebreaker_sessions (id, position, status, description, activated_by)
		VALUES ($1, $2, 'active', $3, $4)
		RETURNING id, position, status, description, activated_by, created_at`,
		id, req.Position, req.Description, activatedBy).
		Scan(&session.ID, &session.Position, &session.Status, &session.Description, &session.ActivatedBy, &session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create tiebreaker session: %w", err)
	}

	for _, candidateID := range req.CandidateIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tiebreaker_session_candidates (session_id, candidate_id)
			VALUES ($1, $2)`, id, candidateID); err != nil {
			return nil, fmt.Errorf("failed to attach candidate %s: %w", candidateID, err)
		}

		c := models.TieBreakerCandidate{ID: candidateID}
		err := tx.QueryRow(ctx, `SELECT name, major, image_url FROM candidates WHERE id = $1`, candidateID).
			Scan(&c.Name, &c.Major, &c.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate %s: %w", candidateID, err)
		}
		session.Candidates = append(session.Candidates, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session create: %w", err)
	}
	return &session, nil
}

// ActiveSession returns the currently running session, if any
func (r *Repository) ActiveSession(ctx context.Context) (*models.TieBreakerSession, error) {
	var session models.TieBreakerSession
	err := r.pool.QueryRow(ctx, `
		SELECT id, position, status, description, activated_by, created_at
		FROM tiebreaker_sessions
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT 1`).
		Scan(&session.ID, &session.Position, &session.Status, &session.Description, &session.ActivatedBy, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.major, c.image_url
		FROM tiebreaker_session_candidates sc
		JOIN candidates c ON c.id = sc.candidate_id
		WHERE sc.session_id = $1
		ORDER BY c.name`, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.TieBreakerCandidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Major, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan session candidate: %w", err)
		}
		session.Candidates = append(session.Candidates, c)
	}
	return &session, rows.Err()
}

// HasJudgeVoted reports whether the judge has submitted votes for the
// session.
func (r *Repository) HasJudgeVoted(ctx context.Context, sessionID, judgeID uuid.UUID) (bool, error) {
	var voted bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM tiebreaker_votes WHERE session_id = $1 AND judge_id = $2)`,
		sessionID, judgeID).Scan(&voted)
	if err != nil {
		return false, fmt.Errorf("failed to check judge vote: %w", err)
	}
	return voted, nil
}

// RecordVotes persists one judge's full vote batch for the session
func (r *Repository) RecordVotes(ctx context.Context, sessionID, judgeID uuid.UUID, votes []models.TieBreakerVote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin vote record: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, vote := range votes {
		_, err := tx.Exec(ctx, `
			INSERT INTO tiebreaker_votes (id, session_id, judge_id, candidate_id, score)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), sessionID, judgeID, vote.CandidateID, vote.Score)
		if err != nil {
			return fmt.Errorf("failed to record vote for %s: %w", vote.CandidateID, err)
		}
	}
	return tx.Commit(ctx)
}

// CountVotedJudges returns how many distinct judges have voted in the
// session.
func (r *Repository) CountVotedJudges(ctx context.Context, sessionID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT judge_id) FROM tiebreaker_votes WHERE session_id = $1`,
		sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count voted judges: %w", err)
	}
	return count, nil
}

// CompleteSession marks the session completed and returns the winner by
// highest average vote.
func (r *Repository) CompleteSession(ctx context.Context, sessionID uuid.UUID) (string, float64, error) {
	if _, err := r.pool.Exec(ctx, `
		UPDATE tiebreaker_sessions SET status = 'completed', updated_at = now() WHERE id = $1`,
		sessionID); err != nil {
		return "", 0, fmt.Errorf("failed to complete session: %w", err)
	}

	var name string
	var avg float64
	err := r.pool.QueryRow(ctx, `
		SELECT c.name, AVG(v.score)
		FROM tiebreaker_votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE v.session_id = $1
		GROUP BY c.name
		ORDER BY AVG(v.score) DESC, c.name
		LIMIT 1`, sessionID).Scan(&name, &avg)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("failed to resolve winner: %w", err)
	}
	return name, avg, nil
}

// ClearAll marks every non-completed session cleared
func (r *Repository) ClearAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `
		UPDATE tiebreaker_sessions SET status = 'cleared', updated_at = now() WHERE status = 'active'`); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}

// DetectTies finds groups of candidates whose overall averages collide at
// placement positions 1 through 3.
func (r *Repository) DetectTies(ctx context.Context) ([]TieGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, COALESCE(AVG(s.score), 0) AS average_score
		FROM candidates c
		LEFT JOIN judge_scores s ON s.candidate_id = c.id
		WHERE c.is_active
		GROUP BY c.id
		ORDER BY average_score DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute standings: %w", err)
	}
	defer rows.Close()

	type standing struct {
		candidateID uuid.UUID
		average     float64
	}
	var standings []standing
	for rows.Next() {
		var s standing
		if err := rows.Scan(&s.candidateID, &s.average); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []TieGroup
	position := 1
	for i := 0; i < len(standings) && position <= 3; {
		j := i + 1
		for j < len(standings) && math.Abs(standings[j].average-standings[i].average) < 1e-9 {
			j++
		}
		if j-i > 1 {
			group := TieGroup{Position: position, AverageScore: standings[i].average}
			for _, s := range standings[i:j] {
				group.CandidateIDs = append(group.CandidateIDs, s.candidateID)
			}
			groups = append(groups, group)
		}
		position += j - i
		i = j
	}
	return groups, nil
}
