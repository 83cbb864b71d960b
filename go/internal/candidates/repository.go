package candidates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Repository implements candidate data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new candidates repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const candidateColumns = `id, name, major, department, image_url, biography, is_active, created_at, updated_at`

func scanCandidate(row pgx.Row) (*models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.Name, &c.Major, &c.Department, &c.ImageURL,
		&c.Biography, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCandidate inserts a new candidate
func (r *Repository) CreateCandidate(ctx context.Context, req CreateCandidateRequest) (*models.Candidate, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO candidates (id, name, major, department, image_url, biography, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING `+candidateColumns,
		uuid.New(), req.Name, req.Major, req.Department, req.ImageURL, req.Biography)

	c, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate: %w", err)
	}
	return c, nil
}

// GetCandidate retrieves a candidate by ID
func (r *Repository) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates retrieves active candidates in roster order
func (r *Repository) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	return candidates, rows.Err()
}

// UpdateCandidate updates an existing candidate
func (r *Repository) UpdateCandidate(ctx context.Context, id uuid.UUID, req UpdateCandidateRequest) (*models.Candidate, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE candidates
		SET name = $2, major = $3, department = $4, image_url = $5, biography = $6,
		    is_active = $7, updated_at = now()
		WHERE id = $1
		RETURNING `+candidateColumns,
		id, req.Name, req.Major, req.Department, req.ImageURL, req.Biography, req.IsActive)

	c, err := scanCandidate(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	return c, nil
}

// DeleteCandidate deletes a candidate by ID
func (r *Repository) DeleteCandidate(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return nil
}

// EventResults aggregates judge scores and public votes per candidate for
// one event, ordered best average first.
func (r *Repository) EventResults(ctx context.Context, eventID uuid.UUID) ([]models.CandidateResult, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name,
		       COALESCE(AVG(s.score), 0) AS average_score,
		       COUNT(s.id) AS judge_count,
		       (SELECT COUNT(*) FROM public_votes v WHERE v.candidate_id = c.id) AS public_votes
		FROM candidates c
		LEFT JOIN judge_scores s ON s.candidate_id = c.id AND s.event_id = $1
		WHERE c.is_active
		GROUP BY c.id, c.name
		ORDER BY average_score DESC, c.name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event results: %w", err)
	}
	defer rows.Close()

	var results []models.CandidateResult
	for rows.Next() {
		var res models.CandidateResult
		if err := rows.Scan(&res.CandidateID, &res.Name, &res.AverageScore, &res.JudgeCount, &res.PublicVotes); err != nil {
			return nil, fmt.Errorf("failed to scan candidate result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
