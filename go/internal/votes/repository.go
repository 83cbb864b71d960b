package votes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Repository implements public vote data access operations
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new votes repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateVote inserts a public vote. The voter_session unique constraint
// rejects a second vote from the same browser session.
func (r *Repository) CreateVote(ctx context.Context, candidateID uuid.UUID, voterSession, voterIP string) (*models.PublicVote, error) {
	var v models.PublicVote
	err := r.pool.QueryRow(ctx, `
		INSERT INTO public_votes (id, candidate_id, voter_session, voter_ip)
		VALUES ($1, $2, $3, $4)
		RETURNING id, candidate_id, voter_session, voter_ip, created_at`,
		uuid.New(), candidateID, voterSession, voterIP).
		Scan(&v.ID, &v.CandidateID, &v.VoterSession, &v.VoterIP, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create vote: %w", err)
	}
	return &v, nil
}

// CountByCandidate returns the total public votes for one candidate
func (r *Repository) CountByCandidate(ctx context.Context, candidateID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM public_votes WHERE candidate_id = $1`, candidateID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// Counts returns the vote totals for all candidates with at least one vote
func (r *Repository) Counts(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT candidate_id, COUNT(*) FROM public_votes GROUP BY candidate_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var candidateID uuid.UUID
		var count int
		if err := rows.Scan(&candidateID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[candidateID] = count
	}
	return counts, rows.Err()
}
