package tiebreaker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/crownjudge/pageant/go/internal/models"
)

// DefaultCooldown is how long a freshly voted session id is ignored when
// it reappears from the polling fetch, so the modal does not immediately
// reopen after a successful submit.
const DefaultCooldown = 10 * time.Second

var (
	// ErrVoteRequired is returned when the judge tries to dismiss the
	// modal before voting. The modal is mandatory.
	ErrVoteRequired = errors.New("tie-breaker vote must be completed before closing")

	// ErrNoSession is returned when there is no open session to act on
	ErrNoSession = errors.New("no active tie-breaker session")

	// ErrSubmitInFlight guards against double-submit of the same session
	ErrSubmitInFlight = errors.New("tie-breaker submission already in progress")
)

// MissingScoresError reports which tied candidates still lack a score
type MissingScoresError struct {
	Candidates []string
}

func (e *MissingScoresError) Error() string {
	return fmt.Sprintf("all candidates must be scored from 1 to 10: missing %s",
		strings.Join(e.Candidates, ", "))
}

// Submitter defines what the guard needs from the tie-breaker gateway
type Submitter interface {
	SubmitTiebreakerVotes(ctx context.Context, votes []models.TieBreakerVote) (*models.TieBreakerVoteResult, error)
}

// VoteBreakdown retains the raw and bonus components of one submitted
// vote for display and audit; only Total is sent to the gateway.
type VoteBreakdown struct {
	CandidateID uuid.UUID
	Raw         float64
	Bonus       float64
	Total       float64
}

// SubmitResult is the outcome of a successful tie-breaker submission
type SubmitResult struct {
	VotesSubmitted int
	AllJudgesVoted bool
	Breakdown      []VoteBreakdown
}

// Guard ensures at most one tie-breaker session is presented at a time.
// Duplicate activation notifications for the same session id are ignored,
// completion/clear notifications force the session closed regardless of
// local state, and a cool-down window keeps a just-voted session from
// reopening through the polling path.
type Guard struct {
	submitter Submitter
	clock     clockwork.Clock
	cooldown  time.Duration

	mu            sync.Mutex
	session       *models.TieBreakerSession
	modalOpen     bool
	submitting    bool
	scores        map[uuid.UUID]float64
	lastVotedID   uuid.UUID
	cooldownUntil time.Time
}

// NewGuard creates a guard in the NoSession state.
func NewGuard(submitter Submitter, clock clockwork.Clock) *Guard {
	return &Guard{
		submitter: submitter,
		clock:     clock,
		cooldown:  DefaultCooldown,
		scores:    make(map[uuid.UUID]float64),
	}
}

// BonusPoints returns the automatic bonus added to every raw score for a
// tie at the given placement position.
func BonusPoints(position int) float64 {
	switch position {
	case 1:
		return 5
	case 2:
		return 3
	case 3:
		return 1
	default:
		return 0
	}
}

// OnActivated handles a tiebreaker_activated push notification. A
// re-notification for the already-open session id is a no-op. A different
// id while a session is open replaces the session data without changing
// the modal's open/closed state.
func (g *Guard) OnActivated(session models.TieBreakerSession) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observeLocked(session)
}

// Observe handles the polling fetch result. found=false, or a session the
// judge has already voted on, collapses to NoSession.
func (g *Guard) Observe(session *models.TieBreakerSession, found bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !found || session == nil || session.HasVoted {
		if g.session != nil {
			log.Debug().Msg("tie-breaker no longer active, closing session")
			g.resetLocked()
		}
		return
	}
	g.observeLocked(*session)
}

func (g *Guard) observeLocked(session models.TieBreakerSession) {
	// Suppress re-activation of a session we just voted on.
	if session.ID == g.lastVotedID && g.clock.Now().Before(g.cooldownUntil) {
		log.Debug().
			Str("tiebreaker_id", session.ID.String()).
			Msg("ignoring recently voted tie-breaker during cool-down")
		return
	}

	if g.session == nil {
		g.session = &session
		g.modalOpen = true
		g.scores = make(map[uuid.UUID]float64)
		log.Info().
			Str("tiebreaker_id", session.ID.String()).
			Int("position", session.Position).
			Int("candidates", len(session.Candidates)).
			Msg("tie-breaker session opened")
		return
	}

	if g.session.ID == session.ID {
		// Idempotent re-notification.
		return
	}

	// A different session supersedes the data but does not force a
	// dismissed modal back open.
	log.Info().
		Str("old_id", g.session.ID.String()).
		Str("new_id", session.ID.String()).
		Msg("tie-breaker session superseded")
	g.session = &session
	g.scores = make(map[uuid.UUID]float64)
}

// OnCompleted handles a tiebreaker_completed notification: the session is
// torn down unconditionally, voted or not.
func (g *Guard) OnCompleted(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil {
		log.Info().Str("tiebreaker_id", id.String()).Msg("tie-breaker completed, closing session")
	}
	g.resetLocked()
}

// OnCleared handles a tiebreaker_cleared notification (admin reset).
func (g *Guard) OnCleared() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil {
		log.Info().Msg("tie-breakers cleared, closing session")
	}
	g.resetLocked()
}

// SetScore records the judge's raw score for one tied candidate.
// Tie-breaker scores are bounded 1-10.
func (g *Guard) SetScore(candidateID uuid.UUID, score float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return ErrNoSession
	}
	if score < 1 || score > 10 {
		return fmt.Errorf("tie-breaker score must be between 1 and 10, got %.1f", score)
	}
	g.scores[candidateID] = score
	return nil
}

// RequestClose is the user's attempt to dismiss the modal. Refused while
// the judge has not voted.
func (g *Guard) RequestClose() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session != nil && !g.session.HasVoted {
		return ErrVoteRequired
	}
	g.modalOpen = false
	return nil
}

// Submit validates that every tied candidate has a score in [1,10],
// applies the position bonus additively, and sends the summed values to
// the gateway. On success the session closes and the cool-down window
// starts. On failure the entered scores are retained for retry.
func (g *Guard) Submit(ctx context.Context) (*SubmitResult, error) {
	g.mu.Lock()
	if g.session == nil {
		g.mu.Unlock()
		return nil, ErrNoSession
	}
	if g.submitting {
		g.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	var missing []string
	for _, cand := range g.session.Candidates {
		if s, ok := g.scores[cand.ID]; !ok || s < 1 || s > 10 {
			missing = append(missing, cand.Name)
		}
	}
	if len(missing) > 0 {
		g.mu.Unlock()
		return nil, &MissingScoresError{Candidates: missing}
	}

	bonus := BonusPoints(g.session.Position)
	votes := make([]models.TieBreakerVote, 0, len(g.session.Candidates))
	breakdown := make([]VoteBreakdown, 0, len(g.session.Candidates))
	for _, cand := range g.session.Candidates {
		raw := g.scores[cand.ID]
		votes = append(votes, models.TieBreakerVote{
			CandidateID: cand.ID,
			Score:       raw + bonus,
		})
		breakdown = append(breakdown, VoteBreakdown{
			CandidateID: cand.ID,
			Raw:         raw,
			Bonus:       bonus,
			Total:       raw + bonus,
		})
	}
	sessionID := g.session.ID
	g.submitting = true
	g.mu.Unlock()

	result, err := g.submitter.SubmitTiebreakerVotes(ctx, votes)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitting = false

	if err != nil {
		return nil, fmt.Errorf("submit tie-breaker votes: %w", err)
	}

	// The session may have been completed or superseded while the
	// request was in flight; only close it if it is still ours.
	if g.session != nil && g.session.ID == sessionID {
		g.session.HasVoted = true
		g.resetLocked()
	}
	g.lastVotedID = sessionID
	g.cooldownUntil = g.clock.Now().Add(g.cooldown)

	log.Info().
		Str("tiebreaker_id", sessionID.String()).
		Int("votes", result.VotesSubmitted).
		Float64("bonus", bonus).
		Bool("all_judges_voted", result.AllJudgesVoted).
		Msg("tie-breaker votes submitted")

	return &SubmitResult{
		VotesSubmitted: result.VotesSubmitted,
		AllJudgesVoted: result.AllJudgesVoted,
		Breakdown:      breakdown,
	}, nil
}

// Session returns a snapshot of the current session and whether the
// modal is presented.
func (g *Guard) Session() (*models.TieBreakerSession, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return nil, false
	}
	snapshot := *g.session
	snapshot.Candidates = append([]models.TieBreakerCandidate(nil), g.session.Candidates...)
	return &snapshot, g.modalOpen
}

func (g *Guard) resetLocked() {
	g.session = nil
	g.modalOpen = false
	g.scores = make(map[uuid.UUID]float64)
}
