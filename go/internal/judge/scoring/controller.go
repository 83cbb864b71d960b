package scoring

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/crownjudge/pageant/go/internal/models"
)

// Entry is one in-memory score cell: the judge's current value for a
// (event, candidate) pair and whether the backend has confirmed it.
// Saved == true implies Score equals the last value acknowledged by the
// gateway for this pair.
type Entry struct {
	CandidateID uuid.UUID `json:"candidateId"`
	Score       float64   `json:"score"`
	Saved       bool      `json:"saved"`
}

// Gateway defines what the controller needs from the remote scoring API
type Gateway interface {
	SubmitScore(ctx context.Context, eventID, candidateID uuid.UUID, score float64) (*models.JudgeScore, error)
}

// Controller reconciles the judge's local score edits against
// backend-confirmed state. It owns the score store exclusively; the UI
// reads snapshots and dispatches edit/submit intents, and the push
// channel patches event eligibility through OnEventUpdated. All mutation
// goes through controller methods.
type Controller struct {
	judgeID uuid.UUID
	gateway Gateway

	mu          sync.Mutex
	events      []models.Event
	candidates  []models.Candidate
	eligibility map[uuid.UUID]bool
	entries     map[uuid.UUID]map[uuid.UUID]*Entry
	saving      map[uuid.UUID]bool
}

// NewController creates a controller bound to one judge session.
func NewController(judgeID uuid.UUID, gateway Gateway) *Controller {
	return &Controller{
		judgeID:     judgeID,
		gateway:     gateway,
		eligibility: make(map[uuid.UUID]bool),
		entries:     make(map[uuid.UUID]map[uuid.UUID]*Entry),
		saving:      make(map[uuid.UUID]bool),
	}
}

// Hydrate rebuilds the score store from the three roster fetches. For
// every (event, candidate) pair a matching persisted score seeds
// {score, saved=true}; otherwise {0, saved=false}. Idempotent: the same
// inputs always produce the same store, and it is safe to call again
// whenever any of the three inputs refreshes.
func (c *Controller) Hydrate(events []models.Event, candidates []models.Candidate, existing []models.JudgeScore) {
	byPair := make(map[uuid.UUID]map[uuid.UUID]float64, len(events))
	for _, s := range existing {
		if byPair[s.EventID] == nil {
			byPair[s.EventID] = make(map[uuid.UUID]float64)
		}
		byPair[s.EventID][s.CandidateID] = s.Score
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append([]models.Event(nil), events...)
	c.candidates = append([]models.Candidate(nil), candidates...)
	c.recomputeEligibilityLocked()

	c.entries = make(map[uuid.UUID]map[uuid.UUID]*Entry, len(events))
	for _, ev := range events {
		row := make(map[uuid.UUID]*Entry, len(candidates))
		for _, cand := range candidates {
			score, ok := byPair[ev.ID][cand.ID]
			if !isFinite(score) {
				score = 0
			}
			row[cand.ID] = &Entry{
				CandidateID: cand.ID,
				Score:       score,
				Saved:       ok,
			}
		}
		c.entries[ev.ID] = row
	}

	log.Debug().
		Str("judge_id", c.judgeID.String()).
		Int("events", len(events)).
		Int("candidates", len(candidates)).
		Int("existing_scores", len(existing)).
		Msg("score store hydrated")
}

// EditScore records a local edit for one candidate. Rejected when the
// event no longer accepts scores. Non-finite input is coerced to 0 so a
// NaN can never propagate into the store. No network call.
func (c *Controller) EditScore(eventID, candidateID uuid.UUID, score float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkEligibleLocked(eventID); err != nil {
		return err
	}

	if !isFinite(score) {
		score = 0
	}

	row := c.entries[eventID]
	if row == nil {
		row = make(map[uuid.UUID]*Entry)
		c.entries[eventID] = row
	}
	row[candidateID] = &Entry{
		CandidateID: candidateID,
		Score:       score,
		Saved:       false,
	}
	return nil
}

// SubmitOne submits a single unsaved entry. Already-saved and missing
// entries are a no-op. Rejected while a batch submission holds the
// event's in-flight flag. On gateway failure the entry stays unsaved
// and the local value is retained so the judge can retry.
func (c *Controller) SubmitOne(ctx context.Context, eventID, candidateID uuid.UUID) error {
	c.mu.Lock()
	if err := c.checkEligibleLocked(eventID); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.saving[eventID] {
		c.mu.Unlock()
		return &ValidationError{
			Reason:  ReasonSubmitInFlight,
			Message: "a submission for this event is already in progress",
		}
	}
	entry, ok := c.entries[eventID][candidateID]
	if !ok || entry.Saved {
		c.mu.Unlock()
		return nil
	}
	score := entry.Score
	c.mu.Unlock()

	if _, err := c.gateway.SubmitScore(ctx, eventID, candidateID, score); err != nil {
		return fmt.Errorf("submit score: %w", err)
	}

	c.markSaved(eventID, candidateID)
	return nil
}

// SubmitAll submits every unsaved positive entry for an event, in
// candidate roster order, one at a time. Validation order: event
// eligibility, roster completeness, score positivity. Returns the number
// of entries submitted; (0, nil) means there was nothing left to submit.
// A failure aborts the remaining batch but keeps the progress already
// made, so a retry never re-submits confirmed entries.
func (c *Controller) SubmitAll(ctx context.Context, eventID uuid.UUID) (int, error) {
	c.mu.Lock()
	if err := c.checkEligibleLocked(eventID); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	if c.saving[eventID] {
		c.mu.Unlock()
		return 0, &ValidationError{
			Reason:  ReasonSubmitInFlight,
			Message: "a submission for this event is already in progress",
		}
	}

	row := c.entries[eventID]
	if missing := len(c.candidates) - len(row); missing > 0 {
		c.mu.Unlock()
		return 0, &ValidationError{
			Reason:  ReasonMissingScores,
			Message: fmt.Sprintf("all candidates must be scored before submitting: %d candidate(s) missing", missing),
		}
	}

	invalid := 0
	for _, entry := range row {
		if entry.Score <= 0 {
			invalid++
		}
	}
	if invalid > 0 {
		c.mu.Unlock()
		return 0, &ValidationError{
			Reason:  ReasonInvalidScores,
			Message: fmt.Sprintf("all scores must be greater than 0: %d invalid score(s)", invalid),
		}
	}

	// Deterministic iteration order: candidate roster order.
	type pending struct {
		candidateID uuid.UUID
		score       float64
	}
	var batch []pending
	for _, cand := range c.candidates {
		if entry, ok := row[cand.ID]; ok && !entry.Saved && entry.Score > 0 {
			batch = append(batch, pending{candidateID: cand.ID, score: entry.Score})
		}
	}
	if len(batch) == 0 {
		c.mu.Unlock()
		log.Debug().Str("event_id", eventID.String()).Msg("no unsaved scores to submit")
		return 0, nil
	}

	c.saving[eventID] = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.saving, eventID)
		c.mu.Unlock()
	}()

	// An eligibility-revoking notification arriving after the validation
	// pass does not abort the loop: the in-flight batch is allowed to
	// complete against the just-closed event.
	submitted := 0
	for _, p := range batch {
		if _, err := c.gateway.SubmitScore(ctx, eventID, p.candidateID, p.score); err != nil {
			log.Error().
				Err(err).
				Str("event_id", eventID.String()).
				Str("candidate_id", p.candidateID.String()).
				Int("submitted", submitted).
				Msg("batch submit aborted")
			return submitted, fmt.Errorf("submit score for candidate %s: %w", p.candidateID, err)
		}
		c.markSaved(eventID, p.candidateID)
		submitted++
	}

	log.Info().
		Str("judge_id", c.judgeID.String()).
		Str("event_id", eventID.String()).
		Int("submitted", submitted).
		Msg("all scores submitted")
	return submitted, nil
}

// IsEventFullySaved reports whether every positive entry for the event is
// confirmed. An event with no positive entries is vacuously fully saved.
func (c *Controller) IsEventFullySaved(eventID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.entries[eventID] {
		if entry.Score > 0 && !entry.Saved {
			return false
		}
	}
	return true
}

// OnEventUpdated patches the event roster with a push-delivered snapshot
// and recomputes eligibility. Score entries are orthogonal state and are
// never touched, so unsaved local edits survive eligibility flips.
func (c *Controller) OnEventUpdated(ev models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for i := range c.events {
		if c.events[i].ID == ev.ID {
			c.events[i] = ev
			found = true
			break
		}
	}
	if !found {
		c.events = append(c.events, ev)
	}
	c.recomputeEligibilityLocked()

	log.Info().
		Str("event_id", ev.ID.String()).
		Str("event", ev.Name).
		Bool("is_active", ev.IsActive).
		Msg("event eligibility updated")
}

// Eligible reports whether the event currently accepts score mutations.
func (c *Controller) Eligible(eventID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eligibility[eventID]
}

// Saving reports whether a batch submission is in flight for the event.
func (c *Controller) Saving(eventID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving[eventID]
}

// EventScores returns a snapshot of the entries for one event.
func (c *Controller) EventScores(eventID uuid.UUID) map[uuid.UUID]Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[uuid.UUID]Entry, len(c.entries[eventID]))
	for id, entry := range c.entries[eventID] {
		out[id] = *entry
	}
	return out
}

// Events returns a snapshot of the current event roster.
func (c *Controller) Events() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Event(nil), c.events...)
}

// Candidates returns a snapshot of the current candidate roster.
func (c *Controller) Candidates() []models.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Candidate(nil), c.candidates...)
}

func (c *Controller) markSaved(eventID, candidateID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[eventID][candidateID]; ok {
		entry.Saved = true
	}
}

// recomputeEligibilityLocked rebuilds the derived eligibility map from
// the event roster. Stored as plain data, recomputed on every roster
// change rather than memoized.
func (c *Controller) recomputeEligibilityLocked() {
	c.eligibility = make(map[uuid.UUID]bool, len(c.events))
	for _, ev := range c.events {
		c.eligibility[ev.ID] = ev.IsActive
	}
}

func (c *Controller) checkEligibleLocked(eventID uuid.UUID) error {
	if c.eligibility[eventID] {
		return nil
	}
	for _, ev := range c.events {
		if ev.ID == eventID {
			return &ValidationError{
				Reason:  ReasonEventInactive,
				Message: fmt.Sprintf("event %q is not accepting scores", ev.Name),
			}
		}
	}
	return &ValidationError{
		Reason:  ReasonUnknownEvent,
		Message: fmt.Sprintf("unknown event %s", eventID),
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
