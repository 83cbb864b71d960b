package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/crownjudge/pageant/go/internal/models"
)

type fakeGateway struct {
	calls   []submittedScore
	failAt  int // fail the Nth call (1-based), 0 means never
	failErr error
}

type submittedScore struct {
	eventID     uuid.UUID
	candidateID uuid.UUID
	score       float64
}

func (g *fakeGateway) SubmitScore(ctx context.Context, eventID, candidateID uuid.UUID, score float64) (*models.JudgeScore, error) {
	if g.failAt > 0 && len(g.calls)+1 == g.failAt {
		return nil, g.failErr
	}
	g.calls = append(g.calls, submittedScore{eventID: eventID, candidateID: candidateID, score: score})
	return &models.JudgeScore{
		ID:          uuid.New(),
		EventID:     eventID,
		CandidateID: candidateID,
		Score:       score,
	}, nil
}

func mkEvent(name string, active bool) models.Event {
	return models.Event{ID: uuid.New(), Name: name, IsActive: active}
}

func mkCandidate(name string) models.Candidate {
	return models.Candidate{ID: uuid.New(), Name: name, IsActive: true}
}

func newTestController(gw Gateway) *Controller {
	return NewController(uuid.New(), gw)
}

func TestHydrateSeedsEntries(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")
	c2 := mkCandidate("Bea")

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate(
		[]models.Event{ev},
		[]models.Candidate{c1, c2},
		[]models.JudgeScore{{EventID: ev.ID, CandidateID: c1.ID, Score: 7.5}},
	)

	entries := ctrl.EventScores(ev.ID)
	if got := entries[c1.ID]; got.Score != 7.5 || !got.Saved {
		t.Errorf("existing score entry = %+v, want score 7.5 saved", got)
	}
	if got := entries[c2.ID]; got.Score != 0 || got.Saved {
		t.Errorf("missing score entry = %+v, want score 0 unsaved", got)
	}
}

func TestHydrateCoercesNonFiniteToZero(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate(
		[]models.Event{ev},
		[]models.Candidate{c1},
		[]models.JudgeScore{{EventID: ev.ID, CandidateID: c1.ID, Score: math.NaN()}},
	)

	if got := ctrl.EventScores(ev.ID)[c1.ID].Score; got != 0 {
		t.Errorf("non-finite persisted score = %v, want 0", got)
	}
}

func TestHydrateIsIdempotent(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")
	events := []models.Event{ev}
	candidates := []models.Candidate{c1}
	existing := []models.JudgeScore{{EventID: ev.ID, CandidateID: c1.ID, Score: 6}}

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate(events, candidates, existing)
	first := ctrl.EventScores(ev.ID)
	ctrl.Hydrate(events, candidates, existing)
	second := ctrl.EventScores(ev.ID)

	if len(first) != len(second) || first[c1.ID] != second[c1.ID] {
		t.Errorf("repeat hydrate changed entries: %+v vs %+v", first, second)
	}
}

func TestEditScore(t *testing.T) {
	activeEv := mkEvent("Talent", true)
	closedEv := mkEvent("Gown", false)
	c1 := mkCandidate("Alice")

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate([]models.Event{activeEv, closedEv}, []models.Candidate{c1},
		[]models.JudgeScore{{EventID: activeEv.ID, CandidateID: c1.ID, Score: 5}})

	if err := ctrl.EditScore(activeEv.ID, c1.ID, 8.5); err != nil {
		t.Fatalf("EditScore on active event: %v", err)
	}
	if got := ctrl.EventScores(activeEv.ID)[c1.ID]; got.Score != 8.5 || got.Saved {
		t.Errorf("after edit entry = %+v, want score 8.5 unsaved", got)
	}

	err := ctrl.EditScore(closedEv.ID, c1.ID, 8.5)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonEventInactive {
		t.Errorf("EditScore on closed event = %v, want event inactive validation error", err)
	}

	if err := ctrl.EditScore(activeEv.ID, c1.ID, math.Inf(1)); err != nil {
		t.Fatalf("EditScore with non-finite value: %v", err)
	}
	if got := ctrl.EventScores(activeEv.ID)[c1.ID].Score; got != 0 {
		t.Errorf("non-finite edit stored %v, want 0", got)
	}
}

func TestSubmitAllValidationPrecedence(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")
	c2 := mkCandidate("Bea")

	// Both defects at once: candidate c2 unscored AND candidate c1 at
	// zero. Completeness must win.
	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1, c2}, nil)
	ctrl.mu.Lock()
	delete(ctrl.entries[ev.ID], c2.ID)
	ctrl.mu.Unlock()

	_, err := ctrl.SubmitAll(context.Background(), ev.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonMissingScores {
		t.Fatalf("SubmitAll = %v, want missing scores before invalid scores", err)
	}

	// Complete roster but a zero score: positivity error now surfaces.
	ctrl2 := newTestController(&fakeGateway{})
	ctrl2.Hydrate([]models.Event{ev}, []models.Candidate{c1, c2}, nil)
	if err := ctrl2.EditScore(ev.ID, c1.ID, 7); err != nil {
		t.Fatal(err)
	}
	_, err = ctrl2.SubmitAll(context.Background(), ev.ID)
	if !errors.As(err, &verr) || verr.Reason != ReasonInvalidScores {
		t.Fatalf("SubmitAll = %v, want invalid scores error", err)
	}
}

func TestSubmitAllIneligibleEventWinsOverEverything(t *testing.T) {
	ev := mkEvent("Talent", false)
	c1 := mkCandidate("Alice")

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1}, nil)

	_, err := ctrl.SubmitAll(context.Background(), ev.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonEventInactive {
		t.Fatalf("SubmitAll on closed event = %v, want event inactive error", err)
	}
}

func TestSubmitAllSubmitsUnsavedInRosterOrder(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")
	c2 := mkCandidate("Bea")
	c3 := mkCandidate("Cora")

	gw := &fakeGateway{}
	ctrl := newTestController(gw)
	// c2 is already confirmed server-side; only c1 and c3 need submitting.
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1, c2, c3},
		[]models.JudgeScore{{EventID: ev.ID, CandidateID: c2.ID, Score: 9}})
	if err := ctrl.EditScore(ev.ID, c1.ID, 7.5); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.EditScore(ev.ID, c3.ID, 8); err != nil {
		t.Fatal(err)
	}

	n, err := ctrl.SubmitAll(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("SubmitAll: %v", err)
	}
	if n != 2 {
		t.Errorf("submitted %d entries, want 2", n)
	}
	if len(gw.calls) != 2 || gw.calls[0].candidateID != c1.ID || gw.calls[1].candidateID != c3.ID {
		t.Errorf("gateway calls = %+v, want c1 then c3 in roster order", gw.calls)
	}
	if !ctrl.IsEventFullySaved(ev.ID) {
		t.Error("event not fully saved after successful SubmitAll")
	}
}

func TestSubmitAllNothingToSubmit(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")

	gw := &fakeGateway{}
	ctrl := newTestController(gw)
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1},
		[]models.JudgeScore{{EventID: ev.ID, CandidateID: c1.ID, Score: 9}})

	n, err := ctrl.SubmitAll(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("SubmitAll: %v", err)
	}
	if n != 0 {
		t.Errorf("submitted %d entries, want 0", n)
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway called %d times, want 0", len(gw.calls))
	}
}

func TestSubmitAllAbortsOnFailureKeepingProgress(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")
	c2 := mkCandidate("Bea")

	gw := &fakeGateway{failAt: 2, failErr: errors.New("backend down")}
	ctrl := newTestController(gw)
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1, c2}, nil)
	if err := ctrl.EditScore(ev.ID, c1.ID, 7); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.EditScore(ev.ID, c2.ID, 8); err != nil {
		t.Fatal(err)
	}

	n, err := ctrl.SubmitAll(context.Background(), ev.ID)
	if err == nil {
		t.Fatal("SubmitAll succeeded, want mid-batch failure")
	}
	if n != 1 {
		t.Errorf("submitted %d entries before failure, want 1", n)
	}

	entries := ctrl.EventScores(ev.ID)
	if !entries[c1.ID].Saved {
		t.Error("first entry lost its confirmed state after abort")
	}
	if entries[c2.ID].Saved {
		t.Error("failed entry marked saved")
	}
	if entries[c2.ID].Score != 8 {
		t.Errorf("failed entry score = %v, want retained 8", entries[c2.ID].Score)
	}
	if ctrl.Saving(ev.ID) {
		t.Error("saving flag stuck after aborted batch")
	}

	// Retry submits only the remaining entry.
	gw.failAt = 0
	n, err = ctrl.SubmitAll(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("retry SubmitAll: %v", err)
	}
	if n != 1 {
		t.Errorf("retry submitted %d entries, want 1", n)
	}
	if last := gw.calls[len(gw.calls)-1]; last.candidateID != c2.ID {
		t.Errorf("retry submitted %s, want c2", last.candidateID)
	}
}

func TestSubmitOne(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")
	c2 := mkCandidate("Bea")

	gw := &fakeGateway{}
	ctrl := newTestController(gw)
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1, c2},
		[]models.JudgeScore{{EventID: ev.ID, CandidateID: c2.ID, Score: 9}})
	if err := ctrl.EditScore(ev.ID, c1.ID, 6.5); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.SubmitOne(context.Background(), ev.ID, c1.ID); err != nil {
		t.Fatalf("SubmitOne: %v", err)
	}
	if len(gw.calls) != 1 || gw.calls[0].score != 6.5 {
		t.Errorf("gateway calls = %+v, want one call with score 6.5", gw.calls)
	}
	if !ctrl.EventScores(ev.ID)[c1.ID].Saved {
		t.Error("entry not marked saved after SubmitOne")
	}

	// Already-saved entry is a no-op.
	if err := ctrl.SubmitOne(context.Background(), ev.ID, c2.ID); err != nil {
		t.Fatalf("SubmitOne on saved entry: %v", err)
	}
	if len(gw.calls) != 1 {
		t.Errorf("gateway called %d times, want still 1", len(gw.calls))
	}
}

func TestSubmitOneRejectedWhileBatchInFlight(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")

	gw := &fakeGateway{}
	ctrl := newTestController(gw)
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1}, nil)
	if err := ctrl.EditScore(ev.ID, c1.ID, 7); err != nil {
		t.Fatal(err)
	}

	ctrl.mu.Lock()
	ctrl.saving[ev.ID] = true
	ctrl.mu.Unlock()

	err := ctrl.SubmitOne(context.Background(), ev.ID, c1.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonSubmitInFlight {
		t.Fatalf("SubmitOne during batch = %v, want submit in-flight error", err)
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway calls = %+v, want none while batch holds the event", gw.calls)
	}

	ctrl.mu.Lock()
	delete(ctrl.saving, ev.ID)
	ctrl.mu.Unlock()

	if err := ctrl.SubmitOne(context.Background(), ev.ID, c1.ID); err != nil {
		t.Fatalf("SubmitOne after batch released: %v", err)
	}
	if len(gw.calls) != 1 {
		t.Errorf("gateway called %d times, want 1", len(gw.calls))
	}
}

func TestUnknownEventRejected(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1}, nil)

	err := ctrl.EditScore(uuid.New(), c1.ID, 5)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Reason != ReasonUnknownEvent {
		t.Errorf("EditScore on unknown event = %v, want unknown event error", err)
	}

	_, err = ctrl.SubmitAll(context.Background(), uuid.New())
	if !errors.As(err, &verr) || verr.Reason != ReasonUnknownEvent {
		t.Errorf("SubmitAll on unknown event = %v, want unknown event error", err)
	}
}

func TestIsEventFullySavedVacuouslyTrue(t *testing.T) {
	ev := mkEvent("Talent", true)
	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate([]models.Event{ev}, nil, nil)

	if !ctrl.IsEventFullySaved(ev.ID) {
		t.Error("event with no positive entries should be fully saved")
	}
	if !ctrl.IsEventFullySaved(uuid.New()) {
		t.Error("unknown event should be vacuously fully saved")
	}
}

func TestOnEventUpdatedPatchesEligibilityKeepsEntries(t *testing.T) {
	ev := mkEvent("Talent", true)
	c1 := mkCandidate("Alice")

	ctrl := newTestController(&fakeGateway{})
	ctrl.Hydrate([]models.Event{ev}, []models.Candidate{c1}, nil)
	if err := ctrl.EditScore(ev.ID, c1.ID, 7); err != nil {
		t.Fatal(err)
	}

	closed := ev
	closed.IsActive = false
	ctrl.OnEventUpdated(closed)

	if ctrl.Eligible(ev.ID) {
		t.Error("event still eligible after deactivation push")
	}
	if got := ctrl.EventScores(ev.ID)[c1.ID]; got.Score != 7 || got.Saved {
		t.Errorf("unsaved edit lost across eligibility flip: %+v", got)
	}

	// Reopen and the edit is still there, submittable.
	ctrl.OnEventUpdated(ev)
	if !ctrl.Eligible(ev.ID) {
		t.Error("event not eligible after reactivation push")
	}

	// Unknown events are inserted.
	newEv := mkEvent("Interview", true)
	ctrl.OnEventUpdated(newEv)
	if !ctrl.Eligible(newEv.ID) {
		t.Error("pushed new event not eligible")
	}
}
