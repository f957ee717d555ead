package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/queue"
	"github.com/iliyamo/festival-program-office/internal/repository"
	"github.com/iliyamo/festival-program-office/internal/workflow"
)

func TestScreeningLifecycleEndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var published []queue.ScreeningScheduledEvent
	f.scrSvc.PublishScheduled = func(_ context.Context, ev queue.ScreeningScheduledEvent) error {
		published = append(published, ev)
		return nil
	}

	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	sc, err := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "drama", "festival cut")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sc.State != model.ScreeningCreated {
		t.Fatalf("state = %s, want CREATED", sc.State)
	}

	if sc, err = f.scrSvc.Submit(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseAssignment)
	if sc, err = f.scrSvc.Assign(ctx, coProgID, sc.ID, staffID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseReview)
	if sc, err = f.scrSvc.Review(ctx, staffID, sc.ID, 9, "strong entry"); err != nil {
		t.Fatalf("review: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseScheduling)
	if sc, err = f.scrSvc.Approve(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseFinalPublication)
	if sc, err = f.scrSvc.FinalSubmit(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("final submit: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseDecision)

	date := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
	if sc, err = f.scrSvc.Schedule(ctx, coProgID, sc.ID, date, "Saal 2"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if sc.State != model.ScreeningScheduled {
		t.Fatalf("state = %s, want SCHEDULED", sc.State)
	}
	if sc.Room == nil || *sc.Room != "Saal 2" || sc.ScheduledDate == nil {
		t.Fatal("room/date missing on the scheduled screening")
	}
	if sc.Score == nil || *sc.Score != 9 {
		t.Fatal("review score lost along the way")
	}

	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if published[0].ScreeningID != sc.ID || published[0].Room != "Saal 2" {
		t.Fatalf("unexpected event: %+v", published[0])
	}

	// Terminal: nothing moves it anymore.
	_, err = f.scrSvc.Reject(ctx, coProgID, sc.ID, "late")
	wantKind(t, err, workflow.KindInvalidTransition)
}

func TestCreatorCannotEnterOwnProgram(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	_, err := f.scrSvc.Create(ctx, creatorID, p.ID, "Self Portrait", "", "")
	wantKind(t, err, workflow.KindForbidden)

	// A co-programmer is not restricted by the conflict rule.
	if _, err := f.scrSvc.Create(ctx, coProgID, p.ID, "Side Project", "", ""); err != nil {
		t.Fatalf("co-programmer entry: %v", err)
	}
}

func TestSubmitOutsideSubmissionPhase(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")

	// Draft during CREATED is fine, submitting is not.
	sc, err := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.scrSvc.Submit(ctx, submitterID, sc.ID)
	wantKind(t, err, workflow.KindInvalidTransition)
}

func TestAssignGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	sc, err := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.scrSvc.Submit(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseAssignment)

	// Only program staff can be assigned.
	_, err = f.scrSvc.Assign(ctx, coProgID, sc.ID, outsiderID)
	wantKind(t, err, workflow.KindValidation)

	// Staff themselves cannot assign; that is a programmer action.
	_, err = f.scrSvc.Assign(ctx, staffID, sc.ID, staff2ID)
	wantKind(t, err, workflow.KindForbidden)

	if _, err := f.scrSvc.Assign(ctx, coProgID, sc.ID, staffID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// A handler is assigned exactly once.
	_, err = f.scrSvc.Assign(ctx, coProgID, sc.ID, staff2ID)
	wantKind(t, err, workflow.KindInvalidTransition)
}

func TestReviewOnlyByAssignedHandler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	sc, _ := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "", "")
	if _, err := f.scrSvc.Submit(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseAssignment)
	if _, err := f.scrSvc.Assign(ctx, coProgID, sc.ID, staffID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseReview)

	// Other staff of the same program is still not the handler.
	_, err := f.scrSvc.Review(ctx, staff2ID, sc.ID, 5, "")
	wantKind(t, err, workflow.KindForbidden)

	if _, err := f.scrSvc.Review(ctx, staffID, sc.ID, 5, "ok"); err != nil {
		t.Fatalf("review by handler: %v", err)
	}
}

func TestWithdrawRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	// The program creator may clear out a foreign draft.
	sc, _ := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "", "")
	if err := f.scrSvc.Withdraw(ctx, creatorID, sc.ID); err != nil {
		t.Fatalf("creator withdraw: %v", err)
	}

	// Once submitted, nobody withdraws.
	sc2, _ := f.scrSvc.Create(ctx, submitterID, p.ID, "Day Train", "", "")
	if _, err := f.scrSvc.Submit(ctx, submitterID, sc2.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	wantKind(t, f.scrSvc.Withdraw(ctx, submitterID, sc2.ID), workflow.KindInvalidTransition)

	// A co-programmer is neither submitter nor creator.
	sc3, _ := f.scrSvc.Create(ctx, submitterID, p.ID, "Last Train", "", "")
	wantKind(t, f.scrSvc.Withdraw(ctx, coProgID, sc3.ID), workflow.KindForbidden)
}

func TestStaleVersionWriteConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	sc, _ := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "", "")

	// Two actors read the same version; the second write must lose.
	first, _ := f.screenings.GetByID(ctx, sc.ID)
	second, _ := f.screenings.GetByID(ctx, sc.ID)

	first.Genre = "drama"
	if _, err := f.screenings.Update(ctx, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	second.Genre = "thriller"
	if _, err := f.screenings.Update(ctx, second); err != repository.ErrConflict {
		t.Fatalf("second write: want ErrConflict, got %v", err)
	}

	// The service surfaces that as a retryable conflict.
	wantKind(t, translate(repository.ErrConflict, "screening"), workflow.KindConflict)
}

func TestVisibilityPolicyOnListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	mine, _ := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "", "")
	if _, err := f.scrSvc.Create(ctx, coProgID, p.ID, "Side Project", "", ""); err != nil {
		t.Fatalf("second screening: %v", err)
	}

	// Closed policy: the submitter sees only their own entry.
	visible, err := f.scrSvc.ListByProgram(ctx, submitterID, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != mine.ID {
		t.Fatalf("submitter sees %d entries, want only their own", len(visible))
	}

	// Program staff see everything.
	visible, err = f.scrSvc.ListByProgram(ctx, staffID, p.ID)
	if err != nil {
		t.Fatalf("list as staff: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("staff sees %d entries, want 2", len(visible))
	}

	// Open policy widens reads to everyone.
	f.scrSvc.Eval = workflow.Evaluator{OpenScreeningVisibility: true}
	visible, err = f.scrSvc.ListByProgram(ctx, outsiderID, p.ID)
	if err != nil {
		t.Fatalf("list as outsider: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("outsider sees %d entries under the open policy, want 2", len(visible))
	}

	// Outsider gets a direct denial under the closed policy.
	f.scrSvc.Eval = workflow.Evaluator{}
	_, err = f.scrSvc.Get(ctx, outsiderID, mine.ID)
	wantKind(t, err, workflow.KindForbidden)
}
