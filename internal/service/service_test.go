package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/workflow"
)

// Test account ids used throughout.  Roles inside a program come from the
// program's relationship data, not from these accounts.
const (
	creatorID   = 1
	coProgID    = 2
	staffID     = 3
	staff2ID    = 4
	submitterID = 5
	outsiderID  = 6
	adminID     = 7
	inactiveID  = 8
)

type fixture struct {
	users      *memUsers
	programs   *memPrograms
	screenings *memScreenings
	audit      *memAudit
	progSvc    *ProgramService
	scrSvc     *ScreeningService
}

func newFixture() *fixture {
	f := &fixture{
		users:      newMemUsers(),
		programs:   newMemPrograms(),
		screenings: newMemScreenings(),
		audit:      &memAudit{},
	}
	for id := uint64(creatorID); id <= outsiderID; id++ {
		f.users.put(model.User{ID: id, Role: model.RoleUser, IsActive: true})
	}
	f.users.put(model.User{ID: adminID, Role: model.RoleAdmin, IsActive: true})
	f.users.put(model.User{ID: inactiveID, Role: model.RoleUser, IsActive: false})

	f.progSvc = &ProgramService{
		Programs:   f.programs,
		Screenings: f.screenings,
		Users:      f.users,
		Audit:      f.audit,
	}
	f.scrSvc = &ScreeningService{
		Programs:   f.programs,
		Screenings: f.screenings,
		Users:      f.users,
		Audit:      f.audit,
	}
	return f
}

func (f *fixture) newProgram(t *testing.T, name string) *model.Program {
	t.Helper()
	ctx := context.Background()
	p, err := f.progSvc.Create(ctx, creatorID, name, "festival week",
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("create program: %v", err)
	}
	if p, err = f.progSvc.AddStaff(ctx, creatorID, p.ID, staffID); err != nil {
		t.Fatalf("add staff: %v", err)
	}
	if p, err = f.progSvc.AddStaff(ctx, creatorID, p.ID, staff2ID); err != nil {
		t.Fatalf("add staff2: %v", err)
	}
	if p, err = f.progSvc.AddProgrammer(ctx, creatorID, p.ID, coProgID); err != nil {
		t.Fatalf("add programmer: %v", err)
	}
	return p
}

func (f *fixture) advanceTo(t *testing.T, programID uint64, target model.ProgramPhase) {
	t.Helper()
	ctx := context.Background()
	for {
		p, err := f.programs.GetByID(ctx, programID)
		if err != nil {
			t.Fatalf("load program: %v", err)
		}
		if p.Phase == target {
			return
		}
		next, ok := workflow.NextPhase(p.Phase)
		if !ok {
			t.Fatalf("cannot advance beyond %s", p.Phase)
		}
		if _, err := f.progSvc.Advance(ctx, creatorID, programID, next); err != nil {
			t.Fatalf("advance %s -> %s: %v", p.Phase, next, err)
		}
	}
}

func wantKind(t *testing.T, err error, kind workflow.Kind) {
	t.Helper()
	if !workflow.IsKind(err, kind) {
		t.Fatalf("want %s, got %v", kind, err)
	}
}

func TestProgramCreateRejectsDuplicateName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.newProgram(t, "Autumn Docs")

	_, err := f.progSvc.Create(ctx, coProgID, "Autumn Docs", "again",
		time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	wantKind(t, err, workflow.KindConflict)
}

func TestProgramListNameFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.newProgram(t, "Autumn Docs")
	f.newProgram(t, "Winter Shorts")

	all, err := f.progSvc.List(ctx, submitterID, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered list has %d entries, want 2", len(all))
	}

	// The filter matches substrings regardless of case.
	docs, err := f.progSvc.List(ctx, submitterID, "autumn")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(docs) != 1 || docs[0].Name != "Autumn Docs" {
		t.Fatalf("filter 'autumn' returned %d entries, want Autumn Docs only", len(docs))
	}

	none, err := f.progSvc.List(ctx, submitterID, "spring")
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("filter 'spring' returned %d entries, want none", len(none))
	}
}

func TestProgramAdvanceRequiresProgrammer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")

	_, err := f.progSvc.Advance(ctx, outsiderID, p.ID, model.PhaseSubmission)
	wantKind(t, err, workflow.KindForbidden)

	// A co-programmer may advance, not just the creator.
	if _, err := f.progSvc.Advance(ctx, coProgID, p.ID, model.PhaseSubmission); err != nil {
		t.Fatalf("co-programmer advance: %v", err)
	}
}

func TestProgramAdvanceRejectsSkip(t *testing.T) {
	f := newFixture()
	p := f.newProgram(t, "Autumn Docs")
	_, err := f.progSvc.Advance(context.Background(), creatorID, p.ID, model.PhaseReview)
	wantKind(t, err, workflow.KindInvalidTransition)
}

func TestProgramDeleteOnlyWhileCreated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")

	f.advanceTo(t, p.ID, model.PhaseSubmission)
	wantKind(t, f.progSvc.Delete(ctx, creatorID, p.ID), workflow.KindInvalidTransition)

	p2 := f.newProgram(t, "Winter Docs")
	if err := f.progSvc.Delete(ctx, creatorID, p2.ID); err != nil {
		t.Fatalf("delete in CREATED: %v", err)
	}
	_, err := f.progSvc.Get(ctx, creatorID, p2.ID)
	wantKind(t, err, workflow.KindNotFound)
}

func TestAddProgrammerUnknownUser(t *testing.T) {
	f := newFixture()
	p := f.newProgram(t, "Autumn Docs")
	_, err := f.progSvc.AddProgrammer(context.Background(), creatorID, p.ID, 999)
	wantKind(t, err, workflow.KindNotFound)
}

func TestAdminExcludedFromProgramWorkflow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.progSvc.Create(ctx, adminID, "Admin Fest", "d",
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC))
	wantKind(t, err, workflow.KindForbidden)

	p := f.newProgram(t, "Autumn Docs")
	_, err = f.progSvc.Advance(ctx, adminID, p.ID, model.PhaseSubmission)
	wantKind(t, err, workflow.KindForbidden)
}

func TestInactiveAccountDenied(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	_, err := f.scrSvc.Create(ctx, inactiveID, p.ID, "Night Train", "drama", "")
	wantKind(t, err, workflow.KindForbidden)
}

func TestDecisionSweepRejectsUnsubmittedApprovals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.newProgram(t, "Autumn Docs")
	f.advanceTo(t, p.ID, model.PhaseSubmission)

	sc, err := f.scrSvc.Create(ctx, submitterID, p.ID, "Night Train", "drama", "")
	if err != nil {
		t.Fatalf("create screening: %v", err)
	}
	if _, err := f.scrSvc.Submit(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseAssignment)
	if _, err := f.scrSvc.Assign(ctx, coProgID, sc.ID, staffID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseReview)
	if _, err := f.scrSvc.Review(ctx, staffID, sc.ID, 7, "solid"); err != nil {
		t.Fatalf("review: %v", err)
	}
	f.advanceTo(t, p.ID, model.PhaseScheduling)
	if _, err := f.scrSvc.Approve(ctx, submitterID, sc.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// The submitter never final-submits; entering DECISION sweeps it away.
	f.advanceTo(t, p.ID, model.PhaseDecision)

	got, err := f.screenings.GetByID(ctx, sc.ID)
	if err != nil {
		t.Fatalf("load screening: %v", err)
	}
	if got.State != model.ScreeningRejected {
		t.Fatalf("state = %s, want REJECTED after the decision sweep", got.State)
	}
	if got.RejectionReason == nil || *got.RejectionReason == "" {
		t.Fatal("sweep must record a rejection reason")
	}
	if len(f.audit.byAction(string(workflow.ActionRejectScreening))) == 0 {
		t.Fatal("sweep rejection must be audited")
	}
}
