package workflow

import (
	"testing"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
)

func testScreening(state model.ScreeningState) *model.Screening {
	return &model.Screening{
		ID:          7,
		ProgramID:   1,
		SubmitterID: 30,
		Title:       "Night Train",
		Genre:       "drama",
		State:       state,
		Version:     2,
	}
}

func TestSubmitScreening(t *testing.T) {
	now := time.Now().UTC()
	s := testScreening(model.ScreeningCreated)

	next, err := SubmitScreening(s, now)
	if err != nil {
		t.Fatalf("SubmitScreening: %v", err)
	}
	if next.State != model.ScreeningSubmitted {
		t.Fatalf("state = %s, want SUBMITTED", next.State)
	}
	if next.SubmittedAt == nil || !next.SubmittedAt.Equal(now) {
		t.Fatal("SubmittedAt not recorded")
	}
	if s.State != model.ScreeningCreated {
		t.Fatal("input snapshot was mutated")
	}
}

func TestSubmitScreeningRequiresTitle(t *testing.T) {
	s := testScreening(model.ScreeningCreated)
	s.Title = ""
	if _, err := SubmitScreening(s, time.Now()); !IsKind(err, KindValidation) {
		t.Fatalf("want VALIDATION for missing title, got %v", err)
	}
}

func TestAssignHandlerOnce(t *testing.T) {
	s := testScreening(model.ScreeningSubmitted)

	next, err := AssignHandler(s, 20, time.Now())
	if err != nil {
		t.Fatalf("AssignHandler: %v", err)
	}
	if !next.IsAssignedTo(20) {
		t.Fatal("handler not recorded")
	}

	// Second assignment on the updated snapshot must be refused.
	if _, err := AssignHandler(next, 21, time.Now()); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("reassignment must fail, got %v", err)
	}
}

func TestAssignHandlerRejectsSubmitter(t *testing.T) {
	s := testScreening(model.ScreeningSubmitted)
	if _, err := AssignHandler(s, s.SubmitterID, time.Now()); !IsKind(err, KindValidation) {
		t.Fatalf("submitter as handler must be rejected, got %v", err)
	}
}

func TestReviewScoreBounds(t *testing.T) {
	staff := uint64(20)
	for _, score := range []int{0, 10} {
		s := testScreening(model.ScreeningSubmitted)
		s.StaffMemberID = &staff
		next, err := ReviewScreening(s, score, "fine", time.Now())
		if err != nil {
			t.Fatalf("score %d should be accepted: %v", score, err)
		}
		if next.Score == nil || *next.Score != score {
			t.Fatalf("score %d not recorded", score)
		}
		if next.State != model.ScreeningReviewed {
			t.Fatalf("state = %s, want REVIEWED", next.State)
		}
	}
	for _, score := range []int{-1, 11} {
		s := testScreening(model.ScreeningSubmitted)
		s.StaffMemberID = &staff
		if _, err := ReviewScreening(s, score, "", time.Now()); !IsKind(err, KindValidation) {
			t.Fatalf("score %d must be rejected, got %v", score, err)
		}
	}
}

func TestReviewRequiresAssignedHandler(t *testing.T) {
	s := testScreening(model.ScreeningSubmitted)
	if _, err := ReviewScreening(s, 5, "", time.Now()); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("review without handler must fail, got %v", err)
	}
}

func TestScheduleScreeningSetsDateAndRoomTogether(t *testing.T) {
	date := time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)

	s := testScreening(model.ScreeningFinalSubmitted)
	next, err := ScheduleScreening(s, date, "Saal 2", time.Now())
	if err != nil {
		t.Fatalf("ScheduleScreening: %v", err)
	}
	if next.State != model.ScreeningScheduled {
		t.Fatalf("state = %s, want SCHEDULED", next.State)
	}
	if next.Room == nil || *next.Room != "Saal 2" || next.ScheduledDate == nil {
		t.Fatal("room/date not recorded")
	}

	if _, err := ScheduleScreening(testScreening(model.ScreeningFinalSubmitted), time.Time{}, "Saal 2", time.Now()); !IsKind(err, KindValidation) {
		t.Fatalf("missing date must be rejected, got %v", err)
	}
	if _, err := ScheduleScreening(testScreening(model.ScreeningFinalSubmitted), date, "", time.Now()); !IsKind(err, KindValidation) {
		t.Fatalf("missing room must be rejected, got %v", err)
	}
}

func TestRejectScreening(t *testing.T) {
	for _, state := range []model.ScreeningState{
		model.ScreeningCreated, model.ScreeningSubmitted, model.ScreeningReviewed,
		model.ScreeningApproved, model.ScreeningFinalSubmitted,
	} {
		next, err := RejectScreening(testScreening(state), "out of scope", time.Now())
		if err != nil {
			t.Fatalf("reject from %s: %v", state, err)
		}
		if next.State != model.ScreeningRejected || next.RejectionReason == nil {
			t.Fatalf("reject from %s did not record state/reason", state)
		}
	}

	if _, err := RejectScreening(testScreening(model.ScreeningScheduled), "r", time.Now()); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("rejecting SCHEDULED must fail, got %v", err)
	}
	if _, err := RejectScreening(testScreening(model.ScreeningRejected), "r", time.Now()); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("rejecting REJECTED must fail, got %v", err)
	}
	if _, err := RejectScreening(testScreening(model.ScreeningSubmitted), "", time.Now()); !IsKind(err, KindValidation) {
		t.Fatalf("empty reason must be rejected, got %v", err)
	}
}

func TestTransitionsRejectWrongStartingState(t *testing.T) {
	now := time.Now()
	if _, err := SubmitScreening(testScreening(model.ScreeningSubmitted), now); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("submit from SUBMITTED: got %v", err)
	}
	if _, err := ApproveScreening(testScreening(model.ScreeningSubmitted), now); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("approve from SUBMITTED: got %v", err)
	}
	if _, err := FinalSubmitScreening(testScreening(model.ScreeningReviewed), now); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("final-submit from REVIEWED: got %v", err)
	}
	if _, err := ScheduleScreening(testScreening(model.ScreeningApproved), time.Now(), "Saal 1", now); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("schedule from APPROVED: got %v", err)
	}
}

func TestUpdateScreeningDraftOnlyWhileCreated(t *testing.T) {
	s := testScreening(model.ScreeningCreated)
	next, err := UpdateScreeningDraft(s, "New Title", "doc", "longer cut", time.Now())
	if err != nil {
		t.Fatalf("UpdateScreeningDraft: %v", err)
	}
	if next.Title != "New Title" || next.Genre != "doc" {
		t.Fatal("fields not replaced")
	}
	if _, err := UpdateScreeningDraft(testScreening(model.ScreeningSubmitted), "x", "", "", time.Now()); !IsKind(err, KindInvalidTransition) {
		t.Fatalf("update after submission must fail, got %v", err)
	}
}
