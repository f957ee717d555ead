package service

import (
	"context"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/queue"
	"github.com/iliyamo/festival-program-office/internal/workflow"
)

// ScreeningService implements the screening lifecycle from draft to
// SCHEDULED or REJECTED.  Every mutation loads fresh snapshots, asks the
// workflow package for permission and for the proposed next snapshot, and
// persists with compare-and-swap so concurrent decisions cannot both win.
type ScreeningService struct {
	Programs   ProgramStore
	Screenings ScreeningStore
	Users      UserStore
	Audit      AuditStore
	Eval       workflow.Evaluator
	Now        func() time.Time

	// PublishScheduled is called after a screening commits to SCHEDULED.
	// nil disables publishing; tests leave it nil, main wires the broker.
	PublishScheduled func(ctx context.Context, event queue.ScreeningScheduledEvent) error
}

func (s *ScreeningService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create opens a screening draft in the given program with the actor as
// submitter.  The program creator is refused here: entering the competition
// you judge is the one conflict the workflow forbids outright.
func (s *ScreeningService) Create(ctx context.Context, actorID, programID uint64, title, genre, description string) (*model.Screening, error) {
	actor, err := actorFor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	p, err := s.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, translate(err, "program")
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionCreateScreening, p, nil); err != nil {
		return nil, err
	}
	if p.Phase == model.PhaseAnnounced {
		return nil, workflow.InvalidTransition("program is ANNOUNCED and no longer accepts entries")
	}
	if title == "" {
		return nil, workflow.Validation("screening title is required")
	}
	now := s.now()
	created, err := s.Screenings.Create(ctx, &model.Screening{
		ProgramID:   programID,
		SubmitterID: actor.ID,
		Title:       title,
		Genre:       genre,
		Description: description,
		State:       model.ScreeningCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, translate(err, "screening")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionCreateScreening, screeningTarget(created.ID), now)
	return created, nil
}

// Get returns one screening, subject to the visibility policy.
func (s *ScreeningService) Get(ctx context.Context, actorID, screeningID uint64) (*model.Screening, error) {
	actor, p, sc, err := s.load(ctx, actorID, screeningID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionViewScreening, p, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// ListByProgram returns the screenings of one program the actor is allowed
// to see.  Members of the program see everything; outsiders see only their
// own entries unless the open visibility policy is on.
func (s *ScreeningService) ListByProgram(ctx context.Context, actorID, programID uint64) ([]model.Screening, error) {
	actor, err := actorFor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	p, err := s.Programs.GetByID(ctx, programID)
	if err != nil {
		return nil, translate(err, "program")
	}
	all, err := s.Screenings.ListByProgram(ctx, programID)
	if err != nil {
		return nil, err
	}
	visible := make([]model.Screening, 0, len(all))
	for i := range all {
		if s.Eval.CanPerform(actor, workflow.ActionViewScreening, p, &all[i]) == nil {
			visible = append(visible, all[i])
		}
	}
	return visible, nil
}

// ListMine returns every screening the actor has entered, across programs.
func (s *ScreeningService) ListMine(ctx context.Context, actorID uint64) ([]model.Screening, error) {
	actor, err := actorFor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	return s.Screenings.ListBySubmitter(ctx, actor.ID)
}

// Update replaces the editable fields of a draft.
func (s *ScreeningService) Update(ctx context.Context, actorID, screeningID uint64, title, genre, description string) (*model.Screening, error) {
	actor, p, sc, err := s.load(ctx, actorID, screeningID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionUpdateScreening, p, sc); err != nil {
		return nil, err
	}
	next, err := workflow.UpdateScreeningDraft(sc, title, genre, description, s.now())
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, actor.ID, workflow.ActionUpdateScreening, next)
}

// Submit enters a draft into the program's competition.
func (s *ScreeningService) Submit(ctx context.Context, actorID, screeningID uint64) (*model.Screening, error) {
	return s.transition(ctx, actorID, screeningID, workflow.ActionSubmitScreening,
		func(sc *model.Screening, now time.Time) (*model.Screening, error) {
			return workflow.SubmitScreening(sc, now)
		})
}

// Withdraw deletes a draft that never entered the competition.  Allowed to
// the submitter and to the program creator.
func (s *ScreeningService) Withdraw(ctx context.Context, actorID, screeningID uint64) error {
	actor, p, sc, err := s.load(ctx, actorID, screeningID)
	if err != nil {
		return err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionWithdrawScreening, p, sc); err != nil {
		return err
	}
	if err := s.Screenings.Delete(ctx, sc.ID, sc.Version); err != nil {
		return translate(err, "screening")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionWithdrawScreening, screeningTarget(screeningID), s.now())
	return nil
}

// Assign binds a staff member of the program to the screening as its review
// handler.  The target must hold the staff role in this program; the
// submitter can never handle their own entry.
func (s *ScreeningService) Assign(ctx context.Context, actorID, screeningID, staffID uint64) (*model.Screening, error) {
	actor, p, sc, err := s.load(ctx, actorID, screeningID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionAssignHandler, p, sc); err != nil {
		return nil, err
	}
	if !p.IsStaff(staffID) {
		return nil, workflow.Validation("user is not staff of this program")
	}
	next, err := workflow.AssignHandler(sc, staffID, s.now())
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, actor.ID, workflow.ActionAssignHandler, next)
}

// Review records the assigned handler's score and comments.
func (s *ScreeningService) Review(ctx context.Context, actorID, screeningID uint64, score int, comments string) (*model.Screening, error) {
	return s.transition(ctx, actorID, screeningID, workflow.ActionReviewScreening,
		func(sc *model.Screening, now time.Time) (*model.Screening, error) {
			return workflow.ReviewScreening(sc, score, comments, now)
		})
}

// Approve is the submitter accepting the review outcome.
func (s *ScreeningService) Approve(ctx context.Context, actorID, screeningID uint64) (*model.Screening, error) {
	return s.transition(ctx, actorID, screeningID, workflow.ActionApproveScreening,
		func(sc *model.Screening, now time.Time) (*model.Screening, error) {
			return workflow.ApproveScreening(sc, now)
		})
}

// FinalSubmit freezes the screening for the decision phase.
func (s *ScreeningService) FinalSubmit(ctx context.Context, actorID, screeningID uint64) (*model.Screening, error) {
	return s.transition(ctx, actorID, screeningID, workflow.ActionFinalSubmitScreening,
		func(sc *model.Screening, now time.Time) (*model.Screening, error) {
			return workflow.FinalSubmitScreening(sc, now)
		})
}

// Schedule assigns date and room, moving the screening to SCHEDULED.  The
// version check guarantees a single winner when two programmers decide at
// once; the loser gets a conflict and must reload.  The committed decision
// is announced on the broker, best-effort.
func (s *ScreeningService) Schedule(ctx context.Context, actorID, screeningID uint64, date time.Time, room string) (*model.Screening, error) {
	actor, p, sc, err := s.load(ctx, actorID, screeningID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionScheduleScreening, p, sc); err != nil {
		return nil, err
	}
	now := s.now()
	next, err := workflow.ScheduleScreening(sc, date, room, now)
	if err != nil {
		return nil, err
	}
	stored, err := s.Screenings.Update(ctx, next)
	if err != nil {
		return nil, translate(err, "screening")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionScheduleScreening, screeningTarget(screeningID), now)
	if s.PublishScheduled != nil {
		_ = s.PublishScheduled(ctx, queue.ScreeningScheduledEvent{
			ScreeningID:   stored.ID,
			ProgramID:     p.ID,
			ProgramName:   p.Name,
			SubmitterID:   stored.SubmitterID,
			Title:         stored.Title,
			Room:          room,
			ScheduledDate: date.Format("2006-01-02"),
			ScheduledBy:   actor.ID,
			ScheduledAt:   now.Format(time.RFC3339),
		})
	}
	return stored, nil
}

// Reject moves a screening to REJECTED with a reason, during SCHEDULING or
// DECISION.
func (s *ScreeningService) Reject(ctx context.Context, actorID, screeningID uint64, reason string) (*model.Screening, error) {
	return s.transition(ctx, actorID, screeningID, workflow.ActionRejectScreening,
		func(sc *model.Screening, now time.Time) (*model.Screening, error) {
			return workflow.RejectScreening(sc, reason, now)
		})
}

// transition is the shared load, permission, apply, persist path for the
// plain state transitions.
func (s *ScreeningService) transition(
	ctx context.Context,
	actorID, screeningID uint64,
	action workflow.Action,
	apply func(*model.Screening, time.Time) (*model.Screening, error),
) (*model.Screening, error) {
	actor, p, sc, err := s.load(ctx, actorID, screeningID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, action, p, sc); err != nil {
		return nil, err
	}
	next, err := apply(sc, s.now())
	if err != nil {
		return nil, err
	}
	return s.persist(ctx, actor.ID, action, next)
}

func (s *ScreeningService) persist(ctx context.Context, actorID uint64, action workflow.Action, next *model.Screening) (*model.Screening, error) {
	stored, err := s.Screenings.Update(ctx, next)
	if err != nil {
		return nil, translate(err, "screening")
	}
	audit(ctx, s.Audit, actorID, action, screeningTarget(stored.ID), s.now())
	return stored, nil
}

func (s *ScreeningService) load(ctx context.Context, actorID, screeningID uint64) (workflow.Actor, *model.Program, *model.Screening, error) {
	actor, err := actorFor(ctx, s.Users, actorID)
	if err != nil {
		return workflow.Actor{}, nil, nil, err
	}
	sc, err := s.Screenings.GetByID(ctx, screeningID)
	if err != nil {
		return workflow.Actor{}, nil, nil, translate(err, "screening")
	}
	p, err := s.Programs.GetByID(ctx, sc.ProgramID)
	if err != nil {
		return workflow.Actor{}, nil, nil, translate(err, "program")
	}
	return actor, p, sc, nil
}
