package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/workflow"
)

// ProgramService implements the program lifecycle: creation, info updates,
// phase advancement, membership management and deletion.
type ProgramService struct {
	Programs   ProgramStore
	Screenings ScreeningStore
	Users      UserStore
	Audit      AuditStore
	Eval       workflow.Evaluator
	Now        func() time.Time // defaults to time.Now().UTC
}

func (s *ProgramService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Create opens a new program in CREATED with the actor as creator.  Any
// active cinema user may create programs; the creator becomes a permanent
// programmer of the result.
func (s *ProgramService) Create(ctx context.Context, actorID uint64, name, description string, startDate, endDate time.Time) (*model.Program, error) {
	actor, err := actorFor(ctx, s.Users, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionCreateProgram, nil, nil); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, workflow.Validation("program name is required")
	}
	if description == "" {
		return nil, workflow.Validation("program description is required")
	}
	if endDate.Before(startDate) {
		return nil, workflow.Validation("end date must be on or after start date")
	}
	now := s.now()
	created, err := s.Programs.Create(ctx, &model.Program{
		Name:        name,
		Description: description,
		StartDate:   startDate,
		EndDate:     endDate,
		Phase:       model.PhaseCreated,
		CreatorID:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, translate(err, "program")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionCreateProgram, programTarget(created.ID), now)
	return created, nil
}

// Get returns one program.  Programs are visible to every authenticated
// user; only screenings carry a visibility policy.
func (s *ProgramService) Get(ctx context.Context, actorID, programID uint64) (*model.Program, error) {
	if _, err := actorFor(ctx, s.Users, actorID); err != nil {
		return nil, err
	}
	p, err := s.Programs.GetByID(ctx, programID)
	return p, translate(err, "program")
}

// List returns all programs, optionally narrowed to those whose name
// contains nameFilter.
func (s *ProgramService) List(ctx context.Context, actorID uint64, nameFilter string) ([]model.Program, error) {
	if _, err := actorFor(ctx, s.Users, actorID); err != nil {
		return nil, err
	}
	return s.Programs.List(ctx, nameFilter)
}

// Update replaces the descriptive fields of a program.
func (s *ProgramService) Update(ctx context.Context, actorID, programID uint64, name, description string, startDate, endDate time.Time) (*model.Program, error) {
	actor, p, err := s.load(ctx, actorID, programID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionUpdateProgram, p, nil); err != nil {
		return nil, err
	}
	next, err := workflow.UpdateProgramInfo(p, name, description, startDate, endDate, s.now())
	if err != nil {
		return nil, err
	}
	stored, err := s.Programs.Update(ctx, next)
	if err != nil {
		return nil, translate(err, "program")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionUpdateProgram, programTarget(programID), s.now())
	return stored, nil
}

// Delete removes a program that is still in CREATED, along with its drafts.
func (s *ProgramService) Delete(ctx context.Context, actorID, programID uint64) error {
	actor, p, err := s.load(ctx, actorID, programID)
	if err != nil {
		return err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionDeleteProgram, p, nil); err != nil {
		return err
	}
	if err := s.Programs.Delete(ctx, p.ID, p.Version); err != nil {
		return translate(err, "program")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionDeleteProgram, programTarget(programID), s.now())
	return nil
}

// Advance moves the program to requestedNext, which must be the single
// legal successor of the current phase.  Entering DECISION additionally
// sweeps the program's screenings: everything still APPROVED missed the
// final submission window and is rejected in the same pass.
func (s *ProgramService) Advance(ctx context.Context, actorID, programID uint64, requestedNext model.ProgramPhase) (*model.Program, error) {
	actor, p, err := s.load(ctx, actorID, programID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, workflow.ActionAdvanceProgram, p, nil); err != nil {
		return nil, err
	}
	now := s.now()
	next, err := workflow.AdvanceProgram(p, requestedNext, now)
	if err != nil {
		return nil, err
	}
	stored, err := s.Programs.Update(ctx, next)
	if err != nil {
		return nil, translate(err, "program")
	}
	audit(ctx, s.Audit, actor.ID, workflow.ActionAdvanceProgram, programTarget(programID), now)

	if requestedNext == model.PhaseDecision {
		s.sweepUnsubmitted(ctx, actor.ID, programID)
	}
	return stored, nil
}

// sweepUnsubmitted rejects every screening still APPROVED when the program
// enters DECISION.  Individual failures are skipped; the sweep is
// best-effort and a lost race means someone else already moved the
// screening.
func (s *ProgramService) sweepUnsubmitted(ctx context.Context, actorID, programID uint64) {
	approved, err := s.Screenings.ListByProgramAndState(ctx, programID, model.ScreeningApproved)
	if err != nil {
		return
	}
	now := s.now()
	for i := range approved {
		next, err := workflow.RejectScreening(&approved[i], "final submission window missed", now)
		if err != nil {
			continue
		}
		if _, err := s.Screenings.Update(ctx, next); err != nil {
			continue
		}
		audit(ctx, s.Audit, actorID, workflow.ActionRejectScreening, screeningTarget(approved[i].ID), now)
	}
}

// AddProgrammer grants the programmer role inside this program.
func (s *ProgramService) AddProgrammer(ctx context.Context, actorID, programID, userID uint64) (*model.Program, error) {
	return s.changeMembers(ctx, actorID, programID, userID, workflow.ActionAddProgrammer, true, workflow.AddProgrammer)
}

// RemoveProgrammer revokes the programmer role.  The creator cannot be
// removed.
func (s *ProgramService) RemoveProgrammer(ctx context.Context, actorID, programID, userID uint64) (*model.Program, error) {
	return s.changeMembers(ctx, actorID, programID, userID, workflow.ActionRemoveProgrammer, false, workflow.RemoveProgrammer)
}

// AddStaff grants the staff role inside this program.  Staff can only be
// changed while the program is still in CREATED.
func (s *ProgramService) AddStaff(ctx context.Context, actorID, programID, userID uint64) (*model.Program, error) {
	return s.changeMembers(ctx, actorID, programID, userID, workflow.ActionAddStaff, true, workflow.AddStaff)
}

// RemoveStaff revokes the staff role, under the same freeze rule.
func (s *ProgramService) RemoveStaff(ctx context.Context, actorID, programID, userID uint64) (*model.Program, error) {
	return s.changeMembers(ctx, actorID, programID, userID, workflow.ActionRemoveStaff, false, workflow.RemoveStaff)
}

func (s *ProgramService) changeMembers(
	ctx context.Context,
	actorID, programID, userID uint64,
	action workflow.Action,
	verifyUser bool,
	apply func(*model.Program, uint64, time.Time) (*model.Program, error),
) (*model.Program, error) {
	actor, p, err := s.load(ctx, actorID, programID)
	if err != nil {
		return nil, err
	}
	if err := s.Eval.CanPerform(actor, action, p, nil); err != nil {
		return nil, err
	}
	if verifyUser {
		if _, err := s.Users.GetByID(ctx, userID); err != nil {
			return nil, translate(err, "user")
		}
	}
	now := s.now()
	next, err := apply(p, userID, now)
	if err != nil {
		return nil, err
	}
	stored, err := s.Programs.Update(ctx, next)
	if err != nil {
		return nil, translate(err, "program")
	}
	audit(ctx, s.Audit, actor.ID, action, fmt.Sprintf("program:%d user:%d", programID, userID), now)
	return stored, nil
}

func (s *ProgramService) load(ctx context.Context, actorID, programID uint64) (workflow.Actor, *model.Program, error) {
	actor, err := actorFor(ctx, s.Users, actorID)
	if err != nil {
		return workflow.Actor{}, nil, err
	}
	p, err := s.Programs.GetByID(ctx, programID)
	if err != nil {
		return workflow.Actor{}, nil, translate(err, "program")
	}
	return actor, p, nil
}

func programTarget(id uint64) string   { return fmt.Sprintf("program:%d", id) }
func screeningTarget(id uint64) string { return fmt.Sprintf("screening:%d", id) }
