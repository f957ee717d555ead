package workflow

import (
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
)

// programSuccessor maps each phase to its single legal next phase.
// ANNOUNCED has no entry: it is terminal.
var programSuccessor = map[model.ProgramPhase]model.ProgramPhase{
	model.PhaseCreated:          model.PhaseSubmission,
	model.PhaseSubmission:       model.PhaseAssignment,
	model.PhaseAssignment:       model.PhaseReview,
	model.PhaseReview:           model.PhaseScheduling,
	model.PhaseScheduling:       model.PhaseFinalPublication,
	model.PhaseFinalPublication: model.PhaseDecision,
	model.PhaseDecision:         model.PhaseAnnounced,
}

// NextPhase returns the single legal successor of from.  ok is false when
// from is terminal or unknown.
func NextPhase(from model.ProgramPhase) (model.ProgramPhase, bool) {
	next, ok := programSuccessor[from]
	return next, ok
}

// CanAdvance reports whether moving from -> to is the table-defined step.
// Skipping and moving backward are never allowed.
func CanAdvance(from, to model.ProgramPhase) bool {
	next, ok := programSuccessor[from]
	return ok && next == to
}

// AdvanceProgram validates that requestedNext is the single legal successor
// of the program's current phase and returns a proposed next snapshot with
// the phase applied.  The caller is responsible for the actor check (via
// CanPerform) and for persisting the result; nothing is cascaded onto the
// program's screenings here.
func AdvanceProgram(p *model.Program, requestedNext model.ProgramPhase, now time.Time) (*model.Program, error) {
	if !CanAdvance(p.Phase, requestedNext) {
		return nil, InvalidTransition("program cannot move from %s to %s", p.Phase, requestedNext)
	}
	next := p.Clone()
	next.Phase = requestedNext
	next.UpdatedAt = now
	return next, nil
}

// UpdateProgramInfo returns a proposed snapshot with name, description and
// dates replaced.  Programs are immutable once ANNOUNCED.
func UpdateProgramInfo(p *model.Program, name, description string, startDate, endDate time.Time, now time.Time) (*model.Program, error) {
	if p.Phase == model.PhaseAnnounced {
		return nil, InvalidTransition("program is ANNOUNCED and locked")
	}
	if name == "" {
		return nil, Validation("program name is required")
	}
	if description == "" {
		return nil, Validation("program description is required")
	}
	if endDate.Before(startDate) {
		return nil, Validation("end date must be on or after start date")
	}
	next := p.Clone()
	next.Name = name
	next.Description = description
	next.StartDate = startDate
	next.EndDate = endDate
	next.UpdatedAt = now
	return next, nil
}

// AddProgrammer returns a proposed snapshot with userID added to the
// programmer set.  Programmers stay mutable until ANNOUNCED.  A user can
// never hold both the programmer and the staff role inside one program.
func AddProgrammer(p *model.Program, userID uint64, now time.Time) (*model.Program, error) {
	if p.Phase == model.PhaseAnnounced {
		return nil, InvalidTransition("program is ANNOUNCED and locked")
	}
	if userID == 0 {
		return nil, Validation("user id is required")
	}
	if p.IsStaff(userID) {
		return nil, Validation("user is staff of this program and cannot also be a programmer")
	}
	if p.IsProgrammer(userID) {
		return nil, Conflict("user is already a programmer of this program")
	}
	next := p.Clone()
	next.ProgrammerIDs = append(next.ProgrammerIDs, userID)
	next.UpdatedAt = now
	return next, nil
}

// RemoveProgrammer returns a proposed snapshot with userID removed from the
// programmer set.  The creator is always a programmer and cannot be removed.
func RemoveProgrammer(p *model.Program, userID uint64, now time.Time) (*model.Program, error) {
	if p.Phase == model.PhaseAnnounced {
		return nil, InvalidTransition("program is ANNOUNCED and locked")
	}
	if userID == p.CreatorID {
		return nil, Validation("the creator cannot be removed from programmers")
	}
	next := p.Clone()
	next.ProgrammerIDs = removeID(next.ProgrammerIDs, userID)
	next.UpdatedAt = now
	return next, nil
}

// AddStaff returns a proposed snapshot with userID added to the staff set.
// The staff set is frozen once the program leaves CREATED, and the creator
// (a permanent programmer) can never be staff of their own program.
func AddStaff(p *model.Program, userID uint64, now time.Time) (*model.Program, error) {
	if p.Phase != model.PhaseCreated {
		return nil, InvalidTransition("staff membership is frozen once submission starts")
	}
	if userID == 0 {
		return nil, Validation("user id is required")
	}
	if p.IsProgrammer(userID) {
		return nil, Validation("user is a programmer of this program and cannot also be staff")
	}
	if p.IsStaff(userID) {
		return nil, Conflict("user is already staff of this program")
	}
	next := p.Clone()
	next.StaffIDs = append(next.StaffIDs, userID)
	next.UpdatedAt = now
	return next, nil
}

// RemoveStaff returns a proposed snapshot with userID removed from the staff
// set, under the same freeze rule as AddStaff.
func RemoveStaff(p *model.Program, userID uint64, now time.Time) (*model.Program, error) {
	if p.Phase != model.PhaseCreated {
		return nil, InvalidTransition("staff membership is frozen once submission starts")
	}
	next := p.Clone()
	next.StaffIDs = removeID(next.StaffIDs, userID)
	next.UpdatedAt = now
	return next, nil
}

func removeID(ids []uint64, userID uint64) []uint64 {
	out := ids[:0]
	for _, id := range ids {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}
