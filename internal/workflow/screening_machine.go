package workflow

import (
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
)

// actorRole names the scoped role a screening transition demands.
type actorRole int

const (
	roleSubmitter actorRole = iota
	roleProgrammer
	roleAssignedHandler
)

func (r actorRole) String() string {
	switch r {
	case roleSubmitter:
		return "the submitter"
	case roleProgrammer:
		return "a programmer of the program"
	case roleAssignedHandler:
		return "the assigned staff member"
	}
	return "unknown"
}

// transitionRule couples a screening transition with the program phases it
// is legal in and the scoped role that may trigger it.  fromAny marks rules
// (rejection) that accept every non-terminal starting state.
type transitionRule struct {
	from    model.ScreeningState
	fromAny bool
	phases  []model.ProgramPhase
	role    actorRole
}

// screeningRules is the transition × program-phase × actor table.  Withdraw
// is not listed: it deletes the screening rather than moving it, and its
// guards live in CanPerform directly.
var screeningRules = map[Action]transitionRule{
	ActionSubmitScreening: {
		from:   model.ScreeningCreated,
		phases: []model.ProgramPhase{model.PhaseSubmission},
		role:   roleSubmitter,
	},
	ActionAssignHandler: {
		from:   model.ScreeningSubmitted,
		phases: []model.ProgramPhase{model.PhaseAssignment},
		role:   roleProgrammer,
	},
	ActionReviewScreening: {
		from:   model.ScreeningSubmitted,
		phases: []model.ProgramPhase{model.PhaseReview},
		role:   roleAssignedHandler,
	},
	ActionApproveScreening: {
		from:   model.ScreeningReviewed,
		phases: []model.ProgramPhase{model.PhaseScheduling},
		role:   roleSubmitter,
	},
	ActionFinalSubmitScreening: {
		from:   model.ScreeningApproved,
		phases: []model.ProgramPhase{model.PhaseFinalPublication},
		role:   roleSubmitter,
	},
	ActionScheduleScreening: {
		from:   model.ScreeningFinalSubmitted,
		phases: []model.ProgramPhase{model.PhaseDecision},
		role:   roleProgrammer,
	},
	ActionRejectScreening: {
		fromAny: true,
		phases:  []model.ProgramPhase{model.PhaseScheduling, model.PhaseDecision},
		role:    roleProgrammer,
	},
}

// checkScreeningGuards validates the state, phase and role legs of a
// transition rule.  It returns nil when every guard passes.  State and
// phase failures come back as InvalidTransition, role failures as
// Forbidden, so the caller can surface the precise denial.
func checkScreeningGuards(action Action, roles RoleSet, program *model.Program, screening *model.Screening) error {
	rule, ok := screeningRules[action]
	if !ok {
		return Forbidden("action %s is not a screening transition", action)
	}
	if screening.State.IsFinal() {
		return InvalidTransition("screening is already in the terminal state %s", screening.State)
	}
	if !rule.fromAny && screening.State != rule.from {
		return InvalidTransition("screening must be %s, not %s", rule.from, screening.State)
	}
	phaseOK := false
	for _, ph := range rule.phases {
		if program.Phase == ph {
			phaseOK = true
			break
		}
	}
	if !phaseOK {
		return InvalidTransition("program must be in %s, not %s", phaseList(rule.phases), program.Phase)
	}
	var held Membership
	switch rule.role {
	case roleSubmitter:
		held = roles.Submitter
	case roleProgrammer:
		held = roles.Programmer
	case roleAssignedHandler:
		held = roles.AssignedHandler
	}
	if !held.Holds() {
		return Forbidden("only %s can perform this action", rule.role)
	}
	return nil
}

func phaseList(phases []model.ProgramPhase) string {
	out := ""
	for i, ph := range phases {
		if i > 0 {
			out += " or "
		}
		out += string(ph)
	}
	return out
}

// SubmitScreening moves CREATED -> SUBMITTED.  The title must be present;
// an untitled draft is incomplete and cannot enter the program.
func SubmitScreening(s *model.Screening, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningCreated {
		return nil, InvalidTransition("only a CREATED screening can be submitted")
	}
	if s.Title == "" {
		return nil, Validation("screening is incomplete: a title is required before submission")
	}
	next := s.Clone()
	next.State = model.ScreeningSubmitted
	next.SubmittedAt = &now
	next.UpdatedAt = now
	return next, nil
}

// AssignHandler binds a staff member to the screening for review.  The
// handler is assigned exactly once; reassignment while the review is
// pending is refused rather than silently overwritten.
func AssignHandler(s *model.Screening, staffID uint64, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningSubmitted {
		return nil, InvalidTransition("handler assignment requires a SUBMITTED screening")
	}
	if staffID == 0 {
		return nil, Validation("staff id is required")
	}
	if s.StaffMemberID != nil {
		return nil, InvalidTransition("a handler is already assigned to this screening")
	}
	if s.SubmitterID == staffID {
		return nil, Validation("the submitter cannot be assigned as the review handler")
	}
	next := s.Clone()
	next.StaffMemberID = &staffID
	next.UpdatedAt = now
	return next, nil
}

// ReviewScreening moves SUBMITTED -> REVIEWED and records score and
// comments.  The score must be an integer in [0,10].
func ReviewScreening(s *model.Screening, score int, comments string, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningSubmitted {
		return nil, InvalidTransition("only a SUBMITTED screening can be reviewed")
	}
	if s.StaffMemberID == nil {
		return nil, InvalidTransition("no handler is assigned to this screening")
	}
	if score < 0 || score > 10 {
		return nil, Validation("score must be between 0 and 10")
	}
	next := s.Clone()
	next.State = model.ScreeningReviewed
	next.Score = &score
	next.Comments = &comments
	next.ReviewedAt = &now
	next.UpdatedAt = now
	return next, nil
}

// ApproveScreening moves REVIEWED -> APPROVED.
func ApproveScreening(s *model.Screening, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningReviewed {
		return nil, InvalidTransition("only a REVIEWED screening can be approved")
	}
	next := s.Clone()
	next.State = model.ScreeningApproved
	next.UpdatedAt = now
	return next, nil
}

// FinalSubmitScreening moves APPROVED -> FINAL_SUBMITTED.  Details are
// frozen afterwards.
func FinalSubmitScreening(s *model.Screening, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningApproved {
		return nil, InvalidTransition("only an APPROVED screening can be final-submitted")
	}
	next := s.Clone()
	next.State = model.ScreeningFinalSubmitted
	next.FinalSubmittedAt = &now
	next.UpdatedAt = now
	return next, nil
}

// ScheduleScreening moves FINAL_SUBMITTED -> SCHEDULED, the happy terminal
// state.  Date and room are set together or not at all.
func ScheduleScreening(s *model.Screening, date time.Time, room string, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningFinalSubmitted {
		return nil, InvalidTransition("only a FINAL_SUBMITTED screening can be scheduled")
	}
	if date.IsZero() {
		return nil, Validation("a screening date is required")
	}
	if room == "" {
		return nil, Validation("a room is required")
	}
	next := s.Clone()
	next.State = model.ScreeningScheduled
	next.ScheduledDate = &date
	next.Room = &room
	next.UpdatedAt = now
	return next, nil
}

// RejectScreening moves any non-terminal state -> REJECTED with a reason.
func RejectScreening(s *model.Screening, reason string, now time.Time) (*model.Screening, error) {
	if s.State.IsFinal() {
		return nil, InvalidTransition("screening is already in the terminal state %s", s.State)
	}
	if reason == "" {
		return nil, Validation("a rejection reason is required")
	}
	next := s.Clone()
	next.State = model.ScreeningRejected
	next.RejectionReason = &reason
	next.UpdatedAt = now
	return next, nil
}

// UpdateScreeningDraft replaces the editable fields of a draft.  Only a
// CREATED screening can still be edited, and only by its submitter (the
// role leg is checked by CanPerform).
func UpdateScreeningDraft(s *model.Screening, title, genre, description string, now time.Time) (*model.Screening, error) {
	if s.State != model.ScreeningCreated {
		return nil, InvalidTransition("only a CREATED screening can be updated")
	}
	next := s.Clone()
	next.Title = title
	next.Genre = genre
	next.Description = description
	next.UpdatedAt = now
	return next, nil
}
