package workflow

import "github.com/iliyamo/festival-program-office/internal/model"

// Action enumerates every gated operation of the cinema workflow.
type Action string

const (
	ActionCreateProgram    Action = "program.create"
	ActionUpdateProgram    Action = "program.update"
	ActionDeleteProgram    Action = "program.delete"
	ActionAdvanceProgram   Action = "program.advance"
	ActionAddProgrammer    Action = "program.add_programmer"
	ActionRemoveProgrammer Action = "program.remove_programmer"
	ActionAddStaff         Action = "program.add_staff"
	ActionRemoveStaff      Action = "program.remove_staff"

	ActionCreateScreening      Action = "screening.create"
	ActionUpdateScreening      Action = "screening.update"
	ActionSubmitScreening      Action = "screening.submit"
	ActionWithdrawScreening    Action = "screening.withdraw"
	ActionAssignHandler        Action = "screening.assign_handler"
	ActionReviewScreening      Action = "screening.review"
	ActionApproveScreening     Action = "screening.approve"
	ActionFinalSubmitScreening Action = "screening.final_submit"
	ActionScheduleScreening    Action = "screening.schedule"
	ActionRejectScreening      Action = "screening.reject"
	ActionViewScreening        Action = "screening.view"
)

// Actor is the request-scoped identity the evaluator reasons about.  It is
// rebuilt from the identity provider on every request; there is no session
// singleton anywhere in the workflow.
type Actor struct {
	ID     uint64
	Role   model.GlobalRole
	Active bool
}

// Evaluator holds the policy parameters that are configuration rather than
// hard rules.  OpenScreeningVisibility widens screening read access from
// "submitter and program members" to every cinema user.
type Evaluator struct {
	OpenScreeningVisibility bool
}

// CanPerform decides whether actor may execute action against the given
// snapshots.  nil means allowed; otherwise the returned *Error carries the
// denial kind and a reason specific enough to show a user.  Evaluation
// order: unauthenticated -> inactive -> admin exclusion -> creator
// conflict-of-interest -> state machine guards.
//
// program may be nil only for create-time checks (which fail open on the
// missing snapshot); every other action fails closed when a needed snapshot
// is absent.
func (e Evaluator) CanPerform(actor Actor, action Action, program *model.Program, screening *model.Screening) error {
	if actor.ID == 0 || actor.Role == model.RoleVisitor {
		return Unauthenticated("authentication required")
	}
	if !actor.Active {
		return Forbidden("account is deactivated")
	}
	// Admin authority is disjoint from cinema workflow authority: a platform
	// ADMIN is denied every domain action no matter which scoped roles the
	// relationship data would grant.
	if actor.Role == model.RoleAdmin {
		return Forbidden("platform administrators cannot act in the cinema workflow")
	}

	roles := Resolve(actor.ID, program, screening)

	// Conflict of interest: the creator of a program may not enter their own
	// program as a submitter.  Other programmers of the program are not
	// restricted by this rule, and the creator remains free to submit into
	// any program they did not create.
	if action == ActionCreateScreening || action == ActionSubmitScreening {
		if roles.Creator.Holds() {
			return Forbidden("the program creator cannot submit screenings into their own program")
		}
	}

	switch action {
	case ActionCreateProgram, ActionCreateScreening:
		// Create-time checks fail open on missing snapshots: any active
		// cinema user may create, subject only to the conflict rule above.
		return nil

	case ActionUpdateProgram, ActionAdvanceProgram,
		ActionAddProgrammer, ActionRemoveProgrammer,
		ActionAddStaff, ActionRemoveStaff:
		if !roles.Programmer.Holds() {
			return Forbidden("only a programmer of this program can manage it")
		}
		return nil

	case ActionDeleteProgram:
		if !roles.Programmer.Holds() {
			return Forbidden("only a programmer of this program can delete it")
		}
		if program.Phase != model.PhaseCreated {
			return InvalidTransition("a program can be deleted only while still in CREATED")
		}
		return nil

	case ActionUpdateScreening:
		if !roles.Submitter.Holds() {
			return Forbidden("only the submitter can update this screening")
		}
		if screening.State != model.ScreeningCreated {
			return InvalidTransition("only a CREATED screening can be updated")
		}
		return nil

	case ActionWithdrawScreening:
		if !roles.Submitter.Holds() && !roles.Creator.Holds() {
			return Forbidden("only the submitter or the program creator can withdraw this screening")
		}
		if screening == nil {
			return Forbidden("entity not loaded")
		}
		if screening.State != model.ScreeningCreated {
			return InvalidTransition("withdrawal is allowed only while the screening is still CREATED")
		}
		return nil

	case ActionViewScreening:
		if e.OpenScreeningVisibility {
			return nil
		}
		if roles.Submitter.Holds() || roles.Programmer.Holds() || roles.Staff.Holds() {
			return nil
		}
		return Forbidden("this screening is visible only to its submitter and the program's members")

	default:
		if screening == nil || program == nil {
			return Forbidden("entity not loaded")
		}
		return checkScreeningGuards(action, roles, program, screening)
	}
}
