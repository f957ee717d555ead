package workflow

import "github.com/iliyamo/festival-program-office/internal/model"

// Membership is a tri-state answer to "does the user hold this scoped role".
// Unknown means the entity needed to answer was not supplied; callers must
// decide explicitly whether to fail open (create-time checks) or closed
// (everything else) instead of silently treating it as false.
type Membership int

const (
	MembershipUnknown Membership = iota // entity not loaded
	MembershipNo
	MembershipYes
)

// Holds reports a definite yes.  Unknown is not a yes.
func (m Membership) Holds() bool { return m == MembershipYes }

// Denied reports a definite no.  Unknown is not a no.
func (m Membership) Denied() bool { return m == MembershipNo }

// RoleSet contains every program- and screening-scoped role a user holds
// with respect to one concrete Program/Screening pair.  Roles are derived
// purely from relationship fields, never from the global account role.
type RoleSet struct {
	Creator         Membership // program.CreatorID == user
	Programmer      Membership // creator or member of program.ProgrammerIDs
	Staff           Membership // member of program.StaffIDs
	Submitter       Membership // screening.SubmitterID == user
	AssignedHandler Membership // screening.StaffMemberID == user
}

// Resolve computes the RoleSet of userID against the given snapshots.
// Either snapshot may be nil (not yet loaded); the corresponding roles then
// resolve to Unknown rather than No.
func Resolve(userID uint64, program *model.Program, screening *model.Screening) RoleSet {
	rs := RoleSet{}
	if program != nil {
		rs.Creator = membership(program.CreatorID == userID && userID != 0)
		rs.Programmer = membership(program.IsProgrammer(userID))
		rs.Staff = membership(program.IsStaff(userID))
	}
	if screening != nil {
		rs.Submitter = membership(screening.SubmitterID == userID && userID != 0)
		rs.AssignedHandler = membership(screening.IsAssignedTo(userID))
	}
	return rs
}

func membership(b bool) Membership {
	if b {
		return MembershipYes
	}
	return MembershipNo
}
