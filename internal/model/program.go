package model

import "time"

// ProgramPhase is the lifecycle position of a Program.  Phases form a
// strict linear chain; each phase has exactly one legal successor and
// ANNOUNCED is terminal.  The chain is enforced by the workflow package.
type ProgramPhase string

const (
	PhaseCreated          ProgramPhase = "CREATED"
	PhaseSubmission       ProgramPhase = "SUBMISSION"
	PhaseAssignment       ProgramPhase = "ASSIGNMENT"
	PhaseReview           ProgramPhase = "REVIEW"
	PhaseScheduling       ProgramPhase = "SCHEDULING"
	PhaseFinalPublication ProgramPhase = "FINAL_PUBLICATION"
	PhaseDecision         ProgramPhase = "DECISION"
	PhaseAnnounced        ProgramPhase = "ANNOUNCED"
)

// Program represents a curated festival event window as stored in the
// `programs` table plus its membership rows.  ProgrammerIDs and StaffIDs
// come from the program_programmers and program_staff join tables; the
// creator counts as a programmer even when absent from ProgrammerIDs.
// Name is unique, dates are date-only UTC and EndDate is never before
// StartDate.  Version is the optimistic locking counter, bumped on every
// write.
type Program struct {
	ID            uint64       // programs.id
	Name          string       // programs.name
	Description   string       // programs.description
	StartDate     time.Time    // programs.start_date
	EndDate       time.Time    // programs.end_date
	Phase         ProgramPhase // programs.phase
	CreatorID     uint64       // programs.creator_id
	ProgrammerIDs []uint64     // program_programmers.user_id
	StaffIDs      []uint64     // program_staff.user_id
	Version       uint32       // programs.version (optimistic locking)
	CreatedAt     time.Time    // programs.created_at
	UpdatedAt     time.Time    // programs.updated_at
}

// IsProgrammer reports whether the user manages this program.  The creator
// counts even when the explicit programmer list does not contain them.
func (p *Program) IsProgrammer(userID uint64) bool {
	if userID == 0 {
		return false
	}
	if p.CreatorID == userID {
		return true
	}
	for _, id := range p.ProgrammerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsStaff reports whether the user belongs to the program's review staff.
func (p *Program) IsStaff(userID uint64) bool {
	if userID == 0 {
		return false
	}
	for _, id := range p.StaffIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so that callers can build a proposed next
// snapshot without mutating the one read from the store.
func (p *Program) Clone() *Program {
	cp := *p
	cp.ProgrammerIDs = append([]uint64(nil), p.ProgrammerIDs...)
	cp.StaffIDs = append([]uint64(nil), p.StaffIDs...)
	return &cp
}
