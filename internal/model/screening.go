package model

import "time"

// ScreeningState is the lifecycle position of a Screening.  SCHEDULED and
// REJECTED are terminal.  Transitions additionally depend on the owning
// program's phase; the full pairing table lives in the workflow package.
type ScreeningState string

const (
	ScreeningCreated        ScreeningState = "CREATED"
	ScreeningSubmitted      ScreeningState = "SUBMITTED"
	ScreeningReviewed       ScreeningState = "REVIEWED"
	ScreeningApproved       ScreeningState = "APPROVED"
	ScreeningFinalSubmitted ScreeningState = "FINAL_SUBMITTED"
	ScreeningScheduled      ScreeningState = "SCHEDULED"
	ScreeningRejected       ScreeningState = "REJECTED"
)

// IsFinal reports whether the state permits no further transitions.
func (s ScreeningState) IsFinal() bool {
	return s == ScreeningScheduled || s == ScreeningRejected
}

// Screening represents one film submission nested under a Program, as
// stored in the `screenings` table.  Optional columns are pointers so that
// nil means "not set yet".  ProgramID is immutable after creation,
// StaffMemberID is set at most once, Score is the 0..10 review score and
// Version is the optimistic locking counter, bumped on every write.
type Screening struct {
	ID               uint64         // screenings.id
	ProgramID        uint64         // screenings.program_id
	SubmitterID      uint64         // screenings.submitter_id
	Title            string         // screenings.title
	Genre            string         // screenings.genre
	Description      string         // screenings.description
	State            ScreeningState // screenings.state
	StaffMemberID    *uint64        // screenings.staff_member_id (nullable)
	SubmittedAt      *time.Time     // screenings.submitted_at (nullable)
	ReviewedAt       *time.Time     // screenings.reviewed_at (nullable)
	FinalSubmittedAt *time.Time     // screenings.final_submitted_at (nullable)
	Score            *int           // screenings.score (nullable)
	Comments         *string        // screenings.comments (nullable)
	Room             *string        // screenings.room (nullable)
	ScheduledDate    *time.Time     // screenings.scheduled_date (nullable)
	RejectionReason  *string        // screenings.rejection_reason (nullable)
	Version          uint32         // screenings.version (optimistic locking)
	CreatedAt        time.Time      // screenings.created_at
	UpdatedAt        time.Time      // screenings.updated_at
}

// IsAssignedTo reports whether staffID is the assigned review handler.
func (s *Screening) IsAssignedTo(staffID uint64) bool {
	return staffID != 0 && s.StaffMemberID != nil && *s.StaffMemberID == staffID
}

// Clone returns a deep copy for building proposed next snapshots.
func (s *Screening) Clone() *Screening {
	cp := *s
	cp.StaffMemberID = copyU64(s.StaffMemberID)
	cp.SubmittedAt = copyTime(s.SubmittedAt)
	cp.ReviewedAt = copyTime(s.ReviewedAt)
	cp.FinalSubmittedAt = copyTime(s.FinalSubmittedAt)
	cp.ScheduledDate = copyTime(s.ScheduledDate)
	if s.Score != nil {
		v := *s.Score
		cp.Score = &v
	}
	cp.Comments = copyString(s.Comments)
	cp.Room = copyString(s.Room)
	cp.RejectionReason = copyString(s.RejectionReason)
	return &cp
}

func copyU64(p *uint64) *uint64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
