package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/festival-program-office/internal/model"
)

// ScreeningRepo provides access to the `screenings` table.  Like programs,
// screenings are written through compare-and-swap on the version column so
// that two concurrent decisions about the same screening cannot both win.
type ScreeningRepo struct{ DB *sql.DB }

// NewScreeningRepo returns a ScreeningRepo bound to the given database.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo { return &ScreeningRepo{DB: db} }

const screeningColumns = `id, program_id, submitter_id, title, genre, description, state,
	staff_member_id, submitted_at, reviewed_at, final_submitted_at,
	score, comments, room, scheduled_date, rejection_reason,
	version, created_at, updated_at`

// Create inserts a screening draft and returns the stored snapshot.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) (*model.Screening, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO screenings (program_id, submitter_id, title, genre, description, state, version) VALUES (?,?,?,?,?,?,1)",
		s.ProgramID, s.SubmitterID, s.Title, s.Genre, s.Description, string(s.State))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads one screening.  sql.ErrNoRows passes through unchanged.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.Screening, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+screeningColumns+" FROM screenings WHERE id=? LIMIT 1", id)
	return scanScreening(row)
}

// Update persists a proposed snapshot with compare-and-swap on the version
// the snapshot was read at.  ErrConflict signals a lost race.
func (r *ScreeningRepo) Update(ctx context.Context, s *model.Screening) (*model.Screening, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE screenings
			SET title=?, genre=?, description=?, state=?,
				staff_member_id=?, submitted_at=?, reviewed_at=?, final_submitted_at=?,
				score=?, comments=?, room=?, scheduled_date=?, rejection_reason=?,
				version=version+1, updated_at=NOW()
		  WHERE id=? AND version=?`,
		s.Title, s.Genre, s.Description, string(s.State),
		s.StaffMemberID, s.SubmittedAt, s.ReviewedAt, s.FinalSubmittedAt,
		s.Score, s.Comments, s.Room, s.ScheduledDate, s.RejectionReason,
		s.ID, s.Version)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrConflict
	}
	return r.GetByID(ctx, s.ID)
}

// Delete removes a screening at the given version (withdrawal).
func (r *ScreeningRepo) Delete(ctx context.Context, id uint64, version uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM screenings WHERE id=? AND version=?", id, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByProgram returns every screening of one program ordered by id.
func (r *ScreeningRepo) ListByProgram(ctx context.Context, programID uint64) ([]model.Screening, error) {
	return r.list(ctx, "SELECT "+screeningColumns+" FROM screenings WHERE program_id=? ORDER BY id", programID)
}

// ListByProgramAndState narrows ListByProgram to one state.  The decision
// sweep uses it to find APPROVED screenings that never reached
// FINAL_SUBMITTED.
func (r *ScreeningRepo) ListByProgramAndState(ctx context.Context, programID uint64, state model.ScreeningState) ([]model.Screening, error) {
	return r.list(ctx, "SELECT "+screeningColumns+" FROM screenings WHERE program_id=? AND state=? ORDER BY id", programID, string(state))
}

// ListBySubmitter returns every screening a user has entered, across all
// programs, ordered by id.
func (r *ScreeningRepo) ListBySubmitter(ctx context.Context, submitterID uint64) ([]model.Screening, error) {
	return r.list(ctx, "SELECT "+screeningColumns+" FROM screenings WHERE submitter_id=? ORDER BY id", submitterID)
}

func (r *ScreeningRepo) list(ctx context.Context, query string, args ...any) ([]model.Screening, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	screenings := make([]model.Screening, 0)
	for rows.Next() {
		s, err := scanScreening(rows)
		if err != nil {
			return nil, err
		}
		screenings = append(screenings, *s)
	}
	return screenings, rows.Err()
}

func scanScreening(row scanner) (*model.Screening, error) {
	var s model.Screening
	var state string
	var staffID sql.NullInt64
	var submittedAt, reviewedAt, finalSubmittedAt, scheduledDate sql.NullTime
	var score sql.NullInt64
	var comments, room, rejectionReason sql.NullString
	err := row.Scan(&s.ID, &s.ProgramID, &s.SubmitterID, &s.Title, &s.Genre, &s.Description, &state,
		&staffID, &submittedAt, &reviewedAt, &finalSubmittedAt,
		&score, &comments, &room, &scheduledDate, &rejectionReason,
		&s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.State = model.ScreeningState(state)
	if staffID.Valid {
		v := uint64(staffID.Int64)
		s.StaffMemberID = &v
	}
	if submittedAt.Valid {
		v := submittedAt.Time
		s.SubmittedAt = &v
	}
	if reviewedAt.Valid {
		v := reviewedAt.Time
		s.ReviewedAt = &v
	}
	if finalSubmittedAt.Valid {
		v := finalSubmittedAt.Time
		s.FinalSubmittedAt = &v
	}
	if score.Valid {
		v := int(score.Int64)
		s.Score = &v
	}
	if comments.Valid {
		v := comments.String
		s.Comments = &v
	}
	if room.Valid {
		v := room.String
		s.Room = &v
	}
	if scheduledDate.Valid {
		v := scheduledDate.Time
		s.ScheduledDate = &v
	}
	if rejectionReason.Valid {
		v := rejectionReason.String
		s.RejectionReason = &v
	}
	return &s, nil
}
