package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/festival-program-office/internal/model"
)

// ProgramRepo provides access to the `programs` table together with its
// membership join tables program_programmers and program_staff.  Writes go
// through optimistic locking on programs.version: a CAS update that matches
// no row returns ErrConflict and the caller must re-read and retry.
type ProgramRepo struct{ DB *sql.DB }

// NewProgramRepo returns a ProgramRepo bound to the given database.
func NewProgramRepo(db *sql.DB) *ProgramRepo { return &ProgramRepo{DB: db} }

const programColumns = "id, name, description, start_date, end_date, phase, creator_id, version, created_at, updated_at"

// Create inserts a program plus its membership rows in one transaction and
// returns the stored snapshot.  A duplicate name comes back as ErrNameExists.
func (r *ProgramRepo) Create(ctx context.Context, p *model.Program) (*model.Program, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO programs (name, description, start_date, end_date, phase, creator_id, version) VALUES (?,?,?,?,?,?,1)",
		p.Name, p.Description, p.StartDate, p.EndDate, string(p.Phase), p.CreatorID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrNameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := insertMembers(ctx, tx, uint64(id), p.ProgrammerIDs, p.StaffIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID loads a program and both membership lists.  sql.ErrNoRows is
// returned unchanged when the program does not exist.
func (r *ProgramRepo) GetByID(ctx context.Context, id uint64) (*model.Program, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+programColumns+" FROM programs WHERE id=? LIMIT 1", id)
	p, err := scanProgram(row)
	if err != nil {
		return nil, err
	}
	if p.ProgrammerIDs, err = r.memberIDs(ctx, "program_programmers", id); err != nil {
		return nil, err
	}
	if p.StaffIDs, err = r.memberIDs(ctx, "program_staff", id); err != nil {
		return nil, err
	}
	return p, nil
}

// Update persists a proposed snapshot with compare-and-swap on the version
// the snapshot was read at.  The membership rows are replaced wholesale in
// the same transaction so that the row and its joins never drift apart.
func (r *ProgramRepo) Update(ctx context.Context, p *model.Program) (*model.Program, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE programs
			SET name=?, description=?, start_date=?, end_date=?, phase=?, version=version+1, updated_at=NOW()
		  WHERE id=? AND version=?`,
		p.Name, p.Description, p.StartDate, p.EndDate, string(p.Phase), p.ID, p.Version)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrNameExists
		}
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrConflict
	}
	for _, table := range []string{"program_programmers", "program_staff"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE program_id=?", p.ID); err != nil {
			return nil, err
		}
	}
	if err := insertMembers(ctx, tx, p.ID, p.ProgrammerIDs, p.StaffIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, p.ID)
}

// Delete removes a program at the given version.  The membership and
// screening rows go with it via ON DELETE CASCADE.  A version mismatch or
// missing row returns ErrConflict.
func (r *ProgramRepo) Delete(ctx context.Context, id uint64, version uint32) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM programs WHERE id=? AND version=?", id, version)
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

// List returns programs ordered by id, memberships included.  A non-empty
// nameFilter narrows the result to programs whose name contains it
// (case-insensitive, the collation's default).
func (r *ProgramRepo) List(ctx context.Context, nameFilter string) ([]model.Program, error) {
	query := "SELECT " + programColumns + " FROM programs"
	args := []any{}
	if nameFilter != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+nameFilter+"%")
	}
	query += " ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	programs := make([]model.Program, 0)
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range programs {
		if programs[i].ProgrammerIDs, err = r.memberIDs(ctx, "program_programmers", programs[i].ID); err != nil {
			return nil, err
		}
		if programs[i].StaffIDs, err = r.memberIDs(ctx, "program_staff", programs[i].ID); err != nil {
			return nil, err
		}
	}
	return programs, nil
}

func (r *ProgramRepo) memberIDs(ctx context.Context, table string, programID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT user_id FROM "+table+" WHERE program_id=? ORDER BY user_id", programID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertMembers(ctx context.Context, tx *sql.Tx, programID uint64, programmers, staff []uint64) error {
	for _, uid := range programmers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO program_programmers (program_id, user_id) VALUES (?,?)", programID, uid); err != nil {
			return err
		}
	}
	for _, uid := range staff {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO program_staff (program_id, user_id) VALUES (?,?)", programID, uid); err != nil {
			return err
		}
	}
	return nil
}

// scanner lets scanProgram work for both QueryRow and Query results.
type scanner interface{ Scan(dest ...any) error }

func scanProgram(row scanner) (*model.Program, error) {
	var p model.Program
	var phase string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.StartDate, &p.EndDate, &phase,
		&p.CreatorID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Phase = model.ProgramPhase(phase)
	return &p, nil
}
