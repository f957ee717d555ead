// Package service implements the application workflows on top of the
// repositories.  Services load current snapshots, ask the workflow package
// for permission and for the proposed next snapshot, and persist the result
// with compare-and-swap.  Stores are small interfaces so tests can run the
// whole workflow against in-memory fakes.
package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/repository"
	"github.com/iliyamo/festival-program-office/internal/workflow"
)

// ProgramStore is the persistence surface the program workflow needs.
type ProgramStore interface {
	Create(ctx context.Context, p *model.Program) (*model.Program, error)
	GetByID(ctx context.Context, id uint64) (*model.Program, error)
	Update(ctx context.Context, p *model.Program) (*model.Program, error)
	Delete(ctx context.Context, id uint64, version uint32) error
	List(ctx context.Context, nameFilter string) ([]model.Program, error)
}

// ScreeningStore is the persistence surface the screening workflow needs.
type ScreeningStore interface {
	Create(ctx context.Context, s *model.Screening) (*model.Screening, error)
	GetByID(ctx context.Context, id uint64) (*model.Screening, error)
	Update(ctx context.Context, s *model.Screening) (*model.Screening, error)
	Delete(ctx context.Context, id uint64, version uint32) error
	ListByProgram(ctx context.Context, programID uint64) ([]model.Screening, error)
	ListByProgramAndState(ctx context.Context, programID uint64, state model.ScreeningState) ([]model.Screening, error)
	ListBySubmitter(ctx context.Context, submitterID uint64) ([]model.Screening, error)
}

// UserStore resolves user ids to accounts.  Services re-read the account on
// every request so deactivation takes effect immediately, token or not.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// AuditStore records completed workflow actions.
type AuditStore interface {
	Append(ctx context.Context, entry model.AuditLog) error
}

// actorFor loads the account behind actorID and shapes it for the
// permission evaluator.  An unknown id counts as unauthenticated, not as
// an internal error: the token outlived the account.
func actorFor(ctx context.Context, users UserStore, actorID uint64) (workflow.Actor, error) {
	if actorID == 0 {
		return workflow.Actor{}, workflow.Unauthenticated("authentication required")
	}
	u, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workflow.Actor{}, workflow.Unauthenticated("unknown account")
		}
		return workflow.Actor{}, err
	}
	return workflow.Actor{ID: u.ID, Role: u.Role, Active: u.IsActive}, nil
}

// translate maps repository sentinels onto workflow error kinds so that
// handlers only ever deal with one error vocabulary.
func translate(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return workflow.NotFound("%s not found", entity)
	case errors.Is(err, repository.ErrConflict):
		return workflow.Conflict("%s was modified concurrently, reload and retry", entity)
	case errors.Is(err, repository.ErrNameExists):
		return workflow.Conflict("a program with this name already exists")
	default:
		return err
	}
}

// audit appends an entry best-effort.  Audit being down must not undo a
// workflow action that already committed.
func audit(ctx context.Context, store AuditStore, actorID uint64, action workflow.Action, target string, now time.Time) {
	if store == nil {
		return
	}
	_ = store.Append(ctx, model.AuditLog{
		ActorID:    actorID,
		Action:     string(action),
		Target:     target,
		OccurredAt: now,
	})
}
