package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/iliyamo/festival-program-office/internal/model"
	"github.com/iliyamo/festival-program-office/internal/repository"
)

// The fakes below mirror the repository contracts: deep-copied snapshots
// in and out, version bumped on every write, and repository.ErrConflict
// when the caller's version is stale.

type memUsers struct {
	mu    sync.Mutex
	users map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{users: make(map[uint64]model.User)} }

func (m *memUsers) put(u model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := u
	return &cp, nil
}

type memPrograms struct {
	mu       sync.Mutex
	nextID   uint64
	programs map[uint64]*model.Program
}

func newMemPrograms() *memPrograms { return &memPrograms{programs: make(map[uint64]*model.Program)} }

func (m *memPrograms) Create(_ context.Context, p *model.Program) (*model.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.programs {
		if existing.Name == p.Name {
			return nil, repository.ErrNameExists
		}
	}
	m.nextID++
	cp := p.Clone()
	cp.ID = m.nextID
	cp.Version = 1
	m.programs[cp.ID] = cp
	return cp.Clone(), nil
}

func (m *memPrograms) GetByID(_ context.Context, id uint64) (*model.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p.Clone(), nil
}

func (m *memPrograms) Update(_ context.Context, p *model.Program) (*model.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.programs[p.ID]
	if !ok || stored.Version != p.Version {
		return nil, repository.ErrConflict
	}
	cp := p.Clone()
	cp.Version++
	m.programs[p.ID] = cp
	return cp.Clone(), nil
}

func (m *memPrograms) Delete(_ context.Context, id uint64, version uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.programs[id]
	if !ok || stored.Version != version {
		return repository.ErrConflict
	}
	delete(m.programs, id)
	return nil
}

func (m *memPrograms) List(_ context.Context, nameFilter string) ([]model.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Program, 0, len(m.programs))
	for _, p := range m.programs {
		if nameFilter != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(nameFilter)) {
			continue
		}
		out = append(out, *p.Clone())
	}
	return out, nil
}

type memScreenings struct {
	mu         sync.Mutex
	nextID     uint64
	screenings map[uint64]*model.Screening
}

func newMemScreenings() *memScreenings {
	return &memScreenings{screenings: make(map[uint64]*model.Screening)}
}

func (m *memScreenings) Create(_ context.Context, s *model.Screening) (*model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := s.Clone()
	cp.ID = m.nextID
	cp.Version = 1
	m.screenings[cp.ID] = cp
	return cp.Clone(), nil
}

func (m *memScreenings) GetByID(_ context.Context, id uint64) (*model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.screenings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s.Clone(), nil
}

func (m *memScreenings) Update(_ context.Context, s *model.Screening) (*model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.screenings[s.ID]
	if !ok || stored.Version != s.Version {
		return nil, repository.ErrConflict
	}
	cp := s.Clone()
	cp.Version++
	m.screenings[s.ID] = cp
	return cp.Clone(), nil
}

func (m *memScreenings) Delete(_ context.Context, id uint64, version uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.screenings[id]
	if !ok || stored.Version != version {
		return repository.ErrConflict
	}
	delete(m.screenings, id)
	return nil
}

func (m *memScreenings) ListByProgram(_ context.Context, programID uint64) ([]model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Screening, 0)
	for _, s := range m.screenings {
		if s.ProgramID == programID {
			out = append(out, *s.Clone())
		}
	}
	return out, nil
}

func (m *memScreenings) ListByProgramAndState(_ context.Context, programID uint64, state model.ScreeningState) ([]model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Screening, 0)
	for _, s := range m.screenings {
		if s.ProgramID == programID && s.State == state {
			out = append(out, *s.Clone())
		}
	}
	return out, nil
}

func (m *memScreenings) ListBySubmitter(_ context.Context, submitterID uint64) ([]model.Screening, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Screening, 0)
	for _, s := range m.screenings {
		if s.SubmitterID == submitterID {
			out = append(out, *s.Clone())
		}
	}
	return out, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (m *memAudit) Append(_ context.Context, entry model.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = uint64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memAudit) byAction(action string) []model.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.AuditLog, 0)
	for _, e := range m.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
