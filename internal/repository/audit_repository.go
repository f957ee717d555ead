package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/festival-program-office/internal/model"
)

// AuditRepo appends to and reads from the `audit_logs` table.  The table
// is append-only; entries are never updated or deleted.
type AuditRepo struct{ DB *sql.DB }

// NewAuditRepo returns an AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Append records one completed workflow action.
func (r *AuditRepo) Append(ctx context.Context, entry model.AuditLog) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (actor_id, action, target, occurred_at) VALUES (?,?,?,?)",
		entry.ActorID, entry.Action, entry.Target, entry.OccurredAt)
	return err
}

// List returns the newest entries first, capped at limit.
func (r *AuditRepo) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, actor_id, action, target, occurred_at FROM audit_logs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.AuditLog, 0)
	for rows.Next() {
		var e model.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Target, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
