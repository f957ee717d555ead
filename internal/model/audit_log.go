package model

import "time"

// AuditLog records one successful workflow action as stored in the
// `audit_logs` table.  Entries are append-only; there is no update path.
// Action is the machine-readable action name (e.g. "screening.schedule")
// and Target a textual reference to the affected entity ("screening:42").
type AuditLog struct {
	ID         uint64    // audit_logs.id
	ActorID    uint64    // audit_logs.actor_id
	Action     string    // audit_logs.action
	Target     string    // audit_logs.target
	OccurredAt time.Time // audit_logs.occurred_at
}
