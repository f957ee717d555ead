// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer for them.
package queue

// ScreeningScheduledEvent is published when a screening reaches SCHEDULED.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type ScreeningScheduledEvent struct {
	ScreeningID   uint64 `json:"screening_id"`
	ProgramID     uint64 `json:"program_id"`
	ProgramName   string `json:"program_name"`
	SubmitterID   uint64 `json:"submitter_id"`
	Title         string `json:"title"`
	Room          string `json:"room"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledBy   uint64 `json:"scheduled_by"`
	ScheduledAt   string `json:"scheduled_at"`
}
