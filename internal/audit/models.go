package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - org_id is required for tenancy isolation.
// - Audit is best-effort; ingestion never fails because an event was lost.

type Event struct {
	ID    string `json:"id" db:"id"`
	OrgID string `json:"org_id" db:"org_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is set for dashboard-initiated actions; webhook events have none.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`
	IPAddress   string `json:"ip_address,omitempty" db:"ip_address"`

	CallID       string `json:"call_id,omitempty" db:"call_id"`
	CallerNumber string `json:"caller_number,omitempty" db:"caller_number"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeCallIngested    EventType = "call_ingested"
	EventTypeLeadCreated     EventType = "lead_created"
	EventTypeLeadNamed       EventType = "lead_named"
	EventTypeCallsBackfilled EventType = "calls_backfilled"
)
