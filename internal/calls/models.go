package calls

import (
	"encoding/json"
	"time"
)

// Call is one completed voice-AI call.
//
// Invariants:
// - OrgID is required on every row.
// - A row is created exactly once per end-of-call report.
// - CallerName is the only field mutated after creation, and only from
//   NULL to a value (see Backfiller). It is never overwritten once set.

type Call struct {
	ID          string `json:"id" db:"id"`
	OrgID       string `json:"org_id" db:"org_id"`
	AssistantID string `json:"assistant_id" db:"assistant_id"`

	// VapiCallID is the platform's identifier, unique per org when present.
	VapiCallID *string `json:"vapi_call_id,omitempty" db:"vapi_call_id"`

	CallerNumber *string `json:"caller_number" db:"caller_number"`
	CallerName   *string `json:"caller_name" db:"caller_name"`

	StartedAt       time.Time `json:"started_at" db:"started_at"`
	EndedAt         time.Time `json:"ended_at" db:"ended_at"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`

	// CostCents is the platform cost in minor currency units.
	CostCents int64 `json:"cost_cents" db:"cost_cents"`

	EndReason  string  `json:"end_reason" db:"end_reason"`
	Transcript *string `json:"transcript" db:"transcript"`
	Summary    *string `json:"summary" db:"summary"`

	// SuccessScore is the platform's 0-10 evaluation scaled to [0,1].
	SuccessScore *float64 `json:"success_score" db:"success_score"`

	Metadata Metadata `json:"metadata" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Metadata is the free-form JSON blob kept alongside a call.
type Metadata struct {
	CostBreakdown json.RawMessage `json:"costBreakdown"`
	Model         *string         `json:"model"`
	Voice         *string         `json:"voice"`
	PhoneNumberID *string         `json:"phoneNumberId"`
}

// MarshalJSON writes absent fields as null.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type alias Metadata
	a := alias(m)
	if len(a.CostBreakdown) == 0 {
		a.CostBreakdown = json.RawMessage("null")
	}
	return json.Marshal(a)
}

// ListFilter narrows ListCalls. Zero Limit means DefaultListLimit.
type ListFilter struct {
	Limit        int
	Offset       int
	CallerNumber string
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Normalize clamps paging values into the accepted range.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
