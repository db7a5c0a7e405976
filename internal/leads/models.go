package leads

import "time"

// Lead is a contact learned from call activity.
//
// Invariants:
// - At most one lead per (org_id, phone) when phone is set. Enforced by a
//   partial unique index; a racing insert becomes a name-only update.
// - Name is write-once: set when first known, never overwritten.

type Lead struct {
	ID    string  `json:"id" db:"id"`
	OrgID string  `json:"org_id" db:"org_id"`
	Phone *string `json:"phone" db:"phone"`
	Name  *string `json:"name" db:"name"`
	Email *string `json:"email" db:"email"`
	Score *int    `json:"score" db:"score"`

	Source string  `json:"source" db:"source"`
	Notes  *string `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SourceCall tags leads created by call ingestion.
const SourceCall = "call"

// DisplayName returns the stored name or "".
func (l Lead) DisplayName() string {
	if l.Name == nil {
		return ""
	}
	return *l.Name
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
