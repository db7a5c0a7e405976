package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Valid reports whether the range is non-empty and ordered.
func (r TimeRange) Valid() bool {
	return !r.From.IsZero() && !r.To.IsZero() && r.To.After(r.From)
}

// CallsSummaryRequest requests aggregated call metrics.
// Org isolation: OrgID is required.

type CallsSummaryRequest struct {
	OrgID string    `json:"org_id"`
	Range TimeRange `json:"range"`
}

type CallsSummary struct {
	OrgID string    `json:"org_id"`
	Range TimeRange `json:"range"`

	TotalCalls int `json:"total_calls"`
	// IdentifiedCalls have a caller name, whether resolved at ingest or backfilled.
	IdentifiedCalls int `json:"identified_calls"`
	UniqueCallers   int `json:"unique_callers"`

	TotalDurationSeconds   int   `json:"total_duration_seconds"`
	AverageDurationSeconds int   `json:"average_duration_seconds"`
	TotalCostCents         int64 `json:"total_cost_cents"`

	EndReasons map[string]int `json:"end_reasons"`

	ScoredCalls int `json:"scored_calls"`
	// AverageSuccessScore is nil when no call in range was scored.
	AverageSuccessScore *float64 `json:"average_success_score"`
}

// LeadsSummaryRequest requests lead growth over a range.

type LeadsSummaryRequest struct {
	OrgID string    `json:"org_id"`
	Range TimeRange `json:"range"`
}

type LeadsSummary struct {
	OrgID string    `json:"org_id"`
	Range TimeRange `json:"range"`

	NewLeads   int `json:"new_leads"`
	NamedLeads int `json:"named_leads"`
	// NameRate is NamedLeads / NewLeads, 0 without leads.
	NameRate float64 `json:"name_rate"`
}
