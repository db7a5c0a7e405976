package leads

import (
	"context"
	"log/slog"
	"time"

	"github.com/rotisserie/eris"
)

// Outcome reports what Apply did to the ledger.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCreated   Outcome = "created"
	OutcomeNamed     Outcome = "named"
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeMerged means a concurrent request created the lead first and
	// this insert only filled a missing name, if any.
	OutcomeMerged Outcome = "merged"
)

// Update is one call's contribution to the ledger.
type Update struct {
	OrgID string
	Phone string
	// Name is the caller name resolved for this call, possibly "".
	Name string
	// Existing is the lead found for (OrgID, Phone) before the call was
	// stored, or nil.
	Existing *Lead

	Summary   string
	StartedAt time.Time
}

// Ledger keeps one lead per (org, phone).
type Ledger struct {
	repo Repository
	log  *slog.Logger
}

func NewLedger(repo Repository, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{repo: repo, log: log}
}

// Apply creates the lead on first contact and fills in a missing name on
// later contact. A lead that already has a name is left untouched.
func (l *Ledger) Apply(ctx context.Context, u Update) (Outcome, error) {
	if u.OrgID == "" || u.Phone == "" {
		return OutcomeSkipped, nil
	}

	if u.Existing == nil {
		lead := Lead{
			OrgID:  u.OrgID,
			Phone:  strPtr(u.Phone),
			Name:   strPtr(u.Name),
			Source: SourceCall,
			Notes:  strPtr(DefaultNotes(u.Summary, u.StartedAt)),
		}
		out, created, err := l.repo.InsertLead(ctx, lead)
		if err != nil {
			return "", eris.Wrap(err, "ledger: insert lead")
		}
		if created {
			return OutcomeCreated, nil
		}
		l.log.Debug("lead insert merged into existing row", "org_id", u.OrgID, "lead_id", out.ID)
		return OutcomeMerged, nil
	}

	if u.Existing.DisplayName() != "" || u.Name == "" {
		return OutcomeUnchanged, nil
	}

	ok, err := l.repo.SetNameIfEmpty(ctx, u.OrgID, u.Existing.ID, u.Name)
	if err != nil {
		return "", eris.Wrap(err, "ledger: set lead name")
	}
	if !ok {
		return OutcomeUnchanged, nil
	}
	return OutcomeNamed, nil
}

// DefaultNotes is the call summary, or a dated placeholder without one.
func DefaultNotes(summary string, startedAt time.Time) string {
	if summary != "" {
		return summary
	}
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	return "Called on " + startedAt.Format("1/2/2006")
}
