package reporting

import (
	"context"
	"time"

	"receptionist-dashboard/internal/calls"
	"receptionist-dashboard/pkg/utils"

	"github.com/rotisserie/eris"
)

// PostgresRepo reads the calls and leads tables directly. It selects only the
// columns the summaries aggregate.
type PostgresRepo struct {
	db utils.DB
}

func NewPostgresRepo(db utils.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListCallsBetween(ctx context.Context, orgID string, from, to time.Time) ([]calls.Call, error) {
	const q = `
SELECT caller_number, caller_name, duration_seconds, cost_cents, end_reason, success_score, created_at
FROM calls
WHERE org_id = $1 AND created_at >= $2 AND created_at < $3
`
	rows, err := r.db.Query(ctx, q, orgID, from, to)
	if err != nil {
		return nil, eris.Wrap(err, "reporting: query calls")
	}
	defer rows.Close()

	out := make([]calls.Call, 0)
	for rows.Next() {
		c := calls.Call{OrgID: orgID}
		if err := rows.Scan(&c.CallerNumber, &c.CallerName, &c.DurationSeconds, &c.CostCents, &c.EndReason, &c.SuccessScore, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "reporting: scan call")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "reporting: iterate calls")
	}
	return out, nil
}

func (r *PostgresRepo) CountLeadsBetween(ctx context.Context, orgID string, from, to time.Time) (int, int, error) {
	const q = `
SELECT COUNT(*), COUNT(name)
FROM leads
WHERE org_id = $1 AND created_at >= $2 AND created_at < $3
`
	var total, named int
	if err := r.db.QueryRow(ctx, q, orgID, from, to).Scan(&total, &named); err != nil {
		return 0, 0, eris.Wrap(err, "reporting: count leads")
	}
	return total, named, nil
}
