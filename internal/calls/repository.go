package calls

import (
	"context"
	"encoding/json"
	"errors"

	"receptionist-dashboard/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

var (
	ErrNotFound        = errors.New("calls: not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// Repository is the persistence contract for calls.
//
// Tenancy invariant: every method is scoped by org_id.
type Repository interface {
	// InsertCall stores c and returns it with ID set. When a row with the
	// same (org_id, vapi_call_id) already exists, that row's ID and
	// CreatedAt are returned and created is false.
	InsertCall(ctx context.Context, c Call) (out Call, created bool, err error)
	// BackfillCallerName sets caller_name on rows for (org, number) where it is NULL.
	BackfillCallerName(ctx context.Context, orgID, callerNumber, name string) (int64, error)
	GetCall(ctx context.Context, orgID, id string) (Call, error)
	ListCalls(ctx context.Context, orgID string, f ListFilter) ([]Call, error)
}

// PostgresRepo implements Repository on the calls table.
type PostgresRepo struct {
	db utils.DB
}

func NewPostgresRepo(db utils.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const callColumns = `id, org_id, assistant_id, vapi_call_id, caller_number, caller_name,
       started_at, ended_at, duration_seconds, cost_cents, end_reason,
       transcript, summary, success_score, metadata, created_at`

func (r *PostgresRepo) InsertCall(ctx context.Context, c Call) (Call, bool, error) {
	if c.OrgID == "" || c.AssistantID == "" {
		return Call{}, false, ErrInvalidArgument
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return Call{}, false, eris.Wrap(err, "calls: encode metadata")
	}

	const q = `
INSERT INTO calls (
  id, org_id, assistant_id, vapi_call_id, caller_number, caller_name,
  started_at, ended_at, duration_seconds, cost_cents, end_reason,
  transcript, summary, success_score, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)
ON CONFLICT (org_id, vapi_call_id) DO NOTHING
RETURNING id, created_at
`
	err = r.db.QueryRow(ctx, q,
		c.ID,
		c.OrgID,
		c.AssistantID,
		c.VapiCallID,
		c.CallerNumber,
		c.CallerName,
		c.StartedAt,
		c.EndedAt,
		c.DurationSeconds,
		c.CostCents,
		c.EndReason,
		c.Transcript,
		c.Summary,
		c.SuccessScore,
		meta,
		c.CreatedAt,
	).Scan(&c.ID, &c.CreatedAt)
	if err == nil {
		return c, true, nil
	}
	if !eris.Is(err, pgx.ErrNoRows) || c.VapiCallID == nil {
		return Call{}, false, eris.Wrap(err, "calls: insert")
	}

	// Re-delivery of a report already stored.
	const existing = `
SELECT id, created_at
FROM calls
WHERE org_id = $1 AND vapi_call_id = $2
`
	if err := r.db.QueryRow(ctx, existing, c.OrgID, *c.VapiCallID).Scan(&c.ID, &c.CreatedAt); err != nil {
		return Call{}, false, eris.Wrap(err, "calls: load existing")
	}
	return c, false, nil
}

func (r *PostgresRepo) BackfillCallerName(ctx context.Context, orgID, callerNumber, name string) (int64, error) {
	const q = `
UPDATE calls
SET caller_name = $3
WHERE org_id = $1 AND caller_number = $2 AND caller_name IS NULL
`
	tag, err := r.db.Exec(ctx, q, orgID, callerNumber, name)
	if err != nil {
		return 0, eris.Wrap(err, "calls: backfill caller name")
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresRepo) GetCall(ctx context.Context, orgID, id string) (Call, error) {
	q := `SELECT ` + callColumns + `
FROM calls
WHERE org_id = $1 AND id = $2
`
	c, err := scanCall(r.db.QueryRow(ctx, q, orgID, id))
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return Call{}, ErrNotFound
		}
		return Call{}, eris.Wrap(err, "calls: get")
	}
	return c, nil
}

func (r *PostgresRepo) ListCalls(ctx context.Context, orgID string, f ListFilter) ([]Call, error) {
	f = f.Normalize()
	q := `SELECT ` + callColumns + `
FROM calls
WHERE org_id = $1 AND ($2 = '' OR caller_number = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4
`
	rows, err := r.db.Query(ctx, q, orgID, f.CallerNumber, f.Limit, f.Offset)
	if err != nil {
		return nil, eris.Wrap(err, "calls: list")
	}
	defer rows.Close()

	out := make([]Call, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, eris.Wrap(err, "calls: scan")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "calls: iterate")
	}
	return out, nil
}

func scanCall(row pgx.Row) (Call, error) {
	var (
		c    Call
		meta []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.OrgID,
		&c.AssistantID,
		&c.VapiCallID,
		&c.CallerNumber,
		&c.CallerName,
		&c.StartedAt,
		&c.EndedAt,
		&c.DurationSeconds,
		&c.CostCents,
		&c.EndReason,
		&c.Transcript,
		&c.Summary,
		&c.SuccessScore,
		&meta,
		&c.CreatedAt,
	); err != nil {
		return Call{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return Call{}, eris.Wrap(err, "calls: decode metadata")
		}
	}
	return c, nil
}
