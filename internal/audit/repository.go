package audit

import (
	"context"

	"receptionist-dashboard/pkg/utils"

	"github.com/rotisserie/eris"
)

// PostgresRepo appends to audit_events. The table grants INSERT only.
type PostgresRepo struct {
	db utils.DB
}

func NewPostgresRepo(db utils.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, org_id, type, actor_user_id, actor_role, ip_address,
  call_id, caller_number, message, metadata, created_at
) VALUES (
  $1,$2,$3,NULLIF($4,''),NULLIF($5,''),NULLIF($6,''),NULLIF($7,''),NULLIF($8,''),$9,NULLIF($10,'')::jsonb,$11
)
`
	_, err := r.db.Exec(ctx, q,
		e.ID,
		e.OrgID,
		string(e.Type),
		e.ActorUserID,
		e.ActorRole,
		e.IPAddress,
		e.CallID,
		e.CallerNumber,
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "audit: append")
	}
	return nil
}
