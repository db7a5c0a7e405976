package leads

import (
	"context"
	"errors"

	"receptionist-dashboard/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

var ErrInvalidArgument = errors.New("leads: invalid argument")

// Repository is the persistence contract for leads.
type Repository interface {
	// FindByPhone returns nil, nil when the org has no lead for phone.
	FindByPhone(ctx context.Context, orgID, phone string) (*Lead, error)
	// InsertLead creates l. If a lead for (org, phone) already exists it
	// only fills that lead's missing name, and created is false.
	InsertLead(ctx context.Context, l Lead) (out Lead, created bool, err error)
	// SetNameIfEmpty names the lead only when it has no name yet.
	SetNameIfEmpty(ctx context.Context, orgID, id, name string) (bool, error)
	ListLeads(ctx context.Context, orgID string, limit, offset int) ([]Lead, error)
	// ListNamed returns leads with both a phone and a name. An empty orgID
	// lists every org.
	ListNamed(ctx context.Context, orgID string) ([]Lead, error)
}

type PostgresRepo struct {
	db utils.DB
}

func NewPostgresRepo(db utils.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const leadColumns = `id, org_id, phone, name, email, score, source, notes, created_at`

func (r *PostgresRepo) FindByPhone(ctx context.Context, orgID, phone string) (*Lead, error) {
	q := `SELECT ` + leadColumns + `
FROM leads
WHERE org_id = $1 AND phone = $2
ORDER BY created_at
LIMIT 1
`
	l, err := scanLead(r.db.QueryRow(ctx, q, orgID, phone))
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "leads: find by phone")
	}
	return &l, nil
}

func (r *PostgresRepo) InsertLead(ctx context.Context, l Lead) (Lead, bool, error) {
	if l.OrgID == "" {
		return Lead{}, false, ErrInvalidArgument
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	// xmax is 0 only for a freshly inserted tuple.
	const q = `
INSERT INTO leads (id, org_id, phone, name, email, score, source, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (org_id, phone) WHERE phone IS NOT NULL
DO UPDATE SET name = COALESCE(leads.name, EXCLUDED.name)
RETURNING id, name, created_at, (xmax = 0) AS inserted
`
	var inserted bool
	err := r.db.QueryRow(ctx, q,
		l.ID,
		l.OrgID,
		l.Phone,
		l.Name,
		l.Email,
		l.Score,
		l.Source,
		l.Notes,
	).Scan(&l.ID, &l.Name, &l.CreatedAt, &inserted)
	if err != nil {
		return Lead{}, false, eris.Wrap(err, "leads: insert")
	}
	return l, inserted, nil
}

func (r *PostgresRepo) SetNameIfEmpty(ctx context.Context, orgID, id, name string) (bool, error) {
	const q = `
UPDATE leads
SET name = $3
WHERE org_id = $1 AND id = $2 AND name IS NULL
`
	tag, err := r.db.Exec(ctx, q, orgID, id, name)
	if err != nil {
		return false, eris.Wrap(err, "leads: set name")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepo) ListLeads(ctx context.Context, orgID string, limit, offset int) ([]Lead, error) {
	q := `SELECT ` + leadColumns + `
FROM leads
WHERE org_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`
	return r.list(ctx, q, orgID, limit, offset)
}

func (r *PostgresRepo) ListNamed(ctx context.Context, orgID string) ([]Lead, error) {
	q := `SELECT ` + leadColumns + `
FROM leads
WHERE ($1 = '' OR org_id::text = $1) AND phone IS NOT NULL AND name IS NOT NULL
ORDER BY org_id, created_at
`
	return r.list(ctx, q, orgID)
}

func (r *PostgresRepo) list(ctx context.Context, q string, args ...any) ([]Lead, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list")
	}
	defer rows.Close()

	out := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "leads: scan")
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "leads: iterate")
	}
	return out, nil
}

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID,
		&l.OrgID,
		&l.Phone,
		&l.Name,
		&l.Email,
		&l.Score,
		&l.Source,
		&l.Notes,
		&l.CreatedAt,
	)
	return l, err
}
