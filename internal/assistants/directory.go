// Package assistants maps platform assistant ids to the owning org.
//
// Assistants are provisioned out of band. Ingestion only reads them.
package assistants

import (
	"context"
	"errors"
	"strings"

	"receptionist-dashboard/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

var ErrNotFound = errors.New("assistants: not found")

// Assistant is the directory entry for one platform assistant.
type Assistant struct {
	ID              string `json:"id" db:"id"`
	OrgID           string `json:"org_id" db:"org_id"`
	VapiAssistantID string `json:"vapi_assistant_id" db:"vapi_assistant_id"`
	Name            string `json:"name,omitempty" db:"name"`
}

// Directory resolves a platform assistant id to its tenant.
type Directory interface {
	// LookupAssistant returns ErrNotFound for unknown or empty ids.
	LookupAssistant(ctx context.Context, externalID string) (Assistant, error)
}

type PostgresRepo struct {
	db utils.DB
}

func NewPostgresRepo(db utils.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) LookupAssistant(ctx context.Context, externalID string) (Assistant, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return Assistant{}, ErrNotFound
	}
	const q = `
SELECT id, org_id, vapi_assistant_id, COALESCE(name, '')
FROM assistants
WHERE vapi_assistant_id = $1
`
	var a Assistant
	if err := r.db.QueryRow(ctx, q, externalID).Scan(&a.ID, &a.OrgID, &a.VapiAssistantID, &a.Name); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return Assistant{}, ErrNotFound
		}
		return Assistant{}, eris.Wrap(err, "assistants: lookup")
	}
	return a, nil
}
