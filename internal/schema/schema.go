// Package schema owns the Postgres DDL and applies it in order.
package schema

import (
	"context"
	"log/slog"

	"receptionist-dashboard/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations are applied in slice order. Never edit an applied step; append.
var Migrations = []Migration{
	{Version: 1, Name: "orgs_and_assistants", SQL: `
CREATE TABLE IF NOT EXISTS orgs (
  id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
  name       TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS assistants (
  id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
  org_id            TEXT NOT NULL REFERENCES orgs(id),
  vapi_assistant_id TEXT NOT NULL UNIQUE,
  name              TEXT,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS assistants_org_idx ON assistants (org_id);
`},
	{Version: 2, Name: "calls", SQL: `
CREATE TABLE IF NOT EXISTS calls (
  id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
  org_id           TEXT NOT NULL REFERENCES orgs(id),
  assistant_id     TEXT NOT NULL REFERENCES assistants(id),
  vapi_call_id     TEXT,
  caller_number    TEXT,
  caller_name      TEXT,
  started_at       TIMESTAMPTZ NOT NULL,
  ended_at         TIMESTAMPTZ NOT NULL,
  duration_seconds INTEGER NOT NULL DEFAULT 0 CHECK (duration_seconds >= 0),
  cost_cents       BIGINT NOT NULL DEFAULT 0,
  end_reason       TEXT NOT NULL DEFAULT 'completed',
  transcript       TEXT,
  summary          TEXT,
  success_score    DOUBLE PRECISION CHECK (success_score BETWEEN 0 AND 1),
  metadata         JSONB NOT NULL DEFAULT '{}'::jsonb,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (org_id, vapi_call_id)
);
CREATE INDEX IF NOT EXISTS calls_org_created_idx ON calls (org_id, created_at DESC);
CREATE INDEX IF NOT EXISTS calls_org_caller_idx ON calls (org_id, caller_number) WHERE caller_name IS NULL;
`},
	{Version: 3, Name: "leads", SQL: `
CREATE TABLE IF NOT EXISTS leads (
  id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
  org_id     TEXT NOT NULL REFERENCES orgs(id),
  phone      TEXT,
  name       TEXT,
  email      TEXT,
  score      INTEGER,
  source     TEXT NOT NULL DEFAULT 'call',
  notes      TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS leads_org_phone_key ON leads (org_id, phone) WHERE phone IS NOT NULL;
CREATE INDEX IF NOT EXISTS leads_org_created_idx ON leads (org_id, created_at DESC);
`},
	{Version: 4, Name: "audit_events", SQL: `
CREATE TABLE IF NOT EXISTS audit_events (
  id            TEXT PRIMARY KEY,
  org_id        TEXT NOT NULL,
  type          TEXT NOT NULL,
  actor_user_id TEXT,
  actor_role    TEXT,
  ip_address    TEXT,
  call_id       TEXT,
  caller_number TEXT,
  message       TEXT NOT NULL DEFAULT '',
  metadata      JSONB,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_events_org_created_idx ON audit_events (org_id, created_at DESC);
`},
	{Version: 5, Name: "sms_log", SQL: `
CREATE TABLE IF NOT EXISTS sms_log (
  id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
  org_id       TEXT REFERENCES orgs(id),
  sent_by      TEXT,
  to_phone     TEXT NOT NULL,
  from_phone   TEXT,
  message_type TEXT NOT NULL,
  message_body TEXT NOT NULL,
  provider_sid TEXT,
  status       TEXT,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sms_log_org_created_idx ON sms_log (org_id, created_at DESC);
`},
}

const (
	createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TIMESTAMPTZ NOT NULL DEFAULT now())`
	currentVersion     = `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`
	recordVersion      = `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`
)

// Migrate applies every pending migration, each in its own transaction.
// It returns the number of steps applied.
func Migrate(ctx context.Context, db utils.TxBeginner, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}

	var current int
	err := utils.WithTx(ctx, db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createVersionTable); err != nil {
			return err
		}
		return tx.QueryRow(ctx, currentVersion).Scan(&current)
	})
	if err != nil {
		return 0, eris.Wrap(err, "schema: read version")
	}

	applied := 0
	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		err := utils.WithTx(ctx, db, func(ctx context.Context, tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, recordVersion, m.Version, m.Name)
			return err
		})
		if err != nil {
			return applied, eris.Wrapf(err, "schema: apply %d_%s", m.Version, m.Name)
		}
		log.Info("migration applied", "version", m.Version, "name", m.Name)
		applied++
	}
	return applied, nil
}
