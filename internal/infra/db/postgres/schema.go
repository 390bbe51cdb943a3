package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
)

// EnsureSchema creates the tables this service owns. Statements are
// idempotent so startup can run them unconditionally.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
  id           TEXT PRIMARY KEY,
  kind         TEXT NOT NULL,
  state        TEXT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL,
  completed_at TIMESTAMPTZ,
  error_kind   TEXT NOT NULL DEFAULT '',
  error        TEXT NOT NULL DEFAULT '',
  result_ref   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS message_dispatches (
  id             UUID PRIMARY KEY,
  task_id        TEXT NOT NULL,
  candidate_id   TEXT NOT NULL,
  candidate_name TEXT NOT NULL,
  profile_ref    TEXT NOT NULL,
  company_name   TEXT NOT NULL,
  role           TEXT NOT NULL,
  status         TEXT NOT NULL,
  method         TEXT NOT NULL DEFAULT '',
  reason         TEXT NOT NULL DEFAULT '',
  created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_message_dispatches_task ON message_dispatches (task_id);

CREATE TABLE IF NOT EXISTS job_applications (
  job_id     TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL,
  success    BOOLEAN NOT NULL,
  error      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS companies (
  id           TEXT PRIMARY KEY,
  name         TEXT NOT NULL,
  industry     TEXT NOT NULL DEFAULT '',
  country      TEXT NOT NULL DEFAULT '',
  locality     TEXT NOT NULL DEFAULT '',
  region       TEXT NOT NULL DEFAULT '',
  size         TEXT NOT NULL DEFAULT '',
  linkedin_url TEXT NOT NULL DEFAULT '',
  website      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_companies_industry ON companies (industry);
CREATE INDEX IF NOT EXISTS idx_companies_country ON companies (country);
`
	_, err := pool.Exec(ctx, ddl)
	return err
}
