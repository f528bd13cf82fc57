package pg

import "context"

// schema is applied by Migrate. Idempotent: everything is IF NOT EXISTS.
// App 0 is configuration, not a row, so app ids start at 1.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name            TEXT NOT NULL,
    birthday        DATE,
    avatar_url      TEXT NOT NULL DEFAULT '',
    mail            TEXT NOT NULL UNIQUE,
    mail_confirmed  BOOLEAN NOT NULL DEFAULT FALSE,
    password_hash   TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS apps (
    id                 BIGINT GENERATED ALWAYS AS IDENTITY (START WITH 1) PRIMARY KEY,
    name               TEXT NOT NULL,
    description        TEXT NOT NULL DEFAULT '',
    base_url           TEXT NOT NULL,
    redirect_endpoint  TEXT NOT NULL DEFAULT '',
    logo_endpoint      TEXT NOT NULL DEFAULT '',
    secret             TEXT NOT NULL,
    token_lifetime     INTEGER NOT NULL,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    owner_id           UUID REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS apps_owner_id_idx ON apps (owner_id);
`

// Migrate creates the schema when missing.
func (s *pgStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
