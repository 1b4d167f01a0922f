// internal/repository/postgres/db.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (db *DB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return db.pool.Begin(ctx)
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// EnsureSchema creates the lead tables when they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	position               BIGSERIAL,
	serial_number          TEXT PRIMARY KEY,
	created_at             TIMESTAMPTZ NOT NULL,
	first_contacted_at     TIMESTAMPTZ,
	first_name             TEXT NOT NULL DEFAULT '',
	middle_name            TEXT NOT NULL DEFAULT '',
	last_name              TEXT NOT NULL DEFAULT '',
	phone                  TEXT NOT NULL DEFAULT '',
	email                  TEXT NOT NULL DEFAULT '',
	address                TEXT NOT NULL DEFAULT '',
	city                   TEXT NOT NULL DEFAULT '',
	branch                 TEXT NOT NULL DEFAULT '',
	lead_status            TEXT NOT NULL,
	lead_sub_status        TEXT NOT NULL DEFAULT '',
	open_closed            TEXT NOT NULL,
	lead_channel           TEXT NOT NULL DEFAULT '',
	lead_source            TEXT NOT NULL DEFAULT '',
	campaign_name          TEXT NOT NULL DEFAULT '',
	campaign_source        TEXT NOT NULL DEFAULT '',
	social_organic_channel TEXT NOT NULL DEFAULT '',
	model_of_interest      TEXT NOT NULL DEFAULT '',
	trim_level             TEXT NOT NULL DEFAULT '',
	model_year             TEXT NOT NULL DEFAULT '',
	category               TEXT NOT NULL DEFAULT '',
	request_type           TEXT NOT NULL DEFAULT '',
	current_vehicle        TEXT NOT NULL DEFAULT '',
	income_range           TEXT NOT NULL DEFAULT '',
	purchase_period        TEXT NOT NULL DEFAULT '',
	payment_method         TEXT NOT NULL DEFAULT '',
	assigned_agent         TEXT NOT NULL DEFAULT '',
	sales_consultant       TEXT NOT NULL DEFAULT '',
	ai_score               DOUBLE PRECISION,
	comment                TEXT NOT NULL DEFAULT '',
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS lead_events (
	seq              BIGSERIAL PRIMARY KEY,
	id               TEXT NOT NULL UNIQUE,
	lead_id          TEXT NOT NULL REFERENCES leads (serial_number),
	occurred_at      TIMESTAMPTZ NOT NULL,
	actor            TEXT NOT NULL,
	action           TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	category         TEXT NOT NULL,
	resulting_status TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_lead_events_lead_time ON lead_events (lead_id, occurred_at, seq);
`
