package db

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements are idempotent; InitSchema runs them on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            SERIAL PRIMARY KEY,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'viewer',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id                SERIAL PRIMARY KEY,
		name              TEXT NOT NULL,
		leader1           TEXT,
		leader2           TEXT,
		leader1_photo_key TEXT,
		leader2_photo_key TEXT,
		is_default        BOOLEAN NOT NULL DEFAULT false,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT teams_name_key UNIQUE (name)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS teams_single_default_idx ON teams (is_default) WHERE is_default`,
	`CREATE TABLE IF NOT EXISTS candidates (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		team_id    INTEGER NOT NULL REFERENCES teams (id) ON DELETE RESTRICT,
		photo_key  TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		category   TEXT NOT NULL,
		date       TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS results (
		id           SERIAL PRIMARY KEY,
		event_id     INTEGER NOT NULL REFERENCES events (id) ON DELETE RESTRICT,
		team_id      INTEGER NOT NULL REFERENCES teams (id) ON DELETE RESTRICT,
		candidate_id INTEGER REFERENCES candidates (id) ON DELETE RESTRICT,
		position     INTEGER NOT NULL CHECK (position >= 1),
		points       INTEGER NOT NULL CHECK (points >= 0),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS results_team_id_idx ON results (team_id)`,
	`CREATE OR REPLACE FUNCTION notify_results_change() RETURNS trigger AS $$
	BEGIN
		IF TG_OP = 'DELETE' THEN
			PERFORM pg_notify('results_changes', json_build_object('op', TG_OP, 'id', OLD.id)::text);
			RETURN OLD;
		END IF;
		PERFORM pg_notify('results_changes', json_build_object('op', TG_OP, 'id', NEW.id)::text);
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS results_change_notify ON results`,
	`CREATE TRIGGER results_change_notify
		AFTER INSERT OR UPDATE OR DELETE ON results
		FOR EACH ROW EXECUTE FUNCTION notify_results_change()`,
}

// InitSchema creates the tables, indexes and the results change trigger.
func InitSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}
